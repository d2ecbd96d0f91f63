// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

/*
Package providers contains the HTTP clients for the three consumed
external services: place search, sentiment/entity analysis, and
geocoding.

Each client implements the corresponding interface from the gateway
package and does nothing but transport and transformation: retries,
breakers, pacing, and concurrency limits all live in the gateway. A
malformed record in a provider response is dropped with a warning
(gateway.DataShapeError semantics); a malformed envelope or non-2xx
status is a provider error the gateway may retry.
*/
package providers
