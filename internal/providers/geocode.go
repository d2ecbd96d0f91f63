// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/vibescout/vibescout/internal/config"
	"github.com/vibescout/vibescout/internal/gateway"
	"github.com/vibescout/vibescout/internal/models"
)

// GeocodeClient resolves free-text addresses against a geocoding
// service. It implements gateway.Geocoder.
type GeocodeClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGeocodeClient builds a client from the provider endpoint config.
func NewGeocodeClient(cfg config.ProviderEndpoint) *GeocodeClient {
	return &GeocodeClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves an address to coordinates. ZERO_RESULTS is a
// provider error like any other; the gateway decides what to degrade
// it to.
func (c *GeocodeClient) Geocode(ctx context.Context, address string) (models.LatLng, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/json?"+q.Encode(), http.NoBody)
	if err != nil {
		return models.LatLng{}, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return models.LatLng{}, &gateway.TransportError{Provider: gateway.ProviderGeocoder, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return models.LatLng{}, &gateway.ProviderError{Provider: gateway.ProviderGeocoder, StatusCode: resp.StatusCode, Message: string(msg)}
	}

	var wire geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return models.LatLng{}, &gateway.ProviderError{Provider: gateway.ProviderGeocoder, StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}

	if wire.Status != "OK" || len(wire.Results) == 0 {
		return models.LatLng{}, &gateway.ProviderError{Provider: gateway.ProviderGeocoder, StatusCode: resp.StatusCode, Message: "geocode status " + wire.Status}
	}

	loc := wire.Results[0].Geometry.Location
	return models.LatLng{Lat: loc.Lat, Lng: loc.Lng}, nil
}
