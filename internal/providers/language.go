// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/vibescout/vibescout/internal/config"
	"github.com/vibescout/vibescout/internal/gateway"
)

// LanguageClient talks to a Natural-Language-shaped sentiment/entity
// service. It implements gateway.SentimentAnalyzer.
type LanguageClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewLanguageClient builds a client from the provider endpoint config.
func NewLanguageClient(cfg config.ProviderEndpoint) *LanguageClient {
	return &LanguageClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type analyzeRequest struct {
	Document struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	} `json:"document"`
	EncodingType string `json:"encodingType"`
}

func newAnalyzeRequest(text string) analyzeRequest {
	var req analyzeRequest
	req.Document.Type = "PLAIN_TEXT"
	req.Document.Content = text
	req.EncodingType = "UTF8"
	return req
}

type sentimentResponse struct {
	DocumentSentiment struct {
		Score     float64 `json:"score"`
		Magnitude float64 `json:"magnitude"`
	} `json:"documentSentiment"`
}

type entitiesResponse struct {
	Entities []struct {
		Name      string  `json:"name"`
		Type      string  `json:"type"`
		Salience  float64 `json:"salience"`
		Sentiment struct {
			Score float64 `json:"score"`
		} `json:"sentiment"`
	} `json:"entities"`
}

// AnalyzeSentiment returns whole-document sentiment for the text.
func (c *LanguageClient) AnalyzeSentiment(ctx context.Context, text string) (gateway.Sentiment, error) {
	var wire sentimentResponse
	if err := c.post(ctx, "/documents:analyzeSentiment", newAnalyzeRequest(text), &wire); err != nil {
		return gateway.Sentiment{}, err
	}
	return gateway.Sentiment{
		Score:     wire.DocumentSentiment.Score,
		Magnitude: wire.DocumentSentiment.Magnitude,
	}, nil
}

// AnalyzeEntities returns entities with per-entity sentiment.
func (c *LanguageClient) AnalyzeEntities(ctx context.Context, text string) ([]gateway.Entity, error) {
	var wire entitiesResponse
	if err := c.post(ctx, "/documents:analyzeEntitySentiment", newAnalyzeRequest(text), &wire); err != nil {
		return nil, err
	}
	out := make([]gateway.Entity, 0, len(wire.Entities))
	for _, e := range wire.Entities {
		if e.Name == "" {
			// A nameless entity carries no signal; skip it.
			continue
		}
		out = append(out, gateway.Entity{
			Name:      e.Name,
			Type:      e.Type,
			Salience:  e.Salience,
			Sentiment: e.Sentiment.Score,
		})
	}
	return out, nil
}

func (c *LanguageClient) post(ctx context.Context, path string, body, into any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal analyze request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path+"?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build analyze request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return &gateway.TransportError{Provider: gateway.ProviderSentiment, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &gateway.ProviderError{Provider: gateway.ProviderSentiment, StatusCode: resp.StatusCode, Message: string(msg)}
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return &gateway.ProviderError{Provider: gateway.ProviderSentiment, StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}
