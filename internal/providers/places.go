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
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/vibescout/vibescout/internal/config"
	"github.com/vibescout/vibescout/internal/gateway"
	"github.com/vibescout/vibescout/internal/logging"
	"github.com/vibescout/vibescout/internal/models"
)

// placesFieldMask lists the response fields the engine actually uses.
// Requesting a minimal mask keeps provider billing and payload size down.
const placesFieldMask = "places.id,places.displayName,places.formattedAddress,places.rating," +
	"places.userRatingCount,places.priceLevel,places.types,places.location,places.reviews," +
	"places.websiteUri,places.nationalPhoneNumber,places.regularOpeningHours,places.businessStatus,places.photos"

// PlacesClient talks to a Places-API-shaped search service. It
// implements gateway.PlaceSearcher.
type PlacesClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewPlacesClient builds a client from the provider endpoint config.
func NewPlacesClient(cfg config.ProviderEndpoint) *PlacesClient {
	return &PlacesClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     logging.Component("places-client"),
	}
}

type searchNearbyRequest struct {
	IncludedTypes       []string `json:"includedTypes,omitempty"`
	MaxResultCount      int      `json:"maxResultCount"`
	LocationRestriction struct {
		Circle struct {
			Center wireLatLng `json:"center"`
			Radius float64    `json:"radius"`
		} `json:"circle"`
	} `json:"locationRestriction"`
}

type searchTextRequest struct {
	TextQuery      string `json:"textQuery"`
	MaxResultCount int    `json:"maxResultCount"`
	LocationBias   *struct {
		Circle struct {
			Center wireLatLng `json:"center"`
			Radius float64    `json:"radius"`
		} `json:"circle"`
	} `json:"locationBias,omitempty"`
}

type wireLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchResponse struct {
	Places []wirePlace `json:"places"`
}

type wirePlace struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress string     `json:"formattedAddress"`
	Rating           float64    `json:"rating"`
	UserRatingCount  int        `json:"userRatingCount"`
	PriceLevel       string     `json:"priceLevel"`
	Types            []string   `json:"types"`
	Location         wireLatLng `json:"location"`
	Reviews          []struct {
		Text struct {
			Text string `json:"text"`
		} `json:"text"`
		Rating      float64   `json:"rating"`
		PublishTime time.Time `json:"publishTime"`
	} `json:"reviews"`
	WebsiteURI          string `json:"websiteUri"`
	NationalPhoneNumber string `json:"nationalPhoneNumber"`
	RegularOpeningHours struct {
		WeekdayDescriptions []string `json:"weekdayDescriptions"`
	} `json:"regularOpeningHours"`
	BusinessStatus string `json:"businessStatus"`
	Photos         []struct {
		Name string `json:"name"`
	} `json:"photos"`
}

// SearchNearby runs a nearby search restricted to a circle.
func (c *PlacesClient) SearchNearby(ctx context.Context, center models.LatLng, radiusMeters int, includedTypes []string, maxResults int) ([]models.PlaceResult, error) {
	req := searchNearbyRequest{IncludedTypes: includedTypes, MaxResultCount: maxResults}
	req.LocationRestriction.Circle.Center = wireLatLng{Latitude: center.Lat, Longitude: center.Lng}
	req.LocationRestriction.Circle.Radius = float64(radiusMeters)

	return c.search(ctx, "/places:searchNearby", req)
}

// SearchText runs a free-text search with an optional location bias.
func (c *PlacesClient) SearchText(ctx context.Context, query string, bias *models.LatLng, maxResults int) ([]models.PlaceResult, error) {
	req := searchTextRequest{TextQuery: query, MaxResultCount: maxResults}
	if bias != nil {
		req.LocationBias = &struct {
			Circle struct {
				Center wireLatLng `json:"center"`
				Radius float64    `json:"radius"`
			} `json:"circle"`
		}{}
		req.LocationBias.Circle.Center = wireLatLng{Latitude: bias.Lat, Longitude: bias.Lng}
		req.LocationBias.Circle.Radius = 5000
	}

	return c.search(ctx, "/places:searchText", req)
}

func (c *PlacesClient) search(ctx context.Context, path string, body any) ([]models.PlaceResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", placesFieldMask)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &gateway.TransportError{Provider: gateway.ProviderPlaces, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &gateway.ProviderError{Provider: gateway.ProviderPlaces, StatusCode: resp.StatusCode, Message: string(msg)}
	}

	var wire searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, &gateway.ProviderError{Provider: gateway.ProviderPlaces, StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}

	return c.transformPlaces(wire.Places), nil
}

// transformPlaces converts wire places to the engine model, dropping
// malformed records with a warning rather than failing the call.
func (c *PlacesClient) transformPlaces(wire []wirePlace) []models.PlaceResult {
	out := make([]models.PlaceResult, 0, len(wire))
	for _, wp := range wire {
		p, err := transformPlace(wp)
		if err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed place record")
			continue
		}
		out = append(out, p)
	}
	return out
}

func transformPlace(wp wirePlace) (models.PlaceResult, error) {
	if wp.ID == "" {
		return models.PlaceResult{}, &gateway.DataShapeError{Provider: gateway.ProviderPlaces, Field: "id", Err: fmt.Errorf("missing")}
	}
	if wp.DisplayName.Text == "" {
		return models.PlaceResult{}, &gateway.DataShapeError{Provider: gateway.ProviderPlaces, Field: "displayName", Err: fmt.Errorf("missing")}
	}

	p := models.PlaceResult{
		PlaceID:        wp.ID,
		Name:           wp.DisplayName.Text,
		Address:        wp.FormattedAddress,
		Rating:         wp.Rating,
		ReviewCount:    wp.UserRatingCount,
		PriceLevel:     priceLevelValue(wp.PriceLevel),
		Types:          wp.Types,
		Coordinates:    models.LatLng{Lat: wp.Location.Latitude, Lng: wp.Location.Longitude},
		Website:        wp.WebsiteURI,
		Phone:          wp.NationalPhoneNumber,
		OpeningHours:   wp.RegularOpeningHours.WeekdayDescriptions,
		BusinessStatus: wp.BusinessStatus,
	}
	for _, ph := range wp.Photos {
		p.PhotoRefs = append(p.PhotoRefs, ph.Name)
	}
	for _, r := range wp.Reviews {
		if r.Text.Text == "" {
			continue
		}
		p.Reviews = append(p.Reviews, models.Review{Text: r.Text.Text, Rating: r.Rating, PublishTime: r.PublishTime})
		if len(p.Reviews) == models.MaxReviewsPerPlace {
			break
		}
	}
	return p, nil
}

// priceLevelValue maps the provider's enum to the 0-4 scale, 0 meaning
// unknown.
func priceLevelValue(s string) int {
	switch s {
	case "PRICE_LEVEL_FREE":
		return 0
	case "PRICE_LEVEL_INEXPENSIVE":
		return 1
	case "PRICE_LEVEL_MODERATE":
		return 2
	case "PRICE_LEVEL_EXPENSIVE":
		return 3
	case "PRICE_LEVEL_VERY_EXPENSIVE":
		return 4
	default:
		return 0
	}
}
