package aviation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/pkg/logger"
)

// AviationStackClient reads live flight status from the aviationstack API
type AviationStackClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  logger.Logger
}

// NewAviationStackClient creates a new aviationstack client
func NewAviationStackClient(baseURL, apiKey string, logger logger.Logger) repository.AviationDataSource {
	if apiKey == "" {
		logger.Warn("AVIATIONSTACK_API_KEY is missing, flight sync will report no data")
	}
	return &AviationStackClient{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
	}
}

type flightsResponse struct {
	Data []struct {
		FlightStatus string `json:"flight_status"`
		Departure    struct {
			Gate     *string `json:"gate"`
			Terminal *string `json:"terminal"`
			Delay    *int    `json:"delay"`
		} `json:"departure"`
		Flight struct {
			IATA string `json:"iata"`
		} `json:"flight"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetFlightStatus returns nil without error when the provider has no data for the flight
func (c *AviationStackClient) GetFlightStatus(ctx context.Context, flightNumber string) (*entity.FlightSnapshot, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("access_key", c.apiKey)
	params.Set("flight_iata", flightNumber)
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/flights?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aviationstack request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aviationstack returned status %d", resp.StatusCode)
	}

	var body flightsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode aviationstack response: %w", err)
	}
	if body.Error != nil {
		return nil, fmt.Errorf("aviationstack error %s: %s", body.Error.Code, body.Error.Message)
	}
	if len(body.Data) == 0 {
		return nil, nil
	}

	f := body.Data[0]
	snapshot := &entity.FlightSnapshot{
		FlightNumber:   flightNumber,
		ProviderStatus: f.FlightStatus,
	}
	if f.Departure.Delay != nil {
		snapshot.DelayMinutes = *f.Departure.Delay
	}
	if f.Departure.Gate != nil {
		snapshot.Gate = *f.Departure.Gate
	}
	if f.Departure.Terminal != nil {
		snapshot.Terminal = *f.Departure.Terminal
	}

	c.logger.Debug("Fetched flight status",
		"flightNumber", flightNumber,
		"providerStatus", snapshot.ProviderStatus,
		"delay", snapshot.DelayMinutes)
	return snapshot, nil
}
