package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/pkg/logger"
	"flightalert-service/pkg/utils"
)

// SMSRepository sends SMS notifications through an HTTP SMS gateway
type SMSRepository struct {
	logger      logger.Logger
	client      *http.Client
	endpoint    string
	token       string
	sender      string
	countryCode string
}

// SMSConfig holds the gateway credentials
type SMSConfig struct {
	Endpoint string
	Token    string
	Sender   string
	// CountryCode rewrites national numbers with a leading 0
	CountryCode string
}

// NewSMSRepository creates a new SMS notifier
func NewSMSRepository(cfg SMSConfig, logger logger.Logger) repository.Notifier {
	return &SMSRepository{
		logger:      logger,
		client:      &http.Client{Timeout: 30 * time.Second},
		endpoint:    cfg.Endpoint,
		token:       cfg.Token,
		sender:      cfg.Sender,
		countryCode: cfg.CountryCode,
	}
}

type smsRequest struct {
	From      string `json:"from,omitempty"`
	To        string `json:"to"`
	Text      string `json:"text"`
	Reference string `json:"reference"`
}

// Send implements repository.Notifier
func (r *SMSRepository) Send(ctx context.Context, delivery repository.Delivery) error {
	phone := utils.NormalizePhone(delivery.Passenger.PhoneNumber, r.countryCode)
	if phone == "" {
		return fmt.Errorf("%w: passenger %s has no usable phone number", entity.ErrNoRecipient, delivery.Passenger.ID)
	}

	jsonData, err := json.Marshal(smsRequest{
		From:      r.sender,
		To:        phone,
		Text:      delivery.Message(),
		Reference: delivery.JobID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sms: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return fmt.Errorf("SMS gateway returned status %d: %v", resp.StatusCode, errorBody)
	}

	r.logger.Debug("SMS sent", "jobId", delivery.JobID, "bookingId", delivery.BookingID)
	return nil
}
