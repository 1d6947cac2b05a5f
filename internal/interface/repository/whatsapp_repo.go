package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/pkg/logger"
	"flightalert-service/pkg/utils"
)

// WhatsappRepository sends WHATSAPP notifications through the WhatsApp gateway
type WhatsappRepository struct {
	logger      logger.Logger
	client      *http.Client
	baseURL     string
	bearerToken string
	companyID   string
	agentID     string
	countryCode string
}

// WhatsappConfig holds the gateway credentials
type WhatsappConfig struct {
	BaseURL     string
	BearerToken string
	CompanyID   string
	AgentID     string
	// CountryCode rewrites national numbers with a leading 0
	CountryCode string
}

// NewWhatsappRepository creates a new WhatsApp notifier
func NewWhatsappRepository(cfg WhatsappConfig, logger logger.Logger) repository.Notifier {
	return &WhatsappRepository{
		logger:      logger,
		client:      &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		bearerToken: cfg.BearerToken,
		companyID:   cfg.CompanyID,
		agentID:     cfg.AgentID,
		countryCode: cfg.CountryCode,
	}
}

type whatsappMessage struct {
	CompanyID   string `json:"companyId"`
	AgentID     string `json:"agentId"`
	PhoneNumber string `json:"phoneNumber"`
	Message     struct {
		Text string `json:"text"`
	} `json:"message"`
	Type       string `json:"type"`
	ExternalID string `json:"externalId"`
}

// Send implements repository.Notifier
func (r *WhatsappRepository) Send(ctx context.Context, delivery repository.Delivery) error {
	phone := utils.NormalizePhone(delivery.Passenger.PhoneNumber, r.countryCode)
	if phone == "" {
		return fmt.Errorf("%w: passenger %s has no usable phone number", entity.ErrNoRecipient, delivery.Passenger.ID)
	}

	msg := whatsappMessage{
		CompanyID:   r.companyID,
		AgentID:     r.agentID,
		PhoneNumber: phone,
		Type:        "text",
		ExternalID:  delivery.JobID,
	}
	msg.Message.Text = delivery.Message()

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/messages/send", r.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+r.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return fmt.Errorf("WhatsApp service returned status %d: %v", resp.StatusCode, errorBody)
	}

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			MessageID string `json:"messageId"`
			Status    string `json:"status"`
		} `json:"data"`
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !response.Success {
		return fmt.Errorf("WhatsApp send failed: %s (code: %s)", response.Error.Message, response.Error.Code)
	}

	r.logger.Info("WhatsApp message sent",
		"jobId", delivery.JobID,
		"messageId", response.Data.MessageID,
		"status", response.Data.Status)
	return nil
}
