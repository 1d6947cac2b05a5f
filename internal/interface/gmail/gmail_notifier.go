package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/pkg/logger"
	"flightalert-service/templates"
)

// GmailNotifier delivers EMAIL notifications through the Gmail API
type GmailNotifier struct {
	gmailService *gmail.Service
	sender       string
	logger       logger.Logger
}

// NewGmailNotifier creates a new Gmail notifier. Extra client options are passed to the Gmail client.
func NewGmailNotifier(ctx context.Context, tokenSource oauth2.TokenSource, sender string, logger logger.Logger, opts ...option.ClientOption) (*GmailNotifier, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(tokenSource)}, opts...)
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	if sender == "" {
		sender = "me"
	}

	return &GmailNotifier{
		gmailService: service,
		sender:       sender,
		logger:       logger,
	}, nil
}

// Send implements repository.Notifier
func (n *GmailNotifier) Send(ctx context.Context, delivery repository.Delivery) error {
	to, err := recipient(delivery.Passenger.Email)
	if err != nil {
		return fmt.Errorf("%w: passenger %s: %v", entity.ErrNoRecipient, delivery.Passenger.ID, err)
	}

	raw := buildMessage(n.sender, to, subjectFor(delivery), delivery.Message())
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString([]byte(raw))}

	sent, err := n.gmailService.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}

	n.logger.Info("Email sent",
		"jobId", delivery.JobID,
		"bookingId", delivery.BookingID,
		"messageId", sent.Id)
	return nil
}

// recipient validates a stored address before it goes into the To header
func recipient(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("no email")
	}
	if strings.ContainsAny(raw, "\r\n") {
		return "", errors.New("email contains a line break")
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", fmt.Errorf("invalid email %q: %w", raw, err)
	}
	return addr.Address, nil
}

func subjectFor(delivery repository.Delivery) string {
	flightNumber, _ := delivery.Payload[entity.PayloadFlightNumber].(string)
	kind, _ := delivery.Payload[entity.PayloadType].(string)

	switch kind {
	case string(templates.Cancelled):
		return fmt.Sprintf("Flight %s cancelled", flightNumber)
	case string(templates.AdminOverride):
		return fmt.Sprintf("Important notice for flight %s", flightNumber)
	default:
		return fmt.Sprintf("Flight %s update", flightNumber)
	}
}

// buildMessage renders a plain-text RFC 2822 message
func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	if from != "me" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}
