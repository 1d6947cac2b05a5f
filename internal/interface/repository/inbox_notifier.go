package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
)

// InboxNotifier delivers IN_APP notifications by writing to the passenger's inbox
type InboxNotifier struct {
	inbox repository.InboxRepository
}

// NewInboxNotifier creates a new in-app notifier
func NewInboxNotifier(inbox repository.InboxRepository) repository.Notifier {
	return &InboxNotifier{inbox: inbox}
}

// Send implements repository.Notifier
func (n *InboxNotifier) Send(ctx context.Context, delivery repository.Delivery) error {
	if delivery.Passenger.ID == "" {
		return fmt.Errorf("%w: booking %s has no passenger", entity.ErrNoRecipient, delivery.BookingID)
	}

	kind, _ := delivery.Payload[entity.PayloadType].(string)
	msg := &entity.InAppMessage{
		// Keyed by job so a redelivered job does not create a second message
		ID:          delivery.JobID,
		PassengerID: delivery.Passenger.ID,
		BookingID:   delivery.BookingID,
		Message:     delivery.Message(),
		Type:        kind,
		CreatedAt:   time.Now(),
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	return n.inbox.Insert(ctx, msg)
}
