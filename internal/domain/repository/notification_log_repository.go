package repository

import (
	"context"

	"flightalert-service/internal/domain/entity"
)

// NotificationLogRepository stores one record per delivery attempt
type NotificationLogRepository interface {
	Append(ctx context.Context, log *entity.NotificationLog) error
	ListRecent(ctx context.Context, limit int) ([]*entity.NotificationLog, error)
}

// InboxRepository stores in-app messages
type InboxRepository interface {
	Insert(ctx context.Context, msg *entity.InAppMessage) error
	ListByPassenger(ctx context.Context, passengerID string, limit int) ([]*entity.InAppMessage, error)
}
