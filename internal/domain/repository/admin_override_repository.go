package repository

import (
	"context"

	"flightalert-service/internal/domain/entity"
)

// AdminOverrideRepository stores operator overrides
type AdminOverrideRepository interface {
	Create(ctx context.Context, override *entity.AdminOverride) error
}
