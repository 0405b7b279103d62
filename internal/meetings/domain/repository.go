package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for meeting persistence.
type Repository interface {
	Save(ctx context.Context, meeting *Meeting) error
	FindByID(ctx context.Context, id uuid.UUID) (*Meeting, error)
	FindAll(ctx context.Context) ([]*Meeting, error)
	FindByDate(ctx context.Context, date time.Time) ([]*Meeting, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]*Meeting, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
