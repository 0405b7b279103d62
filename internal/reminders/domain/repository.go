package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for reminder persistence.
type Repository interface {
	// SaveBatch stores a batch of reminders. Callers that need the batch to
	// be atomic run it inside a unit of work; the repository joins the
	// ambient transaction when one is present.
	SaveBatch(ctx context.Context, reminders []*Reminder) error

	// FindDue returns up to limit unsent reminders with scheduledAt <= now,
	// earliest first.
	FindDue(ctx context.Context, now time.Time, limit int) ([]*Reminder, error)

	// MarkSent flips the sent flag if and only if it is still unset,
	// reporting whether this call won the transition.
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// CountByMeeting returns the number of reminders referencing a meeting.
	CountByMeeting(ctx context.Context, meetingRef uuid.UUID) (int, error)

	// FindByMeeting returns all reminders referencing a meeting.
	FindByMeeting(ctx context.Context, meetingRef uuid.UUID) ([]*Reminder, error)
}
