package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedDomain "meetdesk/internal/shared/domain"
)

var (
	ErrEmptyRecipient  = errors.New("reminder recipient cannot be empty")
	ErrZeroScheduledAt = errors.New("reminder schedule time is required")
	ErrAlreadySent     = errors.New("reminder was already sent")
)

// Reminder is a single pending or completed notification. Subject and body
// are rendered once at creation time and sent verbatim. Reminders reference
// their originating meeting only informationally: deleting the meeting leaves
// them queued, and sent reminders are retained as an audit trail.
type Reminder struct {
	sharedDomain.BaseEntity
	meetingRef  *uuid.UUID
	recipient   string
	subject     string
	body        string
	scheduledAt time.Time
	sent        bool
	sentAt      *time.Time
}

// NewReminder creates a pending reminder scheduled for the given instant.
func NewReminder(meetingRef *uuid.UUID, recipient, subject, body string, scheduledAt time.Time) (*Reminder, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, ErrEmptyRecipient
	}
	if scheduledAt.IsZero() {
		return nil, ErrZeroScheduledAt
	}

	return &Reminder{
		BaseEntity:  sharedDomain.NewBaseEntity(),
		meetingRef:  meetingRef,
		recipient:   recipient,
		subject:     subject,
		body:        body,
		scheduledAt: scheduledAt,
	}, nil
}

// Getters
func (r *Reminder) MeetingRef() *uuid.UUID  { return r.meetingRef }
func (r *Reminder) Recipient() string       { return r.recipient }
func (r *Reminder) Subject() string         { return r.subject }
func (r *Reminder) Body() string            { return r.body }
func (r *Reminder) ScheduledAt() time.Time  { return r.scheduledAt }
func (r *Reminder) Sent() bool              { return r.sent }
func (r *Reminder) SentAt() *time.Time      { return r.sentAt }

// DueAt reports whether the reminder is eligible for dispatch at now.
func (r *Reminder) DueAt(now time.Time) bool {
	return !r.sent && !r.scheduledAt.After(now)
}

// MarkSent transitions the reminder to sent. The transition happens at most
// once; it never reverts.
func (r *Reminder) MarkSent(at time.Time) error {
	if r.sent {
		return ErrAlreadySent
	}
	r.sent = true
	r.sentAt = &at
	r.Touch()
	return nil
}

// RehydrateReminder recreates a reminder from persisted state.
func RehydrateReminder(
	id uuid.UUID,
	meetingRef *uuid.UUID,
	recipient, subject, body string,
	scheduledAt time.Time,
	sent bool,
	sentAt *time.Time,
	createdAt, updatedAt time.Time,
) *Reminder {
	return &Reminder{
		BaseEntity:  sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		meetingRef:  meetingRef,
		recipient:   recipient,
		subject:     subject,
		body:        body,
		scheduledAt: scheduledAt,
		sent:        sent,
		sentAt:      sentAt,
	}
}
