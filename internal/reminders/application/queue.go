// Package application contains the reminder use cases: enqueueing reminder
// campaigns and sweeping due reminders out to their recipients.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"meetdesk/internal/reminders/domain"
	"meetdesk/internal/scheduling/recurrence"
	sharedApplication "meetdesk/internal/shared/application"
)

// ErrCampaignExists is returned when reminders already reference the meeting.
var ErrCampaignExists = errors.New("reminder campaign already exists for meeting")

// ErrNoRecipients is returned when a campaign has nobody to address.
var ErrNoRecipients = errors.New("reminder campaign has no recipients")

// SendHour and SendMinute fix the local wall-clock time at which campaign
// reminders become due.
const (
	SendHour   = 7
	SendMinute = 30
)

// CampaignResult reports what EnqueueCampaign stored.
type CampaignResult struct {
	Enqueued int
	FirstDue time.Time
	LastDue  time.Time
}

// QueueManager enqueues reminder campaigns: the cartesian product of
// recipients and upcoming business days, each due at 07:30 local time.
type QueueManager struct {
	repo   domain.Repository
	uow    sharedApplication.UnitOfWork
	logger *slog.Logger
	now    func() time.Time
}

// NewQueueManager creates a new queue manager.
func NewQueueManager(repo domain.Repository, uow sharedApplication.UnitOfWork, logger *slog.Logger) *QueueManager {
	return &QueueManager{
		repo:   repo,
		uow:    uow,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (m *QueueManager) WithClock(now func() time.Time) *QueueManager {
	m.now = now
	return m
}

// EnqueueCampaign stores one reminder per recipient per business day, for the
// next businessDays business days after today. The whole batch commits
// atomically; a meeting that already has reminders gets ErrCampaignExists.
func (m *QueueManager) EnqueueCampaign(ctx context.Context, meetingRef uuid.UUID, recipients []string, subject, body string, businessDays int) (*CampaignResult, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	days, err := recurrence.BusinessDaysAhead(m.now(), businessDays)
	if err != nil {
		return nil, err
	}

	batch := make([]*domain.Reminder, 0, len(days)*len(recipients))
	for _, day := range days {
		due := time.Date(day.Year(), day.Month(), day.Day(), SendHour, SendMinute, 0, 0, day.Location())
		for _, recipient := range recipients {
			reminder, err := domain.NewReminder(&meetingRef, recipient, subject, body, due)
			if err != nil {
				return nil, fmt.Errorf("build reminder: %w", err)
			}
			batch = append(batch, reminder)
		}
	}

	err = sharedApplication.WithUnitOfWork(ctx, m.uow, func(txCtx context.Context) error {
		existing, err := m.repo.CountByMeeting(txCtx, meetingRef)
		if err != nil {
			return fmt.Errorf("check existing campaign: %w", err)
		}
		if existing > 0 {
			return ErrCampaignExists
		}
		return m.repo.SaveBatch(txCtx, batch)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("reminder campaign enqueued",
		"meeting_id", meetingRef,
		"reminders", len(batch),
		"recipients", len(recipients),
		"business_days", businessDays,
	)

	result := &CampaignResult{Enqueued: len(batch)}
	if len(batch) > 0 {
		result.FirstDue = batch[0].ScheduledAt()
		result.LastDue = batch[len(batch)-1].ScheduledAt()
	}
	return result, nil
}
