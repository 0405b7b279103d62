// Package commands contains the meeting write-side use cases.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"meetdesk/internal/meetings/domain"
	"meetdesk/internal/notify"
	remindersApplication "meetdesk/internal/reminders/application"
	"meetdesk/internal/scheduling/recurrence"
	sharedApplication "meetdesk/internal/shared/application"
)

// ScheduleMeetingCommand contains the data needed to schedule a meeting.
type ScheduleMeetingCommand struct {
	Date         time.Time
	StartTime    string
	EndTime      string
	Title        string
	Participants string
	Category     string
	Location     string
	Notes        string

	// Recurrence selects how the meeting repeats; empty means a single
	// meeting. Count is the total number of occurrences for the fixed-count
	// selections (daily, weekly, monthly, biweekly) and is ignored otherwise.
	Recurrence string
	Count      int
}

// ScheduleMeetingResult contains the result of scheduling a meeting.
type ScheduleMeetingResult struct {
	MeetingID         uuid.UUID
	Created           int
	RemindersEnqueued int
}

// ScheduleMeetingHandler handles the ScheduleMeetingCommand. A creation
// request takes exactly one of three paths: a reminder campaign (one meeting
// plus queued reminders), a bulk expansion (one meeting per occurrence), or a
// single meeting.
type ScheduleMeetingHandler struct {
	meetingRepo domain.Repository
	queue       *remindersApplication.QueueManager
	resolver    notify.RecipientResolver
	notifier    notify.Notifier
	uow         sharedApplication.UnitOfWork
	logger      *slog.Logger
}

// NewScheduleMeetingHandler creates a new ScheduleMeetingHandler.
func NewScheduleMeetingHandler(
	meetingRepo domain.Repository,
	queue *remindersApplication.QueueManager,
	resolver notify.RecipientResolver,
	notifier notify.Notifier,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *ScheduleMeetingHandler {
	return &ScheduleMeetingHandler{
		meetingRepo: meetingRepo,
		queue:       queue,
		resolver:    resolver,
		notifier:    notifier,
		uow:         uow,
		logger:      logger,
	}
}

// Handle executes the ScheduleMeetingCommand.
func (h *ScheduleMeetingHandler) Handle(ctx context.Context, cmd ScheduleMeetingCommand) (*ScheduleMeetingResult, error) {
	rec := domain.Recurrence(cmd.Recurrence)
	if !rec.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRecurrence, cmd.Recurrence)
	}

	anchor, err := domain.NewMeeting(cmd.Date, cmd.StartTime, cmd.EndTime, cmd.Title, cmd.Participants, cmd.Category, cmd.Location, cmd.Notes)
	if err != nil {
		return nil, err
	}

	if businessDays, ok := rec.BusinessDays(); ok {
		return h.scheduleCampaign(ctx, anchor, businessDays)
	}

	extraDates, err := h.expand(rec, anchor.Date(), cmd.Count)
	if err != nil {
		return nil, err
	}

	result := &ScheduleMeetingResult{MeetingID: anchor.ID()}
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.meetingRepo.Save(txCtx, anchor); err != nil {
			return err
		}
		result.Created = 1

		for _, date := range extraDates {
			occurrence, err := domain.NewMeeting(date, cmd.StartTime, cmd.EndTime, cmd.Title, cmd.Participants, cmd.Category, cmd.Location, cmd.Notes)
			if err != nil {
				return err
			}
			if err := h.meetingRepo.Save(txCtx, occurrence); err != nil {
				return err
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("meeting scheduled",
		"meeting_id", anchor.ID(),
		"recurrence", string(rec),
		"created", result.Created,
	)
	h.notifyScheduled(anchor)
	return result, nil
}

// expand returns the occurrence dates beyond the anchor.
func (h *ScheduleMeetingHandler) expand(rec domain.Recurrence, anchor time.Time, count int) ([]time.Time, error) {
	switch rec {
	case domain.RecurrenceNone:
		return nil, nil
	case domain.RecurrenceDaily, domain.RecurrenceWeekly, domain.RecurrenceMonthly:
		unit := recurrence.Unit(rec)
		dates, err := recurrence.ExpandFixedCount(anchor, unit, count)
		if err != nil {
			return nil, err
		}
		if len(dates) > 0 {
			// The anchor row is saved separately.
			dates = dates[1:]
		}
		return dates, nil
	case domain.RecurrenceWeekdayOfMonth:
		return recurrence.ExpandWeekdayOfMonth(anchor, anchor.Weekday()), nil
	case domain.RecurrenceBiweekly:
		if count < 1 {
			count = 1
		}
		return recurrence.ExpandBiweekly(anchor, count-1)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRecurrence, rec)
	}
}

// scheduleCampaign stores the single anchor meeting and queues one reminder
// per recipient per business day, all in one transaction.
func (h *ScheduleMeetingHandler) scheduleCampaign(ctx context.Context, anchor *domain.Meeting, businessDays int) (*ScheduleMeetingResult, error) {
	recipients := h.resolver.Resolve(anchor.Participants())

	result := &ScheduleMeetingResult{MeetingID: anchor.ID()}
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.meetingRepo.Save(txCtx, anchor); err != nil {
			return err
		}
		result.Created = 1

		if len(recipients) == 0 {
			h.logger.Warn("campaign meeting has no resolvable recipients, skipping reminders",
				"meeting_id", anchor.ID(),
			)
			return nil
		}

		subject, body, err := notify.Render(notify.MailReminder, meetingMail(anchor))
		if err != nil {
			return err
		}

		campaign, err := h.queue.EnqueueCampaign(txCtx, anchor.ID(), recipients, subject, body, businessDays)
		if err != nil {
			return err
		}
		result.RemindersEnqueued = campaign.Enqueued
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("meeting scheduled with reminder campaign",
		"meeting_id", anchor.ID(),
		"reminders", result.RemindersEnqueued,
	)
	h.notifyScheduled(anchor)
	return result, nil
}

// notifyScheduled sends the confirmation mail in the background. Delivery is
// best effort; failures are logged and never surfaced to the caller.
func (h *ScheduleMeetingHandler) notifyScheduled(meeting *domain.Meeting) {
	recipients := h.resolver.Resolve(meeting.Participants())
	if len(recipients) == 0 {
		return
	}

	subject, body, err := notify.Render(notify.MailScheduled, meetingMail(meeting))
	if err != nil {
		h.logger.Error("failed to render confirmation mail", "meeting_id", meeting.ID(), "error", err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := h.notifier.Send(ctx, recipients, subject, body); err != nil {
			h.logger.Error("failed to send confirmation mail",
				"meeting_id", meeting.ID(),
				"error", err,
			)
		}
	}()
}

func meetingMail(m *domain.Meeting) notify.MeetingMail {
	return notify.MeetingMail{
		Title:     m.Title(),
		Date:      m.Date(),
		StartTime: m.StartTime(),
		EndTime:   m.EndTime(),
		Location:  m.Location(),
		Notes:     m.Notes(),
	}
}
