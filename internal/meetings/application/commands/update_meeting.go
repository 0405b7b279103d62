package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"meetdesk/internal/meetings/domain"
	"meetdesk/internal/notify"
	sharedApplication "meetdesk/internal/shared/application"
)

// ErrMeetingNotFound is returned when the referenced meeting does not exist.
var ErrMeetingNotFound = errors.New("meeting not found")

// UpdateMeetingCommand contains the data needed to update a meeting. All
// mutable fields are replaced at once.
type UpdateMeetingCommand struct {
	MeetingID    uuid.UUID
	Date         time.Time
	StartTime    string
	EndTime      string
	Title        string
	Participants string
	Category     string
	Location     string
	Notes        string
}

// UpdateMeetingHandler handles the UpdateMeetingCommand. Updating touches a
// single row; queued reminders and sibling occurrences are left alone.
type UpdateMeetingHandler struct {
	meetingRepo domain.Repository
	resolver    notify.RecipientResolver
	notifier    notify.Notifier
	uow         sharedApplication.UnitOfWork
	logger      *slog.Logger
}

// NewUpdateMeetingHandler creates a new UpdateMeetingHandler.
func NewUpdateMeetingHandler(
	meetingRepo domain.Repository,
	resolver notify.RecipientResolver,
	notifier notify.Notifier,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *UpdateMeetingHandler {
	return &UpdateMeetingHandler{
		meetingRepo: meetingRepo,
		resolver:    resolver,
		notifier:    notifier,
		uow:         uow,
		logger:      logger,
	}
}

// Handle executes the UpdateMeetingCommand.
func (h *UpdateMeetingHandler) Handle(ctx context.Context, cmd UpdateMeetingCommand) error {
	var updated *domain.Meeting

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		meeting, err := h.meetingRepo.FindByID(txCtx, cmd.MeetingID)
		if err != nil {
			return err
		}
		if meeting == nil {
			return ErrMeetingNotFound
		}

		if err := meeting.Replace(cmd.Date, cmd.StartTime, cmd.EndTime, cmd.Title, cmd.Participants, cmd.Category, cmd.Location, cmd.Notes); err != nil {
			return err
		}

		if err := h.meetingRepo.Save(txCtx, meeting); err != nil {
			return err
		}
		updated = meeting
		return nil
	})
	if err != nil {
		return err
	}

	h.logger.Info("meeting updated", "meeting_id", cmd.MeetingID)
	h.notifyUpdated(updated)
	return nil
}

func (h *UpdateMeetingHandler) notifyUpdated(meeting *domain.Meeting) {
	recipients := h.resolver.Resolve(meeting.Participants())
	if len(recipients) == 0 {
		return
	}

	subject, body, err := notify.Render(notify.MailUpdated, meetingMail(meeting))
	if err != nil {
		h.logger.Error("failed to render update mail", "meeting_id", meeting.ID(), "error", err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := h.notifier.Send(ctx, recipients, subject, body); err != nil {
			h.logger.Error("failed to send update mail",
				"meeting_id", meeting.ID(),
				"error", err,
			)
		}
	}()
}
