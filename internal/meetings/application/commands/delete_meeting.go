package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"meetdesk/internal/meetings/domain"
)

// DeleteMeetingHandler removes a single meeting. Queued reminders referencing
// it stay queued; sibling occurrences of a series are untouched.
type DeleteMeetingHandler struct {
	meetingRepo domain.Repository
	logger      *slog.Logger
}

// NewDeleteMeetingHandler creates a new DeleteMeetingHandler.
func NewDeleteMeetingHandler(meetingRepo domain.Repository, logger *slog.Logger) *DeleteMeetingHandler {
	return &DeleteMeetingHandler{meetingRepo: meetingRepo, logger: logger}
}

// Handle deletes the meeting, returning ErrMeetingNotFound for unknown ids.
func (h *DeleteMeetingHandler) Handle(ctx context.Context, meetingID uuid.UUID) error {
	deleted, err := h.meetingRepo.Delete(ctx, meetingID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMeetingNotFound
	}

	h.logger.Info("meeting deleted", "meeting_id", meetingID)
	return nil
}
