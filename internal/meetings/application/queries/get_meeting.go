package queries

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"meetdesk/internal/meetings/domain"
)

// ErrMeetingNotFound is returned when the requested meeting does not exist.
var ErrMeetingNotFound = errors.New("meeting not found")

// GetMeetingHandler fetches a single meeting by id.
type GetMeetingHandler struct {
	meetingRepo domain.Repository
}

// NewGetMeetingHandler creates a new GetMeetingHandler.
func NewGetMeetingHandler(meetingRepo domain.Repository) *GetMeetingHandler {
	return &GetMeetingHandler{meetingRepo: meetingRepo}
}

// Handle returns the meeting, or ErrMeetingNotFound.
func (h *GetMeetingHandler) Handle(ctx context.Context, id uuid.UUID) (*MeetingDTO, error) {
	meeting, err := h.meetingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrMeetingNotFound
	}

	dto := toDTO(meeting)
	return &dto, nil
}
