// Package queries contains the meeting read-side use cases.
package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"meetdesk/internal/meetings/domain"
)

// MeetingDTO is a data transfer object for meetings.
type MeetingDTO struct {
	ID           uuid.UUID
	Date         time.Time
	StartTime    string
	EndTime      string
	Title        string
	Participants string
	Category     string
	Location     string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListMeetingsQuery contains the parameters for listing meetings. With a Date
// it lists one day; with From and To it lists an inclusive range; with
// neither it lists everything.
type ListMeetingsQuery struct {
	Date *time.Time
	From *time.Time
	To   *time.Time
}

// ListMeetingsHandler handles the ListMeetingsQuery.
type ListMeetingsHandler struct {
	meetingRepo domain.Repository
}

// NewListMeetingsHandler creates a new ListMeetingsHandler.
func NewListMeetingsHandler(meetingRepo domain.Repository) *ListMeetingsHandler {
	return &ListMeetingsHandler{meetingRepo: meetingRepo}
}

// Handle executes the ListMeetingsQuery.
func (h *ListMeetingsHandler) Handle(ctx context.Context, query ListMeetingsQuery) ([]MeetingDTO, error) {
	var meetings []*domain.Meeting
	var err error

	switch {
	case query.Date != nil:
		meetings, err = h.meetingRepo.FindByDate(ctx, *query.Date)
	case query.From != nil && query.To != nil:
		meetings, err = h.meetingRepo.FindByDateRange(ctx, *query.From, *query.To)
	default:
		meetings, err = h.meetingRepo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]MeetingDTO, 0, len(meetings))
	for _, m := range meetings {
		dtos = append(dtos, toDTO(m))
	}
	return dtos, nil
}

func toDTO(m *domain.Meeting) MeetingDTO {
	return MeetingDTO{
		ID:           m.ID(),
		Date:         m.Date(),
		StartTime:    m.StartTime(),
		EndTime:      m.EndTime(),
		Title:        m.Title(),
		Participants: m.Participants(),
		Category:     m.Category(),
		Location:     m.Location(),
		Notes:        m.Notes(),
		CreatedAt:    m.CreatedAt(),
		UpdatedAt:    m.UpdatedAt(),
	}
}
