package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedDomain "meetdesk/internal/shared/domain"
)

var (
	ErrMeetingEmptyTitle = errors.New("meeting title cannot be empty")
	ErrMeetingZeroDate   = errors.New("meeting date is required")
)

// DefaultCategory is assigned when a meeting is created without a category.
const DefaultCategory = "hse"

// Categories is the enumerated set of labels that get a visual treatment in
// the calendar. Free text outside this set is tolerated.
var Categories = []string{
	"accounting",
	"logistics",
	"sales",
	"production",
	"hr",
	"hse",
	"it",
	"management",
	"quality",
	"supervision",
}

// Meeting is a single scheduled event. Occurrences generated from a
// recurrence selection are independent meetings with no back-reference to
// their series.
type Meeting struct {
	sharedDomain.BaseEntity
	date         time.Time
	startTime    string
	endTime      string
	title        string
	participants string
	category     string
	location     string
	notes        string
}

// NewMeeting creates a new meeting. The date is normalized to midnight in its
// location; an empty category receives DefaultCategory.
func NewMeeting(date time.Time, startTime, endTime, title, participants, category, location, notes string) (*Meeting, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrMeetingEmptyTitle
	}
	if date.IsZero() {
		return nil, ErrMeetingZeroDate
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}

	return &Meeting{
		BaseEntity:   sharedDomain.NewBaseEntity(),
		date:         time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		startTime:    startTime,
		endTime:      endTime,
		title:        title,
		participants: participants,
		category:     category,
		location:     location,
		notes:        notes,
	}, nil
}

// Getters
func (m *Meeting) Date() time.Time      { return m.date }
func (m *Meeting) StartTime() string    { return m.startTime }
func (m *Meeting) EndTime() string      { return m.endTime }
func (m *Meeting) Title() string        { return m.title }
func (m *Meeting) Participants() string { return m.participants }
func (m *Meeting) Category() string     { return m.category }
func (m *Meeting) Location() string     { return m.location }
func (m *Meeting) Notes() string        { return m.notes }

// Replace overwrites all mutable fields at once. Updates are full
// replacements; there are no partial-field semantics.
func (m *Meeting) Replace(date time.Time, startTime, endTime, title, participants, category, location, notes string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrMeetingEmptyTitle
	}
	if date.IsZero() {
		return ErrMeetingZeroDate
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}

	m.date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	m.startTime = startTime
	m.endTime = endTime
	m.title = title
	m.participants = participants
	m.category = category
	m.location = location
	m.notes = notes
	m.Touch()
	return nil
}

// RehydrateMeeting recreates a meeting from persisted state.
func RehydrateMeeting(
	id uuid.UUID,
	date time.Time,
	startTime, endTime, title, participants, category, location, notes string,
	createdAt, updatedAt time.Time,
) *Meeting {
	return &Meeting{
		BaseEntity:   sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		date:         date,
		startTime:    startTime,
		endTime:      endTime,
		title:        title,
		participants: participants,
		category:     category,
		location:     location,
		notes:        notes,
	}
}
