package queries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"meetdesk/internal/meetings/domain"
)

func TestExportMeetings(t *testing.T) {
	repo := new(MockMeetingRepository)
	handler := NewExportMeetingsHandler(NewListMeetingsHandler(repo))

	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	repo.On("FindAll", mock.Anything).Return([]*domain.Meeting{
		testMeeting(t, "Standup", date),
		testMeeting(t, "Retro", date.AddDate(0, 0, 1)),
	}, nil)

	buf, err := handler.Handle(context.Background(), ListMeetingsQuery{})
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Meetings", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)

	title, err := f.GetCellValue("Meetings", "D2")
	require.NoError(t, err)
	assert.Equal(t, "Standup", title)

	secondDate, err := f.GetCellValue("Meetings", "A3")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-03", secondDate)

	footer, err := f.GetCellValue("Meetings", "A5")
	require.NoError(t, err)
	assert.Equal(t, "2 meetings exported", footer)
}

func TestExportMeetings_Empty(t *testing.T) {
	repo := new(MockMeetingRepository)
	handler := NewExportMeetingsHandler(NewListMeetingsHandler(repo))

	repo.On("FindAll", mock.Anything).Return([]*domain.Meeting{}, nil)

	buf, err := handler.Handle(context.Background(), ListMeetingsQuery{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	footer, err := f.GetCellValue("Meetings", "A3")
	require.NoError(t, err)
	assert.Equal(t, "0 meetings exported", footer)
}
