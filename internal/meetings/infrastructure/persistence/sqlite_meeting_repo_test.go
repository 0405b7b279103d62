package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"meetdesk/internal/meetings/domain"
	"meetdesk/internal/shared/infrastructure/migrations"
)

// setupMeetingTestDB creates an in-memory SQLite database with the schema applied.
func setupMeetingTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migrations.ApplySQLite(context.Background(), sqlDB))
	return sqlDB
}

func newTestMeeting(t *testing.T, day int) *domain.Meeting {
	t.Helper()
	m, err := domain.NewMeeting(
		time.Date(2025, 6, day, 0, 0, 0, 0, time.Local),
		"09:00", "10:00", "Planning", "ana cabrera, jaime barona", "logistics", "Room A", "agenda attached",
	)
	require.NoError(t, err)
	return m
}

func TestSQLiteMeetingRepository_SaveAndFindByID(t *testing.T) {
	repo := NewSQLiteMeetingRepository(setupMeetingTestDB(t))
	ctx := context.Background()

	meeting := newTestMeeting(t, 2)
	require.NoError(t, repo.Save(ctx, meeting))

	found, err := repo.FindByID(ctx, meeting.ID())
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, meeting.ID(), found.ID())
	assert.Equal(t, meeting.Date(), found.Date())
	assert.Equal(t, "09:00", found.StartTime())
	assert.Equal(t, "10:00", found.EndTime())
	assert.Equal(t, "Planning", found.Title())
	assert.Equal(t, "ana cabrera, jaime barona", found.Participants())
	assert.Equal(t, "logistics", found.Category())
	assert.Equal(t, "Room A", found.Location())
	assert.Equal(t, "agenda attached", found.Notes())
}

func TestSQLiteMeetingRepository_FindByID_NotFound(t *testing.T) {
	repo := NewSQLiteMeetingRepository(setupMeetingTestDB(t))

	found, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSQLiteMeetingRepository_SaveReplacesRow(t *testing.T) {
	repo := NewSQLiteMeetingRepository(setupMeetingTestDB(t))
	ctx := context.Background()

	meeting := newTestMeeting(t, 2)
	require.NoError(t, repo.Save(ctx, meeting))

	require.NoError(t, meeting.Replace(
		time.Date(2025, 6, 5, 0, 0, 0, 0, time.Local),
		"14:00", "", "Planning (moved)", "ana cabrera", "it", "Room B", "",
	))
	require.NoError(t, repo.Save(ctx, meeting))

	found, err := repo.FindByID(ctx, meeting.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Planning (moved)", found.Title())
	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.Local), found.Date())

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "save must replace, not duplicate")
}

func TestSQLiteMeetingRepository_FindByDate(t *testing.T) {
	repo := NewSQLiteMeetingRepository(setupMeetingTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestMeeting(t, 2)))
	require.NoError(t, repo.Save(ctx, newTestMeeting(t, 2)))
	require.NoError(t, repo.Save(ctx, newTestMeeting(t, 9)))

	onDate, err := repo.FindByDate(ctx, time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Len(t, onDate, 2)

	empty, err := repo.FindByDate(ctx, time.Date(2025, 6, 3, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteMeetingRepository_FindByDateRange(t *testing.T) {
	repo := NewSQLiteMeetingRepository(setupMeetingTestDB(t))
	ctx := context.Background()

	for _, day := range []int{2, 9, 16, 23} {
		require.NoError(t, repo.Save(ctx, newTestMeeting(t, day)))
	}

	ranged, err := repo.FindByDateRange(ctx,
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local),
		time.Date(2025, 6, 16, 0, 0, 0, 0, time.Local),
	)
	require.NoError(t, err)
	require.Len(t, ranged, 3)

	for i := 1; i < len(ranged); i++ {
		assert.False(t, ranged[i].Date().Before(ranged[i-1].Date()), "range results are date-ordered")
	}
}

func TestSQLiteMeetingRepository_Delete(t *testing.T) {
	repo := NewSQLiteMeetingRepository(setupMeetingTestDB(t))
	ctx := context.Background()

	meeting := newTestMeeting(t, 2)
	require.NoError(t, repo.Save(ctx, meeting))

	deleted, err := repo.Delete(ctx, meeting.ID())
	require.NoError(t, err)
	assert.True(t, deleted)

	found, err := repo.FindByID(ctx, meeting.ID())
	require.NoError(t, err)
	assert.Nil(t, found)

	deleted, err = repo.Delete(ctx, meeting.ID())
	require.NoError(t, err)
	assert.False(t, deleted, "second delete reports no row")
}
