package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"meetdesk/internal/meetings/domain"
	sharedPersistence "meetdesk/internal/shared/infrastructure/persistence"
)

const dateLayout = "2006-01-02"

// SQLiteMeetingRepository implements domain.Repository using SQLite.
type SQLiteMeetingRepository struct {
	dbConn *sql.DB
}

// NewSQLiteMeetingRepository creates a new SQLite meeting repository.
func NewSQLiteMeetingRepository(dbConn *sql.DB) *SQLiteMeetingRepository {
	return &SQLiteMeetingRepository{dbConn: dbConn}
}

func (r *SQLiteMeetingRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.dbConn)
}

// Save persists a meeting, inserting or replacing the row.
func (r *SQLiteMeetingRepository) Save(ctx context.Context, meeting *domain.Meeting) error {
	query := `
		INSERT INTO meetings (
			id, meeting_date, start_time, end_time, title, participants,
			category, location, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			meeting_date = excluded.meeting_date,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			title = excluded.title,
			participants = excluded.participants,
			category = excluded.category,
			location = excluded.location,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	_, err := r.querier(ctx).ExecContext(ctx, query,
		meeting.ID().String(),
		meeting.Date().Format(dateLayout),
		meeting.StartTime(),
		meeting.EndTime(),
		meeting.Title(),
		meeting.Participants(),
		meeting.Category(),
		meeting.Location(),
		meeting.Notes(),
		meeting.CreatedAt().Format(time.RFC3339),
		meeting.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// FindByID retrieves a meeting by its ID. Returns (nil, nil) when absent.
func (r *SQLiteMeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = ?`

	row := r.querier(ctx).QueryRowContext(ctx, query, id.String())
	meeting, err := scanMeeting(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return meeting, nil
}

// FindAll retrieves every meeting ordered by date.
func (r *SQLiteMeetingRepository) FindAll(ctx context.Context) ([]*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings ORDER BY meeting_date, start_time`
	return r.selectMeetings(ctx, query)
}

// FindByDate retrieves all meetings on the given calendar date.
func (r *SQLiteMeetingRepository) FindByDate(ctx context.Context, date time.Time) ([]*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE meeting_date = ? ORDER BY start_time`
	return r.selectMeetings(ctx, query, date.Format(dateLayout))
}

// FindByDateRange retrieves all meetings between from and to, inclusive.
func (r *SQLiteMeetingRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE meeting_date BETWEEN ? AND ? ORDER BY meeting_date, start_time`
	return r.selectMeetings(ctx, query, from.Format(dateLayout), to.Format(dateLayout))
}

// Delete removes exactly one meeting row. Reminders are never touched.
func (r *SQLiteMeetingRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.querier(ctx).ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id.String())
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *SQLiteMeetingRepository) selectMeetings(ctx context.Context, query string, args ...any) ([]*domain.Meeting, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meetings := make([]*domain.Meeting, 0)
	for rows.Next() {
		meeting, err := scanMeeting(rows.Scan)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return meetings, nil
}

func scanMeeting(scan func(dest ...any) error) (*domain.Meeting, error) {
	var (
		idStr, dateStr, createdStr, updatedStr            string
		startTime, endTime, title, participants, category string
		location, notes                                   string
	)
	if err := scan(&idStr, &dateStr, &startTime, &endTime, &title, &participants, &category, &location, &notes, &createdStr, &updatedStr); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	date, err := time.ParseInLocation(dateLayout, dateStr, time.Local)
	if err != nil {
		return nil, err
	}
	createdAt, _ := time.Parse(time.RFC3339, createdStr)
	updatedAt, _ := time.Parse(time.RFC3339, updatedStr)

	return domain.RehydrateMeeting(id, date, startTime, endTime, title, participants, category, location, notes, createdAt, updatedAt), nil
}
