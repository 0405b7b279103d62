package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"meetdesk/internal/meetings/domain"
	sharedPersistence "meetdesk/internal/shared/infrastructure/persistence"
)

// PostgresMeetingRepository implements domain.Repository using PostgreSQL.
type PostgresMeetingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresMeetingRepository creates a new PostgreSQL meeting repository.
func NewPostgresMeetingRepository(pool *pgxpool.Pool) *PostgresMeetingRepository {
	return &PostgresMeetingRepository{pool: pool}
}

type meetingRow struct {
	ID           uuid.UUID `db:"id"`
	MeetingDate  time.Time `db:"meeting_date"`
	StartTime    string    `db:"start_time"`
	EndTime      string    `db:"end_time"`
	Title        string    `db:"title"`
	Participants string    `db:"participants"`
	Category     string    `db:"category"`
	Location     string    `db:"location"`
	Notes        string    `db:"notes"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

const meetingColumns = `id, meeting_date, start_time, end_time, title, participants, category, location, notes, created_at, updated_at`

// Save persists a meeting, inserting or replacing the row.
func (r *PostgresMeetingRepository) Save(ctx context.Context, meeting *domain.Meeting) error {
	query := `
		INSERT INTO meetings (
			id, meeting_date, start_time, end_time, title, participants,
			category, location, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			meeting_date = EXCLUDED.meeting_date,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			title = EXCLUDED.title,
			participants = EXCLUDED.participants,
			category = EXCLUDED.category,
			location = EXCLUDED.location,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, query,
		meeting.ID(),
		meeting.Date(),
		meeting.StartTime(),
		meeting.EndTime(),
		meeting.Title(),
		meeting.Participants(),
		meeting.Category(),
		meeting.Location(),
		meeting.Notes(),
		meeting.CreatedAt(),
		meeting.UpdatedAt(),
	)
	return err
}

// FindByID retrieves a meeting by its ID. Returns (nil, nil) when absent.
func (r *PostgresMeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`

	var row meetingRow
	exec := sharedPersistence.Executor(ctx, r.pool)
	if err := pgxscan.Get(ctx, exec, &row, query, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return rowToMeeting(row), nil
}

// FindAll retrieves every meeting ordered by date.
func (r *PostgresMeetingRepository) FindAll(ctx context.Context) ([]*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings ORDER BY meeting_date, start_time`
	return r.selectMeetings(ctx, query)
}

// FindByDate retrieves all meetings on the given calendar date.
func (r *PostgresMeetingRepository) FindByDate(ctx context.Context, date time.Time) ([]*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE meeting_date = $1 ORDER BY start_time`
	return r.selectMeetings(ctx, query, date)
}

// FindByDateRange retrieves all meetings between from and to, inclusive.
func (r *PostgresMeetingRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE meeting_date BETWEEN $1 AND $2 ORDER BY meeting_date, start_time`
	return r.selectMeetings(ctx, query, from, to)
}

// Delete removes exactly one meeting row. Reminders are never touched.
func (r *PostgresMeetingRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresMeetingRepository) selectMeetings(ctx context.Context, query string, args ...any) ([]*domain.Meeting, error) {
	var rows []meetingRow
	exec := sharedPersistence.Executor(ctx, r.pool)
	if err := pgxscan.Select(ctx, exec, &rows, query, args...); err != nil {
		return nil, err
	}

	meetings := make([]*domain.Meeting, 0, len(rows))
	for _, row := range rows {
		meetings = append(meetings, rowToMeeting(row))
	}
	return meetings, nil
}

func rowToMeeting(row meetingRow) *domain.Meeting {
	return domain.RehydrateMeeting(
		row.ID,
		row.MeetingDate,
		row.StartTime,
		row.EndTime,
		row.Title,
		row.Participants,
		row.Category,
		row.Location,
		row.Notes,
		row.CreatedAt,
		row.UpdatedAt,
	)
}
