package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"meetdesk/internal/reminders/domain"
	sharedPersistence "meetdesk/internal/shared/infrastructure/persistence"
)

// SQLiteReminderRepository implements domain.Repository using SQLite.
type SQLiteReminderRepository struct {
	dbConn *sql.DB
}

// NewSQLiteReminderRepository creates a new SQLite reminder repository.
func NewSQLiteReminderRepository(dbConn *sql.DB) *SQLiteReminderRepository {
	return &SQLiteReminderRepository{dbConn: dbConn}
}

func (r *SQLiteReminderRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.dbConn)
}

// SaveBatch stores a batch of reminders, joining the ambient transaction when
// one is present.
func (r *SQLiteReminderRepository) SaveBatch(ctx context.Context, reminders []*domain.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}

	query := `
		INSERT INTO reminders (
			id, meeting_ref, recipient, subject, body, scheduled_at,
			sent_flag, sent_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	q := r.querier(ctx)
	for _, reminder := range reminders {
		var meetingRef sql.NullString
		if ref := reminder.MeetingRef(); ref != nil {
			meetingRef = sql.NullString{String: ref.String(), Valid: true}
		}
		var sentAt sql.NullString
		if at := reminder.SentAt(); at != nil {
			sentAt = sql.NullString{String: formatTimestamp(*at), Valid: true}
		}

		_, err := q.ExecContext(ctx, query,
			reminder.ID().String(),
			meetingRef,
			reminder.Recipient(),
			reminder.Subject(),
			reminder.Body(),
			formatTimestamp(reminder.ScheduledAt()),
			boolToInt64(reminder.Sent()),
			sentAt,
			formatTimestamp(reminder.CreatedAt()),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindDue returns up to limit unsent reminders due at now, earliest first.
func (r *SQLiteReminderRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	query := `
		SELECT id, meeting_ref, recipient, subject, body, scheduled_at, sent_flag, sent_at, created_at
		FROM reminders
		WHERE sent_flag = 0 AND scheduled_at <= ?
		ORDER BY scheduled_at
		LIMIT ?
	`
	return r.selectReminders(ctx, query, formatTimestamp(now), limit)
}

// MarkSent flips sent_flag only if it is still unset (compare-and-set).
func (r *SQLiteReminderRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE reminders
		SET sent_flag = 1, sent_at = ?
		WHERE id = ? AND sent_flag = 0
	`

	result, err := r.querier(ctx).ExecContext(ctx, query, formatTimestamp(at), id.String())
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CountByMeeting returns the number of reminders referencing a meeting.
func (r *SQLiteReminderRepository) CountByMeeting(ctx context.Context, meetingRef uuid.UUID) (int, error) {
	var count int
	err := r.querier(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reminders WHERE meeting_ref = ?`, meetingRef.String(),
	).Scan(&count)
	return count, err
}

// FindByMeeting returns all reminders referencing a meeting, earliest first.
func (r *SQLiteReminderRepository) FindByMeeting(ctx context.Context, meetingRef uuid.UUID) ([]*domain.Reminder, error) {
	query := `
		SELECT id, meeting_ref, recipient, subject, body, scheduled_at, sent_flag, sent_at, created_at
		FROM reminders
		WHERE meeting_ref = ?
		ORDER BY scheduled_at
	`
	return r.selectReminders(ctx, query, meetingRef.String())
}

func (r *SQLiteReminderRepository) selectReminders(ctx context.Context, query string, args ...any) ([]*domain.Reminder, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]*domain.Reminder, 0)
	for rows.Next() {
		reminder, err := scanReminder(rows.Scan)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return reminders, nil
}

func scanReminder(scan func(dest ...any) error) (*domain.Reminder, error) {
	var (
		idStr, recipient, subject, body, scheduledStr, createdStr string
		meetingRefStr, sentAtStr                                  sql.NullString
		sentFlag                                                  int64
	)
	if err := scan(&idStr, &meetingRefStr, &recipient, &subject, &body, &scheduledStr, &sentFlag, &sentAtStr, &createdStr); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}

	var meetingRef *uuid.UUID
	if meetingRefStr.Valid {
		ref, err := uuid.Parse(meetingRefStr.String)
		if err != nil {
			return nil, err
		}
		meetingRef = &ref
	}

	scheduledAt, err := time.Parse(time.RFC3339, scheduledStr)
	if err != nil {
		return nil, err
	}

	var sentAt *time.Time
	if sentAtStr.Valid {
		t, err := time.Parse(time.RFC3339, sentAtStr.String)
		if err != nil {
			return nil, err
		}
		sentAt = &t
	}

	createdAt, _ := time.Parse(time.RFC3339, createdStr)

	return domain.RehydrateReminder(id, meetingRef, recipient, subject, body, scheduledAt, sentFlag != 0, sentAt, createdAt, createdAt), nil
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// formatTimestamp normalizes to UTC before formatting so stored RFC3339
// strings order lexicographically by instant regardless of the writer's
// offset. FindDue relies on this for its scheduled_at comparison.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
