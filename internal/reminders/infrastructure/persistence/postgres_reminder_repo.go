package persistence

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"meetdesk/internal/reminders/domain"
	sharedPersistence "meetdesk/internal/shared/infrastructure/persistence"
)

// PostgresReminderRepository implements domain.Repository using PostgreSQL.
type PostgresReminderRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReminderRepository creates a new PostgreSQL reminder repository.
func NewPostgresReminderRepository(pool *pgxpool.Pool) *PostgresReminderRepository {
	return &PostgresReminderRepository{pool: pool}
}

type reminderRow struct {
	ID          uuid.UUID  `db:"id"`
	MeetingRef  *uuid.UUID `db:"meeting_ref"`
	Recipient   string     `db:"recipient"`
	Subject     string     `db:"subject"`
	Body        string     `db:"body"`
	ScheduledAt time.Time  `db:"scheduled_at"`
	SentFlag    bool       `db:"sent_flag"`
	SentAt      *time.Time `db:"sent_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

const reminderColumns = `id, meeting_ref, recipient, subject, body, scheduled_at, sent_flag, sent_at, created_at`

// SaveBatch stores a batch of reminders, joining the ambient transaction when
// one is present.
func (r *PostgresReminderRepository) SaveBatch(ctx context.Context, reminders []*domain.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}

	query := `
		INSERT INTO reminders (
			id, meeting_ref, recipient, subject, body, scheduled_at,
			sent_flag, sent_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	for _, reminder := range reminders {
		_, err := exec.Exec(ctx, query,
			reminder.ID(),
			reminder.MeetingRef(),
			reminder.Recipient(),
			reminder.Subject(),
			reminder.Body(),
			reminder.ScheduledAt(),
			reminder.Sent(),
			reminder.SentAt(),
			reminder.CreatedAt(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindDue returns up to limit unsent reminders due at now, earliest first.
func (r *PostgresReminderRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE sent_flag = FALSE AND scheduled_at <= $1
		ORDER BY scheduled_at
		LIMIT $2
	`

	var rows []reminderRow
	exec := sharedPersistence.Executor(ctx, r.pool)
	if err := pgxscan.Select(ctx, exec, &rows, query, now, limit); err != nil {
		return nil, err
	}
	return rowsToReminders(rows), nil
}

// MarkSent flips sent_flag only if it is still false (compare-and-set).
func (r *PostgresReminderRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE reminders
		SET sent_flag = TRUE, sent_at = $2
		WHERE id = $1 AND sent_flag = FALSE
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	tag, err := exec.Exec(ctx, query, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountByMeeting returns the number of reminders referencing a meeting.
func (r *PostgresReminderRepository) CountByMeeting(ctx context.Context, meetingRef uuid.UUID) (int, error) {
	var count int
	exec := sharedPersistence.Executor(ctx, r.pool)
	err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM reminders WHERE meeting_ref = $1`, meetingRef).Scan(&count)
	return count, err
}

// FindByMeeting returns all reminders referencing a meeting, earliest first.
func (r *PostgresReminderRepository) FindByMeeting(ctx context.Context, meetingRef uuid.UUID) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE meeting_ref = $1 ORDER BY scheduled_at`

	var rows []reminderRow
	exec := sharedPersistence.Executor(ctx, r.pool)
	if err := pgxscan.Select(ctx, exec, &rows, query, meetingRef); err != nil {
		return nil, err
	}
	return rowsToReminders(rows), nil
}

func rowsToReminders(rows []reminderRow) []*domain.Reminder {
	reminders := make([]*domain.Reminder, 0, len(rows))
	for _, row := range rows {
		reminders = append(reminders, domain.RehydrateReminder(
			row.ID,
			row.MeetingRef,
			row.Recipient,
			row.Subject,
			row.Body,
			row.ScheduledAt,
			row.SentFlag,
			row.SentAt,
			row.CreatedAt,
			row.CreatedAt,
		))
	}
	return reminders
}
