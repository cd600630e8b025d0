package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/del-passero/victim-of-the-day-bot/internal/domain"
)

const chatColumns = `chat_id, created_at, daily_limit, last_run_date, last_run_at,
	runs_today, autorun_days, bias_mode, owner_bias,
	reminder_enabled, reminder_minute, reminder_skip_weekends,
	reminder_suspended_until, reminder_last_date`

type chatRow interface {
	Scan(dest ...any) error
}

func scanChat(row chatRow) (*domain.ChatSettings, error) {
	var (
		c         domain.ChatSettings
		createdAt int64
		lastRunAt sql.NullInt64
		biasMode  string
		enabled   int
		skipWknd  int
	)
	if err := row.Scan(
		&c.ChatID, &createdAt, &c.DailyLimit, &c.LastRunDate, &lastRunAt,
		&c.RunsToday, &c.AutorunDays, &biasMode, &c.OwnerBias,
		&enabled, &c.Reminder.MinuteOfDay, &skipWknd,
		&c.Reminder.SuspendedUntil, &c.Reminder.LastSentDate,
	); err != nil {
		return nil, err
	}
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	c.LastRunAt = fromNullInt64(lastRunAt)
	c.BiasMode = domain.BiasMode(biasMode)
	c.Reminder.Enabled = enabled != 0
	c.Reminder.SkipWeekends = skipWknd != 0
	return &c, nil
}

// GetChat returns the chat's settings, or the default record when the chat
// has no row yet. Rows appear lazily on the first UpdateChat.
func (r *SQLiteRepo) GetChat(ctx context.Context, chatID int64) (*domain.ChatSettings, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE chat_id = ?`, chatID)
	c, err := scanChat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultChatSettings(chatID, time.Now().UTC()), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateChat performs a transactional read-modify-write of one chat's record.
// The row is created with defaults first if absent, so fn always sees a full
// record. An error from fn aborts the transaction and is returned unchanged.
func (r *SQLiteRepo) UpdateChat(ctx context.Context, chatID int64, fn func(*domain.ChatSettings) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO chats (chat_id, created_at, reminder_minute)
		 VALUES (?, ?, ?)`,
		chatID, time.Now().UTC().Unix(), domain.DefaultReminderMinute,
	); err != nil {
		return err
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE chat_id = ?`, chatID)
	c, err := scanChat(row)
	if err != nil {
		return err
	}

	if err := fn(c); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE chats SET
			daily_limit = ?, last_run_date = ?, last_run_at = ?, runs_today = ?,
			autorun_days = ?, bias_mode = ?, owner_bias = ?,
			reminder_enabled = ?, reminder_minute = ?, reminder_skip_weekends = ?,
			reminder_suspended_until = ?, reminder_last_date = ?
		WHERE chat_id = ?`,
		c.DailyLimit, c.LastRunDate, toNullInt64(c.LastRunAt), c.RunsToday,
		c.AutorunDays, string(c.BiasMode), c.OwnerBias,
		boolToInt(c.Reminder.Enabled), c.Reminder.MinuteOfDay, boolToInt(c.Reminder.SkipWeekends),
		c.Reminder.SuspendedUntil, c.Reminder.LastSentDate,
		chatID,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// ListChatIDs returns every chat that has a settings row, oldest first.
func (r *SQLiteRepo) ListChatIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT chat_id FROM chats ORDER BY created_at, chat_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
