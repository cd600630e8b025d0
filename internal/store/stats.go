package store

import (
	"context"

	"github.com/del-passero/victim-of-the-day-bot/internal/domain"
)

// IncrementHit adds one hit for the user in the chat's stat table. The row is
// created at zero on first hit; counts only ever grow.
func (r *SQLiteRepo) IncrementHit(ctx context.Context, chatID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stats (chat_id, user_id, hits) VALUES (?, ?, 1)
		ON CONFLICT(chat_id, user_id) DO UPDATE SET hits = hits + 1`,
		chatID, userID)
	return err
}

// Hits returns the chat's stat table, most-hit first.
func (r *SQLiteRepo) Hits(ctx context.Context, chatID int64) ([]domain.StatEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, hits FROM stats
		WHERE chat_id = ? ORDER BY hits DESC, user_id`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.StatEntry
	for rows.Next() {
		var e domain.StatEntry
		if err := rows.Scan(&e.UserID, &e.Hits); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
