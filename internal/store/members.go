package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/del-passero/victim-of-the-day-bot/internal/domain"
)

// TouchMember records a member as seen active in a chat, refreshing their
// identity fields and last-seen timestamp.
func (r *SQLiteRepo) TouchMember(ctx context.Context, chatID int64, m domain.Member) error {
	seen := m.LastSeen
	if seen.IsZero() {
		seen = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO members (chat_id, user_id, first_name, username, is_bot, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(chat_id, user_id) DO UPDATE SET
			first_name   = excluded.first_name,
			username     = excluded.username,
			is_bot       = excluded.is_bot,
			last_seen_at = excluded.last_seen_at`,
		chatID, m.ID, m.FirstName, m.Username, boolToInt(m.IsBot), seen.UTC().Unix(),
	)
	return err
}

func scanMember(row chatRow) (*domain.Member, error) {
	var (
		m      domain.Member
		isBot  int
		seenAt int64
	)
	if err := row.Scan(&m.ID, &m.FirstName, &m.Username, &isBot, &seenAt); err != nil {
		return nil, err
	}
	m.IsBot = isBot != 0
	m.LastSeen = time.Unix(seenAt, 0).UTC()
	return &m, nil
}

// Members lists every known member of a chat in first-seen order.
func (r *SQLiteRepo) Members(ctx context.Context, chatID int64) ([]domain.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, first_name, username, is_bot, last_seen_at
		FROM members WHERE chat_id = ? ORDER BY rowid`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *m)
	}
	return res, rows.Err()
}

// Member returns one known member, or domain.ErrUnknownUser.
func (r *SQLiteRepo) Member(ctx context.Context, chatID, userID int64) (*domain.Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, first_name, username, is_bot, last_seen_at
		FROM members WHERE chat_id = ? AND user_id = ?`, chatID, userID)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// MemberByUsername resolves an @username against the stored member records.
// The lookup is case-insensitive, matching Telegram's username semantics.
func (r *SQLiteRepo) MemberByUsername(ctx context.Context, chatID int64, username string) (*domain.Member, error) {
	username = strings.TrimPrefix(strings.ToLower(username), "@")
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, first_name, username, is_bot, last_seen_at
		FROM members WHERE chat_id = ? AND LOWER(username) = ?`, chatID, username)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// --- set-like tables: exclusions and trusted pickers ---

func (r *SQLiteRepo) listSet(ctx context.Context, table string, chatID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM `+table+` WHERE chat_id = ? ORDER BY rowid`, chatID)
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

func (r *SQLiteRepo) addToSet(ctx context.Context, table string, chatID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+table+` (chat_id, user_id) VALUES (?, ?)`, chatID, userID)
	return err
}

func (r *SQLiteRepo) removeFromSet(ctx context.Context, table string, chatID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE chat_id = ? AND user_id = ?`, chatID, userID)
	return err
}

func (r *SQLiteRepo) Excluded(ctx context.Context, chatID int64) ([]int64, error) {
	return r.listSet(ctx, "exclusions", chatID)
}

func (r *SQLiteRepo) AddExcluded(ctx context.Context, chatID, userID int64) error {
	return r.addToSet(ctx, "exclusions", chatID, userID)
}

func (r *SQLiteRepo) RemoveExcluded(ctx context.Context, chatID, userID int64) error {
	return r.removeFromSet(ctx, "exclusions", chatID, userID)
}

func (r *SQLiteRepo) TrustedPickers(ctx context.Context, chatID int64) ([]int64, error) {
	return r.listSet(ctx, "trusted_pickers", chatID)
}

func (r *SQLiteRepo) AddTrustedPicker(ctx context.Context, chatID, userID int64) error {
	return r.addToSet(ctx, "trusted_pickers", chatID, userID)
}

func (r *SQLiteRepo) RemoveTrustedPicker(ctx context.Context, chatID, userID int64) error {
	return r.removeFromSet(ctx, "trusted_pickers", chatID, userID)
}
