package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/del-passero/victim-of-the-day-bot/internal/domain"
)

// CustomPhrases lists a chat's custom templates for one category, in index
// order as shown by /list_phrases.
func (r *SQLiteRepo) CustomPhrases(ctx context.Context, chatID int64, cat domain.Category) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT phrase FROM custom_phrases
		WHERE chat_id = ? AND category = ?
		ORDER BY position`, chatID, cat.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// AddCustomPhrase appends a template to the end of a category's list.
func (r *SQLiteRepo) AddCustomPhrase(ctx context.Context, chatID int64, cat domain.Category, phrase string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), -1) + 1 FROM custom_phrases
		WHERE chat_id = ? AND category = ?`, chatID, cat.String()).Scan(&next)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO custom_phrases (chat_id, category, position, phrase)
		VALUES (?, ?, ?, ?)`, chatID, cat.String(), next, phrase); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteCustomPhrase removes the phrase at idx and shifts later positions
// down by one, so indices stay dense. Returns false for a missing index.
func (r *SQLiteRepo) DeleteCustomPhrase(ctx context.Context, chatID int64, cat domain.Category, idx int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM custom_phrases
		WHERE chat_id = ? AND category = ? AND position = ?`,
		chatID, cat.String(), idx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, tx.Commit()
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE custom_phrases SET position = position - 1
		WHERE chat_id = ? AND category = ? AND position > ?`,
		chatID, cat.String(), idx); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// PhraseSource returns the configured template source for a category,
// defaulting to SourceAll when the chat never set one.
func (r *SQLiteRepo) PhraseSource(ctx context.Context, chatID int64, cat domain.Category) (domain.PhraseSource, error) {
	var src string
	err := r.db.QueryRowContext(ctx, `
		SELECT source FROM phrase_sources
		WHERE chat_id = ? AND category = ?`, chatID, cat.String()).Scan(&src)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SourceAll, nil
	}
	if err != nil {
		return domain.SourceAll, err
	}
	if s, ok := domain.ParsePhraseSource(src); ok {
		return s, nil
	}
	return domain.SourceAll, nil
}

func (r *SQLiteRepo) SetPhraseSource(ctx context.Context, chatID int64, cat domain.Category, src domain.PhraseSource) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO phrase_sources (chat_id, category, source)
		VALUES (?, ?, ?)
		ON CONFLICT(chat_id, category) DO UPDATE SET source = excluded.source`,
		chatID, cat.String(), string(src))
	return err
}
