package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddObsceneWord inserts a word into the blocklist, no-op when present.
func (p *Postgres) AddObsceneWord(ctx context.Context, word string) error {
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO obscene_words (word) VALUES ($1) ON CONFLICT (word) DO NOTHING`, word)
	if err != nil {
		return fmt.Errorf("insert obscene word: %w", err)
	}
	return nil
}

// RemoveObsceneWord deletes a word; removing an absent word succeeds.
func (p *Postgres) RemoveObsceneWord(ctx context.Context, word string) error {
	_, err := p.DB.ExecContext(ctx, `DELETE FROM obscene_words WHERE word=$1`, word)
	if err != nil {
		return fmt.Errorf("delete obscene word: %w", err)
	}
	return nil
}

// ListObsceneWords loads the full blocklist.
func (p *Postgres) ListObsceneWords(ctx context.Context) ([]string, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT word FROM obscene_words ORDER BY word`)
	if err != nil {
		return nil, fmt.Errorf("query obscene words: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	words := []string{}
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan obscene word: %w", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return words, nil
}

// GetAutoModerate reads the singleton toggle, defaulting to false when the
// row has never been written.
func (p *Postgres) GetAutoModerate(ctx context.Context) (bool, error) {
	var enabled bool
	err := p.DB.QueryRowContext(ctx,
		`SELECT auto_moderate FROM moderation_settings WHERE id=1`).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query auto moderate: %w", err)
	}
	return enabled, nil
}

// SetAutoModerate writes the singleton toggle.
func (p *Postgres) SetAutoModerate(ctx context.Context, enabled bool) error {
	_, err := p.DB.ExecContext(ctx, `INSERT INTO moderation_settings (id, auto_moderate)
        VALUES (1, $1) ON CONFLICT (id) DO UPDATE SET auto_moderate=EXCLUDED.auto_moderate`,
		enabled)
	if err != nil {
		return fmt.Errorf("upsert auto moderate: %w", err)
	}
	return nil
}
