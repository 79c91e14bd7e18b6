package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/adserve-labs/adengine/internal/models"
)

// foreignKeyViolation is the Postgres error code raised when an insert
// references a missing row.
const foreignKeyViolation = "23503"

// UpsertClients persists a batch of client profiles. The upsert is keyed on
// id; duplicate ids inside one batch collapse to the last writer.
func (p *Postgres) UpsertClients(ctx context.Context, clients []models.Client) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert clients: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO clients (id, login, age, location, gender)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (id) DO UPDATE SET login=EXCLUDED.login, age=EXCLUDED.age,
            location=EXCLUDED.location, gender=EXCLUDED.gender`)
	if err != nil {
		return fmt.Errorf("prepare upsert client: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, c := range clients {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Login, c.Age, c.Location, c.Gender); err != nil {
			return fmt.Errorf("upsert client %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert clients: %w", err)
	}
	return nil
}

// GetClient fetches a client profile by id.
func (p *Postgres) GetClient(ctx context.Context, id uuid.UUID) (models.Client, error) {
	var c models.Client
	err := p.DB.QueryRowContext(ctx,
		`SELECT id, login, age, location, gender FROM clients WHERE id=$1`, id).
		Scan(&c.ID, &c.Login, &c.Age, &c.Location, &c.Gender)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Client{}, models.ErrNotFound
	}
	if err != nil {
		return models.Client{}, fmt.Errorf("query client: %w", err)
	}
	return c, nil
}

// UpsertAdvertisers persists a batch of advertiser profiles.
func (p *Postgres) UpsertAdvertisers(ctx context.Context, advertisers []models.Advertiser) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert advertisers: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO advertisers (id, name) VALUES ($1,$2)
        ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name`)
	if err != nil {
		return fmt.Errorf("prepare upsert advertiser: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, a := range advertisers {
		if _, err := stmt.ExecContext(ctx, a.ID, a.Name); err != nil {
			return fmt.Errorf("upsert advertiser %s: %w", a.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert advertisers: %w", err)
	}
	return nil
}

// GetAdvertiser fetches an advertiser by id.
func (p *Postgres) GetAdvertiser(ctx context.Context, id uuid.UUID) (models.Advertiser, error) {
	var a models.Advertiser
	err := p.DB.QueryRowContext(ctx, `SELECT id, name FROM advertisers WHERE id=$1`, id).
		Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Advertiser{}, models.ErrNotFound
	}
	if err != nil {
		return models.Advertiser{}, fmt.Errorf("query advertiser: %w", err)
	}
	return a, nil
}

// SetMLScore upserts the relevance score for a (client, advertiser) pair.
// A missing client or advertiser surfaces as ErrNotFound.
func (p *Postgres) SetMLScore(ctx context.Context, s models.MLScore) error {
	_, err := p.DB.ExecContext(ctx, `INSERT INTO ml_scores (client_id, advertiser_id, score)
        VALUES ($1,$2,$3)
        ON CONFLICT (client_id, advertiser_id) DO UPDATE SET score=EXCLUDED.score`,
		s.ClientID, s.AdvertiserID, s.Score)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return models.ErrNotFound
		}
		return fmt.Errorf("upsert ml score: %w", err)
	}
	return nil
}

// GetMLScore returns the stored score, or 0 when the pair is absent. The
// zero default is the selector's contract, not an error.
func (p *Postgres) GetMLScore(ctx context.Context, clientID, advertiserID uuid.UUID) (float64, error) {
	var score float64
	err := p.DB.QueryRowContext(ctx,
		`SELECT score FROM ml_scores WHERE client_id=$1 AND advertiser_id=$2`,
		clientID, advertiserID).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query ml score: %w", err)
	}
	return score, nil
}
