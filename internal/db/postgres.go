package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Postgres wraps a postgres DB connection.
type Postgres struct {
	DB *sql.DB
}

// schemaSQL sets up the necessary tables if they don't exist.
const schemaSQL = `CREATE TABLE IF NOT EXISTS clients (
    id UUID PRIMARY KEY,
    login TEXT NOT NULL,
    age INT NOT NULL,
    location TEXT NOT NULL,
    gender TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS advertisers (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ml_scores (
    client_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
    advertiser_id UUID NOT NULL REFERENCES advertisers(id) ON DELETE CASCADE,
    score DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (client_id, advertiser_id)
);

CREATE TABLE IF NOT EXISTS campaigns (
    id UUID PRIMARY KEY,
    advertiser_id UUID NOT NULL REFERENCES advertisers(id) ON DELETE CASCADE,
    impressions_limit INT NOT NULL,
    clicks_limit INT NOT NULL,
    cost_per_impression DOUBLE PRECISION NOT NULL,
    cost_per_click DOUBLE PRECISION NOT NULL,
    ad_title TEXT NOT NULL,
    ad_text TEXT NOT NULL,
    start_date BIGINT NOT NULL,
    end_date BIGINT NOT NULL,
    target_gender TEXT,
    target_age_from INT,
    target_age_to INT,
    target_location TEXT,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS ad_views (
    campaign_id UUID NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
    client_id UUID NOT NULL,
    day BIGINT NOT NULL,
    cost DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (campaign_id, client_id)
);

CREATE TABLE IF NOT EXISTS ad_clicks (
    campaign_id UUID NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
    client_id UUID NOT NULL,
    day BIGINT NOT NULL,
    cost DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (campaign_id, client_id)
);

CREATE TABLE IF NOT EXISTS obscene_words (
    word TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS moderation_settings (
    id INT PRIMARY KEY CHECK (id = 1),
    auto_moderate BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS sim_clock (
    id INT PRIMARY KEY CHECK (id = 1),
    day BIGINT NOT NULL
);

-- Performance indexes for the serve and stats paths
CREATE INDEX IF NOT EXISTS idx_campaigns_advertiser_id ON campaigns (advertiser_id);
CREATE INDEX IF NOT EXISTS idx_campaigns_window ON campaigns (start_date, end_date);
CREATE INDEX IF NOT EXISTS idx_ad_views_campaign_day ON ad_views (campaign_id, day);
CREATE INDEX IF NOT EXISTS idx_ad_clicks_campaign_day ON ad_clicks (campaign_id, day);
`

// InitPostgres connects to Postgres with connection pooling configuration.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	// Register the otelsql wrapper for postgres
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns))
	return p, nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

// ensureSchema creates the required tables if they do not exist.
func (p *Postgres) ensureSchema() error {
	ctx := context.Background()
	if _, err := p.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
