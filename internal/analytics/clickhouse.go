package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/adserve-labs/adengine/internal/models"
	"github.com/adserve-labs/adengine/internal/observability"
)

// Service mirrors delivery events into the analytics store. Implementations
// must tolerate an unconfigured backend by returning ErrUnavailable; the
// serve path treats every mirror failure as non-fatal.
type Service interface {
	RecordImpression(ctx context.Context, e models.AdEvent) error
	RecordClick(ctx context.Context, e models.AdEvent) error
}

// ErrUnavailable is returned when the analytics DB is not configured.
var ErrUnavailable = fmt.Errorf("analytics unavailable")

// Analytics wraps a ClickHouse DB connection. The Postgres fact tables
// remain the source of truth; this mirror exists for ad-hoc queries and
// dashboards, so a lost row is logged, never propagated.
type Analytics struct {
	DB      *sql.DB
	Metrics observability.MetricsRegistry
}

// InitClickHouse connects to ClickHouse and ensures the events table exists.
func InitClickHouse(dsn string, metrics observability.MetricsRegistry) (*Analytics, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(25)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	create := `CREATE TABLE IF NOT EXISTS events (
       timestamp    DateTime,
       event_type   String,
       campaign_id  String,
       client_id    String,
       day          UInt32,
       cost         Float64
   ) ENGINE=MergeTree() ORDER BY (event_type, timestamp)`
	if _, err := db.ExecContext(context.Background(), create); err != nil {
		return nil, fmt.Errorf("clickhouse create table: %w", err)
	}

	zap.L().Info("Connected to ClickHouse")
	return &Analytics{DB: db, Metrics: metrics}, nil
}

func (a *Analytics) record(ctx context.Context, eventType string, e models.AdEvent) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	_, err := a.DB.ExecContext(ctx,
		`INSERT INTO events (timestamp, event_type, campaign_id, client_id, day, cost)
         VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now(), eventType, e.CampaignID.String(), e.ClientID.String(), e.Day, e.Cost)
	if err != nil {
		if a.Metrics != nil {
			a.Metrics.IncrementAnalyticsMirrorErrors()
		}
		return fmt.Errorf("clickhouse insert %s: %w", eventType, err)
	}
	return nil
}

// RecordImpression mirrors an impression fact.
func (a *Analytics) RecordImpression(ctx context.Context, e models.AdEvent) error {
	return a.record(ctx, "impression", e)
}

// RecordClick mirrors a click fact.
func (a *Analytics) RecordClick(ctx context.Context, e models.AdEvent) error {
	return a.record(ctx, "click", e)
}

// Close shuts down the ClickHouse connection.
func (a *Analytics) Close() {
	if a != nil && a.DB != nil {
		if err := a.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	}
}
