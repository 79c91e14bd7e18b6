package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/adserve-labs/adengine/internal/models"
)

// InsertView records an impression fact. The (campaign, client) primary
// key makes repeats a no-op, so replays never double-count.
func (p *Postgres) InsertView(ctx context.Context, e models.AdEvent) error {
	_, err := p.DB.ExecContext(ctx, `INSERT INTO ad_views (campaign_id, client_id, day, cost)
        VALUES ($1,$2,$3,$4) ON CONFLICT (campaign_id, client_id) DO NOTHING`,
		e.CampaignID, e.ClientID, e.Day, e.Cost)
	if err != nil {
		return fmt.Errorf("insert view: %w", err)
	}
	return nil
}

// InsertClick records a click fact, idempotent on (campaign, client).
func (p *Postgres) InsertClick(ctx context.Context, e models.AdEvent) error {
	_, err := p.DB.ExecContext(ctx, `INSERT INTO ad_clicks (campaign_id, client_id, day, cost)
        VALUES ($1,$2,$3,$4) ON CONFLICT (campaign_id, client_id) DO NOTHING`,
		e.CampaignID, e.ClientID, e.Day, e.Cost)
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

// DayBucket is one day's worth of events for a set of campaigns, already
// grouped by the database.
type DayBucket struct {
	Day   uint32
	Count int
	Spent float64
}

func (p *Postgres) dayBuckets(ctx context.Context, table string, campaignIDs []uuid.UUID) ([]DayBucket, error) {
	if len(campaignIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(campaignIDs))
	for i, id := range campaignIDs {
		ids[i] = id.String()
	}
	rows, err := p.DB.QueryContext(ctx,
		`SELECT day, COUNT(*), COALESCE(SUM(cost), 0) FROM `+table+`
         WHERE campaign_id = ANY($1) GROUP BY day ORDER BY day`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query %s buckets: %w", table, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var buckets []DayBucket
	for rows.Next() {
		var b DayBucket
		if err := rows.Scan(&b.Day, &b.Count, &b.Spent); err != nil {
			return nil, fmt.Errorf("scan %s bucket: %w", table, err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return buckets, nil
}

// ViewBuckets returns per-day impression counts and spend for the
// campaigns, ordered by day ascending.
func (p *Postgres) ViewBuckets(ctx context.Context, campaignIDs []uuid.UUID) ([]DayBucket, error) {
	return p.dayBuckets(ctx, "ad_views", campaignIDs)
}

// ClickBuckets returns per-day click counts and spend for the campaigns,
// ordered by day ascending.
func (p *Postgres) ClickBuckets(ctx context.Context, campaignIDs []uuid.UUID) ([]DayBucket, error) {
	return p.dayBuckets(ctx, "ad_clicks", campaignIDs)
}

func (p *Postgres) clientSet(ctx context.Context, table string, campaignID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := p.DB.QueryContext(ctx,
		`SELECT client_id FROM `+table+` WHERE campaign_id=$1`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("query %s clients: %w", table, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s client: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ids, nil
}

// ViewClients lists every client that received an impression from the
// campaign. Feeds cache reconciliation after a clock advance.
func (p *Postgres) ViewClients(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error) {
	return p.clientSet(ctx, "ad_views", campaignID)
}

// ClickClients lists every client that clicked the campaign.
func (p *Postgres) ClickClients(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error) {
	return p.clientSet(ctx, "ad_clicks", campaignID)
}
