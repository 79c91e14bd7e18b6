package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/adserve-labs/adengine/internal/models"
)

const campaignColumns = `id, advertiser_id, impressions_limit, clicks_limit,
    cost_per_impression, cost_per_click, ad_title, ad_text, start_date, end_date,
    target_gender, target_age_from, target_age_to, target_location, created_at`

func scanCampaign(row interface{ Scan(...any) error }) (models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(&c.ID, &c.AdvertiserID, &c.ImpressionsLimit, &c.ClicksLimit,
		&c.CostPerImpression, &c.CostPerClick, &c.AdTitle, &c.AdText,
		&c.StartDate, &c.EndDate,
		&c.Targeting.Gender, &c.Targeting.AgeFrom, &c.Targeting.AgeTo, &c.Targeting.Location,
		&c.CreatedAt)
	return c, err
}

// InsertCampaign stores a new campaign row.
func (p *Postgres) InsertCampaign(ctx context.Context, c models.Campaign) error {
	_, err := p.DB.ExecContext(ctx, `INSERT INTO campaigns (`+campaignColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		c.ID, c.AdvertiserID, c.ImpressionsLimit, c.ClicksLimit,
		c.CostPerImpression, c.CostPerClick, c.AdTitle, c.AdText,
		c.StartDate, c.EndDate,
		c.Targeting.Gender, c.Targeting.AgeFrom, c.Targeting.AgeTo, c.Targeting.Location,
		c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// GetCampaign fetches one campaign owned by the given advertiser.
func (p *Postgres) GetCampaign(ctx context.Context, advertiserID, campaignID uuid.UUID) (models.Campaign, error) {
	row := p.DB.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id=$1 AND advertiser_id=$2`,
		campaignID, advertiserID)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Campaign{}, models.ErrNotFound
	}
	if err != nil {
		return models.Campaign{}, fmt.Errorf("query campaign: %w", err)
	}
	return c, nil
}

// UpdateCampaign overwrites the mutable row for a campaign owned by the
// given advertiser. A zero-row update means the campaign does not exist
// under that advertiser.
func (p *Postgres) UpdateCampaign(ctx context.Context, c models.Campaign) error {
	res, err := p.DB.ExecContext(ctx, `UPDATE campaigns SET
        impressions_limit=$3, clicks_limit=$4,
        cost_per_impression=$5, cost_per_click=$6,
        ad_title=$7, ad_text=$8, start_date=$9, end_date=$10,
        target_gender=$11, target_age_from=$12, target_age_to=$13, target_location=$14
        WHERE id=$1 AND advertiser_id=$2`,
		c.ID, c.AdvertiserID, c.ImpressionsLimit, c.ClicksLimit,
		c.CostPerImpression, c.CostPerClick, c.AdTitle, c.AdText,
		c.StartDate, c.EndDate,
		c.Targeting.Gender, c.Targeting.AgeFrom, c.Targeting.AgeTo, c.Targeting.Location)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update campaign rows: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteCampaign removes a campaign and, via cascade, its fact rows.
func (p *Postgres) DeleteCampaign(ctx context.Context, advertiserID, campaignID uuid.UUID) error {
	res, err := p.DB.ExecContext(ctx,
		`DELETE FROM campaigns WHERE id=$1 AND advertiser_id=$2`, campaignID, advertiserID)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete campaign rows: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListCampaigns returns one page of an advertiser's campaigns in creation
// order, plus the total count across all pages. A zero page size yields an
// empty page while still reporting the total.
func (p *Postgres) ListCampaigns(ctx context.Context, advertiserID uuid.UUID, page, size int) (int, []models.Campaign, error) {
	var total int
	if err := p.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM campaigns WHERE advertiser_id=$1`, advertiserID).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("count campaigns: %w", err)
	}
	if size <= 0 || page <= 0 {
		return total, []models.Campaign{}, nil
	}

	rows, err := p.DB.QueryContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE advertiser_id=$1
         ORDER BY created_at, id LIMIT $2 OFFSET $3`,
		advertiserID, size, (page-1)*size)
	if err != nil {
		return 0, nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	campaigns := []models.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return 0, nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("rows error: %w", err)
	}
	return total, campaigns, nil
}

// ListActiveCampaigns returns every campaign whose window contains day.
// Used to rebuild the hot cache on startup and on clock advances.
func (p *Postgres) ListActiveCampaigns(ctx context.Context, day uint32) ([]models.Campaign, error) {
	rows, err := p.DB.QueryContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE start_date <= $1 AND end_date >= $1`,
		day)
	if err != nil {
		return nil, fmt.Errorf("query active campaigns: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var campaigns []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return campaigns, nil
}

// CampaignIDsByAdvertiser lists the ids of all campaigns an advertiser owns.
func (p *Postgres) CampaignIDsByAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := p.DB.QueryContext(ctx,
		`SELECT id FROM campaigns WHERE advertiser_id=$1 ORDER BY created_at, id`, advertiserID)
	if err != nil {
		return nil, fmt.Errorf("query campaign ids: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan campaign id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ids, nil
}

// CampaignExists reports whether any advertiser owns the campaign.
func (p *Postgres) CampaignExists(ctx context.Context, campaignID uuid.UUID) (bool, error) {
	var exists bool
	err := p.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM campaigns WHERE id=$1)`, campaignID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query campaign exists: %w", err)
	}
	return exists, nil
}
