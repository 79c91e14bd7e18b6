package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/adserve-labs/adengine/internal/models"
)

// ProfileStore is the slice of the repository the serve path needs.
type ProfileStore interface {
	GetClient(ctx context.Context, id uuid.UUID) (models.Client, error)
	GetAdvertiser(ctx context.Context, id uuid.UUID) (models.Advertiser, error)
	GetMLScore(ctx context.Context, clientID, advertiserID uuid.UUID) (float64, error)
}

// CampaignStore is the canonical campaign repository.
type CampaignStore interface {
	InsertCampaign(ctx context.Context, c models.Campaign) error
	GetCampaign(ctx context.Context, advertiserID, campaignID uuid.UUID) (models.Campaign, error)
	UpdateCampaign(ctx context.Context, c models.Campaign) error
	DeleteCampaign(ctx context.Context, advertiserID, campaignID uuid.UUID) error
	ListCampaigns(ctx context.Context, advertiserID uuid.UUID, page, size int) (int, []models.Campaign, error)
	ListActiveCampaigns(ctx context.Context, day uint32) ([]models.Campaign, error)
	CampaignExists(ctx context.Context, campaignID uuid.UUID) (bool, error)
}

// EventStore owns the append-only view and click fact rows.
type EventStore interface {
	InsertView(ctx context.Context, e models.AdEvent) error
	InsertClick(ctx context.Context, e models.AdEvent) error
	ViewClients(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error)
	ClickClients(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error)
}

// ActiveCache is the hot projection of active campaigns.
type ActiveCache interface {
	Put(ctx context.Context, c models.Campaign) error
	Get(ctx context.Context, id uuid.UUID) (models.ActiveCampaign, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ScanAll(ctx context.Context) ([]models.ActiveCampaign, error)
	AddView(ctx context.Context, campaignID, clientID uuid.UUID) error
	AddClick(ctx context.Context, campaignID, clientID uuid.UUID) error
	Reconcile(ctx context.Context, campaigns []models.ActiveCampaign) error
}

// Clock exposes the current simulated day.
type Clock interface {
	Now() uint32
}
