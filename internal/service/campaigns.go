package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adserve-labs/adengine/internal/blob"
	"github.com/adserve-labs/adengine/internal/models"
	"github.com/adserve-labs/adengine/internal/moderation"
	"github.com/adserve-labs/adengine/internal/textgen"
)

// Text generation modes.
const (
	GenerateTitle = "TITLE"
	GenerateText  = "TEXT"
	GenerateAll   = "ALL"
)

// GeneratePrompts carries the per-mode system prompts from configuration.
type GeneratePrompts struct {
	Title string
	Text  string
}

// CampaignLifecycle orchestrates campaign CRUD: validation, the optional
// moderation gate, persistence, and keeping the hot cache in sync with the
// campaign's activity window.
type CampaignLifecycle struct {
	profiles   ProfileStore
	store      CampaignStore
	events     EventStore
	cache      ActiveCache
	moderation *moderation.Service
	generator  textgen.Generator
	prompts    GeneratePrompts
	images     blob.Store
	clock      Clock
}

// NewCampaignLifecycle wires the lifecycle. generator and images may be nil
// when the corresponding endpoints are disabled.
func NewCampaignLifecycle(profiles ProfileStore, store CampaignStore, events EventStore,
	cache ActiveCache, mod *moderation.Service, generator textgen.Generator,
	prompts GeneratePrompts, images blob.Store, clock Clock) *CampaignLifecycle {
	return &CampaignLifecycle{
		profiles:   profiles,
		store:      store,
		events:     events,
		cache:      cache,
		moderation: mod,
		generator:  generator,
		prompts:    prompts,
		images:     images,
		clock:      clock,
	}
}

// moderate rejects the creatives when the auto-moderate toggle is on.
func (l *CampaignLifecycle) moderate(ctx context.Context, c models.Campaign) error {
	enabled, err := l.moderation.AutoModerate(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}
	return l.moderation.Check(ctx, c.AdTitle, c.AdText)
}

// Create validates and persists a new campaign, seeding the cache when the
// window already contains today.
func (l *CampaignLifecycle) Create(ctx context.Context, advertiserID uuid.UUID, c models.Campaign) (models.Campaign, error) {
	if _, err := l.profiles.GetAdvertiser(ctx, advertiserID); err != nil {
		return models.Campaign{}, err
	}

	c.ID = uuid.New()
	c.AdvertiserID = advertiserID
	c.CreatedAt = l.clock.Now()
	if err := c.Validate(); err != nil {
		return models.Campaign{}, err
	}
	if err := l.moderate(ctx, c); err != nil {
		return models.Campaign{}, err
	}
	if err := l.store.InsertCampaign(ctx, c); err != nil {
		return models.Campaign{}, err
	}

	if c.IsActive(l.clock.Now()) {
		if err := l.cache.Put(ctx, c); err != nil {
			zap.L().Warn("failed to seed active cache",
				zap.String("campaign_id", c.ID.String()), zap.Error(err))
		}
	}
	return c, nil
}

// Get fetches one campaign owned by the advertiser.
func (l *CampaignLifecycle) Get(ctx context.Context, advertiserID, campaignID uuid.UUID) (models.Campaign, error) {
	return l.store.GetCampaign(ctx, advertiserID, campaignID)
}

// List returns one page of the advertiser's campaigns plus the total.
func (l *CampaignLifecycle) List(ctx context.Context, advertiserID uuid.UUID, page, size int) (int, []models.Campaign, error) {
	return l.store.ListCampaigns(ctx, advertiserID, page, size)
}

// Update applies the payload to an existing campaign. Once the campaign
// has started, limits and dates are frozen; costs, creatives and targeting
// stay mutable. The cache entry follows the new window.
func (l *CampaignLifecycle) Update(ctx context.Context, advertiserID, campaignID uuid.UUID, c models.Campaign) (models.Campaign, error) {
	old, err := l.store.GetCampaign(ctx, advertiserID, campaignID)
	if err != nil {
		return models.Campaign{}, err
	}

	c.ID = campaignID
	c.AdvertiserID = advertiserID
	c.CreatedAt = old.CreatedAt
	now := l.clock.Now()
	if old.Started(now) {
		if err := c.CheckFrozenFields(old); err != nil {
			return models.Campaign{}, err
		}
	}
	if err := c.Validate(); err != nil {
		return models.Campaign{}, err
	}
	if err := l.moderate(ctx, c); err != nil {
		return models.Campaign{}, err
	}
	if err := l.store.UpdateCampaign(ctx, c); err != nil {
		return models.Campaign{}, err
	}

	l.syncCache(ctx, c, now)
	return c, nil
}

// syncCache makes the cache agree with the campaign's window: active
// campaigns are put (view and click sets survive), inactive ones evicted.
func (l *CampaignLifecycle) syncCache(ctx context.Context, c models.Campaign, now uint32) {
	var err error
	if c.IsActive(now) {
		err = l.cache.Put(ctx, c)
	} else {
		err = l.cache.Delete(ctx, c.ID)
	}
	if err != nil {
		zap.L().Warn("failed to sync active cache",
			zap.String("campaign_id", c.ID.String()), zap.Error(err))
	}
}

// Delete evicts the campaign from the cache first, then removes the
// canonical row. Images and fact rows cascade with it.
func (l *CampaignLifecycle) Delete(ctx context.Context, advertiserID, campaignID uuid.UUID) error {
	if err := l.cache.Delete(ctx, campaignID); err != nil {
		zap.L().Warn("failed to evict campaign from cache",
			zap.String("campaign_id", campaignID.String()), zap.Error(err))
	}
	if l.images != nil {
		if err := l.images.DeleteAll(ctx, campaignID); err != nil {
			zap.L().Warn("failed to delete campaign images",
				zap.String("campaign_id", campaignID.String()), zap.Error(err))
		}
	}
	return l.store.DeleteCampaign(ctx, advertiserID, campaignID)
}

// Generate rewrites the campaign's creatives with generated copy and
// routes the result through the normal update path, so mutability rules
// and the moderation gate still apply.
func (l *CampaignLifecycle) Generate(ctx context.Context, advertiserID, campaignID uuid.UUID, mode string) (models.Campaign, error) {
	if l.generator == nil {
		return models.Campaign{}, models.NewTextGenUnavailable(fmt.Errorf("text generation is not configured"))
	}
	old, err := l.store.GetCampaign(ctx, advertiserID, campaignID)
	if err != nil {
		return models.Campaign{}, err
	}
	advertiser, err := l.profiles.GetAdvertiser(ctx, advertiserID)
	if err != nil {
		return models.Campaign{}, err
	}

	subject := fmt.Sprintf("Advertiser: %s. Current title: %s. Current text: %s.",
		advertiser.Name, old.AdTitle, old.AdText)

	updated := old
	switch mode {
	case GenerateTitle:
		title, err := l.generator.Generate(ctx, l.prompts.Title, subject)
		if err != nil {
			return models.Campaign{}, err
		}
		updated.AdTitle = title
	case GenerateText:
		text, err := l.generator.Generate(ctx, l.prompts.Text, subject)
		if err != nil {
			return models.Campaign{}, err
		}
		updated.AdText = text
	case GenerateAll:
		title, err := l.generator.Generate(ctx, l.prompts.Title, subject)
		if err != nil {
			return models.Campaign{}, err
		}
		text, err := l.generator.Generate(ctx, l.prompts.Text, subject)
		if err != nil {
			return models.Campaign{}, err
		}
		updated.AdTitle = title
		updated.AdText = text
	default:
		return models.Campaign{}, models.NewValidation("mode must be TITLE, TEXT or ALL")
	}

	return l.Update(ctx, advertiserID, campaignID, updated)
}
