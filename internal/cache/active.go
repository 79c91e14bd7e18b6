package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adserve-labs/adengine/internal/models"
)

const campaignsKey = "active:campaigns"

func viewsKey(id uuid.UUID) string  { return "active:views:" + id.String() }
func clicksKey(id uuid.UUID) string { return "active:clicks:" + id.String() }

// ActiveCache keeps the projection of every currently active campaign in
// Redis: one hash of campaign JSON plus a view set and a click set per
// campaign. Sets give per-key atomic insertion, so concurrent serves for
// the same campaign never lose a client id.
type ActiveCache struct {
	client *redis.Client
}

// NewActiveCache wraps an existing Redis client.
func NewActiveCache(client *redis.Client) *ActiveCache {
	return &ActiveCache{client: client}
}

// Put stores or overwrites the campaign projection. View and click sets
// are left untouched, so updating creative fields never resets delivery.
func (a *ActiveCache) Put(ctx context.Context, c models.Campaign) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal campaign: %w", err)
	}
	if err := a.client.HSet(ctx, campaignsKey, c.ID.String(), payload).Err(); err != nil {
		return models.NewCacheUnavailable(fmt.Errorf("put campaign: %w", err))
	}
	return nil
}

// Delete removes the campaign and its client sets.
func (a *ActiveCache) Delete(ctx context.Context, id uuid.UUID) error {
	pipe := a.client.TxPipeline()
	pipe.HDel(ctx, campaignsKey, id.String())
	pipe.Del(ctx, viewsKey(id), clicksKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return models.NewCacheUnavailable(fmt.Errorf("delete campaign: %w", err))
	}
	return nil
}

// Get loads one projection with its client sets. Absence is ErrNotFound.
func (a *ActiveCache) Get(ctx context.Context, id uuid.UUID) (models.ActiveCampaign, error) {
	payload, err := a.client.HGet(ctx, campaignsKey, id.String()).Result()
	if errors.Is(err, redis.Nil) {
		return models.ActiveCampaign{}, models.ErrNotFound
	}
	if err != nil {
		return models.ActiveCampaign{}, models.NewCacheUnavailable(fmt.Errorf("get campaign: %w", err))
	}
	return a.hydrate(ctx, []byte(payload))
}

// ScanAll loads every active projection. This is the selector's candidate
// pool on each ad request.
func (a *ActiveCache) ScanAll(ctx context.Context) ([]models.ActiveCampaign, error) {
	entries, err := a.client.HGetAll(ctx, campaignsKey).Result()
	if err != nil {
		return nil, models.NewCacheUnavailable(fmt.Errorf("scan campaigns: %w", err))
	}
	campaigns := make([]models.ActiveCampaign, 0, len(entries))
	for field, payload := range entries {
		ac, err := a.hydrate(ctx, []byte(payload))
		if err != nil {
			zap.L().Warn("skipping unreadable cache entry", zap.String("campaign_id", field), zap.Error(err))
			continue
		}
		campaigns = append(campaigns, ac)
	}
	return campaigns, nil
}

func (a *ActiveCache) hydrate(ctx context.Context, payload []byte) (models.ActiveCampaign, error) {
	var c models.Campaign
	if err := json.Unmarshal(payload, &c); err != nil {
		return models.ActiveCampaign{}, fmt.Errorf("unmarshal campaign: %w", err)
	}
	ac := models.NewActiveCampaign(c)

	views, err := a.client.SMembers(ctx, viewsKey(c.ID)).Result()
	if err != nil {
		return models.ActiveCampaign{}, models.NewCacheUnavailable(fmt.Errorf("load view set: %w", err))
	}
	for _, raw := range views {
		if id, err := uuid.Parse(raw); err == nil {
			ac.ViewClients[id] = struct{}{}
		}
	}

	clicks, err := a.client.SMembers(ctx, clicksKey(c.ID)).Result()
	if err != nil {
		return models.ActiveCampaign{}, models.NewCacheUnavailable(fmt.Errorf("load click set: %w", err))
	}
	for _, raw := range clicks {
		if id, err := uuid.Parse(raw); err == nil {
			ac.ClickClients[id] = struct{}{}
		}
	}
	return ac, nil
}

// AddView inserts the client into the campaign's view set. SADD makes the
// insertion idempotent and atomic per key.
func (a *ActiveCache) AddView(ctx context.Context, campaignID, clientID uuid.UUID) error {
	if err := a.client.SAdd(ctx, viewsKey(campaignID), clientID.String()).Err(); err != nil {
		return models.NewCacheUnavailable(fmt.Errorf("add view: %w", err))
	}
	return nil
}

// AddClick inserts the client into the campaign's click set.
func (a *ActiveCache) AddClick(ctx context.Context, campaignID, clientID uuid.UUID) error {
	if err := a.client.SAdd(ctx, clicksKey(campaignID), clientID.String()).Err(); err != nil {
		return models.NewCacheUnavailable(fmt.Errorf("add click: %w", err))
	}
	return nil
}

// Reconcile replaces the cached pool with the given campaigns and their
// delivery sets, dropping entries that are no longer active. Runs at
// startup and after every clock advance.
func (a *ActiveCache) Reconcile(ctx context.Context, campaigns []models.ActiveCampaign) error {
	current, err := a.client.HKeys(ctx, campaignsKey).Result()
	if err != nil {
		return models.NewCacheUnavailable(fmt.Errorf("list cached campaigns: %w", err))
	}
	keep := make(map[string]struct{}, len(campaigns))
	for _, c := range campaigns {
		keep[c.ID.String()] = struct{}{}
	}

	pipe := a.client.TxPipeline()
	for _, field := range current {
		if _, ok := keep[field]; ok {
			continue
		}
		pipe.HDel(ctx, campaignsKey, field)
		if id, err := uuid.Parse(field); err == nil {
			pipe.Del(ctx, viewsKey(id), clicksKey(id))
		}
	}
	for _, c := range campaigns {
		payload, err := json.Marshal(c.Campaign)
		if err != nil {
			return fmt.Errorf("marshal campaign: %w", err)
		}
		pipe.HSet(ctx, campaignsKey, c.ID.String(), payload)
		for clientID := range c.ViewClients {
			pipe.SAdd(ctx, viewsKey(c.ID), clientID.String())
		}
		for clientID := range c.ClickClients {
			pipe.SAdd(ctx, clicksKey(c.ID), clientID.String())
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return models.NewCacheUnavailable(fmt.Errorf("reconcile cache: %w", err))
	}
	return nil
}
