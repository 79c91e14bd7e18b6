package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/adserve-labs/adengine/internal/models"
)

// Reconciler rebuilds the active-campaign cache from the canonical stores.
// It runs at startup and after every clock advance, evicting campaigns
// whose window has closed and loading ones that just opened together with
// their delivery sets.
type Reconciler struct {
	campaigns CampaignStore
	events    EventStore
	cache     ActiveCache
}

// NewReconciler wires a cache reconciler.
func NewReconciler(campaigns CampaignStore, events EventStore, cache ActiveCache) *Reconciler {
	return &Reconciler{campaigns: campaigns, events: events, cache: cache}
}

// Run replaces the cache with the projection of every campaign active on
// day, carrying view and click sets from the fact rows.
func (r *Reconciler) Run(ctx context.Context, day uint32) error {
	active, err := r.campaigns.ListActiveCampaigns(ctx, day)
	if err != nil {
		return fmt.Errorf("list active campaigns: %w", err)
	}

	views := make([]models.ActiveCampaign, 0, len(active))
	for _, c := range active {
		ac := models.NewActiveCampaign(c)
		viewClients, err := r.events.ViewClients(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("load view clients: %w", err)
		}
		for _, id := range viewClients {
			ac.ViewClients[id] = struct{}{}
		}
		clickClients, err := r.events.ClickClients(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("load click clients: %w", err)
		}
		for _, id := range clickClients {
			ac.ClickClients[id] = struct{}{}
		}
		views = append(views, ac)
	}

	if err := r.cache.Reconcile(ctx, views); err != nil {
		return err
	}
	zap.L().Info("reconciled active cache", zap.Uint32("day", day), zap.Int("campaigns", len(views)))
	return nil
}
