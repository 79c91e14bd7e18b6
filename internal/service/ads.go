package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adserve-labs/adengine/internal/analytics"
	"github.com/adserve-labs/adengine/internal/models"
	"github.com/adserve-labs/adengine/internal/observability"
	"github.com/adserve-labs/adengine/internal/selector"
)

// AdService runs the serve and click paths over the hot cache.
type AdService struct {
	profiles  ProfileStore
	campaigns CampaignStore
	events    EventStore
	cache     ActiveCache
	selector  *selector.Selector
	analytics analytics.Service
	clock     Clock
	metrics   observability.MetricsRegistry
}

// NewAdService wires the serve path. analytics may be nil.
func NewAdService(profiles ProfileStore, campaigns CampaignStore, events EventStore,
	cache ActiveCache, sel *selector.Selector, mirror analytics.Service,
	clock Clock, metrics observability.MetricsRegistry) *AdService {
	return &AdService{
		profiles:  profiles,
		campaigns: campaigns,
		events:    events,
		cache:     cache,
		selector:  sel,
		analytics: mirror,
		clock:     clock,
		metrics:   metrics,
	}
}

// Serve picks the best ad for the client, records the impression fact and
// writes the view to the cache before returning, so a follow-up click
// always sees it.
func (s *AdService) Serve(ctx context.Context, clientID uuid.UUID) (models.Ad, error) {
	client, err := s.profiles.GetClient(ctx, clientID)
	if err != nil {
		return models.Ad{}, err
	}

	pool, err := s.cache.ScanAll(ctx)
	if err != nil {
		return models.Ad{}, err
	}

	scores, err := s.fetchScores(ctx, clientID, pool)
	if err != nil {
		return models.Ad{}, err
	}

	start := time.Now()
	ad, err := s.selector.Select(client, pool, scores, s.clock.Now())
	s.metrics.RecordSelectionLatency(time.Since(start))
	s.metrics.RecordSelectionCandidates(len(pool))
	if err != nil {
		s.metrics.IncrementNoFit()
		return models.Ad{}, err
	}

	var winner models.ActiveCampaign
	for _, c := range pool {
		if c.ID == ad.ID {
			winner = c
			break
		}
	}

	event := models.AdEvent{
		CampaignID: ad.ID,
		ClientID:   clientID,
		Day:        s.clock.Now(),
		Cost:       winner.CostPerImpression,
	}
	newView := !winner.Viewed(clientID)
	if newView {
		if err := s.events.InsertView(ctx, event); err != nil {
			return models.Ad{}, err
		}
	}
	if err := s.cache.AddView(ctx, ad.ID, clientID); err != nil {
		return models.Ad{}, err
	}

	spend := campaignSpend(winner)
	if newView {
		spend += winner.CostPerImpression
	}
	s.metrics.SetSpendTotal(ad.ID.String(), spend)
	s.metrics.IncrementEvent("impression")
	s.mirror(ctx, "impression", event)
	return ad, nil
}

// campaignSpend is the money already charged to the campaign, derived from
// the cached delivery sets.
func campaignSpend(c models.ActiveCampaign) float64 {
	return float64(len(c.ViewClients))*c.CostPerImpression +
		float64(len(c.ClickClients))*c.CostPerClick
}

// fetchScores loads the client's relevance score for every advertiser in
// the pool, one concurrent fetch per advertiser.
func (s *AdService) fetchScores(ctx context.Context, clientID uuid.UUID, pool []models.ActiveCampaign) (map[uuid.UUID]float64, error) {
	advertisers := make(map[uuid.UUID]struct{}, len(pool))
	for _, c := range pool {
		advertisers[c.AdvertiserID] = struct{}{}
	}

	scores := make(map[uuid.UUID]float64, len(advertisers))
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		fetchErr error
	)
	for advertiserID := range advertisers {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			score, err := s.profiles.GetMLScore(ctx, clientID, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if fetchErr == nil {
					fetchErr = err
				}
				return
			}
			scores[id] = score
		}(advertiserID)
	}
	wg.Wait()
	if fetchErr != nil {
		return nil, fetchErr
	}
	return scores, nil
}

// Click records a click for a previously served impression. Re-clicks are
// acknowledged no-ops.
func (s *AdService) Click(ctx context.Context, campaignID, clientID uuid.UUID) error {
	if _, err := s.profiles.GetClient(ctx, clientID); err != nil {
		return err
	}

	exists, err := s.campaigns.CampaignExists(ctx, campaignID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewValidation("campaign does not exist")
	}

	ac, err := s.cache.Get(ctx, campaignID)
	if err != nil {
		if models.KindOf(err) == models.KindNotFound {
			return models.NewValidation("campaign is not active")
		}
		return err
	}
	if !ac.Viewed(clientID) {
		return models.NewValidation("ad was never viewed by this client")
	}
	if ac.Clicked(clientID) {
		return nil
	}

	event := models.AdEvent{
		CampaignID: campaignID,
		ClientID:   clientID,
		Day:        s.clock.Now(),
		Cost:       ac.CostPerClick,
	}
	if err := s.events.InsertClick(ctx, event); err != nil {
		return err
	}
	if err := s.cache.AddClick(ctx, campaignID, clientID); err != nil {
		return err
	}

	s.metrics.SetSpendTotal(campaignID.String(), campaignSpend(ac)+ac.CostPerClick)
	s.metrics.IncrementEvent("click")
	s.mirror(ctx, "click", event)
	return nil
}

func (s *AdService) mirror(ctx context.Context, eventType string, e models.AdEvent) {
	if s.analytics == nil {
		return
	}
	var err error
	switch eventType {
	case "impression":
		err = s.analytics.RecordImpression(ctx, e)
	case "click":
		err = s.analytics.RecordClick(ctx, e)
	}
	if err != nil && !errors.Is(err, analytics.ErrUnavailable) {
		zap.L().Warn("analytics mirror failed",
			zap.String("event_type", eventType),
			zap.String("campaign_id", e.CampaignID.String()),
			zap.Error(err))
	}
}
