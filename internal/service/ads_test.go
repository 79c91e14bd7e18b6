package service

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/adserve-labs/adengine/internal/cache"
	"github.com/adserve-labs/adengine/internal/models"
	"github.com/adserve-labs/adengine/internal/observability"
	"github.com/adserve-labs/adengine/internal/selector"
)

// spyMetrics records spend gauge writes, everything else is a no-op.
type spyMetrics struct {
	observability.MetricsRegistry

	mu    sync.Mutex
	spend map[string]float64
}

func newSpyMetrics() *spyMetrics {
	return &spyMetrics{
		MetricsRegistry: observability.NewNoOpRegistry(),
		spend:           make(map[string]float64),
	}
}

func (s *spyMetrics) SetSpendTotal(campaign string, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spend[campaign] = amount
}

func (s *spyMetrics) spendOf(campaign string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spend[campaign]
}

func TestServeAndClickTrackSpend(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	activeCache := cache.NewActiveCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	clientID, otherClientID := uuid.New(), uuid.New()
	campaign := models.Campaign{
		ID:                uuid.New(),
		AdvertiserID:      uuid.New(),
		ImpressionsLimit:  10,
		ClicksLimit:       2,
		CostPerImpression: 1,
		CostPerClick:      5,
		AdTitle:           "title",
		AdText:            "text",
		StartDate:         0,
		EndDate:           5,
	}

	profiles := &memProfiles{
		clients: map[uuid.UUID]models.Client{
			clientID:      {ID: clientID, Login: "a", Age: 30, Location: "Moscow", Gender: models.GenderMale},
			otherClientID: {ID: otherClientID, Login: "b", Age: 25, Location: "Moscow", Gender: models.GenderFemale},
		},
		advertisers: map[uuid.UUID]models.Advertiser{
			campaign.AdvertiserID: {ID: campaign.AdvertiserID, Name: "Acme"},
		},
	}
	campaigns := &memCampaigns{rows: map[uuid.UUID]models.Campaign{campaign.ID: campaign}}
	if err := activeCache.Put(ctx, campaign); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	metrics := newSpyMetrics()
	sel := selector.New(selector.Weights{Profit: 1}, 0, nil)
	ads := NewAdService(profiles, campaigns, memEvents{}, activeCache, sel, nil, fixedClock(1), metrics)

	if _, err := ads.Serve(ctx, clientID); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if got := metrics.spendOf(campaign.ID.String()); got != 1 {
		t.Fatalf("spend after first impression = %v, want 1", got)
	}

	// repeat impression for the same client is not charged again
	if _, err := ads.Serve(ctx, clientID); err != nil {
		t.Fatalf("repeat serve: %v", err)
	}
	if got := metrics.spendOf(campaign.ID.String()); got != 1 {
		t.Fatalf("spend after repeat impression = %v, want 1", got)
	}

	if _, err := ads.Serve(ctx, otherClientID); err != nil {
		t.Fatalf("serve other client: %v", err)
	}
	if got := metrics.spendOf(campaign.ID.String()); got != 2 {
		t.Fatalf("spend after second impression = %v, want 2", got)
	}

	if err := ads.Click(ctx, campaign.ID, clientID); err != nil {
		t.Fatalf("click: %v", err)
	}
	if got := metrics.spendOf(campaign.ID.String()); got != 7 {
		t.Fatalf("spend after click = %v, want 7", got)
	}
}
