package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/adserve-labs/adengine/internal/cache"
	"github.com/adserve-labs/adengine/internal/models"
	"github.com/adserve-labs/adengine/internal/moderation"
	"github.com/adserve-labs/adengine/internal/observability"
)

// ----- fakes -----

type memProfiles struct {
	clients     map[uuid.UUID]models.Client
	advertisers map[uuid.UUID]models.Advertiser
}

func (m *memProfiles) GetClient(_ context.Context, id uuid.UUID) (models.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return models.Client{}, models.ErrNotFound
	}
	return c, nil
}

func (m *memProfiles) GetAdvertiser(_ context.Context, id uuid.UUID) (models.Advertiser, error) {
	a, ok := m.advertisers[id]
	if !ok {
		return models.Advertiser{}, models.ErrNotFound
	}
	return a, nil
}

func (m *memProfiles) GetMLScore(context.Context, uuid.UUID, uuid.UUID) (float64, error) {
	return 0, nil
}

type memCampaigns struct {
	rows map[uuid.UUID]models.Campaign
}

func (m *memCampaigns) InsertCampaign(_ context.Context, c models.Campaign) error {
	m.rows[c.ID] = c
	return nil
}

func (m *memCampaigns) GetCampaign(_ context.Context, advertiserID, campaignID uuid.UUID) (models.Campaign, error) {
	c, ok := m.rows[campaignID]
	if !ok || c.AdvertiserID != advertiserID {
		return models.Campaign{}, models.ErrNotFound
	}
	return c, nil
}

func (m *memCampaigns) UpdateCampaign(_ context.Context, c models.Campaign) error {
	if _, ok := m.rows[c.ID]; !ok {
		return models.ErrNotFound
	}
	m.rows[c.ID] = c
	return nil
}

func (m *memCampaigns) DeleteCampaign(_ context.Context, advertiserID, campaignID uuid.UUID) error {
	c, ok := m.rows[campaignID]
	if !ok || c.AdvertiserID != advertiserID {
		return models.ErrNotFound
	}
	delete(m.rows, campaignID)
	return nil
}

func (m *memCampaigns) ListCampaigns(_ context.Context, advertiserID uuid.UUID, page, size int) (int, []models.Campaign, error) {
	var owned []models.Campaign
	for _, c := range m.rows {
		if c.AdvertiserID == advertiserID {
			owned = append(owned, c)
		}
	}
	return len(owned), owned, nil
}

func (m *memCampaigns) ListActiveCampaigns(_ context.Context, day uint32) ([]models.Campaign, error) {
	var active []models.Campaign
	for _, c := range m.rows {
		if c.IsActive(day) {
			active = append(active, c)
		}
	}
	return active, nil
}

func (m *memCampaigns) CampaignExists(_ context.Context, campaignID uuid.UUID) (bool, error) {
	_, ok := m.rows[campaignID]
	return ok, nil
}

type memEvents struct{}

func (memEvents) InsertView(context.Context, models.AdEvent) error  { return nil }
func (memEvents) InsertClick(context.Context, models.AdEvent) error { return nil }
func (memEvents) ViewClients(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}
func (memEvents) ClickClients(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

type memWords struct {
	words        []string
	autoModerate bool
}

func (m *memWords) AddObsceneWord(_ context.Context, word string) error {
	m.words = append(m.words, word)
	return nil
}

func (m *memWords) RemoveObsceneWord(_ context.Context, word string) error {
	for i, w := range m.words {
		if w == word {
			m.words = append(m.words[:i], m.words[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memWords) ListObsceneWords(context.Context) ([]string, error) {
	return append([]string(nil), m.words...), nil
}

func (m *memWords) GetAutoModerate(context.Context) (bool, error) { return m.autoModerate, nil }

func (m *memWords) SetAutoModerate(_ context.Context, enabled bool) error {
	m.autoModerate = enabled
	return nil
}

type fixedClock uint32

func (c fixedClock) Now() uint32 { return uint32(c) }

type scriptedGenerator struct {
	byPrompt map[string]string
	calls    int
}

func (g *scriptedGenerator) Generate(_ context.Context, system, _ string) (string, error) {
	g.calls++
	return g.byPrompt[system], nil
}

// ----- harness -----

type lifecycleHarness struct {
	lifecycle    *CampaignLifecycle
	campaigns    *memCampaigns
	words        *memWords
	generator    *scriptedGenerator
	cache        *cache.ActiveCache
	advertiserID uuid.UUID
}

func newLifecycleHarness(t *testing.T, now uint32) *lifecycleHarness {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	advertiserID := uuid.New()
	profiles := &memProfiles{advertisers: map[uuid.UUID]models.Advertiser{
		advertiserID: {ID: advertiserID, Name: "Acme"},
	}}
	campaigns := &memCampaigns{rows: make(map[uuid.UUID]models.Campaign)}
	words := &memWords{}
	generator := &scriptedGenerator{byPrompt: map[string]string{
		"title prompt": "Generated title",
		"text prompt":  "Generated text",
	}}
	activeCache := cache.NewActiveCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	mod := moderation.NewService(words, 0.3, observability.NewNoOpRegistry())
	lifecycle := NewCampaignLifecycle(profiles, campaigns, memEvents{}, activeCache, mod,
		generator, GeneratePrompts{Title: "title prompt", Text: "text prompt"}, nil, fixedClock(now))

	return &lifecycleHarness{
		lifecycle:    lifecycle,
		campaigns:    campaigns,
		words:        words,
		generator:    generator,
		cache:        activeCache,
		advertiserID: advertiserID,
	}
}

func draftCampaign() models.Campaign {
	return models.Campaign{
		ImpressionsLimit:  10,
		ClicksLimit:       2,
		CostPerImpression: 1,
		CostPerClick:      5,
		AdTitle:           "title",
		AdText:            "text",
		StartDate:         1,
		EndDate:           5,
	}
}

// ----- tests -----

func TestCreateAssignsIdentityAndSeedsCache(t *testing.T) {
	h := newLifecycleHarness(t, 1)
	ctx := context.Background()

	created, err := h.lifecycle.Create(ctx, h.advertiserID, draftCampaign())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil || created.AdvertiserID != h.advertiserID {
		t.Fatalf("identity not assigned: %+v", created)
	}
	if created.CreatedAt != 1 {
		t.Fatalf("created_at = %d, want 1", created.CreatedAt)
	}

	// active today, so it must be in the cache
	if _, err := h.cache.Get(ctx, created.ID); err != nil {
		t.Fatalf("expected cache entry: %v", err)
	}
}

func TestCreateFutureWindowSkipsCache(t *testing.T) {
	h := newLifecycleHarness(t, 0)
	ctx := context.Background()

	created, err := h.lifecycle.Create(ctx, h.advertiserID, draftCampaign())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.cache.Get(ctx, created.ID); models.KindOf(err) != models.KindNotFound {
		t.Fatalf("future campaign must not be cached, got %v", err)
	}
}

func TestCreateUnknownAdvertiser(t *testing.T) {
	h := newLifecycleHarness(t, 1)

	_, err := h.lifecycle.Create(context.Background(), uuid.New(), draftCampaign())
	if models.KindOf(err) != models.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateModerationGate(t *testing.T) {
	h := newLifecycleHarness(t, 1)
	ctx := context.Background()
	if err := h.lifecycle.moderation.AddWords(ctx, []string{"плохо"}); err != nil {
		t.Fatalf("add words: %v", err)
	}

	draft := draftCampaign()
	draft.AdTitle = "это пло}{о"

	// toggle off: dirty creative passes
	if _, err := h.lifecycle.Create(ctx, h.advertiserID, draft); err != nil {
		t.Fatalf("moderation off must pass: %v", err)
	}

	// toggle on: rejected with the censorship kind
	if err := h.words.SetAutoModerate(ctx, true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if _, err := h.lifecycle.Create(ctx, h.advertiserID, draft); models.KindOf(err) != models.KindCensorship {
		t.Fatalf("expected censorship error, got %v", err)
	}
}

func TestUpdateFreezesLimitsAfterStart(t *testing.T) {
	h := newLifecycleHarness(t, 1)
	ctx := context.Background()

	created, err := h.lifecycle.Create(ctx, h.advertiserID, draftCampaign())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	frozen := created
	frozen.ImpressionsLimit = 20
	if _, err := h.lifecycle.Update(ctx, h.advertiserID, created.ID, frozen); models.KindOf(err) != models.KindValidation {
		t.Fatalf("expected frozen-field rejection, got %v", err)
	}

	mutable := created
	mutable.AdTitle = "new title"
	mutable.CostPerClick = 9
	updated, err := h.lifecycle.Update(ctx, h.advertiserID, created.ID, mutable)
	if err != nil {
		t.Fatalf("mutable update: %v", err)
	}
	if updated.AdTitle != "new title" || updated.CreatedAt != created.CreatedAt {
		t.Fatalf("unexpected update result: %+v", updated)
	}
}

func TestUpdateBeforeStartAllowsRescheduling(t *testing.T) {
	h := newLifecycleHarness(t, 0)
	ctx := context.Background()

	created, err := h.lifecycle.Create(ctx, h.advertiserID, draftCampaign())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	moved := created
	moved.StartDate = 3
	moved.EndDate = 8
	moved.ImpressionsLimit = 50
	if _, err := h.lifecycle.Update(ctx, h.advertiserID, created.ID, moved); err != nil {
		t.Fatalf("pre-start reschedule must pass: %v", err)
	}
}

func TestDeleteEvictsCache(t *testing.T) {
	h := newLifecycleHarness(t, 1)
	ctx := context.Background()

	created, err := h.lifecycle.Create(ctx, h.advertiserID, draftCampaign())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := h.lifecycle.Delete(ctx, h.advertiserID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := h.cache.Get(ctx, created.ID); models.KindOf(err) != models.KindNotFound {
		t.Fatalf("expected eviction, got %v", err)
	}
	if _, err := h.lifecycle.Get(ctx, h.advertiserID, created.ID); models.KindOf(err) != models.KindNotFound {
		t.Fatalf("expected row gone, got %v", err)
	}
}

func TestGenerateModes(t *testing.T) {
	h := newLifecycleHarness(t, 1)
	ctx := context.Background()

	created, err := h.lifecycle.Create(ctx, h.advertiserID, draftCampaign())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := h.lifecycle.Generate(ctx, h.advertiserID, created.ID, GenerateTitle)
	if err != nil {
		t.Fatalf("generate title: %v", err)
	}
	if updated.AdTitle != "Generated title" || updated.AdText != "text" {
		t.Fatalf("title mode must only touch the title: %+v", updated)
	}

	updated, err = h.lifecycle.Generate(ctx, h.advertiserID, created.ID, GenerateAll)
	if err != nil {
		t.Fatalf("generate all: %v", err)
	}
	if updated.AdTitle != "Generated title" || updated.AdText != "Generated text" {
		t.Fatalf("all mode must replace both: %+v", updated)
	}

	if _, err := h.lifecycle.Generate(ctx, h.advertiserID, created.ID, "BOTH"); models.KindOf(err) != models.KindValidation {
		t.Fatalf("expected mode validation error, got %v", err)
	}
}

func TestGenerateWithoutGenerator(t *testing.T) {
	h := newLifecycleHarness(t, 1)
	h.lifecycle.generator = nil

	_, err := h.lifecycle.Generate(context.Background(), h.advertiserID, uuid.New(), GenerateAll)
	if models.KindOf(err) != models.KindTextGenUnavailable {
		t.Fatalf("expected textgen unavailable, got %v", err)
	}
}
