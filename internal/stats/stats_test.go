package stats

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adserve-labs/adengine/internal/db"
	"github.com/adserve-labs/adengine/internal/models"
)

// memFacts is an in-memory FactStore keyed by campaign id.
type memFacts struct {
	views   map[uuid.UUID][]db.DayBucket
	clicks  map[uuid.UUID][]db.DayBucket
	byOwner map[uuid.UUID][]uuid.UUID
}

func newMemFacts() *memFacts {
	return &memFacts{
		views:   make(map[uuid.UUID][]db.DayBucket),
		clicks:  make(map[uuid.UUID][]db.DayBucket),
		byOwner: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *memFacts) ViewBuckets(_ context.Context, ids []uuid.UUID) ([]db.DayBucket, error) {
	var out []db.DayBucket
	for _, id := range ids {
		out = append(out, m.views[id]...)
	}
	return out, nil
}

func (m *memFacts) ClickBuckets(_ context.Context, ids []uuid.UUID) ([]db.DayBucket, error) {
	var out []db.DayBucket
	for _, id := range ids {
		out = append(out, m.clicks[id]...)
	}
	return out, nil
}

func (m *memFacts) CampaignIDsByAdvertiser(_ context.Context, advertiserID uuid.UUID) ([]uuid.UUID, error) {
	return m.byOwner[advertiserID], nil
}

func TestCampaignDailyEmpty(t *testing.T) {
	engine := NewEngine(newMemFacts())

	daily, err := engine.CampaignDaily(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, daily)
}

func TestCampaignDailySingleDay(t *testing.T) {
	facts := newMemFacts()
	campaignID := uuid.New()
	facts.views[campaignID] = []db.DayBucket{{Day: 1, Count: 1, Spent: 1}}
	engine := NewEngine(facts)

	daily, err := engine.CampaignDaily(context.Background(), campaignID)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, uint32(1), daily[0].Date)
	assert.Equal(t, 1, daily[0].ImpressionsCount)
	assert.Equal(t, 0, daily[0].ClicksCount)
	assert.Equal(t, 1.0, daily[0].SpentImpressions)
	assert.Equal(t, 1.0, daily[0].SpentTotal)
	assert.Equal(t, 0.0, daily[0].Conversion)
}

func TestCampaignDailyGapFill(t *testing.T) {
	facts := newMemFacts()
	campaignID := uuid.New()
	facts.views[campaignID] = []db.DayBucket{
		{Day: 2, Count: 4, Spent: 4},
		{Day: 6, Count: 2, Spent: 2},
	}
	facts.clicks[campaignID] = []db.DayBucket{{Day: 3, Count: 1, Spent: 5}}
	engine := NewEngine(facts)

	daily, err := engine.CampaignDaily(context.Background(), campaignID)
	require.NoError(t, err)
	require.Len(t, daily, 5, "days 2..6 inclusive")

	for i, d := range daily {
		assert.Equal(t, uint32(2+i), d.Date, "contiguous ascending days")
	}
	// day 3: a click with no impressions that day
	assert.Equal(t, 1, daily[1].ClicksCount)
	assert.Equal(t, 5.0, daily[1].SpentClicks)
	assert.Equal(t, 0.0, daily[1].Conversion)
	// day 4 and 5 are zero-filled
	assert.Equal(t, models.Stat{}, daily[2].Stat)
	assert.Equal(t, models.Stat{}, daily[3].Stat)
}

func TestCampaignTotal(t *testing.T) {
	facts := newMemFacts()
	campaignID := uuid.New()
	facts.views[campaignID] = []db.DayBucket{
		{Day: 1, Count: 10, Spent: 10},
		{Day: 2, Count: 10, Spent: 10},
	}
	facts.clicks[campaignID] = []db.DayBucket{{Day: 2, Count: 5, Spent: 25}}
	engine := NewEngine(facts)

	total, err := engine.CampaignTotal(context.Background(), campaignID)
	require.NoError(t, err)
	assert.Equal(t, 20, total.ImpressionsCount)
	assert.Equal(t, 5, total.ClicksCount)
	assert.Equal(t, 25.0, total.Conversion)
	assert.Equal(t, 20.0, total.SpentImpressions)
	assert.Equal(t, 25.0, total.SpentClicks)
	assert.Equal(t, 45.0, total.SpentTotal)
}

func TestAdvertiserDailySumsAndSortsDescending(t *testing.T) {
	facts := newMemFacts()
	advertiserID := uuid.New()
	first, second := uuid.New(), uuid.New()
	facts.byOwner[advertiserID] = []uuid.UUID{first, second}
	facts.views[first] = []db.DayBucket{{Day: 1, Count: 2, Spent: 2}}
	facts.views[second] = []db.DayBucket{
		{Day: 1, Count: 3, Spent: 3},
		{Day: 2, Count: 1, Spent: 1},
	}
	facts.clicks[second] = []db.DayBucket{{Day: 1, Count: 1, Spent: 10}}
	engine := NewEngine(facts)

	daily, err := engine.AdvertiserDaily(context.Background(), advertiserID)
	require.NoError(t, err)
	require.Len(t, daily, 2)

	assert.Equal(t, uint32(2), daily[0].Date, "newest day first")
	assert.Equal(t, uint32(1), daily[1].Date)

	assert.Equal(t, 5, daily[1].ImpressionsCount, "day 1 sums both campaigns")
	assert.Equal(t, 1, daily[1].ClicksCount)
	assert.Equal(t, 20.0, daily[1].Conversion, "conversion recomputed on the aggregate")
}

func TestAdvertiserTotal(t *testing.T) {
	facts := newMemFacts()
	advertiserID := uuid.New()
	first, second := uuid.New(), uuid.New()
	facts.byOwner[advertiserID] = []uuid.UUID{first, second}
	facts.views[first] = []db.DayBucket{{Day: 1, Count: 4, Spent: 4}}
	facts.views[second] = []db.DayBucket{{Day: 3, Count: 6, Spent: 6}}
	engine := NewEngine(facts)

	total, err := engine.AdvertiserTotal(context.Background(), advertiserID)
	require.NoError(t, err)
	assert.Equal(t, 10, total.ImpressionsCount)
	assert.Equal(t, 10.0, total.SpentTotal)
}

func TestFoldZeroImpressions(t *testing.T) {
	total := fold([]models.DailyStat{})
	assert.Equal(t, 0.0, total.Conversion)
	assert.Equal(t, 0.0, total.SpentTotal)
}
