package stats

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/adserve-labs/adengine/internal/db"
	"github.com/adserve-labs/adengine/internal/models"
)

// FactStore is the read side of the per-day event rows.
type FactStore interface {
	ViewBuckets(ctx context.Context, campaignIDs []uuid.UUID) ([]db.DayBucket, error)
	ClickBuckets(ctx context.Context, campaignIDs []uuid.UUID) ([]db.DayBucket, error)
	CampaignIDsByAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]uuid.UUID, error)
}

// Engine aggregates event facts into per-day and total statistics.
type Engine struct {
	store FactStore
}

// NewEngine builds a stats engine over the fact store.
func NewEngine(store FactStore) *Engine {
	return &Engine{store: store}
}

// CampaignDaily returns one row per day for a campaign, ascending by day.
// Days between the first and last observed event are filled with zeroed
// rows so the range is contiguous; days outside it are not reported.
func (e *Engine) CampaignDaily(ctx context.Context, campaignID uuid.UUID) ([]models.DailyStat, error) {
	return e.dailyRange(ctx, []uuid.UUID{campaignID})
}

// CampaignTotal folds the daily rows into a single aggregate.
func (e *Engine) CampaignTotal(ctx context.Context, campaignID uuid.UUID) (models.Stat, error) {
	daily, err := e.CampaignDaily(ctx, campaignID)
	if err != nil {
		return models.Stat{}, err
	}
	return fold(daily), nil
}

// AdvertiserDaily unions the daily rows of every campaign the advertiser
// owns, summing matching days, sorted descending by day. Conversion is
// recomputed on each aggregated day.
func (e *Engine) AdvertiserDaily(ctx context.Context, advertiserID uuid.UUID) ([]models.DailyStat, error) {
	ids, err := e.store.CampaignIDsByAdvertiser(ctx, advertiserID)
	if err != nil {
		return nil, err
	}

	byDay := make(map[uint32]*models.DailyStat)
	for _, id := range ids {
		daily, err := e.dailyRange(ctx, []uuid.UUID{id})
		if err != nil {
			return nil, err
		}
		for _, d := range daily {
			agg, ok := byDay[d.Date]
			if !ok {
				agg = &models.DailyStat{Date: d.Date}
				byDay[d.Date] = agg
			}
			agg.ImpressionsCount += d.ImpressionsCount
			agg.ClicksCount += d.ClicksCount
			agg.SpentImpressions += d.SpentImpressions
			agg.SpentClicks += d.SpentClicks
		}
	}

	out := make([]models.DailyStat, 0, len(byDay))
	for _, d := range byDay {
		d.Finalize()
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// AdvertiserTotal folds the advertiser's daily rows into one aggregate.
func (e *Engine) AdvertiserTotal(ctx context.Context, advertiserID uuid.UUID) (models.Stat, error) {
	daily, err := e.AdvertiserDaily(ctx, advertiserID)
	if err != nil {
		return models.Stat{}, err
	}
	return fold(daily), nil
}

func (e *Engine) dailyRange(ctx context.Context, campaignIDs []uuid.UUID) ([]models.DailyStat, error) {
	views, err := e.store.ViewBuckets(ctx, campaignIDs)
	if err != nil {
		return nil, err
	}
	clicks, err := e.store.ClickBuckets(ctx, campaignIDs)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 && len(clicks) == 0 {
		return []models.DailyStat{}, nil
	}

	byDay := make(map[uint32]*models.DailyStat)
	at := func(day uint32) *models.DailyStat {
		d, ok := byDay[day]
		if !ok {
			d = &models.DailyStat{Date: day}
			byDay[day] = d
		}
		return d
	}
	for _, b := range views {
		d := at(b.Day)
		d.ImpressionsCount += b.Count
		d.SpentImpressions += b.Spent
	}
	for _, b := range clicks {
		d := at(b.Day)
		d.ClicksCount += b.Count
		d.SpentClicks += b.Spent
	}

	first, last := observedRange(byDay)
	out := make([]models.DailyStat, 0, last-first+1)
	for day := first; ; day++ {
		d, ok := byDay[day]
		if !ok {
			d = &models.DailyStat{Date: day}
		}
		d.Finalize()
		out = append(out, *d)
		if day == last {
			break
		}
	}
	return out, nil
}

func observedRange(byDay map[uint32]*models.DailyStat) (first, last uint32) {
	started := false
	for day := range byDay {
		if !started {
			first, last = day, day
			started = true
			continue
		}
		if day < first {
			first = day
		}
		if day > last {
			last = day
		}
	}
	return first, last
}

func fold(daily []models.DailyStat) models.Stat {
	var total models.Stat
	for _, d := range daily {
		total.ImpressionsCount += d.ImpressionsCount
		total.ClicksCount += d.ClicksCount
		total.SpentImpressions += d.SpentImpressions
		total.SpentClicks += d.SpentClicks
	}
	total.Finalize()
	return total
}
