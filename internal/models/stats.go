package models

import "github.com/google/uuid"

// AdEvent is an append-only per-day fact row. At most one view row and
// one click row exist per (campaign, client).
type AdEvent struct {
	CampaignID uuid.UUID
	ClientID   uuid.UUID
	Day        uint32
	Cost       float64
}

// Stat is an aggregate over one campaign or one advertiser.
type Stat struct {
	ImpressionsCount int     `json:"impressions_count"`
	ClicksCount      int     `json:"clicks_count"`
	Conversion       float64 `json:"conversion"`
	SpentImpressions float64 `json:"spent_impressions"`
	SpentClicks      float64 `json:"spent_clicks"`
	SpentTotal       float64 `json:"spent_total"`
}

// DailyStat is a Stat pinned to one simulated day.
type DailyStat struct {
	Stat
	Date uint32 `json:"date"`
}

// Finalize recomputes the derived fields from the raw counters.
func (s *Stat) Finalize() {
	s.SpentTotal = s.SpentImpressions + s.SpentClicks
	if s.ImpressionsCount > 0 {
		s.Conversion = 100 * float64(s.ClicksCount) / float64(s.ImpressionsCount)
	} else {
		s.Conversion = 0
	}
}
