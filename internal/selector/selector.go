package selector

import (
	"bytes"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/adserve-labs/adengine/internal/models"
)

// Weights tune the scoring formula. Defaults come from configuration.
type Weights struct {
	Profit      float64
	Relevance   float64
	Fulfillment float64
	TimeLeft    float64
}

// Selector picks the winning ad for a client out of the active pool. It
// is a pure function of its inputs plus the injected random source, so
// tests can pin the exploration branch with a seeded source.
type Selector struct {
	weights Weights
	epsilon float64
	randf   func() float64
}

// New builds a selector. randf may be nil, in which case the shared
// math/rand source is used; tests inject rand.New(rand.NewSource(seed)).
func New(weights Weights, epsilon float64, randf func() float64) *Selector {
	if randf == nil {
		randf = rand.Float64
	}
	return &Selector{weights: weights, epsilon: epsilon, randf: randf}
}

type scored struct {
	campaign models.ActiveCampaign
	score    float64
}

// Select returns the best-scoring eligible campaign for the client, or
// ErrNotFound when nothing fits. scores maps advertiser id to the
// client's relevance score; absent advertisers count as 0.
//
// With probability epsilon the targeting filter is skipped so strictly
// targeted pools do not starve everything else. Eligibility (no repeat
// click, impression headroom) always applies.
func (s *Selector) Select(client models.Client, pool []models.ActiveCampaign, scores map[uuid.UUID]float64, now uint32) (models.Ad, error) {
	explore := s.randf() < s.epsilon

	candidates := make([]scored, 0, len(pool))
	for _, c := range pool {
		if !explore && !c.Targeting.Matches(client) {
			continue
		}
		if c.Clicked(client.ID) {
			continue
		}
		if len(c.ViewClients) >= c.ImpressionsLimit {
			continue
		}
		candidates = append(candidates, scored{
			campaign: c,
			score:    s.score(c, scores[c.AdvertiserID], now),
		})
	}
	if len(candidates) == 0 {
		return models.Ad{}, models.NewNotFound("no suitable campaign")
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.campaign.EndDate != b.campaign.EndDate {
			return a.campaign.EndDate < b.campaign.EndDate
		}
		return bytes.Compare(a.campaign.ID[:], b.campaign.ID[:]) < 0
	})
	return candidates[0].campaign.AdOf(), nil
}

// score implements the ranking formula. Fulfillment rewards remaining
// headroom relative to each limit; a zero clicks_limit contributes
// nothing rather than dividing by zero.
func (s *Selector) score(c models.ActiveCampaign, relevance float64, now uint32) float64 {
	remImp := c.RemainingImpressions()
	remClk := c.RemainingClicks()

	profit := float64(remImp)*c.CostPerImpression + float64(remClk)*c.CostPerClick

	fulfill := float64(remImp) / float64(c.ImpressionsLimit)
	if c.ClicksLimit > 0 {
		fulfill += float64(remClk) / float64(c.ClicksLimit)
	}

	score := s.weights.Profit*profit +
		s.weights.Relevance*relevance +
		s.weights.Fulfillment*fulfill
	if s.weights.TimeLeft != 0 && c.EndDate > now {
		score -= s.weights.TimeLeft * float64(c.EndDate-now)
	}
	return score
}
