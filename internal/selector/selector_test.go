package selector

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adserve-labs/adengine/internal/models"
)

var testWeights = Weights{Profit: 0.5, Relevance: 0.25, Fulfillment: 0.15}

// never takes the exploration branch
func noExplore() float64 { return 1.0 }

// always takes the exploration branch
func alwaysExplore() float64 { return 0.0 }

func activeCampaign(id uuid.UUID, c models.Campaign) models.ActiveCampaign {
	c.ID = id
	return models.NewActiveCampaign(c)
}

func baseCampaign() models.Campaign {
	return models.Campaign{
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
}

func testClient() models.Client {
	return models.Client{
		ID:       uuid.New(),
		Login:    "user",
		Age:      30,
		Location: "Moscow",
		Gender:   models.GenderMale,
	}
}

func TestSelectBasicServe(t *testing.T) {
	s := New(testWeights, 0.04, noExplore)
	client := testClient()
	campaignID := uuid.New()
	pool := []models.ActiveCampaign{activeCampaign(campaignID, baseCampaign())}

	ad, err := s.Select(client, pool, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, campaignID, ad.ID)
	assert.Equal(t, "title", ad.Title)
}

func TestSelectNoCandidates(t *testing.T) {
	s := New(testWeights, 0.04, noExplore)

	_, err := s.Select(testClient(), nil, nil, 1)
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestSelectTargetingExcludes(t *testing.T) {
	s := New(testWeights, 0.04, noExplore)
	client := testClient() // Moscow

	c := baseCampaign()
	paris := "Paris"
	c.Targeting.Location = &paris
	pool := []models.ActiveCampaign{activeCampaign(uuid.New(), c)}

	_, err := s.Select(client, pool, nil, 1)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestSelectExplorationSkipsTargetingOnly(t *testing.T) {
	s := New(testWeights, 0.04, alwaysExplore)
	client := testClient()

	mismatched := baseCampaign()
	paris := "Paris"
	mismatched.Targeting.Location = &paris
	campaignID := uuid.New()
	pool := []models.ActiveCampaign{activeCampaign(campaignID, mismatched)}

	ad, err := s.Select(client, pool, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, campaignID, ad.ID)

	// exploration never bypasses the click dedup
	clicked := activeCampaign(uuid.New(), mismatched)
	clicked.ClickClients[client.ID] = struct{}{}
	_, err = s.Select(client, []models.ActiveCampaign{clicked}, nil, 1)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestSelectEligibility(t *testing.T) {
	s := New(testWeights, 0.04, noExplore)
	client := testClient()

	t.Run("already clicked", func(t *testing.T) {
		ac := activeCampaign(uuid.New(), baseCampaign())
		ac.ClickClients[client.ID] = struct{}{}
		_, err := s.Select(client, []models.ActiveCampaign{ac}, nil, 1)
		assert.Equal(t, models.KindNotFound, models.KindOf(err))
	})

	t.Run("impression limit exhausted", func(t *testing.T) {
		c := baseCampaign()
		c.ImpressionsLimit = 2
		ac := activeCampaign(uuid.New(), c)
		ac.ViewClients[uuid.New()] = struct{}{}
		ac.ViewClients[uuid.New()] = struct{}{}
		_, err := s.Select(client, []models.ActiveCampaign{ac}, nil, 1)
		assert.Equal(t, models.KindNotFound, models.KindOf(err))
	})

	t.Run("viewed but not clicked is still eligible", func(t *testing.T) {
		campaignID := uuid.New()
		ac := activeCampaign(campaignID, baseCampaign())
		ac.ViewClients[client.ID] = struct{}{}
		ad, err := s.Select(client, []models.ActiveCampaign{ac}, nil, 1)
		require.NoError(t, err)
		assert.Equal(t, campaignID, ad.ID)
	})
}

func TestSelectRelevanceBreaksEvenPools(t *testing.T) {
	s := New(testWeights, 0.04, noExplore)
	client := testClient()

	low := activeCampaign(uuid.New(), baseCampaign())
	high := activeCampaign(uuid.New(), baseCampaign())
	scores := map[uuid.UUID]float64{
		low.AdvertiserID:  1,
		high.AdvertiserID: 50,
	}

	ad, err := s.Select(client, []models.ActiveCampaign{low, high}, scores, 1)
	require.NoError(t, err)
	assert.Equal(t, high.ID, ad.ID)
}

func TestSelectEndDateTiebreak(t *testing.T) {
	s := New(testWeights, 0.04, noExplore)
	client := testClient()

	later := baseCampaign()
	later.EndDate = 9
	sooner := baseCampaign()
	sooner.EndDate = 7
	// identical economics, only the end date differs
	sooner.AdvertiserID = later.AdvertiserID

	soonerID := uuid.New()
	pool := []models.ActiveCampaign{
		activeCampaign(uuid.New(), later),
		activeCampaign(soonerID, sooner),
	}

	ad, err := s.Select(client, pool, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, soonerID, ad.ID)
}

func TestSelectCampaignIDTiebreak(t *testing.T) {
	s := New(testWeights, 0.04, noExplore)
	client := testClient()

	c := baseCampaign()
	idA := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	idB := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	pool := []models.ActiveCampaign{
		activeCampaign(idB, c),
		activeCampaign(idA, c),
	}

	ad, err := s.Select(client, pool, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, idA, ad.ID)
}

func TestScoreZeroClicksLimit(t *testing.T) {
	s := New(testWeights, 0.04, noExplore)
	c := baseCampaign()
	c.ClicksLimit = 0
	ac := activeCampaign(uuid.New(), c)

	score := s.score(ac, 0, 1)
	assert.False(t, score != score, "score must not be NaN")
}

func TestScoreTimeLeftPenalty(t *testing.T) {
	weights := testWeights
	weights.TimeLeft = 1
	s := New(weights, 0.04, noExplore)

	near := activeCampaign(uuid.New(), baseCampaign())
	far := activeCampaign(uuid.New(), baseCampaign())
	far.EndDate = 100

	assert.Greater(t, s.score(near, 0, 1), s.score(far, 0, 1))
}
