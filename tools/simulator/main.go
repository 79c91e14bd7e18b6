// Command simulator seeds the engine with fake profiles and campaigns,
// then drives a serve/click load against the HTTP API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adserve-labs/adengine/internal/models"
	"github.com/adserve-labs/adengine/internal/observability"
)

var (
	server      string
	clients     int
	advertisers int
	campaigns   int
	requests    int
	conc        int
	clickRate   float64
	seed        int64
	day         uint
)

var logger *zap.Logger

var httpClient = &http.Client{Timeout: 10 * time.Second}

var (
	countSent    uint64
	countServed  uint64
	countNoFit   uint64
	countClicks  uint64
	countErrors  uint64
)

var locations = []string{"Moscow", "Paris", "Berlin", "Lisbon", "Tokyo"}

func main() {
	flag.StringVar(&server, "server", "http://localhost:8080", "engine base URL")
	flag.IntVar(&clients, "clients", 200, "number of client profiles to seed")
	flag.IntVar(&advertisers, "advertisers", 10, "number of advertisers to seed")
	flag.IntVar(&campaigns, "campaigns", 30, "number of campaigns to seed")
	flag.IntVar(&requests, "requests", 5000, "total ad requests to send")
	flag.IntVar(&conc, "concurrency", 20, "concurrent workers")
	flag.Float64Var(&clickRate, "click-rate", 0.1, "probability of a click per served ad")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "rng seed")
	flag.UintVar(&day, "day", 1, "simulated day to advance the clock to")
	flag.Parse()

	var err error
	logger, err = observability.InitLogger("simulator")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(seed))

	clientIDs, advertiserIDs, err := seedProfiles(rng)
	if err != nil {
		logger.Fatal("seed profiles", zap.Error(err))
	}
	if err := seedCampaigns(rng, advertiserIDs); err != nil {
		logger.Fatal("seed campaigns", zap.Error(err))
	}
	if err := advanceClock(uint32(day)); err != nil {
		logger.Fatal("advance clock", zap.Error(err))
	}

	logger.Info("seeded engine",
		zap.Int("clients", len(clientIDs)),
		zap.Int("advertisers", len(advertiserIDs)),
		zap.Int("campaigns", campaigns),
		zap.Uint("day", day))

	runTraffic(rng, clientIDs)

	logger.Info("traffic complete",
		zap.Uint64("sent", atomic.LoadUint64(&countSent)),
		zap.Uint64("served", atomic.LoadUint64(&countServed)),
		zap.Uint64("no_fit", atomic.LoadUint64(&countNoFit)),
		zap.Uint64("clicks", atomic.LoadUint64(&countClicks)),
		zap.Uint64("errors", atomic.LoadUint64(&countErrors)))
}

func postJSON(path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	resp, err := httpClient.Post(server+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	if out != nil && resp.StatusCode < 300 {
		return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func seedProfiles(rng *rand.Rand) ([]uuid.UUID, []uuid.UUID, error) {
	clientBatch := make([]models.Client, clients)
	clientIDs := make([]uuid.UUID, clients)
	for i := range clientBatch {
		id := uuid.New()
		gender := models.GenderMale
		if rng.Intn(2) == 0 {
			gender = models.GenderFemale
		}
		clientBatch[i] = models.Client{
			ID:       id,
			Login:    fmt.Sprintf("user-%04d", i),
			Age:      18 + rng.Intn(50),
			Location: locations[rng.Intn(len(locations))],
			Gender:   gender,
		}
		clientIDs[i] = id
	}
	if status, err := postJSON("/api/clients/bulk", clientBatch, nil); err != nil || status >= 300 {
		return nil, nil, fmt.Errorf("seed clients: status %d err %v", status, err)
	}

	advBatch := make([]models.Advertiser, advertisers)
	advertiserIDs := make([]uuid.UUID, advertisers)
	for i := range advBatch {
		id := uuid.New()
		advBatch[i] = models.Advertiser{ID: id, Name: fmt.Sprintf("advertiser-%02d", i)}
		advertiserIDs[i] = id
	}
	if status, err := postJSON("/api/advertisers/bulk", advBatch, nil); err != nil || status >= 300 {
		return nil, nil, fmt.Errorf("seed advertisers: status %d err %v", status, err)
	}

	// A sparse score matrix keeps the relevance term interesting.
	for _, clientID := range clientIDs {
		for _, advertiserID := range advertiserIDs {
			if rng.Float64() > 0.2 {
				continue
			}
			score := models.MLScore{ClientID: clientID, AdvertiserID: advertiserID, Score: rng.Float64() * 100}
			if status, err := postJSON("/api/ml-scores", score, nil); err != nil || status >= 300 {
				return nil, nil, fmt.Errorf("seed ml score: status %d err %v", status, err)
			}
		}
	}
	return clientIDs, advertiserIDs, nil
}

func seedCampaigns(rng *rand.Rand, advertiserIDs []uuid.UUID) error {
	for i := 0; i < campaigns; i++ {
		advertiserID := advertiserIDs[rng.Intn(len(advertiserIDs))]
		impLimit := 50 + rng.Intn(500)
		payload := models.Campaign{
			ImpressionsLimit:  impLimit,
			ClicksLimit:       impLimit / (2 + rng.Intn(8)),
			CostPerImpression: rng.Float64() * 2,
			CostPerClick:      rng.Float64() * 20,
			AdTitle:           fmt.Sprintf("Offer %d", i),
			AdText:            fmt.Sprintf("Great deal number %d, today only.", i),
			StartDate:         uint32(rng.Intn(3)),
			EndDate:           uint32(5 + rng.Intn(20)),
		}
		if rng.Intn(3) == 0 {
			loc := locations[rng.Intn(len(locations))]
			payload.Targeting.Location = &loc
		}
		path := fmt.Sprintf("/api/advertisers/%s/campaigns", advertiserID)
		if status, err := postJSON(path, payload, nil); err != nil || status >= 300 {
			return fmt.Errorf("create campaign: status %d err %v", status, err)
		}
	}
	return nil
}

func advanceClock(target uint32) error {
	status, err := postJSON("/api/time/advance", map[string]uint32{"current_date": target}, nil)
	if err != nil || status >= 300 {
		return fmt.Errorf("status %d err %v", status, err)
	}
	return nil
}

func runTraffic(rng *rand.Rand, clientIDs []uuid.UUID) {
	jobs := make(chan uuid.UUID, conc)
	var wg sync.WaitGroup

	for w := 0; w < conc; w++ {
		wg.Add(1)
		go func(workerSeed int64) {
			defer wg.Done()
			workerRng := rand.New(rand.NewSource(workerSeed))
			for clientID := range jobs {
				serveOnce(workerRng, clientID)
			}
		}(rng.Int63())
	}

	for i := 0; i < requests; i++ {
		jobs <- clientIDs[rng.Intn(len(clientIDs))]
	}
	close(jobs)
	wg.Wait()
}

func serveOnce(rng *rand.Rand, clientID uuid.UUID) {
	atomic.AddUint64(&countSent, 1)

	resp, err := httpClient.Get(server + "/api/ads?client_id=" + clientID.String())
	if err != nil {
		atomic.AddUint64(&countErrors, 1)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		atomic.AddUint64(&countNoFit, 1)
		_, _ = io.Copy(io.Discard, resp.Body)
		return
	default:
		atomic.AddUint64(&countErrors, 1)
		_, _ = io.Copy(io.Discard, resp.Body)
		return
	}

	var ad models.Ad
	if err := json.NewDecoder(resp.Body).Decode(&ad); err != nil {
		atomic.AddUint64(&countErrors, 1)
		return
	}
	atomic.AddUint64(&countServed, 1)

	if rng.Float64() >= clickRate {
		return
	}
	path := fmt.Sprintf("/api/ads/%s/click", ad.ID)
	status, err := postJSON(path, map[string]uuid.UUID{"client_id": clientID}, nil)
	if err != nil || status >= 300 {
		atomic.AddUint64(&countErrors, 1)
		return
	}
	atomic.AddUint64(&countClicks, 1)
}
