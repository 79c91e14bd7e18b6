package api

import (
	"net/http"
	"time"
)

// CampaignStatsHandler returns the total aggregate for one campaign.
func (s *Server) CampaignStatsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "stats_campaign"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	campaignID, err := pathUUID(r, "campaignId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	stat, err := s.Stats.CampaignTotal(r.Context(), campaignID)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stat)
}

// CampaignDailyStatsHandler returns per-day rows for one campaign.
func (s *Server) CampaignDailyStatsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "stats_campaign_daily"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	campaignID, err := pathUUID(r, "campaignId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	daily, err := s.Stats.CampaignDaily(r.Context(), campaignID)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, daily)
}

// AdvertiserStatsHandler returns the aggregate across an advertiser's
// campaigns.
func (s *Server) AdvertiserStatsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "stats_advertiser"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	advertiserID, err := pathUUID(r, "advertiserId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	stat, err := s.Stats.AdvertiserTotal(r.Context(), advertiserID)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stat)
}

// AdvertiserDailyStatsHandler returns per-day rows summed across an
// advertiser's campaigns, newest day first.
func (s *Server) AdvertiserDailyStatsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "stats_advertiser_daily"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	advertiserID, err := pathUUID(r, "advertiserId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	daily, err := s.Stats.AdvertiserDaily(r.Context(), advertiserID)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, daily)
}
