package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/adserve-labs/adengine/internal/models"
	"github.com/adserve-labs/adengine/internal/service"
)

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, models.NewValidation("invalid %s", name)
	}
	return id, nil
}

// CreateCampaignHandler creates a campaign under an advertiser.
func (s *Server) CreateCampaignHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaigns_create"
	status := http.StatusCreated
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	advertiserID, err := pathUUID(r, "advertiserId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	var payload models.Campaign
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid json"))
		return
	}
	created, err := s.Lifecycle.Create(r.Context(), advertiserID, payload)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetCampaignHandler fetches one campaign.
func (s *Server) GetCampaignHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaigns_get"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	advertiserID, err := pathUUID(r, "advertiserId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	campaignID, err := pathUUID(r, "campaignId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	campaign, err := s.Lifecycle.Get(r.Context(), advertiserID, campaignID)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// ListCampaignsHandler returns one page of campaigns with the total count
// in the x-total-count header.
func (s *Server) ListCampaignsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaigns_list"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	advertiserID, err := pathUUID(r, "advertiserId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	page, size := 1, 10
	if v := r.URL.Query().Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 0 {
			status = s.writeError(w, r, models.NewValidation("invalid page"))
			return
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil || size < 0 {
			status = s.writeError(w, r, models.NewValidation("invalid size"))
			return
		}
	}

	total, campaigns, err := s.Lifecycle.List(r.Context(), advertiserID, page, size)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	w.Header().Set("x-total-count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, campaigns)
}

// UpdateCampaignHandler applies a full campaign payload.
func (s *Server) UpdateCampaignHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaigns_update"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	advertiserID, err := pathUUID(r, "advertiserId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	campaignID, err := pathUUID(r, "campaignId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	var payload models.Campaign
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid json"))
		return
	}
	updated, err := s.Lifecycle.Update(r.Context(), advertiserID, campaignID, payload)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteCampaignHandler removes a campaign and everything that hangs off it.
func (s *Server) DeleteCampaignHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaigns_delete"
	status := http.StatusNoContent
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	advertiserID, err := pathUUID(r, "advertiserId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	campaignID, err := pathUUID(r, "campaignId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	if err := s.Lifecycle.Delete(r.Context(), advertiserID, campaignID); err != nil {
		status = s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type generateRequest struct {
	Mode string `json:"mode"`
}

// GenerateTextHandler rewrites campaign creatives with generated copy.
func (s *Server) GenerateTextHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaigns_generate"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	advertiserID, err := pathUUID(r, "advertiserId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	campaignID, err := pathUUID(r, "campaignId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid json"))
		return
	}
	if req.Mode == "" {
		req.Mode = service.GenerateAll
	}
	updated, err := s.Lifecycle.Generate(r.Context(), advertiserID, campaignID, req.Mode)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
