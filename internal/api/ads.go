package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/adserve-labs/adengine/internal/models"
)

// GetAdHandler serves the best ad for the requesting client.
func (s *Server) GetAdHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "ads_get"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	clientID, err := uuid.Parse(r.URL.Query().Get("client_id"))
	if err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid client_id"))
		return
	}
	ad, err := s.Ads.Serve(r.Context(), clientID)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

type clickRequest struct {
	ClientID uuid.UUID `json:"client_id"`
}

// ClickHandler records a click on a previously served ad.
func (s *Server) ClickHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "ads_click"
	status := http.StatusNoContent
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	campaignID, err := pathUUID(r, "campaignId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid json"))
		return
	}
	if req.ClientID == uuid.Nil {
		status = s.writeError(w, r, models.NewValidation("client_id is required"))
		return
	}
	if err := s.Ads.Click(r.Context(), campaignID, req.ClientID); err != nil {
		status = s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
