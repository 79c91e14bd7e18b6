package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/adserve-labs/adengine/internal/models"
)

// BulkClientsHandler upserts a batch of client profiles.
func (s *Server) BulkClientsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "clients_bulk"
	status := http.StatusCreated
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	var clients []models.Client
	if err := json.NewDecoder(r.Body).Decode(&clients); err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid json"))
		return
	}
	for _, c := range clients {
		if err := c.Validate(); err != nil {
			status = s.writeError(w, r, err)
			return
		}
	}
	if err := s.PG.UpsertClients(r.Context(), clients); err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, clients)
}

// GetClientHandler fetches one client profile.
func (s *Server) GetClientHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "clients_get"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid client id"))
		return
	}
	client, err := s.PG.GetClient(r.Context(), id)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// BulkAdvertisersHandler upserts a batch of advertiser profiles.
func (s *Server) BulkAdvertisersHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "advertisers_bulk"
	status := http.StatusCreated
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	var advertisers []models.Advertiser
	if err := json.NewDecoder(r.Body).Decode(&advertisers); err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid json"))
		return
	}
	for _, a := range advertisers {
		if err := a.Validate(); err != nil {
			status = s.writeError(w, r, err)
			return
		}
	}
	if err := s.PG.UpsertAdvertisers(r.Context(), advertisers); err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, advertisers)
}

// GetAdvertiserHandler fetches one advertiser profile.
func (s *Server) GetAdvertiserHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "advertisers_get"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid advertiser id"))
		return
	}
	advertiser, err := s.PG.GetAdvertiser(r.Context(), id)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, advertiser)
}

// MLScoreHandler upserts the relevance score for a client/advertiser pair.
func (s *Server) MLScoreHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "ml_scores"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	var score models.MLScore
	if err := json.NewDecoder(r.Body).Decode(&score); err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid json"))
		return
	}
	if err := s.PG.SetMLScore(r.Context(), score); err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}
