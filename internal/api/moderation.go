package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/adserve-labs/adengine/internal/models"
)

type moderationConfigRequest struct {
	IsActivate bool `json:"is_activate"`
}

// ModerationConfigHandler flips the auto-moderate toggle.
func (s *Server) ModerationConfigHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "moderation_config"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	var req moderationConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid json"))
		return
	}
	if err := s.Moderation.SetAutoModerate(r.Context(), req.IsActivate); err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// ListWordsHandler returns the blocklist.
func (s *Server) ListWordsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "moderation_words_list"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	words, err := s.Moderation.ListWords(r.Context())
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, words)
}

// AddWordsHandler appends words to the blocklist.
func (s *Server) AddWordsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "moderation_words_add"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	var words []string
	if err := json.NewDecoder(r.Body).Decode(&words); err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid json"))
		return
	}
	if err := s.Moderation.AddWords(r.Context(), words); err != nil {
		status = s.writeError(w, r, err)
		return
	}
	updated, err := s.Moderation.ListWords(r.Context())
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// RemoveWordsHandler removes words from the blocklist.
func (s *Server) RemoveWordsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "moderation_words_remove"
	status := http.StatusNoContent
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	var words []string
	if err := json.NewDecoder(r.Body).Decode(&words); err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid json"))
		return
	}
	if err := s.Moderation.RemoveWords(r.Context(), words); err != nil {
		status = s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
