package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/adserve-labs/adengine/internal/models"
)

type advanceRequest struct {
	CurrentDate uint32 `json:"current_date"`
}

// AdvanceTimeHandler moves the simulated clock forward and echoes the
// resulting day.
func (s *Server) AdvanceTimeHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "time_advance"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = s.writeError(w, r, models.NewValidation("invalid json"))
		return
	}
	day, err := s.Clock.Advance(r.Context(), req.CurrentDate)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, advanceRequest{CurrentDate: day})
}
