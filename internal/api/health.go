package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Day     uint32 `json:"current_date"`
}

// HealthHandler reports liveness together with the service name and the
// simulated day the engine is on, so probes double as a clock check.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "health"

	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Service: s.Config.ServiceName,
		Day:     s.Clock.Now(),
	})
	s.observe(endpoint, r.Method, http.StatusOK, start)
}
