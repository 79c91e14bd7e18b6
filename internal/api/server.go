package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/adserve-labs/adengine/internal/blob"
	"github.com/adserve-labs/adengine/internal/clock"
	"github.com/adserve-labs/adengine/internal/config"
	"github.com/adserve-labs/adengine/internal/db"
	"github.com/adserve-labs/adengine/internal/middleware"
	"github.com/adserve-labs/adengine/internal/models"
	"github.com/adserve-labs/adengine/internal/moderation"
	"github.com/adserve-labs/adengine/internal/observability"
	"github.com/adserve-labs/adengine/internal/service"
	"github.com/adserve-labs/adengine/internal/stats"
)

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger     *zap.Logger
	PG         *db.Postgres
	Ads        *service.AdService
	Lifecycle  *service.CampaignLifecycle
	Stats      *stats.Engine
	Moderation *moderation.Service
	Clock      *clock.Service
	Images     blob.Store
	Metrics    observability.MetricsRegistry
	Config     config.Config
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, pg *db.Postgres, ads *service.AdService,
	lifecycle *service.CampaignLifecycle, statsEngine *stats.Engine,
	mod *moderation.Service, clk *clock.Service, images blob.Store,
	metrics observability.MetricsRegistry, cfg config.Config) *Server {
	return &Server{
		Logger:     logger,
		PG:         pg,
		Ads:        ads,
		Lifecycle:  lifecycle,
		Stats:      statsEngine,
		Moderation: mod,
		Clock:      clk,
		Images:     images,
		Metrics:    metrics,
		Config:     cfg,
	}
}

// helper function to write JSON response
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps the error taxonomy onto HTTP status codes.
func statusOf(err error) int {
	switch models.KindOf(err) {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindConflict:
		return http.StatusConflict
	case models.KindCensorship:
		return http.StatusNotAcceptable
	case models.KindTextGenUnavailable:
		return http.StatusServiceUnavailable
	case models.KindCacheUnavailable:
		return http.StatusServiceUnavailable
	case models.KindPayload:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError translates a service error into its status code and logs
// unexpected failures through the request's trace-annotated logger.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) int {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		middleware.LoggerFromContext(r.Context(), s.Logger).Error("request failed", zap.Error(err))
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return status
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
	return status
}

// observe records the request counter and latency for one handler call.
func (s *Server) observe(endpoint, method string, status int, start time.Time) {
	s.Metrics.IncrementRequests(endpoint, method, strconv.Itoa(status))
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
