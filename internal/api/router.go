package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adserve-labs/adengine/internal/middleware"
)

// NewRouter wires every endpoint onto a gorilla router. The /api prefix
// covers the domain surface; health and metrics sit at the root.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.WithTraceLogger(s.Logger))

	r.HandleFunc("/healthz", s.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/clients/bulk", s.BulkClientsHandler).Methods("POST")
	api.HandleFunc("/clients/{id}", s.GetClientHandler).Methods("GET")
	api.HandleFunc("/advertisers/bulk", s.BulkAdvertisersHandler).Methods("POST")
	api.HandleFunc("/advertisers/{id}", s.GetAdvertiserHandler).Methods("GET")
	api.HandleFunc("/ml-scores", s.MLScoreHandler).Methods("POST")

	api.HandleFunc("/advertisers/{advertiserId}/campaigns", s.CreateCampaignHandler).Methods("POST")
	api.HandleFunc("/advertisers/{advertiserId}/campaigns", s.ListCampaignsHandler).Methods("GET")
	api.HandleFunc("/advertisers/{advertiserId}/campaigns/{campaignId}", s.GetCampaignHandler).Methods("GET")
	api.HandleFunc("/advertisers/{advertiserId}/campaigns/{campaignId}", s.UpdateCampaignHandler).Methods("PUT")
	api.HandleFunc("/advertisers/{advertiserId}/campaigns/{campaignId}", s.DeleteCampaignHandler).Methods("DELETE")
	api.HandleFunc("/advertisers/{advertiserId}/campaigns/{campaignId}/generate-text", s.GenerateTextHandler).Methods("PATCH")

	api.HandleFunc("/advertisers/{advertiserId}/campaigns/{campaignId}/images", s.ListImagesHandler).Methods("GET")
	api.HandleFunc("/advertisers/{advertiserId}/campaigns/{campaignId}/images/{filename}", s.UploadImageHandler).Methods("PUT")
	api.HandleFunc("/advertisers/{advertiserId}/campaigns/{campaignId}/images/{filename}", s.GetImageHandler).Methods("GET")
	api.HandleFunc("/advertisers/{advertiserId}/campaigns/{campaignId}/images/{filename}", s.DeleteImageHandler).Methods("DELETE")

	api.HandleFunc("/ads", s.GetAdHandler).Methods("GET")
	api.HandleFunc("/ads/{campaignId}/click", s.ClickHandler).Methods("POST")

	api.HandleFunc("/time/advance", s.AdvanceTimeHandler).Methods("POST")

	api.HandleFunc("/stats/campaigns/{campaignId}", s.CampaignStatsHandler).Methods("GET")
	api.HandleFunc("/stats/campaigns/{campaignId}/daily", s.CampaignDailyStatsHandler).Methods("GET")
	api.HandleFunc("/stats/advertisers/{advertiserId}/campaigns", s.AdvertiserStatsHandler).Methods("GET")
	api.HandleFunc("/stats/advertisers/{advertiserId}/campaigns/daily", s.AdvertiserDailyStatsHandler).Methods("GET")

	api.HandleFunc("/moderate/config", s.ModerationConfigHandler).Methods("POST")
	api.HandleFunc("/moderate/words", s.ListWordsHandler).Methods("GET")
	api.HandleFunc("/moderate/words", s.AddWordsHandler).Methods("POST")
	api.HandleFunc("/moderate/words", s.RemoveWordsHandler).Methods("DELETE")

	r.NotFoundHandler = http.NotFoundHandler()
	return r
}
