package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/adserve-labs/adengine/internal/blob"
	"github.com/adserve-labs/adengine/internal/models"
)

// UploadImageHandler stores one campaign image from the raw request body.
func (s *Server) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "images_upload"
	status := http.StatusCreated
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
	if _, err := s.Lifecycle.Get(r.Context(), advertiserID, campaignID); err != nil {
		status = s.writeError(w, r, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, s.Config.MaxImageSize+1))
	if err != nil {
		status = s.writeError(w, r, models.NewPayload("failed to read body"))
		return
	}
	img := blob.Image{
		Filename:    mux.Vars(r)["filename"],
		ContentType: r.Header.Get("Content-Type"),
		Data:        data,
	}
	if err := s.Images.Put(r.Context(), campaignID, img); err != nil {
		status = s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// GetImageHandler streams one stored image back.
func (s *Server) GetImageHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "images_get"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	campaignID, err := pathUUID(r, "campaignId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	img, err := s.Images.Get(r.Context(), campaignID, mux.Vars(r)["filename"])
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

// ListImagesHandler returns the campaign's image filenames.
func (s *Server) ListImagesHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "images_list"
	status := http.StatusOK
	defer func() { s.observe(endpoint, r.Method, status, start) }()

	campaignID, err := pathUUID(r, "campaignId")
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	names, err := s.Images.List(r.Context(), campaignID)
	if err != nil {
		status = s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// DeleteImageHandler removes one stored image.
func (s *Server) DeleteImageHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "images_delete"
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
	if _, err := s.Lifecycle.Get(r.Context(), advertiserID, campaignID); err != nil {
		status = s.writeError(w, r, err)
		return
	}
	if err := s.Images.Delete(r.Context(), campaignID, mux.Vars(r)["filename"]); err != nil {
		status = s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
