package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

type trainingVideoResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handlePresignTraining(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		respondError(w, http.StatusBadRequest, codeValidation, "title is required")
		return
	}

	video, url, err := s.storage.PresignTrainingUpload(r.Context(), userID, strings.TrimSpace(req.Title))
	if err != nil {
		s.log.Error(r.Context(), "presigning training upload failed", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, codeInternal, "could not create upload link")
		return
	}

	respondSuccess(w, http.StatusCreated, map[string]string{
		"id":         video.ID,
		"upload_url": url,
	})
}

func (s *Server) handleListTraining(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	videos, err := s.storage.ListTrainingVideos(r.Context(), userID)
	if err != nil {
		s.log.Error(r.Context(), "listing training videos failed", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, codeInternal, "could not list training videos")
		return
	}

	out := make([]trainingVideoResponse, 0, len(videos))
	for _, v := range videos {
		out = append(out, trainingVideoResponse{ID: v.ID, Title: v.Title, CreatedAt: v.CreatedAt})
	}
	respondSuccess(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTraining(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.storage.DeleteTrainingVideo(r.Context(), userID, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(w, http.StatusNotFound, codeNotFound, "training video not found")
			return
		}
		s.log.Error(r.Context(), "deleting training video failed", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, codeInternal, "could not delete training video")
		return
	}

	respondSuccess(w, http.StatusOK, map[string]string{"id": id})
}
