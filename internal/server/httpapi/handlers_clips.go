package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/clipforge/clipforge/internal/common"
	"github.com/clipforge/clipforge/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type clipResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	Duration      string    `json:"duration"`
	Size          string    `json:"size"`
	ViralityScore float64   `json:"virality_score"`
	HasFile       bool      `json:"has_file"`
	CreatedAt     time.Time `json:"created_at"`
}

func clipToResponse(c models.Clip) clipResponse {
	return clipResponse{
		ID:            c.ID,
		Name:          c.Name,
		Status:        c.Status,
		Duration:      c.Duration,
		Size:          c.Size,
		ViralityScore: c.ViralityScore,
		HasFile:       c.StorageKey != "",
		CreatedAt:     c.CreatedAt,
	}
}

func (s *Server) handleListClips(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	clips, err := s.clips.List(r.Context(), userID)
	if err != nil {
		s.respondClipError(w, r, err)
		return
	}

	out := make([]clipResponse, 0, len(clips))
	for _, c := range clips {
		out = append(out, clipToResponse(c))
	}
	respondSuccess(w, http.StatusOK, out)
}

func (s *Server) handleGetClip(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	clipID := chi.URLParam(r, "id")

	clip, err := s.clips.Get(r.Context(), userID, clipID)
	if err != nil {
		s.respondClipError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, clipToResponse(*clip))
}

func (s *Server) handleAnalyzeClip(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	clipID := chi.URLParam(r, "id")

	analysis, err := s.clips.Analyze(r.Context(), userID, clipID)
	if err != nil {
		s.respondClipError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{
		"clip_id":    analysis.ClipID,
		"suggestion": analysis.Suggestion,
		"model":      analysis.Model,
	})
}

func (s *Server) handleDownloadClip(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	clipID := chi.URLParam(r, "id")

	clip, err := s.clips.Get(r.Context(), userID, clipID)
	if err != nil {
		s.respondClipError(w, r, err)
		return
	}
	if clip.StorageKey == "" {
		respondError(w, http.StatusNotFound, codeNotFound, "clip has no downloadable file")
		return
	}

	url, err := s.storage.GetPresignedGetUrl(r.Context(), clip.StorageKey)
	if err != nil {
		s.log.Error(r.Context(), "presigning download failed", "clip_id", clipID, "error", err)
		respondError(w, http.StatusInternalServerError, codeInternal, "could not create download link")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) respondClipError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrIntegrationNotConfigured):
		respondError(w, http.StatusBadRequest, codeNotConfigured, "Airtable integration is not configured")
	case errors.Is(err, common.ErrorNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, "clip not found")
	default:
		s.log.Error(r.Context(), "clip operation failed", "error", err)
		respondError(w, http.StatusBadGateway, codeUpstream, "upstream service error")
	}
}
