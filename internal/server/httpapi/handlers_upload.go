package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/clipforge/clipforge/internal/server/metrics"
	"github.com/clipforge/clipforge/internal/server/services"
)

type uploadResponse struct {
	Message string `json:"message"`
}

// handleUpload receives a multipart video upload and relays it to the user's
// configured webhook destination. The file never stays on disk past this
// request.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	creds, err := s.settings.Credentials(r.Context(), userID)
	if err != nil {
		s.log.Error(r.Context(), "loading credentials failed", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, codeInternal, "could not load settings")
		return
	}
	if creds.WebhookURL == "" {
		respondError(w, http.StatusBadRequest, codeValidation, "no webhook URL configured")
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "expected a multipart/form-data request")
		return
	}

	metrics.ActiveUploads.Inc()
	defer metrics.ActiveUploads.Dec()

	upload, err := s.relay.Receive(r.Context(), mr)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoFile):
			respondError(w, http.StatusBadRequest, codeValidation, "No file uploaded")
		case errors.Is(err, services.ErrMissingFields):
			respondError(w, http.StatusBadRequest, codeValidation, "clip_size and clip_duration are required")
		case errors.Is(err, services.ErrFileTooLarge):
			respondError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "file exceeds the upload size limit")
		default:
			s.log.Error(r.Context(), "receiving upload failed", "user_id", userID, "error", err)
			respondError(w, http.StatusInternalServerError, codeInternal, "could not read the upload")
		}
		return
	}
	defer s.relay.Cleanup(r.Context(), upload)

	s.log.Info(r.Context(), "forwarding upload", "user_id", userID,
		"file_name", upload.FileName, "size", upload.Size, "clip_count", upload.ClipCount)

	message, err := s.relay.Forward(r.Context(), creds.WebhookURL, upload)
	if err != nil {
		var dErr *services.DestinationError
		if errors.As(err, &dErr) {
			respondError(w, http.StatusBadGateway, codeUpstream,
				fmt.Sprintf("destination returned status %d: %s", dErr.Status, dErr.Body))
			return
		}
		s.log.Error(r.Context(), "forwarding upload failed", "user_id", userID, "error", err)
		respondError(w, http.StatusBadGateway, codeUpstream, "could not reach the webhook destination")
		return
	}

	respondSuccess(w, http.StatusOK, uploadResponse{Message: message})
}
