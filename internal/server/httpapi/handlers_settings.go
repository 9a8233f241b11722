package httpapi

import (
	"errors"
	"net/http"

	"github.com/clipforge/clipforge/internal/common"
	"github.com/clipforge/clipforge/internal/server/services"
	"github.com/goccy/go-json"
)

type settingsRequest struct {
	WebhookURL     string `json:"webhook_url"`
	AirtableAPIKey string `json:"airtable_api_key"`
	AirtableBaseID string `json:"airtable_base_id"`
	AirtableTable  string `json:"airtable_table"`
	OpenAIAPIKey   string `json:"openai_api_key"`
}

type settingsResponse struct {
	WebhookURL     string `json:"webhook_url"`
	AirtableAPIKey string `json:"airtable_api_key"`
	AirtableBaseID string `json:"airtable_base_id"`
	AirtableTable  string `json:"airtable_table"`
	OpenAIAPIKey   string `json:"openai_api_key"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	view, err := s.settings.View(r.Context(), userID)
	if err != nil {
		s.log.Error(r.Context(), "loading settings failed", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, codeInternal, "could not load settings")
		return
	}

	respondSuccess(w, http.StatusOK, settingsResponse{
		WebhookURL:     view.WebhookURL,
		AirtableAPIKey: view.AirtableAPIKey,
		AirtableBaseID: view.AirtableBaseID,
		AirtableTable:  view.AirtableTable,
		OpenAIAPIKey:   view.OpenAIAPIKey,
	})
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "malformed request body")
		return
	}

	in := &services.SettingsInput{
		WebhookURL:     req.WebhookURL,
		AirtableAPIKey: req.AirtableAPIKey,
		AirtableBaseID: req.AirtableBaseID,
		AirtableTable:  req.AirtableTable,
		OpenAIAPIKey:   req.OpenAIAPIKey,
	}
	if err := s.settings.Save(r.Context(), userID, in); err != nil {
		if errors.Is(err, common.ErrorValidation) {
			respondError(w, http.StatusBadRequest, codeValidation, err.Error())
			return
		}
		s.log.Error(r.Context(), "saving settings failed", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, codeInternal, "could not save settings")
		return
	}

	s.handleGetSettings(w, r)
}
