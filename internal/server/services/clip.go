package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/clipforge/clipforge/internal/common"
	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/server/clients/airtable"
	"github.com/clipforge/clipforge/internal/server/clients/openai"
	"github.com/clipforge/clipforge/internal/server/metrics"
	"github.com/clipforge/clipforge/internal/server/models"
	"github.com/sony/gobreaker/v2"
)

// ClipService reads the user's clip catalog from their Airtable base and
// generates repurposing suggestions through OpenAI. Both upstreams sit
// behind circuit breakers so a flapping third party fails fast instead of
// piling up requests.
type ClipService struct {
	settings *SettingsService
	airtable *airtable.Client
	openai   *openai.Client

	listBreaker   *gobreaker.CircuitBreaker[[]airtable.Record]
	recordBreaker *gobreaker.CircuitBreaker[*airtable.Record]
	chatBreaker   *gobreaker.CircuitBreaker[string]

	log logging.Logger
}

func NewClipService(settings *SettingsService, at *airtable.Client, oa *openai.Client, log logging.Logger) *ClipService {
	return &ClipService{
		settings:      settings,
		airtable:      at,
		openai:        oa,
		listBreaker:   gobreaker.NewCircuitBreaker[[]airtable.Record](breakerSettings("airtable_list", log)),
		recordBreaker: gobreaker.NewCircuitBreaker[*airtable.Record](breakerSettings("airtable_record", log)),
		chatBreaker:   gobreaker.NewCircuitBreaker[string](breakerSettings("openai_chat", log)),
		log:           log,
	}
}

func breakerSettings(name string, log logging.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(n string, from, to gobreaker.State) {
			metrics.BreakerStateChanges.WithLabelValues(n, to.String()).Inc()
			log.Warn(context.Background(), "circuit breaker state change", "breaker", n, "from", from.String(), "to", to.String())
		},
	}
}

// List returns the user's clips from their configured Airtable table.
func (s *ClipService) List(ctx context.Context, userID string) ([]models.Clip, error) {
	creds, err := s.settings.Credentials(ctx, userID)
	if err != nil {
		return nil, err
	}
	if creds.AirtableAPIKey == "" || creds.AirtableBaseID == "" || creds.AirtableTable == "" {
		return nil, common.ErrIntegrationNotConfigured
	}

	records, err := s.listBreaker.Execute(func() ([]airtable.Record, error) {
		return s.airtable.ListRecords(ctx, creds.AirtableAPIKey, creds.AirtableBaseID, creds.AirtableTable)
	})
	if err != nil {
		metrics.IntegrationCallsTotal.WithLabelValues("airtable", "error").Inc()
		return nil, fmt.Errorf("error listing clips: %w", err)
	}
	metrics.IntegrationCallsTotal.WithLabelValues("airtable", "ok").Inc()

	clips := make([]models.Clip, 0, len(records))
	for _, rec := range records {
		clips = append(clips, clipFromRecord(rec))
	}
	return clips, nil
}

// Get returns a single clip by Airtable record id.
func (s *ClipService) Get(ctx context.Context, userID, clipID string) (*models.Clip, error) {
	creds, err := s.settings.Credentials(ctx, userID)
	if err != nil {
		return nil, err
	}
	if creds.AirtableAPIKey == "" || creds.AirtableBaseID == "" || creds.AirtableTable == "" {
		return nil, common.ErrIntegrationNotConfigured
	}

	rec, err := s.recordBreaker.Execute(func() (*airtable.Record, error) {
		return s.airtable.GetRecord(ctx, creds.AirtableAPIKey, creds.AirtableBaseID, creds.AirtableTable, clipID)
	})
	if err != nil {
		metrics.IntegrationCallsTotal.WithLabelValues("airtable", "error").Inc()
		var apiErr *airtable.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error fetching clip: %w", err)
	}
	metrics.IntegrationCallsTotal.WithLabelValues("airtable", "ok").Inc()

	clip := clipFromRecord(*rec)
	return &clip, nil
}

// Analyze asks the LLM for a repurposing suggestion for the given clip.
func (s *ClipService) Analyze(ctx context.Context, userID, clipID string) (*models.ClipAnalysis, error) {
	creds, err := s.settings.Credentials(ctx, userID)
	if err != nil {
		return nil, err
	}
	if creds.OpenAIAPIKey == "" {
		return nil, common.ErrIntegrationNotConfigured
	}

	clip, err := s.Get(ctx, userID, clipID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"You help creators repurpose long-form video. Clip %q (status %s, duration %s, virality score %.2f). "+
			"Suggest, in two sentences, how to repurpose this clip for short-form platforms.",
		clip.Name, clip.Status, clip.Duration, clip.ViralityScore)

	suggestion, err := s.chatBreaker.Execute(func() (string, error) {
		return s.openai.ChatCompletion(ctx, creds.OpenAIAPIKey, openai.DefaultModel, []openai.Message{
			{Role: "user", Content: prompt},
		})
	})
	if err != nil {
		metrics.IntegrationCallsTotal.WithLabelValues("openai", "error").Inc()
		return nil, fmt.Errorf("error analyzing clip: %w", err)
	}
	metrics.IntegrationCallsTotal.WithLabelValues("openai", "ok").Inc()

	return &models.ClipAnalysis{ClipID: clipID, Suggestion: suggestion, Model: openai.DefaultModel}, nil
}

func clipFromRecord(rec airtable.Record) models.Clip {
	c := models.Clip{ID: rec.ID, CreatedAt: rec.CreatedTime}
	c.Name = stringField(rec.Fields, "Name")
	c.Status = stringField(rec.Fields, "Status")
	c.Duration = stringField(rec.Fields, "Duration")
	c.Size = stringField(rec.Fields, "Size")
	c.StorageKey = stringField(rec.Fields, "Storage Key")
	c.ViralityScore = floatField(rec.Fields, "Virality Score")
	return c
}

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func floatField(fields map[string]any, name string) float64 {
	switch v := fields[name].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}
