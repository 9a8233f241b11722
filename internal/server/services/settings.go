package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/clipforge/clipforge/internal/common"
	"github.com/clipforge/clipforge/internal/cryptox"
	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/server/models"
	"github.com/clipforge/clipforge/internal/server/repositories/repomanager"
)

// SettingsInput carries the fields of a settings update. Blank credential
// fields mean "keep whatever is stored", so the UI can resubmit the form
// without ever holding the plaintext keys.
type SettingsInput struct {
	WebhookURL     string
	AirtableAPIKey string
	AirtableBaseID string
	AirtableTable  string
	OpenAIAPIKey   string
}

// SettingsService stores per-user integration settings. API keys pass
// through the credential cipher on the way in and are only ever handed out
// decrypted via Credentials, or masked via View.
type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      *cryptox.Cipher
	log         logging.Logger
}

func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager, cipher *cryptox.Cipher, log logging.Logger) *SettingsService {
	return &SettingsService{db: db, repomanager: m, cipher: cipher, log: log}
}

// Save validates and persists the user's settings. Non-empty credentials are
// encrypted; empty ones keep the stored envelope.
func (s *SettingsService) Save(ctx context.Context, userID string, in *SettingsInput) error {
	if in.WebhookURL != "" && !strings.HasPrefix(in.WebhookURL, "http://") && !strings.HasPrefix(in.WebhookURL, "https://") {
		return fmt.Errorf("%w: webhook url must be http(s)", common.ErrorValidation)
	}

	repo := s.repomanager.Settings(s.db)

	stored, err := repo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error loading settings: %v", err)
		}
		stored = &models.Settings{UserID: userID}
	}

	next := &models.Settings{
		UserID:         userID,
		WebhookURL:     in.WebhookURL,
		AirtableBaseID: in.AirtableBaseID,
		AirtableTable:  in.AirtableTable,
		AirtableAPIKey: stored.AirtableAPIKey,
		OpenAIAPIKey:   stored.OpenAIAPIKey,
	}

	if in.AirtableAPIKey != "" {
		env, err := s.cipher.Encrypt(in.AirtableAPIKey)
		if err != nil {
			return fmt.Errorf("error encrypting airtable key: %v", err)
		}
		next.AirtableAPIKey = env
	}
	if in.OpenAIAPIKey != "" {
		env, err := s.cipher.Encrypt(in.OpenAIAPIKey)
		if err != nil {
			return fmt.Errorf("error encrypting openai key: %v", err)
		}
		next.OpenAIAPIKey = env
	}

	if err := repo.Upsert(ctx, next); err != nil {
		return fmt.Errorf("error saving settings: %v", err)
	}
	return nil
}

// View returns the user's settings in display form: decryptable credentials
// are masked, everything else passes through. A user with no stored row gets
// an empty view.
func (s *SettingsService) View(ctx context.Context, userID string) (*models.SettingsView, error) {
	repo := s.repomanager.Settings(s.db)

	stored, err := repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &models.SettingsView{}, nil
		}
		return nil, fmt.Errorf("error loading settings: %v", err)
	}

	return &models.SettingsView{
		WebhookURL:     stored.WebhookURL,
		AirtableAPIKey: cryptox.Mask(s.decrypt(ctx, userID, "airtable_api_key", stored.AirtableAPIKey)),
		AirtableBaseID: stored.AirtableBaseID,
		AirtableTable:  stored.AirtableTable,
		OpenAIAPIKey:   cryptox.Mask(s.decrypt(ctx, userID, "openai_api_key", stored.OpenAIAPIKey)),
	}, nil
}

// Credentials returns the decrypted, use-ready settings for the user.
// Envelopes that no longer decrypt (passphrase changed, corrupted row)
// come back empty rather than failing the whole read.
func (s *SettingsService) Credentials(ctx context.Context, userID string) (*models.Credentials, error) {
	repo := s.repomanager.Settings(s.db)

	stored, err := repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &models.Credentials{}, nil
		}
		return nil, fmt.Errorf("error loading settings: %v", err)
	}

	return &models.Credentials{
		WebhookURL:     stored.WebhookURL,
		AirtableAPIKey: s.decrypt(ctx, userID, "airtable_api_key", stored.AirtableAPIKey),
		AirtableBaseID: stored.AirtableBaseID,
		AirtableTable:  stored.AirtableTable,
		OpenAIAPIKey:   s.decrypt(ctx, userID, "openai_api_key", stored.OpenAIAPIKey),
	}, nil
}

func (s *SettingsService) decrypt(ctx context.Context, userID, field, envelope string) string {
	plaintext, err := s.cipher.Decrypt(envelope)
	if err != nil {
		s.log.Warn(ctx, "stored credential failed to decrypt", "user_id", userID, "field", field, "error", err)
		return ""
	}
	return plaintext
}
