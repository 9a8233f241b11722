package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clipforge/clipforge/internal/common"
	"github.com/clipforge/clipforge/internal/dbx"
	"github.com/clipforge/clipforge/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Settings, error) {
	query :=
		`SELECT user_id, webhook_url, airtable_api_key, airtable_base_id, airtable_table, openai_api_key, updated_at
		 FROM settings
		 WHERE user_id = $1
		 `

	s := &models.Settings{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.WebhookURL, &s.AirtableAPIKey, &s.AirtableBaseID, &s.AirtableTable, &s.OpenAIAPIKey, &s.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, s *models.Settings) error {
	query :=
		`INSERT INTO settings (user_id, webhook_url, airtable_api_key, airtable_base_id, airtable_table, openai_api_key, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		     webhook_url = EXCLUDED.webhook_url,
		     airtable_api_key = EXCLUDED.airtable_api_key,
		     airtable_base_id = EXCLUDED.airtable_base_id,
		     airtable_table = EXCLUDED.airtable_table,
		     openai_api_key = EXCLUDED.openai_api_key,
		     updated_at = now()
		 `

	_, err := r.db.ExecContext(ctx, query,
		s.UserID, s.WebhookURL, s.AirtableAPIKey, s.AirtableBaseID, s.AirtableTable, s.OpenAIAPIKey)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
