package trainingvideos

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

func (r *PostgresRepository) Create(ctx context.Context, userID string, title string, storageKey string) (*models.TrainingVideo, error) {
	query :=
		`INSERT INTO training_videos (user_id, title, storage_key)
         VALUES ($1, $2, $3)
         RETURNING id, user_id, title, storage_key, created_at
		 `

	v := &models.TrainingVideo{}
	err := r.db.QueryRowContext(ctx, query, userID, title, storageKey).Scan(
		&v.ID, &v.UserID, &v.Title, &v.StorageKey, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return v, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.TrainingVideo, error) {
	query :=
		`SELECT id, user_id, title, storage_key, created_at
		 FROM training_videos
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.TrainingVideo
	for rows.Next() {
		v := &models.TrainingVideo{}
		if err := rows.Scan(&v.ID, &v.UserID, &v.Title, &v.StorageKey, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, id string) error {
	query := `DELETE FROM training_videos WHERE user_id = $1 AND id = $2 RETURNING id`

	var deleted string
	err := r.db.QueryRowContext(ctx, query, userID, id).Scan(&deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
