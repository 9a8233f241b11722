package settings

import (
	"context"

	"github.com/clipforge/clipforge/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*models.Settings, error)
	Upsert(ctx context.Context, s *models.Settings) error
}
