package trainingvideos

import (
	"context"

	"github.com/clipforge/clipforge/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID string, title string, storageKey string) (*models.TrainingVideo, error)
	ListByUser(ctx context.Context, userID string) ([]*models.TrainingVideo, error)
	Delete(ctx context.Context, userID string, id string) error
}
