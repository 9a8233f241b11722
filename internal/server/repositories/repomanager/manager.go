package repomanager

import (
	"context"
	"database/sql"

	"github.com/clipforge/clipforge/internal/dbx"
	"github.com/clipforge/clipforge/internal/server/repositories/refreshtokens"
	"github.com/clipforge/clipforge/internal/server/repositories/settings"
	"github.com/clipforge/clipforge/internal/server/repositories/trainingvideos"
	"github.com/clipforge/clipforge/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Settings(db dbx.DBTX) settings.Repository
	TrainingVideos(db dbx.DBTX) trainingvideos.Repository
}
