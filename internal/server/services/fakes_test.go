package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/clipforge/clipforge/internal/dbx"
	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/server/models"
	refreshtokensrepo "github.com/clipforge/clipforge/internal/server/repositories/refreshtokens"
	settingsrepo "github.com/clipforge/clipforge/internal/server/repositories/settings"
	trainingvideosrepo "github.com/clipforge/clipforge/internal/server/repositories/trainingvideos"
	usersrepo "github.com/clipforge/clipforge/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l nopLogger) With(args ...any) logging.Logger                  { return l }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr error

	createErr error
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	return f.createErr
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	return f.delErr
}

type fakeSettingsRepo struct {
	getOut *models.Settings
	getErr error

	upserted  *models.Settings
	upsertErr error
}

func (f *fakeSettingsRepo) Get(ctx context.Context, userID string) (*models.Settings, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, s *models.Settings) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = s
	return nil
}

type fakeTrainingVideosRepo struct {
	createOut *models.TrainingVideo
	createErr error

	listOut []*models.TrainingVideo
	listErr error

	delErr error
}

func (f *fakeTrainingVideosRepo) Create(ctx context.Context, userID, title, storageKey string) (*models.TrainingVideo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeTrainingVideosRepo) ListByUser(ctx context.Context, userID string) ([]*models.TrainingVideo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeTrainingVideosRepo) Delete(ctx context.Context, userID, id string) error {
	return f.delErr
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	s  *fakeSettingsRepo
	tv *fakeTrainingVideosRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error             { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                   { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository   { return m.r }
func (m *fakeRepoManager) Settings(db dbx.DBTX) settingsrepo.Repository             { return m.s }
func (m *fakeRepoManager) TrainingVideos(db dbx.DBTX) trainingvideosrepo.Repository { return m.tv }
