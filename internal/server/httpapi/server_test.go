package httpapi

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/clipforge/clipforge/internal/common"
	"github.com/clipforge/clipforge/internal/cryptox"
	"github.com/clipforge/clipforge/internal/dbx"
	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/server/auth"
	"github.com/clipforge/clipforge/internal/server/clients/airtable"
	"github.com/clipforge/clipforge/internal/server/clients/openai"
	"github.com/clipforge/clipforge/internal/server/config"
	"github.com/clipforge/clipforge/internal/server/models"
	refreshtokensrepo "github.com/clipforge/clipforge/internal/server/repositories/refreshtokens"
	settingsrepo "github.com/clipforge/clipforge/internal/server/repositories/settings"
	trainingvideosrepo "github.com/clipforge/clipforge/internal/server/repositories/trainingvideos"
	usersrepo "github.com/clipforge/clipforge/internal/server/repositories/users"
	"github.com/clipforge/clipforge/internal/server/services"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l nopLogger) With(args ...any) logging.Logger                  { return l }

// In-memory repositories so the handler tests exercise the full service
// stack without a database.

type memUsersRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo { return &memUsersRepo{users: map[string]*models.User{}} }

func (m *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	stored := *u
	stored.ID = uuid.NewString()
	m.users[u.UserName] = &stored
	return &stored, nil
}

func (m *memUsersRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type memRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func newMemRefreshRepo() *memRefreshRepo {
	return &memRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (m *memRefreshRepo) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (m *memRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (m *memRefreshRepo) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

type memSettingsRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Settings
}

func newMemSettingsRepo() *memSettingsRepo { return &memSettingsRepo{rows: map[string]*models.Settings{}} }

func (m *memSettingsRepo) Get(ctx context.Context, userID string) (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (m *memSettingsRepo) Upsert(ctx context.Context, s *models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *s
	m.rows[s.UserID] = &stored
	return nil
}

type memTrainingRepo struct {
	mu   sync.Mutex
	rows map[string]*models.TrainingVideo
}

func newMemTrainingRepo() *memTrainingRepo {
	return &memTrainingRepo{rows: map[string]*models.TrainingVideo{}}
}

func (m *memTrainingRepo) Create(ctx context.Context, userID, title, storageKey string) (*models.TrainingVideo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := &models.TrainingVideo{ID: uuid.NewString(), UserID: userID, Title: title, StorageKey: storageKey, CreatedAt: time.Now()}
	m.rows[v.ID] = v
	return v, nil
}

func (m *memTrainingRepo) ListByUser(ctx context.Context, userID string) ([]*models.TrainingVideo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.TrainingVideo
	for _, v := range m.rows {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memTrainingRepo) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[id]
	if !ok || v.UserID != userID {
		return common.ErrorNotFound
	}
	delete(m.rows, id)
	return nil
}

type memRepoManager struct {
	u  *memUsersRepo
	r  *memRefreshRepo
	s  *memSettingsRepo
	tv *memTrainingRepo
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{
		u:  newMemUsersRepo(),
		r:  newMemRefreshRepo(),
		s:  newMemSettingsRepo(),
		tv: newMemTrainingRepo(),
	}
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error             { return nil }
func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository                   { return m.u }
func (m *memRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository   { return m.r }
func (m *memRepoManager) Settings(db dbx.DBTX) settingsrepo.Repository             { return m.s }
func (m *memRepoManager) TrainingVideos(db dbx.DBTX) trainingvideosrepo.Repository { return m.tv }

// testHarness bundles a fully wired Server with its backing fakes.
type testHarness struct {
	server *Server
	rm     *memRepoManager
	cfg    *config.Config
	cipher *cryptox.Cipher
	ts     *httptest.Server
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	// A real in-memory database backs the transactional paths (refresh
	// token rotation runs inside dbx.WithTx); the repositories themselves
	// stay in memory.
	db, err := sql.Open("sqlite", "file:httpapi_tests?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	db.SetMaxOpenConns(4)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		ForwardTimeout:               30 * time.Second,
		MaxUploadBytes:               config.DefaultMaxUploadBytes,
		S3Region:                     "us-east-1",
		S3RootUser:                   "minioadmin",
		S3RootPassword:               "minioadmin",
		S3BaseEndpoint:               "http://127.0.0.1:9000",
		S3Bucket:                     "clipforge",
	}

	cipher, err := cryptox.New("test-passphrase")
	if err != nil {
		t.Fatalf("cryptox.New error: %v", err)
	}

	rm := newMemRepoManager()
	log := nopLogger{}

	users := services.NewUserService(db, rm, cfg)
	settings := services.NewSettingsService(db, rm, cipher, log)
	relay := services.NewRelayService(cfg, log)
	clips := services.NewClipService(settings, airtable.New(), openai.New(), log)
	storage := services.NewStorageService(db, rm, cfg)

	srv := NewServer(cfg, log, users, settings, relay, clips, storage)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &testHarness{server: srv, rm: rm, cfg: cfg, cipher: cipher, ts: ts}
}

// tokenFor mints an access token for an arbitrary user id, skipping the
// register/login round trip.
func (h *testHarness) tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(h.cfg.SecretKey), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return token
}

// setSettings stores settings for a user directly, encrypting credentials
// the way the service would.
func (h *testHarness) setSettings(t *testing.T, userID string, webhookURL, airtableKey, openaiKey string) {
	t.Helper()
	s := &models.Settings{UserID: userID, WebhookURL: webhookURL, AirtableBaseID: "appX", AirtableTable: "Clips"}
	if airtableKey != "" {
		env, err := h.cipher.Encrypt(airtableKey)
		if err != nil {
			t.Fatalf("Encrypt error: %v", err)
		}
		s.AirtableAPIKey = env
	}
	if openaiKey != "" {
		env, err := h.cipher.Encrypt(openaiKey)
		if err != nil {
			t.Fatalf("Encrypt error: %v", err)
		}
		s.OpenAIAPIKey = env
	}
	if err := h.rm.s.Upsert(context.Background(), s); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
}
