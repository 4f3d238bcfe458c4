package art

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"atelier/internal/database"
	"atelier/internal/domain"
	"atelier/internal/domain/auth"
	"atelier/internal/filestore"
	"atelier/internal/pkg/jwt"
	"atelier/internal/pkg/logging"
	"atelier/internal/repository"
)

const testSecret = "art-test-secret"

// pngBytes is the PNG signature followed by an IHDR chunk header, enough
// for content sniffing.
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53, 0xDE,
}

type testEnv struct {
	db     *gorm.DB
	svc    *Service
	files  *filestore.Local
	tokens *jwt.Service
	clock  *testClock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.UTC()
	c.mu.Unlock()
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:art_test_%s?mode=memory&cache=shared", name)

	db, err := database.Connect(dsn, logging.Discard())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	models := append([]interface{}{&domain.User{}}, Models()...)
	require.NoError(t, db.AutoMigrate(models...))

	require.NoError(t, db.Create(&[]Category{
		{ID: 1, Name: "Painting"},
		{ID: 2, Name: "Photography"},
	}).Error)
	return db
}

func newTestEnv(t *testing.T, opts ...func(*Config)) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	files, err := filestore.NewLocal(t.TempDir())
	require.NoError(t, err)

	return newTestEnvWithStore(t, db, files, opts...)
}

func newTestEnvWithStore(t *testing.T, db *gorm.DB, store filestore.Store, opts ...func(*Config)) *testEnv {
	t.Helper()

	tokens := jwt.New(testSecret, time.Hour)
	cfg := Config{Logger: logging.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	svc := NewService(NewRepository(db), repository.NewUserRepository(db), store, auth.NewGate(tokens), cfg)
	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = clock.Now

	env := &testEnv{db: db, svc: svc, tokens: tokens, clock: clock}
	if local, ok := store.(*filestore.Local); ok {
		env.files = local
	}
	return env
}

func (e *testEnv) createUser(t *testing.T, nickname string, role auth.Role) *auth.Identity {
	t.Helper()
	u := &domain.User{
		Email:    nickname + "@atelier.test",
		Nickname: nickname,
		Role:     string(role),
	}
	require.NoError(t, e.db.Create(u).Error)
	return &auth.Identity{UserID: u.ID, Role: role}
}

func (e *testEnv) token(t *testing.T, identity *auth.Identity) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(identity.UserID, string(identity.Role))
	require.NoError(t, err)
	return token
}

// upload creates a text-only artwork one minute after the previous one.
func (e *testEnv) upload(t *testing.T, owner *auth.Identity, name string, categoryID int64) int64 {
	t.Helper()
	e.clock.Advance(time.Minute)
	id, err := e.svc.UploadArt(context.Background(), nil, UploadArtRequest{
		ArtName:        name,
		ArtCategorySeq: categoryID,
	}, owner)
	require.NoError(t, err)
	return id
}

func (e *testEnv) like(t *testing.T, user *auth.Identity, artID int64) {
	t.Helper()
	_, err := e.svc.AddLike(context.Background(), user.UserID, artID)
	require.NoError(t, err)
}

func ids(list []ArtSummary) []int64 {
	out := make([]int64, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

// MockStore is a filestore.Store whose behaviour each test scripts.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, data []byte, filename string) (*filestore.Object, error) {
	args := m.Called(ctx, data, filename)
	obj, _ := args.Get(0).(*filestore.Object)
	return obj, args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, ref string) ([]byte, error) {
	args := m.Called(ctx, ref)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

func (m *MockStore) Walk(ctx context.Context, fn func(ref string, modTime time.Time) error) error {
	return m.Called(ctx, fn).Error(0)
}

// memCache is an in-process ListCache that records invalidations.
type memCache struct {
	mu          sync.Mutex
	items       map[string][]byte
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) Set(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *memCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	c.invalidated++
	return nil
}
