package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/scamwall/scamwall-backend/internal/config"
	"github.com/scamwall/scamwall-backend/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One shared in-memory database per test, shared across pooled
	// connections but isolated between tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Report{},
		&models.LookupEntity{},
		&models.DeepfakeMeta{},
		&models.Article{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 168 * time.Hour,
	}
}

func createUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8]),
		Name:     "Test User",
		Password: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// fakeStore is an in-memory evidence.Store.
type fakeStore struct {
	objects map[string][]byte
	fail    bool
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(_ context.Context, path string, data []byte, _ string) (string, error) {
	f.puts++
	if f.fail {
		return "", fmt.Errorf("storage unreachable")
	}
	f.objects[path] = data
	return f.PublicURL(path), nil
}

func (f *fakeStore) PublicURL(path string) string {
	return "https://files.test/" + path
}
