// Package testutil provides in-memory databases and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mikrotik-manager/internal/db"
	"mikrotik-manager/internal/model"
	"mikrotik-manager/internal/store"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
// The connection is closed when the test finishes.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	// Shared-cache memory databases report "table is locked" under concurrent writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(testDB))
	return testDB
}

// NewStore returns a store backed by NewDB.
func NewStore(t *testing.T) store.Store {
	t.Helper()
	return store.NewGormStore(NewDB(t))
}

// CreateUser inserts a profile row so that owned records satisfy foreign keys.
func CreateUser(t *testing.T, s store.Store, email string) *model.User {
	t.Helper()
	user, err := s.InsertUser(context.Background(), &model.User{ID: uuid.NewString(), Email: email})
	require.NoError(t, err)
	return user
}

// Clock is a deterministic clock that advances by Step on every call.
type Clock struct {
	mu   sync.Mutex
	Now  time.Time
	Step time.Duration
}

// NewClock starts a clock at a fixed instant, stepping one second per reading.
func NewClock() *Clock {
	return &Clock{Now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), Step: time.Second}
}

// Tick returns the current time and advances the clock.
func (c *Clock) Tick() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.Now
	c.Now = c.Now.Add(c.Step)
	return now
}
