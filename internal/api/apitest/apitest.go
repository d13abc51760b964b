// Package apitest boots the portal HTTP app on in-memory backends for
// handler and client tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SundayYogurt/lending_portal/config"
	"github.com/SundayYogurt/lending_portal/internal/api"
	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/repository"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const MaxFileBytes = 1 << 20

// Events records every published portal event.
type Events struct {
	mu     sync.Mutex
	events []dto.PortalEvent
}

func (e *Events) PublishMessage(_, value []byte) error {
	var ev dto.PortalEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

func (e *Events) Types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

type Env struct {
	App    *fiber.App
	DB     *gorm.DB
	Redis  *miniredis.Miniredis
	Events *Events
	Config config.Config
}

// New builds an app backed by a per-test sqlite memory database and a
// miniredis instance.
func New(t testing.TB) *Env {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repository.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.Config{
		BaseURL:      "*",
		AccessSecret: "test-secret",
		TokenTTL:     time.Hour,
		MaxFileBytes: MaxFileBytes,
		LoginPerMin:  1000,
	}
	events := &Events{}

	app := api.NewApp(api.Deps{
		DB:       db,
		Redis:    rdb,
		Producer: events,
		Config:   cfg,
	})

	return &Env{App: app, DB: db, Redis: mr, Events: events, Config: cfg}
}

// Promote turns a member into an admin directly in the database.
func (e *Env) Promote(t testing.TB, memberID string) {
	t.Helper()
	require.NoError(t, e.DB.Model(&domain.Member{}).
		Where("id = ?", memberID).
		Update("role", domain.RoleAdmin).Error)
}

// SetLoanLimit stores a loan limit for a member.
func (e *Env) SetLoanLimit(t testing.TB, memberID string, limit int64) {
	t.Helper()
	require.NoError(t, e.DB.Model(&domain.Member{}).
		Where("id = ?", memberID).
		Update("loan_limit", limit).Error)
}
