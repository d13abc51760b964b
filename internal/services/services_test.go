package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper"
	"github.com/SundayYogurt/lending_portal/internal/repository"
	"github.com/SundayYogurt/lending_portal/internal/session"
	"github.com/SundayYogurt/lending_portal/pkg/utils"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testMaxFileBytes = 1 << 20

type capturedEvents struct {
	mu     sync.Mutex
	events []dto.PortalEvent
}

func (c *capturedEvents) PublishMessage(_, value []byte) error {
	var ev dto.PortalEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *capturedEvents) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeUploader struct {
	calls []string
}

func (f *fakeUploader) UploadBytes(_ context.Context, folder, filename string, b []byte) (string, error) {
	f.calls = append(f.calls, folder+"/"+filename)
	return fmt.Sprintf("https://cdn.example.com/%s/%s.jpg", folder, filename), nil
}

type fixture struct {
	db       *gorm.DB
	auth     helper.Auth
	sessions *session.RedisStore
	events   *capturedEvents

	memberRepo repository.MemberRepository
	kycRepo    repository.KYCRepository

	members MemberService
	kyc     KYCService
	loans   LoanService
	banks   BankAccountService
}

func newFixture(t *testing.T) *fixture {
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

	f := &fixture{
		db:         db,
		auth:       helper.SetupAuth("test-secret", time.Hour),
		sessions:   session.NewRedisStore(rdb),
		events:     &capturedEvents{},
		memberRepo: repository.NewMemberRepository(db),
		kycRepo:    repository.NewKYCRepository(db),
	}
	f.kyc = NewKYCService(f.kycRepo, f.memberRepo, nil, f.events, testMaxFileBytes)
	f.members = NewMemberService(f.memberRepo, f.kyc, f.auth, f.sessions, f.events, testMaxFileBytes)
	f.loans = NewLoanService(repository.NewLoanRepository(db), f.memberRepo, f.events, testMaxFileBytes)
	f.banks = NewBankAccountService(repository.NewBankAccountRepository(db), f.memberRepo)
	return f
}

func (f *fixture) register(t *testing.T, email string) dto.AuthResponse {
	t.Helper()
	m, err := f.members.Register(dto.RegisterRequest{
		Name:     "Siti Rahma",
		Email:    email,
		Phone:    "081234567890",
		Password: "password123",
	})
	require.NoError(t, err)
	return dto.AuthResponse{MemberID: m.ID, Email: m.Email, Role: string(m.Role)}
}

func admin() dto.AuthResponse {
	return dto.AuthResponse{MemberID: "admin-1", Email: "admin@example.com", Role: "admin"}
}

func pngDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return utils.EncodeDataURL("image/png", buf.Bytes())
}

func kycInput(t *testing.T) dto.KYCSubmissionInput {
	return dto.KYCSubmissionInput{
		NationalID: "3201234567890001",
		Name:       "Siti Rahma",
		Address:    "Jl. Merdeka 1, Bandung",
		Phone:      "081234567890",
		IDCardFile: pngDataURL(t),
		SelfieFile: pngDataURL(t),
	}
}
