package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func seedMember(t *testing.T, db *gorm.DB, email string) *domain.Member {
	t.Helper()
	m := &domain.Member{
		Email:        email,
		Name:         "Test Member",
		Phone:        "081234567890",
		PasswordHash: "x",
		Status:       domain.MemberStatusActive,
		Role:         domain.RoleMember,
		Salary:       decimal.Zero,
		LoanLimit:    decimal.Zero,
	}
	require.NoError(t, NewMemberRepository(db).CreateMember(m))
	return m
}

func kycFor(memberID string, at time.Time) domain.KYCSubmission {
	return domain.KYCSubmission{
		MemberID:    memberID,
		NationalID:  "3201234567890001",
		Name:        "Test Member",
		Address:     "Jl. Merdeka 1",
		Phone:       "081234567890",
		IDCardFile:  "data:image/png;base64,AA==",
		SelfieFile:  "data:image/png;base64,AA==",
		SubmittedAt: at,
	}
}
