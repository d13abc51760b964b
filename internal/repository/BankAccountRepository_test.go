package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func addAccounts(t *testing.T, repo BankAccountRepository, memberID string, n int) []domain.BankAccount {
	t.Helper()
	out := make([]domain.BankAccount, 0, n)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < n; i++ {
		a := domain.BankAccount{
			MemberID:      memberID,
			BankName:      "bca",
			AccountNumber: fmt.Sprintf("12345678%02d", i),
			AccountName:   "Test Member",
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(&a))
		out = append(out, a)
	}
	return out
}

func primaries(t *testing.T, repo BankAccountRepository, memberID string) []string {
	t.Helper()
	list, err := repo.ListByMemberID(memberID)
	require.NoError(t, err)
	var ids []string
	for _, a := range list {
		if a.IsPrimary {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestBankAccountRepository_FirstIsPrimary(t *testing.T) {
	db := newTestDB(t)
	repo := NewBankAccountRepository(db)
	m := seedMember(t, db, "bank@example.com")

	accounts := addAccounts(t, repo, m.ID, 3)
	assert.True(t, accounts[0].IsPrimary)
	assert.False(t, accounts[1].IsPrimary)
	assert.Equal(t, []string{accounts[0].ID}, primaries(t, repo, m.ID))
}

func TestBankAccountRepository_FirstAccountRace(t *testing.T) {
	db := newTestDB(t)
	repo := NewBankAccountRepository(db)
	m := seedMember(t, db, "race@example.com")

	winner := addAccounts(t, repo, m.ID, 1)[0]
	require.True(t, winner.IsPrimary)

	// the next count reports no accounts, as if it ran before the winner committed
	hidden := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:stale_count", func(tx *gorm.DB) {
		if n, ok := tx.Statement.Dest.(*int64); ok && !hidden && tx.Statement.Table == "bank_accounts" {
			hidden = true
			*n = 0
		}
	}))

	loser := domain.BankAccount{
		MemberID:      m.ID,
		BankName:      "bni",
		AccountNumber: "9876543210",
		AccountName:   "Test Member",
	}
	require.NoError(t, repo.Create(&loser))
	assert.True(t, hidden)
	assert.False(t, loser.IsPrimary)

	assert.Equal(t, []string{winner.ID}, primaries(t, repo, m.ID))
	list, err := repo.ListByMemberID(m.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestBankAccountRepository_SetPrimaryIsExclusive(t *testing.T) {
	db := newTestDB(t)
	repo := NewBankAccountRepository(db)
	m := seedMember(t, db, "excl@example.com")
	accounts := addAccounts(t, repo, m.ID, 4)

	for _, target := range []int{2, 2, 0, 3, 1} {
		require.NoError(t, repo.SetPrimary(m.ID, accounts[target].ID))
		assert.Equal(t, []string{accounts[target].ID}, primaries(t, repo, m.ID))
	}

	other := seedMember(t, db, "other@example.com")
	assert.ErrorIs(t, repo.SetPrimary(other.ID, accounts[0].ID), gorm.ErrRecordNotFound)
	assert.Equal(t, []string{accounts[1].ID}, primaries(t, repo, m.ID))
}

func TestBankAccountRepository_DeletePromotesOldest(t *testing.T) {
	db := newTestDB(t)
	repo := NewBankAccountRepository(db)
	m := seedMember(t, db, "del@example.com")
	accounts := addAccounts(t, repo, m.ID, 3)

	require.NoError(t, repo.SetPrimary(m.ID, accounts[2].ID))
	require.NoError(t, repo.Delete(m.ID, accounts[2].ID))
	assert.Equal(t, []string{accounts[0].ID}, primaries(t, repo, m.ID))

	require.NoError(t, repo.Delete(m.ID, accounts[1].ID))
	assert.Equal(t, []string{accounts[0].ID}, primaries(t, repo, m.ID))

	require.NoError(t, repo.Delete(m.ID, accounts[0].ID))
	assert.Empty(t, primaries(t, repo, m.ID))

	assert.ErrorIs(t, repo.Delete(m.ID, accounts[0].ID), gorm.ErrRecordNotFound)
}

func TestBankAccountRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := NewBankAccountRepository(db)
	m := seedMember(t, db, "upd@example.com")
	a := addAccounts(t, repo, m.ID, 1)[0]

	a.BankName = "bni"
	a.AccountName = "Renamed"
	require.NoError(t, repo.Update(&a))

	got, err := repo.FindByID(m.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "bni", got.BankName)
	assert.True(t, got.IsPrimary)
}
