package services

import (
	"testing"

	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankAccountService_Flow(t *testing.T) {
	f := newFixture(t)
	me := f.register(t, "bank@example.com")

	first, err := f.banks.Add(me.MemberID, dto.BankAccountInput{BankName: "BCA", AccountNumber: "1234 5678 90", AccountName: "Siti"})
	require.NoError(t, err)
	assert.True(t, first.IsPrimary)
	assert.Equal(t, "bca", first.BankName)
	assert.Equal(t, "1234567890", first.AccountNumber)

	second, err := f.banks.Add(me.MemberID, dto.BankAccountInput{BankName: "mandiri", AccountNumber: "9876543210", AccountName: "Siti"})
	require.NoError(t, err)
	assert.False(t, second.IsPrimary)

	accounts, err := f.banks.SetPrimary(me.MemberID, second.ID)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	for _, a := range accounts {
		assert.Equal(t, a.ID == second.ID, a.IsPrimary)
	}

	_, err = f.banks.Add(me.MemberID, dto.BankAccountInput{BankName: "hsbc", AccountNumber: "1234567890", AccountName: "Siti"})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.banks.Update(me.MemberID, first.ID, dto.BankAccountInput{BankName: "bni", AccountNumber: "1111222233", AccountName: "Siti R"})
	require.NoError(t, err)
	assert.Equal(t, "bni", updated.BankName)

	require.NoError(t, f.banks.Delete(me.MemberID, second.ID))
	accounts, err = f.banks.List(me.MemberID)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].IsPrimary)

	assert.ErrorIs(t, f.banks.Delete(me.MemberID, second.ID), ErrNotFound)
	_, err = f.banks.List("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
