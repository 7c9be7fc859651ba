package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/paycal/internal/common"
	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/recurrence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount_FirstIsPrimary(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	checking := createAccount(t, store, "Checking", "1200.50")
	savings := createAccount(t, store, "Savings", "5000")

	assert.True(t, checking.IsPrimary)
	assert.False(t, savings.IsPrimary)

	primary, err := store.GetPrimaryAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, checking.ID, primary.ID)
	assert.True(t, dec("1200.50").Equal(primary.Balance))
	assert.False(t, primary.CreatedAt.IsZero())
}

func TestCreateAccount_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	assert.ErrorIs(t, store.CreateAccount(ctx, nil), ErrNilParameter)
	assert.ErrorIs(t, store.CreateAccount(ctx, &model.Account{Name: " "}), model.ErrInvalidAccount)

	createAccount(t, store, "Checking", "0")
	assert.ErrorIs(t, store.CreateAccount(ctx, &model.Account{Name: "Checking"}), common.ErrDuplicateEntry)
}

func TestCreateAccount_ExplicitPrimaryMovesFlag(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	createAccount(t, store, "Checking", "10")
	card := &model.Account{Name: "Card", IsPrimary: true}
	require.NoError(t, store.CreateAccount(ctx, card))

	assertSinglePrimary(t, store, card.ID)
}

func TestSetPrimaryAccount(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	createAccount(t, store, "Checking", "10")
	savings := createAccount(t, store, "Savings", "20")

	require.NoError(t, store.SetPrimaryAccount(ctx, savings.ID))
	assertSinglePrimary(t, store, savings.ID)

	// Setting it again is a no-op.
	require.NoError(t, store.SetPrimaryAccount(ctx, savings.ID))
	assertSinglePrimary(t, store, savings.ID)

	err := store.SetPrimaryAccount(ctx, 999)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assertSinglePrimary(t, store, savings.ID)
}

func TestListAccounts_PrimaryFirst(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	createAccount(t, store, "Zeta", "1")
	createAccount(t, store, "Alpha", "2")
	createAccount(t, store, "Beta", "3")

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, []string{"Zeta", "Alpha", "Beta"}, []string{accounts[0].Name, accounts[1].Name, accounts[2].Name})
}

func TestAccountBalance(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	account := createAccount(t, store, "Checking", "100.10")

	require.NoError(t, store.UpdateAccountBalance(ctx, account.ID, dec("250.00")))
	balance, err := store.AdjustAccountBalance(ctx, account.ID, dec("-0.10"))
	require.NoError(t, err)
	assert.Equal(t, "249.9", balance.String())

	// No float drift across many small adjustments.
	for i := 0; i < 100; i++ {
		_, err = store.AdjustAccountBalance(ctx, account.ID, dec("0.01"))
		require.NoError(t, err)
	}
	got, err := store.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "250.90", got.Balance.StringFixed(2))

	assert.ErrorIs(t, store.UpdateAccountBalance(ctx, 404, dec("1")), ErrAccountNotFound)
	_, err = store.AdjustAccountBalance(ctx, 404, dec("1"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteAccount(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	checking := createAccount(t, store, "Checking", "100")
	savings := createAccount(t, store, "Savings", "200")

	bill := &model.Bill{
		Name:       "Phone",
		Amount:     dec("45"),
		DueDate:    day(2024, 3, 20),
		Recurrence: recurrence.RecurMonthly,
		AccountID:  &checking.ID,
	}
	require.NoError(t, store.CreateBill(ctx, bill))
	_, err := store.SaveTransactions(ctx, []model.Transaction{
		{AccountID: checking.ID, Date: day(2024, 3, 1), Description: "COFFEE", Amount: dec("-4.50")},
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteAccount(ctx, checking.ID))

	_, err = store.GetAccount(ctx, checking.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	assertSinglePrimary(t, store, savings.ID)

	got, err := store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AccountID)

	txns, err := store.GetTransactions(ctx, txnFilter(checking.ID))
	require.NoError(t, err)
	assert.Empty(t, txns)

	assert.ErrorIs(t, store.DeleteAccount(ctx, checking.ID), ErrAccountNotFound)
}

func TestGetPrimaryAccount_NoAccounts(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.GetPrimaryAccount(context.Background())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func assertSinglePrimary(t *testing.T, store *SQLiteStorage, wantID int64) {
	t.Helper()
	accounts, err := store.ListAccounts(context.Background())
	require.NoError(t, err)

	var primaries []int64
	for _, a := range accounts {
		if a.IsPrimary {
			primaries = append(primaries, a.ID)
		}
	}
	assert.Equal(t, []int64{wantID}, primaries)
}
