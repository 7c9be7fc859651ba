package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/recurrence"
	"github.com/Veraticus/paycal/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txnFilter(accountID int64) service.TransactionFilter {
	return service.TransactionFilter{AccountID: &accountID}
}

func TestBills_CRUD(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	account := createAccount(t, store, "Checking", "0")
	bill := &model.Bill{
		Name:       "Rent",
		Amount:     dec("1450.00"),
		DueDate:    day(2024, 1, 31),
		Recurrence: recurrence.RecurMonthly,
		AccountID:  &account.ID,
		Notes:      "landlord portal",
	}
	require.NoError(t, store.CreateBill(ctx, bill))
	require.NotZero(t, bill.ID)

	got, err := store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rent", got.Name)
	assert.True(t, dec("1450").Equal(got.Amount))
	assert.Equal(t, day(2024, 1, 31), got.DueDate)
	assert.Equal(t, recurrence.RecurMonthly, got.Recurrence)
	assert.False(t, got.IsPaid)
	require.NotNil(t, got.AccountID)
	assert.Equal(t, account.ID, *got.AccountID)
	assert.Equal(t, "landlord portal", got.Notes)

	got.DueDate = day(2024, 2, 29)
	got.IsPaid = true
	got.AccountID = nil
	require.NoError(t, store.UpdateBill(ctx, got))

	got, err = store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 2, 29), got.DueDate)
	assert.True(t, got.IsPaid)
	assert.Nil(t, got.AccountID)

	require.NoError(t, store.DeleteBill(ctx, bill.ID))
	_, err = store.GetBill(ctx, bill.ID)
	assert.ErrorIs(t, err, ErrBillNotFound)
	assert.ErrorIs(t, store.DeleteBill(ctx, bill.ID), ErrBillNotFound)
}

func TestBills_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	assert.ErrorIs(t, store.CreateBill(ctx, nil), ErrNilParameter)
	assert.ErrorIs(t, store.CreateBill(ctx, &model.Bill{
		Name:       "Gym",
		Amount:     dec("30"),
		DueDate:    day(2024, 1, 1),
		Recurrence: "hourly",
	}), model.ErrInvalidBill)

	missing := &model.Bill{ID: 77, Name: "Gym", Amount: dec("30"), DueDate: day(2024, 1, 1), Recurrence: recurrence.RecurMonthly}
	assert.ErrorIs(t, store.UpdateBill(ctx, missing), ErrBillNotFound)
}

func TestListBills_OrderedByDueDate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, b := range []struct {
		due  time.Time
		name string
	}{
		{name: "Water", due: day(2024, 3, 20)},
		{name: "Insurance", due: day(2024, 12, 1)},
		{name: "Internet", due: day(2024, 3, 5)},
		{name: "Electric", due: day(2024, 3, 5)},
	} {
		require.NoError(t, store.CreateBill(ctx, &model.Bill{
			Name: b.name, Amount: dec("10"), DueDate: b.due, Recurrence: recurrence.RecurMonthly,
		}))
	}

	bills, err := store.ListBills(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(bills))
	for _, b := range bills {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"Electric", "Internet", "Water", "Insurance"}, names)
}

func TestBills_DueDateKeepsCivilDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	store, err := NewSQLiteStorage(t.TempDir()+"/ny.db", WithLocation(ny))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	due := time.Date(2024, 3, 10, 0, 0, 0, 0, ny)
	bill := &model.Bill{Name: "Rent", Amount: dec("1"), DueDate: due, Recurrence: recurrence.RecurMonthly}
	require.NoError(t, store.CreateBill(ctx, bill))

	got, err := store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, due.Equal(got.DueDate))
	assert.Equal(t, ny, got.DueDate.Location())
}

func TestDeleteBill_KeepsPayments(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	account := createAccount(t, store, "Checking", "0")
	bill := &model.Bill{Name: "Gym", Amount: dec("30"), DueDate: day(2024, 1, 1), Recurrence: recurrence.RecurMonthly}
	require.NoError(t, store.CreateBill(ctx, bill))

	_, err := store.SaveTransactions(ctx, []model.Transaction{{
		AccountID: account.ID, Date: day(2024, 1, 1), Description: "Gym", Amount: dec("-30"), BillID: &bill.ID,
	}})
	require.NoError(t, err)

	require.NoError(t, store.DeleteBill(ctx, bill.ID))

	txns, err := store.GetTransactions(ctx, txnFilter(account.ID))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Nil(t, txns[0].BillID)
}
