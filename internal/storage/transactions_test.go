package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveTransactions(t *testing.T) {
	tests := []struct {
		setup        func(*testing.T, *SQLiteStorage, int64)
		name         string
		transactions func(accountID int64) []model.Transaction
		wantInserted int
		wantStored   int
		wantErr      error
	}{
		{
			name: "save new transactions",
			transactions: func(id int64) []model.Transaction {
				return []model.Transaction{
					{AccountID: id, Date: day(2024, 3, 1), Description: "PAYROLL", Amount: dec("2000")},
					{AccountID: id, Date: day(2024, 3, 2), Description: "GROCER", Amount: dec("-82.17")},
				}
			},
			wantInserted: 2,
			wantStored:   2,
		},
		{
			name: "skip duplicates already stored",
			setup: func(t *testing.T, s *SQLiteStorage, id int64) {
				t.Helper()
				_, err := s.SaveTransactions(context.Background(), []model.Transaction{
					{AccountID: id, Date: day(2024, 3, 2), Description: "GROCER", Amount: dec("-82.17")},
				})
				require.NoError(t, err)
			},
			transactions: func(id int64) []model.Transaction {
				return []model.Transaction{
					{AccountID: id, Date: day(2024, 3, 2), Description: "GROCER", Amount: dec("-82.170")},
					{AccountID: id, Date: day(2024, 3, 3), Description: "FUEL", Amount: dec("-40")},
				}
			},
			wantInserted: 1,
			wantStored:   2,
		},
		{
			name:         "save empty list",
			transactions: func(int64) []model.Transaction { return []model.Transaction{} },
			wantErr:      ErrEmptySlice,
		},
		{
			name: "missing description",
			transactions: func(id int64) []model.Transaction {
				return []model.Transaction{{AccountID: id, Date: day(2024, 3, 1), Amount: dec("1")}}
			},
			wantErr: ErrInvalidTransaction,
		},
		{
			name: "missing account",
			transactions: func(int64) []model.Transaction {
				return []model.Transaction{{Date: day(2024, 3, 1), Description: "X", Amount: dec("1")}}
			},
			wantErr: ErrInvalidTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := createTestStorage(t)
			defer cleanup()
			ctx := context.Background()
			account := createAccount(t, store, "Checking", "0")

			if tt.setup != nil {
				tt.setup(t, store, account.ID)
			}

			inserted, err := store.SaveTransactions(ctx, tt.transactions(account.ID))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantInserted, inserted)

			stored, err := store.GetTransactions(ctx, txnFilter(account.ID))
			require.NoError(t, err)
			assert.Len(t, stored, tt.wantStored)
		})
	}
}

func TestGetTransactions_Filter(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	checking := createAccount(t, store, "Checking", "0")
	savings := createAccount(t, store, "Savings", "0")

	_, err := store.SaveTransactions(ctx, []model.Transaction{
		{AccountID: checking.ID, Date: day(2024, 2, 28), Description: "A", Amount: dec("-1")},
		{AccountID: checking.ID, Date: day(2024, 3, 1), Description: "B", Amount: dec("-2")},
		{AccountID: checking.ID, Date: day(2024, 3, 31), Description: "C", Amount: dec("-3")},
		{AccountID: checking.ID, Date: day(2024, 4, 1), Description: "D", Amount: dec("-4")},
		{AccountID: savings.ID, Date: day(2024, 3, 15), Description: "E", Amount: dec("5")},
	})
	require.NoError(t, err)

	start, end := day(2024, 3, 1), day(2024, 3, 31)
	got, err := store.GetTransactions(ctx, service.TransactionFilter{
		AccountID: &checking.ID,
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].Description, "newest first")
	assert.Equal(t, "B", got[1].Description)
	assert.Equal(t, day(2024, 3, 31), got[0].Date)
	assert.True(t, dec("-3").Equal(got[0].Amount))
	assert.NotEmpty(t, got[0].Hash)

	all, err := store.GetTransactions(ctx, service.TransactionFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = store.GetTransactions(ctx, service.TransactionFilter{StartDate: &end, EndDate: &start})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}
