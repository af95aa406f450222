// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/acctsync/internal/bank"
)

func TestNewProviderFromPath(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		path          string
		expectedError error
		expectedCount int
	}{
		"valid fixture": {
			path:          filepath.Join("testdata", "fixture.yaml"),
			expectedCount: 3,
		},
		"unknown fields are rejected": {
			path:          filepath.Join("testdata", "unknown-field.yaml"),
			expectedError: ErrParsing,
		},
		"accounts need an id": {
			path:          filepath.Join("testdata", "missing-id.yaml"),
			expectedError: ErrParsing,
		},
		"missing file": {
			path:          filepath.Join("testdata", "missing.yaml"),
			expectedError: os.ErrNotExist,
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			provider, err := NewProviderFromPath(test.path)
			if test.expectedError != nil {
				assert.ErrorIs(t, err, test.expectedError)
				assert.Nil(t, provider)
				return
			}

			require.NoError(t, err)
			accounts, err := provider.ListAccounts(t.Context())
			require.NoError(t, err)
			assert.Len(t, accounts, test.expectedCount)
		})
	}
}

func TestSyncReplay(t *testing.T) {
	t.Parallel()

	provider, err := NewProviderFromPath(filepath.Join("testdata", "fixture.yaml"))
	require.NoError(t, err)

	response, err := provider.SyncAccount(t.Context(), "checking")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, response.NewTransactions)

	response, err = provider.SyncAccount(t.Context(), "savings")
	require.NoError(t, err)
	assert.Equal(t, bank.Issues{
		bank.ClassifiedError{Category: "ITEM_ERROR", Code: "ITEM_LOGIN_REQUIRED", Message: "Login required"},
	}, response.Errors)

	response, err = provider.SyncAccount(t.Context(), "cash")
	require.NoError(t, err)
	assert.Equal(t, &bank.SyncResponse{}, response)

	_, err = provider.SyncAccount(t.Context(), "broken")
	assert.EqualError(t, err, "connection reset by peer")

	results, err := provider.BatchSyncAccounts(t.Context(), []string{"savings", "ghost"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "savings", results[0].AccountID)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = provider.SyncAccount(ctx, "checking")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchFailure(t *testing.T) {
	t.Parallel()

	provider := NewProvider(Fixture{BatchFailure: "batch unavailable"})
	results, err := provider.BatchSyncAccounts(t.Context(), []string{"a"})
	assert.EqualError(t, err, "batch unavailable")
	assert.Nil(t, results)
}

func TestAccountManagement(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	provider := NewProvider(Fixture{
		Accounts: []bank.Account{
			{ID: "a", SortOrder: 1},
			{ID: "b", SortOrder: 2},
			{ID: "c", SortOrder: 3},
		},
	})

	require.NoError(t, provider.LinkAccount(ctx, bank.LinkRequest{
		Source:      bank.SyncSourceSimpleFin,
		Account:     bank.ExternalAccount{AccountID: "ext-a"},
		UpgradingID: "a",
	}))
	require.NoError(t, provider.LinkAccount(ctx, bank.LinkRequest{
		Source:    bank.SyncSourceGoCardless,
		Account:   bank.ExternalAccount{AccountID: "ext-new", Name: "New"},
		OffBudget: true,
	}))
	assert.ErrorIs(t, provider.LinkAccount(ctx, bank.LinkRequest{UpgradingID: "ghost"}), ErrUnknownAccount)

	accounts, err := provider.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 4)
	assert.Equal(t, "ext-a", accounts[0].Bank)
	assert.Equal(t, bank.SyncSourceSimpleFin, accounts[0].SyncSource)
	assert.Equal(t, "ext-new", accounts[3].Bank)
	assert.True(t, accounts[3].OffBudget)
	assert.Equal(t, float64(3+sortOrderStep), accounts[3].SortOrder)

	require.NoError(t, provider.UnlinkAccount(ctx, "a"))
	assert.ErrorIs(t, provider.UnlinkAccount(ctx, "ghost"), ErrUnknownAccount)

	require.NoError(t, provider.MoveAccount(ctx, "c", "a"))
	require.NoError(t, provider.MoveAccount(ctx, "b", ""))
	assert.ErrorIs(t, provider.MoveAccount(ctx, "a", "ghost"), ErrUnknownAccount)

	accounts, err = provider.ListAccounts(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.ID)
	}
	assert.Equal(t, []string{"c", "a", accounts[2].ID, "b"}, ids)
	assert.Empty(t, accounts[1].Bank)
	assert.Equal(t, float64(4*sortOrderStep), accounts[3].SortOrder)
}

func TestMoveBeforeItself(t *testing.T) {
	t.Parallel()

	provider := NewProvider(Fixture{
		Accounts: []bank.Account{
			{ID: "a", SortOrder: 1},
			{ID: "b", SortOrder: 2},
		},
	})

	require.NotPanics(t, func() {
		require.NoError(t, provider.MoveAccount(t.Context(), "a", "a"))
	})

	accounts, err := provider.ListAccounts(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []bank.Account{{ID: "a", SortOrder: 1}, {ID: "b", SortOrder: 2}}, accounts)
}
