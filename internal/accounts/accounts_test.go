// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package accounts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/acctsync/internal/bank"
	"github.com/mia-platform/acctsync/internal/events"
	eventsfake "github.com/mia-platform/acctsync/internal/events/fake"
	providerfake "github.com/mia-platform/acctsync/internal/provider/fake"
	"github.com/mia-platform/acctsync/internal/syncstate"
)

func TestLink(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		request        bank.LinkRequest
		providerErr    error
		expectedErr    error
		expectedCalled bool
	}{
		"simpleFin account": {
			request: bank.LinkRequest{
				Source:  bank.SyncSourceSimpleFin,
				Account: bank.ExternalAccount{AccountID: "ext"},
			},
			expectedCalled: true,
		},
		"goCardless account with requisition": {
			request: bank.LinkRequest{
				Source:        bank.SyncSourceGoCardless,
				RequisitionID: "req",
				Account:       bank.ExternalAccount{AccountID: "ext"},
			},
			expectedCalled: true,
		},
		"goCardless account without requisition": {
			request: bank.LinkRequest{
				Source:  bank.SyncSourceGoCardless,
				Account: bank.ExternalAccount{AccountID: "ext"},
			},
			expectedErr: ErrMissingRequisitionID,
		},
		"missing external id": {
			request:     bank.LinkRequest{Source: bank.SyncSourcePluggyAI},
			expectedErr: ErrMissingExternalID,
		},
		"unknown source": {
			request: bank.LinkRequest{
				Source:  "teller",
				Account: bank.ExternalAccount{AccountID: "ext"},
			},
			expectedErr: ErrUnknownSyncSource,
		},
		"provider failure": {
			request: bank.LinkRequest{
				Source:  bank.SyncSourcePluggyAI,
				Account: bank.ExternalAccount{AccountID: "ext"},
			},
			providerErr:    assert.AnError,
			expectedErr:    assert.AnError,
			expectedCalled: true,
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			provider := providerfake.NewProvider(t)
			provider.AccountErr = test.providerErr
			recorder := eventsfake.NewRecorder(t)

			err := New(provider, syncstate.New(), recorder).Link(t.Context(), test.request)
			if test.expectedCalled {
				assert.Equal(t, []bank.LinkRequest{test.request}, provider.LinkCalls())
			} else {
				assert.Empty(t, provider.LinkCalls())
			}

			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
				assert.Empty(t, recorder.Events())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, []events.Event{events.RefreshAccounts{}, events.RefreshPayees{}}, recorder.Events())
		})
	}
}

func TestUnlinkClearsFailure(t *testing.T) {
	t.Parallel()

	provider := providerfake.NewProvider(t)
	store := syncstate.New()
	store.SetFailure("a", syncstate.Failure{ErrorType: "X", ErrorCode: "Y"})
	store.SetFailure("b", syncstate.Failure{ErrorType: "X", ErrorCode: "Y"})
	recorder := eventsfake.NewRecorder(t)
	manager := New(provider, store, recorder)

	require.NoError(t, manager.Unlink(t.Context(), "a"))
	assert.Equal(t, []string{"a"}, provider.UnlinkCalls())
	assert.Equal(t, map[string]syncstate.Failure{"b": {ErrorType: "X", ErrorCode: "Y"}}, store.Failures())
	assert.Equal(t, []events.Event{events.RefreshAccounts{}}, recorder.Events())

	assert.ErrorIs(t, manager.Unlink(t.Context(), ""), ErrMissingAccountID)

	provider.AccountErr = errors.New("not found")
	err := manager.Unlink(t.Context(), "b")
	assert.EqualError(t, err, "unlinking account b: not found")
	assert.Len(t, store.Failures(), 1)
}

func TestMove(t *testing.T) {
	t.Parallel()

	provider := providerfake.NewProvider(t)
	recorder := eventsfake.NewRecorder(t)
	manager := New(provider, syncstate.New(), recorder)

	require.NoError(t, manager.Move(t.Context(), "a", "b"))
	require.NoError(t, manager.Move(t.Context(), "a", ""))
	assert.ErrorIs(t, manager.Move(t.Context(), "", "b"), ErrMissingAccountID)
	assert.ErrorIs(t, manager.Move(t.Context(), "a", "a"), ErrMoveBeforeItself)

	assert.Equal(t, []providerfake.MoveCall{
		{AccountID: "a", TargetID: "b"},
		{AccountID: "a"},
	}, provider.MoveCalls())
	assert.Len(t, recorder.OfType(events.TypeRefreshAccounts), 2)
	assert.Len(t, recorder.OfType(events.TypeRefreshPayees), 2)
}
