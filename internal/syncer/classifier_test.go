// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/acctsync/internal/bank"
	"github.com/mia-platform/acctsync/internal/events"
	eventsfake "github.com/mia-platform/acctsync/internal/events/fake"
	"github.com/mia-platform/acctsync/internal/logger"
	providerfake "github.com/mia-platform/acctsync/internal/provider/fake"
	"github.com/mia-platform/acctsync/internal/syncstate"
)

type recordingObserver struct {
	runs     []RunResult
	accounts []AccountOutcome
}

func (o *recordingObserver) RunFinished(result RunResult, _ time.Duration) {
	o.runs = append(o.runs, result)
}

func (o *recordingObserver) AccountSynced(outcome AccountOutcome) {
	o.accounts = append(o.accounts, outcome)
}

func newTestRun(t *testing.T) (*run, *syncstate.Store, *eventsfake.Recorder) {
	t.Helper()

	store := syncstate.New()
	recorder := eventsfake.NewRecorder(t)
	coordinator := New(store, providerfake.NewProvider(t), recorder, nil)
	return &run{
		Coordinator: coordinator,
		id:          "run",
		log:         logger.FromContext(t.Context()),
		aggregate:   newAggregate(),
	}, store, recorder
}

func classified(category, code, message string) bank.ClassifiedError {
	return bank.ClassifiedError{Category: category, Code: code, Message: message}
}

func TestClassifyFailureTransitions(t *testing.T) {
	t.Parallel()

	failing := &bank.SyncResponse{Errors: bank.Issues{classified("X", "Y", "broken link")}}
	healthy := &bank.SyncResponse{}

	testCases := map[string]struct {
		responses       []*bank.SyncResponse
		expectedFailure *syncstate.Failure
	}{
		"failure then success clears the entry": {
			responses: []*bank.SyncResponse{failing, healthy},
		},
		"success then failure sets the entry": {
			responses:       []*bank.SyncResponse{healthy, failing},
			expectedFailure: &syncstate.Failure{ErrorType: "X", ErrorCode: "Y"},
		},
		"the last classified error overwrites the previous one": {
			responses: []*bank.SyncResponse{
				failing,
				{Errors: bank.Issues{classified("Z", "W", "other")}},
			},
			expectedFailure: &syncstate.Failure{ErrorType: "Z", ErrorCode: "W"},
		},
		"a nil response counts as a success": {
			responses: []*bank.SyncResponse{failing, nil},
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r, store, _ := newTestRun(t)
			for _, response := range test.responses {
				r.classify(t.Context(), "account", response)
			}

			failure, ok := store.Failure("account")
			if test.expectedFailure == nil {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, *test.expectedFailure, failure)
		})
	}
}

func TestClassifyFirstIssueDecidesHealth(t *testing.T) {
	t.Parallel()

	r, store, recorder := newTestRun(t)
	store.SetFailure("account", syncstate.Failure{ErrorType: "OLD", ErrorCode: "CODE"})

	changed := r.classify(t.Context(), "account", &bank.SyncResponse{
		Errors: bank.Issues{
			bank.GenericIssue{Message: "timeout", Internal: "dial tcp: i/o timeout"},
			classified("X", "Y", "broken link"),
		},
	})

	assert.False(t, changed)
	failure, ok := store.Failure("account")
	require.True(t, ok)
	assert.Equal(t, syncstate.Failure{ErrorType: "OLD", ErrorCode: "CODE"}, failure)

	assert.Equal(t, []events.Notification{
		{Severity: events.SeverityError, AccountID: "account", Message: "timeout", Internal: "dial tcp: i/o timeout"},
		{Severity: events.SeverityError, AccountID: "account", Message: "broken link"},
	}, recorder.Notifications())
}

func TestClassifyGenericIssueOnFreshAccount(t *testing.T) {
	t.Parallel()

	r, store, recorder := newTestRun(t)
	r.classify(t.Context(), "account", &bank.SyncResponse{
		Errors: bank.Issues{bank.GenericIssue{Message: "unexpected"}},
	})

	_, ok := store.Failure("account")
	assert.False(t, ok)
	assert.Len(t, recorder.Notifications(), 1)
}

func TestClassifyMergesDeltas(t *testing.T) {
	t.Parallel()

	r, _, recorder := newTestRun(t)
	ctx := t.Context()

	assert.True(t, r.classify(ctx, "a", &bank.SyncResponse{NewTransactions: []string{"t1"}, UpdatedAccounts: []string{"a"}}))
	assert.False(t, r.classify(ctx, "b", &bank.SyncResponse{UpdatedAccounts: []string{"b", "a"}}))
	assert.True(t, r.classify(ctx, "c", &bank.SyncResponse{MatchedTransactions: []string{"m1"}, NewTransactions: []string{"t2", "t1"}}))

	assert.Equal(t, []string{"t1", "t2"}, r.aggregate.newTransactions.list())
	assert.Equal(t, []string{"m1"}, r.aggregate.matchedTransactions.list())
	assert.Equal(t, []string{"a", "b"}, r.aggregate.updatedAccounts.list())
	assert.True(t, r.aggregate.success)

	assert.Len(t, recorder.OfType(events.TypeRefreshAccounts), 3)
	assert.Empty(t, recorder.Notifications())
}

func TestClassifyReportsOutcome(t *testing.T) {
	t.Parallel()

	r, _, _ := newTestRun(t)
	observer := &recordingObserver{}
	r.observer = observer

	r.classify(t.Context(), "a", &bank.SyncResponse{})
	r.classify(t.Context(), "b", &bank.SyncResponse{Errors: bank.Issues{classified("X", "Y", "m")}})
	r.classify(t.Context(), "c", &bank.SyncResponse{Errors: bank.Issues{bank.GenericIssue{Message: "m"}}})

	assert.Equal(t, []AccountOutcome{
		AccountOutcomeOK,
		AccountOutcomeClassifiedError,
		AccountOutcomeGenericIssue,
	}, observer.accounts)
}
