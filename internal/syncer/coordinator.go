// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mia-platform/acctsync/internal/bank"
	"github.com/mia-platform/acctsync/internal/events"
	"github.com/mia-platform/acctsync/internal/logger"
	"github.com/mia-platform/acctsync/internal/provider"
	"github.com/mia-platform/acctsync/internal/syncstate"
)

const (
	loggerName = "acctsync:syncer"

	callFailedMessage      = "Failed syncing account"
	batchFailedMessage     = "Failed syncing account with the batch sync"
	missingBatchResMessage = "The batch sync returned no result for the account"
)

var (
	// ErrListAccounts is returned when the account snapshot of a run cannot be fetched.
	ErrListAccounts = errors.New("cannot fetch the account list")

	timeSource = time.Now
)

// Outcome describes how an Execute call ended.
type Outcome struct {
	RunID string
	// Success is true when at least one account returned new or matched transactions.
	Success bool
	// Rejected is true when another run was active and nothing has been done.
	Rejected bool
}

// Coordinator runs at most one sync at a time against a provider.
type Coordinator struct {
	store     *syncstate.Store
	provider  provider.Provider
	publisher events.Publisher
	observer  Observer

	lock sync.Mutex
}

// New returns a Coordinator, observer may be nil.
func New(store *syncstate.Store, provider provider.Provider, publisher events.Publisher, observer Observer) *Coordinator {
	if observer == nil {
		observer = noopObserver{}
	}

	return &Coordinator{
		store:     store,
		provider:  provider,
		publisher: publisher,
		observer:  observer,
	}
}

// Run syncs targetID, or every syncable account when targetID is empty, and reports
// whether any account returned new or matched transactions. A call made while another
// run is active returns false without doing anything.
func (c *Coordinator) Run(ctx context.Context, targetID string) (bool, error) {
	outcome, err := c.Execute(ctx, targetID)
	return outcome.Success, err
}

// Execute is like Run but returns the full Outcome.
func (c *Coordinator) Execute(ctx context.Context, targetID string) (Outcome, error) {
	log := logger.FromContext(ctx).WithName(loggerName)

	if !c.lock.TryLock() {
		log.Debug("sync run already in progress, rejecting")
		c.observer.RunFinished(RunResultRejected, 0)
		return Outcome{Rejected: true}, nil
	}
	defer c.lock.Unlock()

	if c.store.Syncing() {
		log.Debug("sync progress not empty, rejecting")
		c.observer.RunFinished(RunResultRejected, 0)
		return Outcome{Rejected: true}, nil
	}

	start := timeSource()
	r := &run{
		Coordinator: c,
		id:          uuid.NewString(),
		aggregate:   newAggregate(),
	}
	r.log = log.With("runId", r.id)

	err := r.execute(ctx, targetID)
	outcome := Outcome{RunID: r.id, Success: r.aggregate.success}

	result := RunResultNoChange
	switch {
	case err != nil:
		result = RunResultError
	case outcome.Success:
		result = RunResultSuccess
	}
	c.observer.RunFinished(result, timeSource().Sub(start))
	r.log.Info("sync run finished", "result", result, "targetId", targetID)
	return outcome, err
}

// run holds the state of a single sync run.
type run struct {
	*Coordinator

	id        string
	log       logger.Logger
	aggregate *aggregate
}

func (r *run) execute(ctx context.Context, targetID string) error {
	var accounts []bank.Account
	if targetID == "" {
		var err error
		if accounts, err = r.provider.ListAccounts(ctx); err != nil {
			r.log.Error("error fetching accounts", "error", err)
			return fmt.Errorf("%w: %w", ErrListAccounts, err)
		}
	}

	worklist := plan(targetID, accounts)
	r.log.Debug("sync run planned", "accounts", len(worklist.Accounts), "batch", len(worklist.Batch))

	r.setProgress(ctx, worklist.Accounts)
	// the progress is always reset, releasing the lock for the next run
	defer r.setProgress(ctx, nil)

	if len(worklist.Batch) > 0 && ctx.Err() == nil {
		r.syncBatch(ctx, worklist.Batch)
	}

	for idx, accountID := range worklist.Sequential {
		if ctx.Err() != nil {
			break
		}

		r.syncAccount(ctx, accountID)
		r.setProgress(ctx, worklist.Sequential[idx+1:])
	}

	r.publisher.Publish(ctx, events.TransactionsUpdated{
		RunID:               r.id,
		NewTransactions:     r.aggregate.newTransactions.list(),
		MatchedTransactions: r.aggregate.matchedTransactions.list(),
		UpdatedAccounts:     r.aggregate.updatedAccounts.list(),
	})

	if err := ctx.Err(); err != nil {
		r.log.Warn("sync run interrupted", "error", err)
		return err
	}
	return nil
}

func (r *run) syncBatch(ctx context.Context, accountIDs []string) {
	r.log.Trace("starting batch sync", "accounts", accountIDs)

	results, err := r.provider.BatchSyncAccounts(ctx, accountIDs)
	if err != nil {
		if ctx.Err() != nil {
			return
		}

		r.log.Error("batch sync call failed", "error", err)
		for _, accountID := range accountIDs {
			r.classify(ctx, accountID, callFailure(batchFailedMessage, err))
		}
		return
	}

	processed := make(map[string]struct{}, len(results))
	for _, result := range results {
		processed[result.AccountID] = struct{}{}
		r.classify(ctx, result.AccountID, &result.Response)
	}

	for _, accountID := range accountIDs {
		if _, ok := processed[accountID]; ok {
			continue
		}
		r.log.Warn("batch sync result missing", "accountId", accountID)
		r.classify(ctx, accountID, &bank.SyncResponse{
			Errors: bank.Issues{bank.GenericIssue{Message: missingBatchResMessage}},
		})
	}
}

func (r *run) syncAccount(ctx context.Context, accountID string) {
	r.log.Trace("syncing account", "accountId", accountID)

	response, err := r.provider.SyncAccount(ctx, accountID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}

		r.log.Error("account sync call failed", "accountId", accountID, "error", err)
		response = callFailure(callFailedMessage, err)
	}

	r.classify(ctx, accountID, response)
}

func (r *run) setProgress(ctx context.Context, accountIDs []string) {
	r.store.SetProgress(accountIDs)
	r.publisher.Publish(ctx, events.SyncProgress{
		RunID:      r.id,
		AccountIDs: append(make([]string, 0, len(accountIDs)), accountIDs...),
	})
}

// callFailure turns a failed provider call in a response carrying a single generic issue.
func callFailure(message string, err error) *bank.SyncResponse {
	return &bank.SyncResponse{
		Errors: bank.Issues{bank.GenericIssue{Message: message, Internal: err.Error()}},
	}
}
