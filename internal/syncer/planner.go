// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package syncer

import (
	"cmp"
	"slices"

	"github.com/mia-platform/acctsync/internal/bank"
)

// Plan is the worklist of a single run.
type Plan struct {
	// Accounts is the full worklist in processing order.
	Accounts []string
	// Batch holds the accounts synced with a single batch call.
	Batch []string
	// Sequential holds the accounts synced one at a time, in order.
	Sequential []string
}

// plan builds the worklist for targetID, or for every syncable account when targetID is empty.
// A targeted run never uses the batch path.
func plan(targetID string, accounts []bank.Account) Plan {
	if targetID != "" {
		return Plan{
			Accounts:   []string{targetID},
			Sequential: []string{targetID},
		}
	}

	syncable := make([]bank.Account, 0, len(accounts))
	for _, account := range accounts {
		if account.Syncable() {
			syncable = append(syncable, account)
		}
	}

	slices.SortStableFunc(syncable, func(a, b bank.Account) int {
		if a.OffBudget != b.OffBudget {
			if a.OffBudget {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.SortOrder, b.SortOrder)
	})

	result := Plan{
		Accounts:   make([]string, 0, len(syncable)),
		Sequential: make([]string, 0, len(syncable)),
	}
	for _, account := range syncable {
		result.Accounts = append(result.Accounts, account.ID)
		if account.SyncSource.Batchable() {
			result.Batch = append(result.Batch, account.ID)
			continue
		}
		result.Sequential = append(result.Sequential, account.ID)
	}
	return result
}
