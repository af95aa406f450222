// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package provider

import (
	"context"

	"github.com/mia-platform/acctsync/internal/bank"
)

// Provider is the full set of calls acctsync issues against the bank sync backend.
type Provider interface {
	// ListAccounts returns the current local account snapshot.
	ListAccounts(ctx context.Context) ([]bank.Account, error)
	// SyncAccount syncs a single account.
	SyncAccount(ctx context.Context, accountID string) (*bank.SyncResponse, error)
	// BatchSyncAccounts syncs many batchable accounts in one round trip. Results are
	// returned one per account in no particular order.
	BatchSyncAccounts(ctx context.Context, accountIDs []string) ([]bank.BatchResult, error)
	// LinkAccount attaches an external account to a new or existing local account.
	LinkAccount(ctx context.Context, request bank.LinkRequest) error
	// UnlinkAccount detaches accountID from its provider.
	UnlinkAccount(ctx context.Context, accountID string) error
	// MoveAccount places accountID before targetID, at the end when targetID is empty.
	MoveAccount(ctx context.Context, accountID, targetID string) error
}
