// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/mia-platform/acctsync/internal/bank"
	"github.com/mia-platform/acctsync/internal/events"
	"github.com/mia-platform/acctsync/internal/logger"
	"github.com/mia-platform/acctsync/internal/provider"
	"github.com/mia-platform/acctsync/internal/syncstate"
)

const (
	loggerName = "acctsync:accounts"
)

var (
	ErrMissingAccountID     = errors.New("account id is required")
	ErrMissingExternalID    = errors.New("external account id is required")
	ErrUnknownSyncSource    = errors.New("unknown sync source")
	ErrMissingRequisitionID = errors.New("requisition id is required for goCardless accounts")
	ErrMoveBeforeItself     = errors.New("an account cannot be moved before itself")
)

// Manager wraps the provider account operations.
type Manager struct {
	provider  provider.Provider
	store     *syncstate.Store
	publisher events.Publisher
}

func New(provider provider.Provider, store *syncstate.Store, publisher events.Publisher) *Manager {
	return &Manager{
		provider:  provider,
		store:     store,
		publisher: publisher,
	}
}

// Link attaches an external account, creating a local one unless request.UpgradingID is set.
func (m *Manager) Link(ctx context.Context, request bank.LinkRequest) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	if err := validateLink(request); err != nil {
		return err
	}

	log.Debug("linking account", "source", request.Source, "externalId", request.Account.AccountID)
	if err := m.provider.LinkAccount(ctx, request); err != nil {
		return fmt.Errorf("linking account %s: %w", request.Account.AccountID, err)
	}

	m.publisher.Publish(ctx, events.RefreshAccounts{})
	m.publisher.Publish(ctx, events.RefreshPayees{})
	return nil
}

// Unlink detaches accountID from its provider and forgets its last failure.
func (m *Manager) Unlink(ctx context.Context, accountID string) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	if accountID == "" {
		return ErrMissingAccountID
	}

	log.Debug("unlinking account", "accountId", accountID)
	if err := m.provider.UnlinkAccount(ctx, accountID); err != nil {
		return fmt.Errorf("unlinking account %s: %w", accountID, err)
	}

	m.store.ClearFailure(accountID)
	m.publisher.Publish(ctx, events.RefreshAccounts{})
	return nil
}

// Move places accountID before targetID, or at the end of the list when targetID is empty.
func (m *Manager) Move(ctx context.Context, accountID, targetID string) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	switch {
	case accountID == "":
		return ErrMissingAccountID
	case accountID == targetID:
		return fmt.Errorf("%w: %s", ErrMoveBeforeItself, accountID)
	}

	log.Debug("moving account", "accountId", accountID, "targetId", targetID)
	if err := m.provider.MoveAccount(ctx, accountID, targetID); err != nil {
		return fmt.Errorf("moving account %s: %w", accountID, err)
	}

	m.publisher.Publish(ctx, events.RefreshAccounts{})
	m.publisher.Publish(ctx, events.RefreshPayees{})
	return nil
}

func validateLink(request bank.LinkRequest) error {
	switch {
	case request.Account.AccountID == "":
		return ErrMissingExternalID
	case !request.Source.Known():
		return fmt.Errorf("%w: %q", ErrUnknownSyncSource, request.Source)
	case request.Source == bank.SyncSourceGoCardless && request.RequisitionID == "":
		return ErrMissingRequisitionID
	}
	return nil
}
