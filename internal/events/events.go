// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package events

import (
	"context"
	"time"
)

const (
	// TypeRefreshAccounts is the envelope type of RefreshAccounts.
	TypeRefreshAccounts     = "refresh-accounts"
	// TypeRefreshPayees is the envelope type of RefreshPayees.
	TypeRefreshPayees       = "refresh-payees"
	// TypeTransactionsUpdated is the envelope type of TransactionsUpdated.
	TypeTransactionsUpdated = "transactions-updated"
	// TypeNotification is the envelope type of Notification.
	TypeNotification        = "notification"
	// TypeSyncProgress is the envelope type of SyncProgress.
	TypeSyncProgress        = "sync-progress"

	// SeverityError is the only severity emitted for sync issues.
	SeverityError = "error"
)

// Event is implemented by every event kind in this package.
type Event interface {
	EventType() string
}

// Publisher accepts events from producers.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Sink delivers events to an external consumer.
type Sink interface {
	Send(ctx context.Context, event Event) error
}

// RefreshAccounts asks the account list owner to reload its cache.
type RefreshAccounts struct{}

func (RefreshAccounts) EventType() string { return TypeRefreshAccounts }

// RefreshPayees asks the payee list owner to reload its cache.
type RefreshPayees struct{}

func (RefreshPayees) EventType() string { return TypeRefreshPayees }

// TransactionsUpdated carries the consolidated result of a sync run.
type TransactionsUpdated struct {
	RunID               string   `json:"runId,omitempty"`
	NewTransactions     []string `json:"newTransactions"`
	MatchedTransactions []string `json:"matchedTransactions"`
	UpdatedAccounts     []string `json:"updatedAccounts"`
}

func (TransactionsUpdated) EventType() string { return TypeTransactionsUpdated }

// Notification is a one-shot user facing message.
type Notification struct {
	Severity  string `json:"severity"`
	AccountID string `json:"accountId,omitempty"`
	Message   string `json:"message"`
	Internal  string `json:"internal,omitempty"`
}

func (Notification) EventType() string { return TypeNotification }

// SyncProgress lists the accounts still pending in a run, empty once the run ends.
type SyncProgress struct {
	RunID      string   `json:"runId,omitempty"`
	AccountIDs []string `json:"accountIds"`
}

func (SyncProgress) EventType() string { return TypeSyncProgress }

// Envelope is the serialized form of an event shared by every sink.
type Envelope struct {
	Type    string `json:"type"`
	Time    string `json:"time"`
	Payload Event  `json:"payload"`
}

// NewEnvelope wraps event stamping it with t.
func NewEnvelope(event Event, t time.Time) Envelope {
	return Envelope{
		Type:    event.EventType(),
		Time:    t.UTC().Format(time.RFC3339),
		Payload: event,
	}
}
