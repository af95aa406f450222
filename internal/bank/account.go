// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package bank

import (
	"github.com/shopspring/decimal"
)

// SyncSource tags the provider integration an account is linked through.
type SyncSource string

const (
	// SyncSourceUnset marks accounts without a known integration.
	SyncSourceUnset SyncSource = ""
	// SyncSourceSimpleFin marks SimpleFIN accounts, the only ones supporting batch sync.
	SyncSourceSimpleFin SyncSource = "simpleFin"
	// SyncSourceGoCardless marks GoCardless accounts.
	SyncSourceGoCardless SyncSource = "goCardless"
	// SyncSourcePluggyAI marks Pluggy.ai accounts.
	SyncSourcePluggyAI SyncSource = "pluggyai"
)

// Batchable reports whether the integration can sync many accounts in one round trip.
func (s SyncSource) Batchable() bool {
	return s == SyncSourceSimpleFin
}

// Known reports whether s names a supported integration.
func (s SyncSource) Known() bool {
	switch s {
	case SyncSourceSimpleFin, SyncSourceGoCardless, SyncSourcePluggyAI:
		return true
	default:
		return false
	}
}

// Account is the local view of an account as returned by the account list.
type Account struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	Bank       string     `json:"bank,omitempty" yaml:"bank,omitempty"`
	Closed     bool       `json:"closed,omitempty" yaml:"closed,omitempty"`
	Tombstone  bool       `json:"tombstone,omitempty" yaml:"tombstone,omitempty"`
	OffBudget  bool       `json:"offbudget,omitempty" yaml:"offbudget,omitempty"`
	SortOrder  float64    `json:"sort_order" yaml:"sortOrder"`
	SyncSource SyncSource `json:"account_sync_source,omitempty" yaml:"syncSource,omitempty"`
}

// Syncable reports whether the account is linked to a provider and still open.
func (a Account) Syncable() bool {
	return a.Bank != "" && !a.Closed && !a.Tombstone
}

// ExternalAccount describes an account as exposed by the provider before it is linked.
type ExternalAccount struct {
	AccountID   string          `json:"account_id" yaml:"accountId"`
	Name        string          `json:"name" yaml:"name"`
	Institution string          `json:"institution,omitempty" yaml:"institution,omitempty"`
	OrgDomain   string          `json:"orgDomain,omitempty" yaml:"orgDomain,omitempty"`
	Balance     decimal.Decimal `json:"balance" yaml:"balance"`
}

// LinkRequest asks the provider to attach an external account to a local one.
type LinkRequest struct {
	Source        SyncSource      `json:"source"`
	RequisitionID string          `json:"requisitionId,omitempty"`
	Account       ExternalAccount `json:"account"`
	// UpgradingID is the local account to link, a new account is created when empty.
	UpgradingID string `json:"upgradingId,omitempty"`
	OffBudget   bool   `json:"offBudget"`
}
