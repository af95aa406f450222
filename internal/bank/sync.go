// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package bank

// SyncResponse is the provider outcome of syncing a single account.
type SyncResponse struct {
	Errors              Issues   `json:"errors,omitempty" yaml:"errors,omitempty"`
	NewTransactions     []string `json:"newTransactions,omitempty" yaml:"newTransactions,omitempty"`
	MatchedTransactions []string `json:"matchedTransactions,omitempty" yaml:"matchedTransactions,omitempty"`
	UpdatedAccounts     []string `json:"updatedAccounts,omitempty" yaml:"updatedAccounts,omitempty"`
}

// BatchResult pairs one account with its response inside a batch sync reply.
type BatchResult struct {
	AccountID string       `json:"accountId" yaml:"accountId"`
	Response  SyncResponse `json:"res" yaml:"res"`
}
