// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/mia-platform/acctsync/internal/bank"
	"github.com/mia-platform/acctsync/internal/provider"
)

var _ provider.Provider = &Provider{}

// MoveCall records the arguments of a MoveAccount invocation.
type MoveCall struct {
	AccountID string
	TargetID  string
}

// Provider is a configurable provider.Provider that records every call it receives.
type Provider struct {
	tb testing.TB

	Accounts  []bank.Account
	Responses map[string]bank.SyncResponse
	// SyncErrors makes SyncAccount fail for the given account ids.
	SyncErrors map[string]error
	// BatchResults overrides the batch reply, when nil it is built from Responses.
	BatchResults []bank.BatchResult
	ListErr      error
	BatchErr     error
	AccountErr   error
	// OnSync runs at the start of every SyncAccount and BatchSyncAccounts call.
	OnSync func(ctx context.Context, accountIDs []string)

	lock        sync.Mutex
	listCalls   int
	syncCalls   []string
	batchCalls  [][]string
	linkCalls   []bank.LinkRequest
	unlinkCalls []string
	moveCalls   []MoveCall
}

// NewProvider returns a Provider serving accounts with no canned responses.
func NewProvider(tb testing.TB, accounts ...bank.Account) *Provider {
	tb.Helper()

	return &Provider{
		tb:         tb,
		Accounts:   accounts,
		Responses:  make(map[string]bank.SyncResponse),
		SyncErrors: make(map[string]error),
	}
}

func (p *Provider) ListAccounts(context.Context) ([]bank.Account, error) {
	p.tb.Helper()

	p.lock.Lock()
	defer p.lock.Unlock()
	p.listCalls++
	if p.ListErr != nil {
		return nil, p.ListErr
	}
	return slices.Clone(p.Accounts), nil
}

func (p *Provider) SyncAccount(ctx context.Context, accountID string) (*bank.SyncResponse, error) {
	p.tb.Helper()

	if p.OnSync != nil {
		p.OnSync(ctx, []string{accountID})
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	p.syncCalls = append(p.syncCalls, accountID)
	if err := p.SyncErrors[accountID]; err != nil {
		return nil, err
	}
	response := p.Responses[accountID]
	return &response, nil
}

func (p *Provider) BatchSyncAccounts(ctx context.Context, accountIDs []string) ([]bank.BatchResult, error) {
	p.tb.Helper()

	if p.OnSync != nil {
		p.OnSync(ctx, accountIDs)
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	p.batchCalls = append(p.batchCalls, slices.Clone(accountIDs))
	if p.BatchErr != nil {
		return nil, p.BatchErr
	}
	if p.BatchResults != nil {
		return slices.Clone(p.BatchResults), nil
	}

	results := make([]bank.BatchResult, 0, len(accountIDs))
	for _, id := range accountIDs {
		results = append(results, bank.BatchResult{AccountID: id, Response: p.Responses[id]})
	}
	return results, nil
}

func (p *Provider) LinkAccount(_ context.Context, request bank.LinkRequest) error {
	p.tb.Helper()

	p.lock.Lock()
	defer p.lock.Unlock()
	p.linkCalls = append(p.linkCalls, request)
	return p.AccountErr
}

func (p *Provider) UnlinkAccount(_ context.Context, accountID string) error {
	p.tb.Helper()

	p.lock.Lock()
	defer p.lock.Unlock()
	p.unlinkCalls = append(p.unlinkCalls, accountID)
	return p.AccountErr
}

func (p *Provider) MoveAccount(_ context.Context, accountID, targetID string) error {
	p.tb.Helper()

	p.lock.Lock()
	defer p.lock.Unlock()
	p.moveCalls = append(p.moveCalls, MoveCall{AccountID: accountID, TargetID: targetID})
	return p.AccountErr
}

// ListCalls returns how many times ListAccounts has been called.
func (p *Provider) ListCalls() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.listCalls
}

// SyncCalls returns the account ids passed to SyncAccount, in call order.
func (p *Provider) SyncCalls() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return slices.Clone(p.syncCalls)
}

// BatchCalls returns the account ids of every BatchSyncAccounts call.
func (p *Provider) BatchCalls() [][]string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return slices.Clone(p.batchCalls)
}

// TotalSyncCalls counts both single and batch sync calls.
func (p *Provider) TotalSyncCalls() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.syncCalls) + len(p.batchCalls)
}

func (p *Provider) LinkCalls() []bank.LinkRequest {
	p.lock.Lock()
	defer p.lock.Unlock()
	return slices.Clone(p.linkCalls)
}

func (p *Provider) UnlinkCalls() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return slices.Clone(p.unlinkCalls)
}

func (p *Provider) MoveCalls() []MoveCall {
	p.lock.Lock()
	defer p.lock.Unlock()
	return slices.Clone(p.moveCalls)
}
