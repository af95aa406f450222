// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package file

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mia-platform/acctsync/internal/bank"
	"github.com/mia-platform/acctsync/internal/provider"
)

const (
	sortOrderStep = 1024
)

var (
	// ErrParsing reports failures that occur while decoding fixture files.
	ErrParsing = errors.New("error parsing fixture")
	// ErrUnknownAccount is returned when a call references an account missing from the fixture.
	ErrUnknownAccount = errors.New("unknown account")
)

// Fixture is the YAML document replayed by the Provider.
type Fixture struct {
	Accounts []bank.Account `yaml:"accounts"`
	// Responses holds the canned sync response of every account id.
	Responses map[string]bank.SyncResponse `yaml:"responses,omitempty"`
	// CallFailures makes the sync call of an account id fail with the given message.
	CallFailures map[string]string `yaml:"callFailures,omitempty"`
	// BatchFailure makes every batch call fail with the given message.
	BatchFailure string `yaml:"batchFailure,omitempty"`
}

var _ provider.Provider = &Provider{}

// Provider replays a Fixture.
type Provider struct {
	lock    sync.Mutex
	fixture Fixture
}

// NewProviderFromPath decodes the fixture at path.
func NewProviderFromPath(path string) (*Provider, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	fixture := Fixture{}
	if err := decoder.Decode(&fixture); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w %q: %w", ErrParsing, path, err)
	}

	for idx, account := range fixture.Accounts {
		if account.ID == "" {
			return nil, fmt.Errorf("%w %q: account at index %d has no id", ErrParsing, path, idx)
		}
	}

	return NewProvider(fixture), nil
}

// NewProvider returns a Provider replaying fixture.
func NewProvider(fixture Fixture) *Provider {
	return &Provider{fixture: fixture}
}

// ListAccounts implements provider.Provider.
func (p *Provider) ListAccounts(ctx context.Context) ([]bank.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	return slices.Clone(p.fixture.Accounts), nil
}

// SyncAccount implements provider.Provider.
func (p *Provider) SyncAccount(ctx context.Context, accountID string) (*bank.SyncResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	if message, ok := p.fixture.CallFailures[accountID]; ok {
		return nil, errors.New(message)
	}

	response := p.fixture.Responses[accountID]
	return &response, nil
}

// BatchSyncAccounts implements provider.Provider. Accounts unknown to the fixture are left
// out of the results.
func (p *Provider) BatchSyncAccounts(ctx context.Context, accountIDs []string) ([]bank.BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	if p.fixture.BatchFailure != "" {
		return nil, errors.New(p.fixture.BatchFailure)
	}

	results := make([]bank.BatchResult, 0, len(accountIDs))
	for _, id := range accountIDs {
		if p.indexOf(id) < 0 {
			continue
		}
		results = append(results, bank.BatchResult{AccountID: id, Response: p.fixture.Responses[id]})
	}
	return results, nil
}

// LinkAccount implements provider.Provider.
func (p *Provider) LinkAccount(_ context.Context, request bank.LinkRequest) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if request.UpgradingID != "" {
		idx := p.indexOf(request.UpgradingID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownAccount, request.UpgradingID)
		}
		p.fixture.Accounts[idx].Bank = request.Account.AccountID
		p.fixture.Accounts[idx].SyncSource = request.Source
		return nil
	}

	p.fixture.Accounts = append(p.fixture.Accounts, bank.Account{
		ID:         uuid.NewString(),
		Name:       request.Account.Name,
		Bank:       request.Account.AccountID,
		OffBudget:  request.OffBudget,
		SortOrder:  p.nextSortOrder(),
		SyncSource: request.Source,
	})
	return nil
}

// UnlinkAccount implements provider.Provider.
func (p *Provider) UnlinkAccount(_ context.Context, accountID string) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	idx := p.indexOf(accountID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}

	p.fixture.Accounts[idx].Bank = ""
	p.fixture.Accounts[idx].SyncSource = bank.SyncSourceUnset
	return nil
}

// MoveAccount implements provider.Provider. Sort orders are renumbered after every move.
func (p *Provider) MoveAccount(_ context.Context, accountID, targetID string) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	idx := p.indexOf(accountID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}
	if targetID != "" && p.indexOf(targetID) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, targetID)
	}
	if targetID == accountID {
		return nil
	}

	ordered := slices.Clone(p.fixture.Accounts)
	slices.SortStableFunc(ordered, func(a, b bank.Account) int {
		return cmp.Compare(a.SortOrder, b.SortOrder)
	})

	moved := ordered[slices.IndexFunc(ordered, func(a bank.Account) bool { return a.ID == accountID })]
	ordered = slices.DeleteFunc(ordered, func(a bank.Account) bool { return a.ID == accountID })

	position := len(ordered)
	if targetID != "" {
		position = slices.IndexFunc(ordered, func(a bank.Account) bool { return a.ID == targetID })
	}
	ordered = slices.Insert(ordered, position, moved)

	for i := range ordered {
		ordered[i].SortOrder = float64((i + 1) * sortOrderStep)
	}
	p.fixture.Accounts = ordered
	return nil
}

// indexOf must be called with the lock held.
func (p *Provider) indexOf(accountID string) int {
	return slices.IndexFunc(p.fixture.Accounts, func(a bank.Account) bool { return a.ID == accountID })
}

// nextSortOrder must be called with the lock held.
func (p *Provider) nextSortOrder() float64 {
	highest := 0.0
	for _, account := range p.fixture.Accounts {
		highest = max(highest, account.SortOrder)
	}
	return highest + sortOrderStep
}
