// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package syncstate

import (
	"maps"
	"slices"
	"sync"
)

// Failure is the classification of the last failed sync of an account.
type Failure struct {
	ErrorType string `json:"errorType"`
	ErrorCode string `json:"errorCode"`
}

// Snapshot is a consistent copy of the store content.
type Snapshot struct {
	Failures map[string]Failure `json:"failures"`
	Progress []string           `json:"progress"`
}

// Store keeps failures and progress. A non empty progress means a sync run is active.
type Store struct {
	lock     sync.RWMutex
	failures map[string]Failure
	progress []string

	subscribers map[int]chan Snapshot
	nextID      int
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		failures:    make(map[string]Failure),
		subscribers: make(map[int]chan Snapshot),
	}
}

// Failure returns the failure recorded for accountID, if any.
func (s *Store) Failure(accountID string) (Failure, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	failure, ok := s.failures[accountID]
	return failure, ok
}

// Failures returns a copy of every recorded failure.
func (s *Store) Failures() map[string]Failure {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return maps.Clone(s.failures)
}

// SetFailure records or overwrites the failure of accountID.
func (s *Store) SetFailure(accountID string, failure Failure) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if current, ok := s.failures[accountID]; ok && current == failure {
		return
	}

	s.failures[accountID] = failure
	s.notifyLocked()
}

// ClearFailure removes the failure of accountID, if any.
func (s *Store) ClearFailure(accountID string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.failures[accountID]; !ok {
		return
	}

	delete(s.failures, accountID)
	s.notifyLocked()
}

// Progress returns the account ids still pending in the active run.
func (s *Store) Progress() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return slices.Clone(s.progress)
}

// Syncing reports whether a run currently holds the progress list.
func (s *Store) Syncing() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.progress) > 0
}

// SetProgress replaces the pending account ids, an empty list marks the run as finished.
func (s *Store) SetProgress(accountIDs []string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(accountIDs) == 0 {
		s.progress = nil
	} else {
		s.progress = slices.Clone(accountIDs)
	}
	s.notifyLocked()
}

// Snapshot returns a consistent copy of failures and progress.
func (s *Store) Snapshot() Snapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.snapshotLocked()
}

// Subscribe returns a channel receiving the latest snapshot after every change and a
// function to stop the subscription. Slow readers only miss intermediate snapshots.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := s.nextID
	s.nextID++
	channel := make(chan Snapshot, 1)
	s.subscribers[id] = channel

	return channel, func() {
		s.lock.Lock()
		defer s.lock.Unlock()

		if ch, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(ch)
		}
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Failures: maps.Clone(s.failures),
		Progress: slices.Clone(s.progress),
	}
}

// notifyLocked must be called with the write lock held.
func (s *Store) notifyLocked() {
	if len(s.subscribers) == 0 {
		return
	}

	snapshot := s.snapshotLocked()
	for _, channel := range s.subscribers {
		select {
		case <-channel:
		default:
		}
		channel <- snapshot
	}
}
