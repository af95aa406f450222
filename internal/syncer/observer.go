// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package syncer

import (
	"time"
)

// RunResult is the final state of a run invocation.
type RunResult string

const (
	RunResultSuccess  RunResult = "success"
	RunResultNoChange RunResult = "nochange"
	RunResultRejected RunResult = "rejected"
	RunResultError    RunResult = "error"
)

// AccountOutcome is decided by the first issue of an account response.
type AccountOutcome string

const (
	AccountOutcomeOK              AccountOutcome = "ok"
	AccountOutcomeClassifiedError AccountOutcome = "classified_error"
	AccountOutcomeGenericIssue    AccountOutcome = "generic_issue"
)

// Observer receives run measurements.
type Observer interface {
	RunFinished(result RunResult, duration time.Duration)
	AccountSynced(outcome AccountOutcome)
}

type noopObserver struct{}

func (noopObserver) RunFinished(RunResult, time.Duration) {}
func (noopObserver) AccountSynced(AccountOutcome)         {}
