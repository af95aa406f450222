// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package syncer

import (
	"context"

	"github.com/mia-platform/acctsync/internal/bank"
	"github.com/mia-platform/acctsync/internal/events"
	"github.com/mia-platform/acctsync/internal/syncstate"
)

// classify applies response to the state of accountID and merges its deltas in the run
// aggregate. It reports whether the account produced new or matched transactions.
func (r *run) classify(ctx context.Context, accountID string, response *bank.SyncResponse) bool {
	if response == nil {
		response = &bank.SyncResponse{}
	}

	// only the first issue can change the account health
	outcome := AccountOutcomeOK
	if len(response.Errors) == 0 {
		r.store.ClearFailure(accountID)
	} else {
		switch first := response.Errors[0].(type) {
		case bank.ClassifiedError:
			outcome = AccountOutcomeClassifiedError
			r.store.SetFailure(accountID, syncstate.Failure{ErrorType: first.Category, ErrorCode: first.Code})
		case bank.GenericIssue:
			outcome = AccountOutcomeGenericIssue
		}
	}
	r.observer.AccountSynced(outcome)

	for _, issue := range response.Errors {
		notification := events.Notification{Severity: events.SeverityError, AccountID: accountID}
		switch i := issue.(type) {
		case bank.ClassifiedError:
			notification.Message = i.Message
		case bank.GenericIssue:
			notification.Message = i.Message
			notification.Internal = i.Internal
		}
		r.log.Debug("account sync issue", "accountId", accountID, "message", notification.Message)
		r.publisher.Publish(ctx, notification)
	}

	r.aggregate.newTransactions.add(response.NewTransactions...)
	r.aggregate.matchedTransactions.add(response.MatchedTransactions...)
	r.aggregate.updatedAccounts.add(response.UpdatedAccounts...)

	r.publisher.Publish(ctx, events.RefreshAccounts{})

	changed := len(response.NewTransactions) > 0 || len(response.MatchedTransactions) > 0
	r.aggregate.success = r.aggregate.success || changed
	r.log.Trace("account classified", "accountId", accountID, "outcome", outcome, "changed", changed)
	return changed
}
