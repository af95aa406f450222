// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package remote

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/acctsync/internal/bank"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := newClient(config{Endpoint: server.URL})
	client.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return client
}

func TestListAccounts(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		responses        []func(http.ResponseWriter)
		expectedAccounts []bank.Account
		expectedCalls    int32
		expectedErr      string
	}{
		"accounts returned": {
			responses: []func(http.ResponseWriter){
				func(w http.ResponseWriter) {
					_, _ = w.Write([]byte(`[{"id":"a","bank":"b1","sort_order":2,"account_sync_source":"simpleFin"},{"id":"b","offbudget":true,"sort_order":1}]`))
				},
			},
			expectedAccounts: []bank.Account{
				{ID: "a", Bank: "b1", SortOrder: 2, SyncSource: bank.SyncSourceSimpleFin},
				{ID: "b", OffBudget: true, SortOrder: 1},
			},
			expectedCalls: 1,
		},
		"server errors are retried": {
			responses: []func(http.ResponseWriter){
				func(w http.ResponseWriter) { w.WriteHeader(http.StatusBadGateway) },
				func(w http.ResponseWriter) { _, _ = w.Write([]byte(`[{"id":"a"}]`)) },
			},
			expectedAccounts: []bank.Account{{ID: "a"}},
			expectedCalls:    2,
		},
		"retries are exhausted": {
			responses: []func(http.ResponseWriter){
				func(w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) },
			},
			expectedCalls: listAccountsMaxTries,
			expectedErr:   "provider: unexpected error (status 500)",
		},
		"client errors are not retried": {
			responses: []func(http.ResponseWriter){
				func(w http.ResponseWriter) { w.WriteHeader(http.StatusUnauthorized) },
			},
			expectedCalls: 1,
			expectedErr:   "provider: invalid token or insufficient permissions (status 401)",
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, accountsPath, r.URL.Path)
				assert.Equal(t, "acctsync/DEV", r.Header.Get("User-Agent"))

				call := int(calls.Add(1)) - 1
				if call >= len(test.responses) {
					call = len(test.responses) - 1
				}
				test.responses[call](w)
			})

			accounts, err := client.ListAccounts(t.Context())
			assert.Equal(t, test.expectedCalls, calls.Load())
			if test.expectedErr != "" {
				var providerErr *ProviderError
				require.ErrorAs(t, err, &providerErr)
				assert.EqualError(t, err, test.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expectedAccounts, accounts)
		})
	}
}

func TestSyncAccount(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, bankSyncPath, r.URL.Path)

		var body idsRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"acc-1"}, body.IDs)

		_, _ = w.Write([]byte(`{
			"errors": [{"type":"BankSyncError","category":"X","code":"Y","message":"broken"}],
			"newTransactions": ["t1"],
			"matchedTransactions": [],
			"updatedAccounts": ["acc-1"]
		}`))
	})

	response, err := client.SyncAccount(t.Context(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, &bank.SyncResponse{
		Errors:              bank.Issues{bank.ClassifiedError{Category: "X", Code: "Y", Message: "broken"}},
		NewTransactions:     []string{"t1"},
		MatchedTransactions: []string{},
		UpdatedAccounts:     []string{"acc-1"},
	}, response)
}

func TestSyncAccountFailures(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		handler     http.HandlerFunc
		expectedErr string
	}{
		"message from error payload": {
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"message":"unknown account"}`))
			},
			expectedErr: "provider: unknown account (status 400)",
		},
		"not found": {
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expectedErr: "provider: resource not found (status 404)",
		},
		"malformed payload": {
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"errors": "nope"}`))
			},
			expectedErr: "provider: malformed response payload",
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			response, err := testClient(t, test.handler).SyncAccount(t.Context(), "acc-1")
			assert.Nil(t, response)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.expectedErr)
		})
	}
}

func TestBatchSyncAccounts(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, batchSyncPath, r.URL.Path)

		var body idsRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"a", "b"}, body.IDs)

		_, _ = w.Write([]byte(`[
			{"accountId":"b","res":{"newTransactions":["t2"]}},
			{"accountId":"a","res":{"errors":[{"message":"timeout","internal":"upstream"}]}}
		]`))
	})

	results, err := client.BatchSyncAccounts(t.Context(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []bank.BatchResult{
		{AccountID: "b", Response: bank.SyncResponse{NewTransactions: []string{"t2"}}},
		{AccountID: "a", Response: bank.SyncResponse{Errors: bank.Issues{bank.GenericIssue{Message: "timeout", Internal: "upstream"}}}},
	}, results)
}

func TestAccountManagementCalls(t *testing.T) {
	t.Parallel()

	type call struct {
		path string
		body string
	}

	testCases := map[string]struct {
		invoke   func(*Client, *testing.T) error
		expected call
	}{
		"link": {
			invoke: func(c *Client, t *testing.T) error {
				return c.LinkAccount(t.Context(), bank.LinkRequest{
					Source:  bank.SyncSourceSimpleFin,
					Account: bank.ExternalAccount{AccountID: "ext-1", Name: "Checking", Balance: decimal.RequireFromString("10.50")},
				})
			},
			expected: call{
				path: linkPath,
				body: `{"source":"simpleFin","account":{"account_id":"ext-1","name":"Checking","balance":"10.5"},"offBudget":false}`,
			},
		},
		"unlink": {
			invoke: func(c *Client, t *testing.T) error { return c.UnlinkAccount(t.Context(), "acc/1") },
			expected: call{
				path: "/accounts/acc/1/unlink",
			},
		},
		"move before target": {
			invoke: func(c *Client, t *testing.T) error { return c.MoveAccount(t.Context(), "acc-1", "acc-2") },
			expected: call{
				path: "/accounts/acc-1/move",
				body: `{"targetId":"acc-2"}`,
			},
		},
		"move to the end": {
			invoke: func(c *Client, t *testing.T) error { return c.MoveAccount(t.Context(), "acc-1", "") },
			expected: call{
				path: "/accounts/acc-1/move",
				body: `{"targetId":null}`,
			},
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var received call
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				body, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				received = call{path: r.URL.Path, body: string(body)}
				w.WriteHeader(http.StatusNoContent)
			})

			require.NoError(t, test.invoke(client, t))
			assert.Equal(t, test.expected, received)
		})
	}
}
