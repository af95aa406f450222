// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/cenkalti/backoff/v5"

	"github.com/mia-platform/acctsync/internal/bank"
	"github.com/mia-platform/acctsync/internal/info"
	"github.com/mia-platform/acctsync/internal/provider"
)

const (
	accountsPath  = "/accounts"
	bankSyncPath  = "/accounts/bank-sync"
	batchSyncPath = "/simplefin/batch-sync"
	linkPath      = "/accounts/link"

	statusCodeErrorRangeStart = 400
	listAccountsMaxTries      = 3
)

var _ provider.Provider = &Client{}

// Client implements provider.Provider over HTTP.
type Client struct {
	config

	client     atomic.Pointer[http.Client]
	newBackOff func() backoff.BackOff
}

// NewClient returns a Client configured from the environment.
func NewClient() (*Client, error) {
	config, err := loadConfigFromEnv()
	if err != nil {
		return nil, handleError(err)
	}

	return newClient(*config), nil
}

func newClient(cfg config) *Client {
	return &Client{
		config: cfg,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

type moveRequest struct {
	TargetID *string `json:"targetId"`
}

// ListAccounts implements provider.Provider. Transient failures are retried.
func (c *Client) ListAccounts(ctx context.Context) ([]bank.Account, error) {
	operation := func() ([]bank.Account, error) {
		var accounts []bank.Account
		if err := c.doRequest(ctx, http.MethodGet, accountsPath, nil, &accounts); err != nil {
			if !retryable(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return accounts, nil
	}

	accounts, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(listAccountsMaxTries),
	)
	if err != nil {
		return nil, handleError(err)
	}
	return accounts, nil
}

// SyncAccount implements provider.Provider.
func (c *Client) SyncAccount(ctx context.Context, accountID string) (*bank.SyncResponse, error) {
	response := new(bank.SyncResponse)
	if err := c.doRequest(ctx, http.MethodPost, bankSyncPath, idsRequest{IDs: []string{accountID}}, response); err != nil {
		return nil, err
	}
	return response, nil
}

// BatchSyncAccounts implements provider.Provider.
func (c *Client) BatchSyncAccounts(ctx context.Context, accountIDs []string) ([]bank.BatchResult, error) {
	var results []bank.BatchResult
	if err := c.doRequest(ctx, http.MethodPost, batchSyncPath, idsRequest{IDs: accountIDs}, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// LinkAccount implements provider.Provider.
func (c *Client) LinkAccount(ctx context.Context, request bank.LinkRequest) error {
	return c.doRequest(ctx, http.MethodPost, linkPath, request, nil)
}

// UnlinkAccount implements provider.Provider.
func (c *Client) UnlinkAccount(ctx context.Context, accountID string) error {
	return c.doRequest(ctx, http.MethodPost, accountPath(accountID, "unlink"), nil, nil)
}

// MoveAccount implements provider.Provider.
func (c *Client) MoveAccount(ctx context.Context, accountID, targetID string) error {
	body := moveRequest{}
	if targetID != "" {
		body.TargetID = &targetID
	}
	return c.doRequest(ctx, http.MethodPost, accountPath(accountID, "move"), body, nil)
}

func accountPath(accountID, action string) string {
	return accountsPath + "/" + url.PathEscape(accountID) + "/" + action
}

// doRequest sends body as JSON and decodes a successful answer into out when not nil.
func (c *Client) doRequest(ctx context.Context, method, requestPath string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return handleError(err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.Endpoint+requestPath, reader)
	if err != nil {
		return handleError(err)
	}

	request.Header.Set("User-Agent", info.UserAgent())
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	//nolint:contextcheck // need a new context because it will be used in token requests
	resp, err := c.getClient(context.Background()).Do(request)
	if err != nil {
		return handleError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusUnauthorized:
		return handleError(&statusError{code: resp.StatusCode, message: "invalid token or insufficient permissions"})
	case http.StatusNotFound:
		return handleError(&statusError{code: resp.StatusCode, message: "resource not found"})
	case http.StatusNoContent:
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return handleError(err)
	}

	if resp.StatusCode >= statusCodeErrorRangeStart {
		message := "unexpected error"
		var errResp map[string]any
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			if msg, ok := errResp["message"].(string); ok {
				message = msg
			}
		}
		return handleError(&statusError{code: resp.StatusCode, message: message})
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return handleError(errors.Join(errors.New("malformed response payload"), err))
	}
	return nil
}

func (c *Client) getClient(ctx context.Context) *http.Client {
	client := c.client.Load()
	if client != nil {
		return client
	}

	client = &http.Client{
		Transport: newTransport(ctx, c.AuthEndpoint, c.ClientID, c.ClientSecret),
	}
	c.client.Store(client)
	return client
}
