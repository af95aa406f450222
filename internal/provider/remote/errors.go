// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package remote

import (
	"errors"
	"fmt"
)

// ProviderError wraps every failure reported by the bank sync API client.
type ProviderError struct {
	err error
}

func (e *ProviderError) Error() string {
	return "provider: " + e.err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.err
}

func (e *ProviderError) Is(target error) bool {
	pe, ok := target.(*ProviderError)
	if !ok {
		return false
	}

	return e.err.Error() == pe.err.Error()
}

// statusError is a non successful HTTP answer.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.message, e.code)
}

// retryable reports whether the failure may go away by repeating the same request.
func retryable(err error) bool {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.code >= 500
	}

	return true
}

func handleError(err error) error {
	if err == nil {
		return nil
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return err
	}

	return &ProviderError{
		err: err,
	}
}
