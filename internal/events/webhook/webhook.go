// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mia-platform/acctsync/internal/events"
	"github.com/mia-platform/acctsync/internal/info"
)

var _ events.Sink = &webhookSink{}

var timeSource = time.Now

// WebhookError wraps every failure reported by the webhook sink.
type WebhookError struct {
	err error
}

func (e *WebhookError) Error() string {
	return "webhook: " + e.err.Error()
}

func (e *WebhookError) Unwrap() error {
	return e.err
}

func (e *WebhookError) Is(target error) bool {
	we, ok := target.(*WebhookError)
	if !ok {
		return false
	}

	return e.err.Error() == we.err.Error()
}

// webhookSink posts event envelopes to Endpoint.
type webhookSink struct {
	Endpoint string `env:"ACCTSYNC_WEBHOOK_ENDPOINT,required,notEmpty"`
	Token    string `env:"ACCTSYNC_WEBHOOK_TOKEN"`
	// Timeout bounds every delivery.
	Timeout time.Duration `env:"ACCTSYNC_WEBHOOK_TIMEOUT" envDefault:"10s"`

	client *http.Client
}

// NewSink returns a sink configured from the environment.
func NewSink() (events.Sink, error) {
	sink := &webhookSink{}
	if err := env.Parse(sink); err != nil {
		return nil, handleError(err)
	}
	if sink.Timeout <= 0 {
		return nil, handleError(fmt.Errorf("invalid timeout %s", sink.Timeout))
	}

	sink.client = &http.Client{Timeout: sink.Timeout}

	return sink, nil
}

// Send implements events.Sink.
func (s *webhookSink) Send(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(events.NewEnvelope(event, timeSource()))
	if err != nil {
		return handleError(err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return handleError(err)
	}

	request.Header.Set("User-Agent", info.UserAgent())
	request.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		request.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.client.Do(request)
	if err != nil {
		return handleError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var respBody map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err == nil {
		if message, ok := respBody["message"].(string); ok {
			return handleError(errors.New(message))
		}
	}

	return handleError(fmt.Errorf("unexpected status code %d", resp.StatusCode))
}

func handleError(err error) error {
	var parseErr env.AggregateError
	if errors.As(err, &parseErr) {
		err = parseErr.Errors[0]
	}

	return &WebhookError{
		err: err,
	}
}
