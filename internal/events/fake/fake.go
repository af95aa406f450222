// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"sync"
	"testing"

	"github.com/mia-platform/acctsync/internal/events"
)

var (
	_ events.Publisher = &Recorder{}
	_ events.Sink      = &Recorder{}
)

// Recorder keeps every published or sent event in order.
type Recorder struct {
	tb testing.TB

	lock   sync.Mutex
	events []events.Event
	// SendErr is returned by Send when set.
	SendErr error
}

func NewRecorder(tb testing.TB) *Recorder {
	tb.Helper()
	return &Recorder{tb: tb}
}

func (r *Recorder) Publish(_ context.Context, event events.Event) {
	r.tb.Helper()
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Send(ctx context.Context, event events.Event) error {
	r.tb.Helper()
	r.Publish(ctx, event)
	return r.SendErr
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []events.Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]events.Event(nil), r.events...)
}

// OfType returns the recorded events whose EventType is eventType.
func (r *Recorder) OfType(eventType string) []events.Event {
	filtered := make([]events.Event, 0)
	for _, event := range r.Events() {
		if event.EventType() == eventType {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// Notifications returns the recorded notifications.
func (r *Recorder) Notifications() []events.Notification {
	notifications := make([]events.Notification, 0)
	for _, event := range r.OfType(events.TypeNotification) {
		notifications = append(notifications, event.(events.Notification))
	}
	return notifications
}

// Progress returns every recorded progress list in order.
func (r *Recorder) Progress() [][]string {
	progress := make([][]string, 0)
	for _, event := range r.OfType(events.TypeSyncProgress) {
		progress = append(progress, event.(events.SyncProgress).AccountIDs)
	}
	return progress
}
