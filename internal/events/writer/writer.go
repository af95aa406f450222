// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package writer

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/mia-platform/acctsync/internal/events"
)

var _ events.Sink = &writerSink{}

var timeSource = time.Now

type writerSink struct {
	writer io.Writer

	lock sync.Mutex
}

// NewSink returns a sink writing every event on w.
func NewSink(w io.Writer) events.Sink {
	return &writerSink{
		writer: w,
	}
}

func (s *writerSink) Send(_ context.Context, event events.Event) error {
	line, err := json.Marshal(events.NewEnvelope(event, timeSource()))
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	_, err = s.writer.Write(append(line, '\n'))
	return err
}
