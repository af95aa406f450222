// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mia-platform/acctsync/internal/logger"
	"github.com/mia-platform/acctsync/internal/syncer"
	"github.com/mia-platform/acctsync/internal/syncstate"
)

const (
	namespace  = "acctsync"
	loggerName = "acctsync:metrics"
)

var _ syncer.Observer = &Collectors{}

// Collectors groups every acctsync collector.
type Collectors struct {
	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
	accountSyncs   *prometheus.CounterVec
	accountsFailed prometheus.Gauge
}

// New creates the collectors and registers them on registerer.
func New(registerer prometheus.Registerer) (*Collectors, error) {
	collectors := &Collectors{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Total number of sync run invocations",
			},
			[]string{"result"}, // success|nochange|rejected|error
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_run_duration_seconds",
				Help:      "Duration of the sync runs that were not rejected",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
		),
		accountSyncs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "account_sync_total",
				Help:      "Total number of processed account responses",
			},
			[]string{"outcome"}, // ok|classified_error|generic_issue
		),
		accountsFailed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "accounts_failed",
				Help:      "Number of accounts whose last sync ended with a classified error",
			},
		),
	}

	for _, collector := range []prometheus.Collector{
		collectors.runs,
		collectors.runDuration,
		collectors.accountSyncs,
		collectors.accountsFailed,
	} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}

	return collectors, nil
}

// RunFinished counts a finished run and observes its duration unless it was rejected.
func (c *Collectors) RunFinished(result syncer.RunResult, duration time.Duration) {
	c.runs.WithLabelValues(string(result)).Inc()
	if result != syncer.RunResultRejected {
		c.runDuration.Observe(duration.Seconds())
	}
}

// AccountSynced counts an account response by outcome.
func (c *Collectors) AccountSynced(outcome syncer.AccountOutcome) {
	c.accountSyncs.WithLabelValues(string(outcome)).Inc()
}

// WatchFailures keeps the failed accounts gauge aligned with store until ctx is done.
func (c *Collectors) WatchFailures(ctx context.Context, store *syncstate.Store) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	snapshots, unsubscribe := store.Subscribe()
	defer unsubscribe()

	c.accountsFailed.Set(float64(len(store.Failures())))
	for {
		select {
		case <-ctx.Done():
			log.Trace("stop watching failures", "error", ctx.Err())
			return nil
		case snapshot, ok := <-snapshots:
			if !ok {
				return nil
			}
			c.accountsFailed.Set(float64(len(snapshot.Failures)))
		}
	}
}
