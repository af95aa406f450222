// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/mia-platform/acctsync/internal/accounts"
	"github.com/mia-platform/acctsync/internal/bank"
	"github.com/mia-platform/acctsync/internal/events"
	"github.com/mia-platform/acctsync/internal/logger"
	"github.com/mia-platform/acctsync/internal/metrics"
	"github.com/mia-platform/acctsync/internal/provider"
	"github.com/mia-platform/acctsync/internal/server"
	"github.com/mia-platform/acctsync/internal/syncer"
	"github.com/mia-platform/acctsync/internal/syncstate"
)

const (
	loggerName = "acctsync:cmd"
)

// options holds the collaborators shared by every command.
type options struct {
	provider provider.Provider
	sink     events.Sink
	store    *syncstate.Store
	queue    *events.Queue
}

func newOptions(provider provider.Provider, sink events.Sink) *options {
	return &options{
		provider: provider,
		sink:     sink,
		store:    syncstate.New(),
		queue:    events.NewQueue(),
	}
}

// withEvents runs fn while delivering the published events to the sink, and waits for
// every pending event to be delivered before returning.
func (o *options) withEvents(ctx context.Context, fn func(context.Context) error) error {
	group := new(errgroup.Group)
	group.Go(func() error {
		return o.queue.Run(ctx, o.sink)
	})

	err := fn(ctx)
	o.queue.Close()
	if waitErr := group.Wait(); err == nil {
		err = waitErr
	}
	return err
}

// executeSync runs a single sync of targetID, or of every account when empty.
func (o *options) executeSync(ctx context.Context, targetID string) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	coordinator := syncer.New(o.store, o.provider, o.queue, nil)

	return o.withEvents(ctx, func(ctx context.Context) error {
		outcome, err := coordinator.Execute(ctx, targetID)
		if err != nil {
			return err
		}

		log.Info("sync completed", "runId", outcome.RunID, "success", outcome.Success, "failedAccounts", len(o.store.Failures()))
		return nil
	})
}

// executeServe starts the HTTP server and delivers the events until ctx is done.
func (o *options) executeServe(ctx context.Context) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observer, err := metrics.New(registry)
	if err != nil {
		return err
	}

	srv, err := serverGetter(ctx, registry)
	if err != nil {
		return err
	}

	coordinator := syncer.New(o.store, o.provider, o.queue, observer)
	server.AddSyncRoutes(srv, coordinator, o.store)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return o.queue.Run(groupCtx, o.sink)
	})
	group.Go(func() error {
		return observer.WatchFailures(groupCtx, o.store)
	})
	group.Go(func() error {
		log.Info("starting server")
		return srv.Start()
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("stopping server")
		// in flight runs end before the queue is closed, so their last events are delivered
		err := srv.Stop()
		o.queue.Close()
		return err
	})

	return group.Wait()
}

func (o *options) executeLink(ctx context.Context, request bank.LinkRequest) error {
	manager := accounts.New(o.provider, o.store, o.queue)
	return o.withEvents(ctx, func(ctx context.Context) error {
		return manager.Link(ctx, request)
	})
}

func (o *options) executeUnlink(ctx context.Context, accountID string) error {
	manager := accounts.New(o.provider, o.store, o.queue)
	return o.withEvents(ctx, func(ctx context.Context) error {
		return manager.Unlink(ctx, accountID)
	})
}

func (o *options) executeMove(ctx context.Context, accountID, targetID string) error {
	manager := accounts.New(o.provider, o.store, o.queue)
	return o.withEvents(ctx, func(ctx context.Context) error {
		return manager.Move(ctx, accountID, targetID)
	})
}
