// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mia-platform/acctsync/internal/info"
	"github.com/mia-platform/acctsync/internal/logger"
)

const (
	loggerName = "acctsync:server"
)

type Server interface {
	AddRoute(method string, path string, handler fiber.Handler)
	Start() error
	Stop() error
	StartAsync(ctx context.Context)
}

type impServer struct {
	config

	app *fiber.App
}

var (
	ErrServerListen   = errors.New("server listen error")
	ErrServerShutdown = errors.New("server shutdown error")
)

// NewServer returns a Server configured from the environment. The metrics route is exposed
// only when gatherer is not nil.
func NewServer(ctx context.Context, gatherer prometheus.Gatherer) (Server, error) {
	cfg, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	return newServer(ctx, *cfg, gatherer), nil
}

func newServer(ctx context.Context, cfg config, gatherer prometheus.Gatherer) *impServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: cfg.DisableStartupMessage,
		Immutable:             true,
	})
	log := logger.FromContext(ctx)
	app.Use(logger.RequestMiddlewareLogger(log, []string{statusPrefix}))

	statusRoutes(app, info.AppName, info.Version, gatherer)

	return &impServer{
		app:    app,
		config: cfg,
	}
}

func (s *impServer) AddRoute(method string, path string, handler fiber.Handler) {
	s.app.Add(method, path, handler)
}

func (s *impServer) Start() error {
	if err := s.app.Listen(fmt.Sprintf("%s:%d", s.HTTPHost, s.HTTPPort)); err != nil {
		return fmt.Errorf("%w: %w", ErrServerListen, err)
	}
	return nil
}

func (s *impServer) Stop() error {
	if err := s.app.Shutdown(); err != nil {
		return fmt.Errorf("%w: %w", ErrServerShutdown, err)
	}
	return nil
}

func (s *impServer) StartAsync(ctx context.Context) {
	log := logger.FromContext(ctx).WithName(loggerName)
	go func() {
		if err := s.Start(); err != nil {
			log.Error(err.Error())
		}
	}()
}
