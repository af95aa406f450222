// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/acctsync/internal/server"
)

var _ server.Server = &Server{}

type Route struct {
	Method  string
	Path    string
	Handler fiber.Handler
}

// Server records the registered routes and can serve them through App.
type Server struct {
	tb               testing.TB
	RegisteredRoutes []Route

	startOnce   sync.Once
	stopOnce    sync.Once
	startedChan chan struct{}
	closedChan  chan struct{}
}

func NewFakeServer(tb testing.TB) *Server {
	tb.Helper()

	return &Server{
		tb:          tb,
		startedChan: make(chan struct{}),
		closedChan:  make(chan struct{}),
	}
}

func (s *Server) AddRoute(method string, path string, handler fiber.Handler) {
	s.tb.Helper()
	s.RegisteredRoutes = append(s.RegisteredRoutes, Route{
		Method:  method,
		Path:    path,
		Handler: handler,
	})
}

func (s *Server) Start() error {
	s.tb.Helper()
	s.startOnce.Do(func() { close(s.startedChan) })
	<-s.closedChan
	return nil
}

func (s *Server) Stop() error {
	s.tb.Helper()
	s.stopOnce.Do(func() { close(s.closedChan) })
	return nil
}

func (s *Server) StartAsync(_ context.Context) {
	s.tb.Helper()
	go func() {
		_ = s.Start()
	}()
}

// StartedServer is closed once Start has been called.
func (s *Server) StartedServer() <-chan struct{} {
	s.tb.Helper()
	return s.startedChan
}

// StoppedServer is closed once Stop has been called.
func (s *Server) StoppedServer() <-chan struct{} {
	s.tb.Helper()
	return s.closedChan
}

// App returns a fiber application serving the registered routes.
func (s *Server) App() *fiber.App {
	s.tb.Helper()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	for _, route := range s.RegisteredRoutes {
		app.Add(route.Method, route.Path, route.Handler)
	}
	return app
}
