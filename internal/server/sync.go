// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/acctsync/internal/logger"
	"github.com/mia-platform/acctsync/internal/syncer"
	"github.com/mia-platform/acctsync/internal/syncstate"
)

// Runner starts sync runs.
type Runner interface {
	Execute(ctx context.Context, targetID string) (syncer.Outcome, error)
}

// StateReader exposes the sync state to observers.
type StateReader interface {
	Progress() []string
	Failures() map[string]syncstate.Failure
}

type progressResponse struct {
	AccountIDs []string `json:"accountIds"`
}

type syncResponse struct {
	RunID   string `json:"runId"`
	Success bool   `json:"success"`
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// AddSyncRoutes registers the routes triggering and inspecting sync runs on srv.
func AddSyncRoutes(srv Server, runner Runner, state StateReader) {
	srv.AddRoute(http.MethodGet, "/sync/progress", func(c *fiber.Ctx) error {
		progress := state.Progress()
		if progress == nil {
			progress = []string{}
		}
		return c.JSON(progressResponse{AccountIDs: progress})
	})

	srv.AddRoute(http.MethodGet, "/sync/failures", func(c *fiber.Ctx) error {
		return c.JSON(state.Failures())
	})

	runHandler := func(c *fiber.Ctx) error {
		log := logger.FromContext(c.UserContext()).WithName(loggerName)

		outcome, err := runner.Execute(c.UserContext(), c.Params("accountId"))
		switch {
		case errors.Is(err, syncer.ErrListAccounts):
			log.Error("sync run failed", "error", err)
			return errorJSON(c, http.StatusBadGateway, err.Error())
		case err != nil:
			log.Error("sync run failed", "error", err)
			return errorJSON(c, http.StatusInternalServerError, err.Error())
		case outcome.Rejected:
			return errorJSON(c, http.StatusConflict, "a sync run is already in progress")
		}

		return c.JSON(syncResponse{RunID: outcome.RunID, Success: outcome.Success})
	}

	srv.AddRoute(http.MethodPost, "/sync", runHandler)
	srv.AddRoute(http.MethodPost, "/sync/:accountId", runHandler)
}

func errorJSON(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(errorResponse{
		StatusCode: statusCode,
		Error:      http.StatusText(statusCode),
		Message:    message,
	})
}
