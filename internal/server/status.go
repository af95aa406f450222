// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statusPrefix = "/-/"
)

type statusResponse struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

func statusRoutes(app *fiber.App, serviceName, version string, gatherer prometheus.Gatherer) {
	status := func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(statusResponse{
			Status:  "OK",
			Name:    serviceName,
			Version: version,
		})
	}

	app.Get(statusPrefix+"healthz", status)
	app.Get(statusPrefix+"ready", status)

	if gatherer != nil {
		app.Get(statusPrefix+"metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}
