// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package server contains the HTTP server of acctsync.
// It sets up the Fiber application, configures the request logging middleware,
// exposes the status and metrics routes and the sync routes that trigger and inspect runs.
package server
