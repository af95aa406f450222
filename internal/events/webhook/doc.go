// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package webhook implements an events.Sink posting every event to a remote endpoint.
// The endpoint and its bearer token are read from environment variables.
package webhook
