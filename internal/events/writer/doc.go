// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package writer implements an events.Sink printing one JSON envelope per line.
package writer
