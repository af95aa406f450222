// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package metrics exposes sync measurements as prometheus collectors.
package metrics
