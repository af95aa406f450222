// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package syncer drives bank sync runs: it plans which accounts to sync and in which order,
// calls the provider through the batch and the per-account paths, classifies every response
// into the syncstate store and publishes the resulting events.
package syncer
