// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package accounts links, unlinks and reorders accounts through the provider and asks the
// collaborators to refresh their caches afterwards.
package accounts
