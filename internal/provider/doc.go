// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package provider defines the contract of the remote bank sync provider. Concrete clients
// live in the sub packages: remote talks to the HTTP API, file replays a YAML fixture.
package provider
