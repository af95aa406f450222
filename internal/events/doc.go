// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package events defines the machine readable events emitted while managing and syncing
// accounts, the Publisher used by producers and the Sink implemented by consumers.
// A Queue decouples the two: producers never block and the collaborator layer drains it.
package events
