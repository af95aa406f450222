// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package syncstate holds the process wide sync state: the last known failure of every
// account and the ordered list of accounts still pending in the active sync run.
// Observers can poll the Store or subscribe to snapshots of it.
package syncstate
