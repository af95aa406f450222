// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package bank defines the records exchanged with the bank sync provider: the local account
// snapshot, the per-account sync responses and the issues they can carry.
package bank
