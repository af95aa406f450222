// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package file implements provider.Provider on top of a YAML fixture. It is meant for local
// dry runs: sync calls replay the canned responses and account management calls only
// mutate the in-memory copy of the fixture.
package file
