// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package remote implements provider.Provider against the bank sync HTTP API.
// Configuration comes from BANK_SYNC_* environment variables; when client credentials are
// set every call is authenticated with an OAuth2 client credentials token.
package remote
