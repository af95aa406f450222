// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package logger wraps hclog behind the Logger interface used across acctsync.
// Loggers travel inside a context.Context so every component can name its own child logger.
package logger
