// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	forwardedHostHeaderKey = "x-forwarded-host"
	forwardedForHeaderKey  = "x-forwarded-for"
	// RequestIDHeaderName is read from incoming requests and echoed back on responses.
	RequestIDHeaderName = "x-request-id"

	IncomingRequestMessage  = "incoming request"
	RequestCompletedMessage = "request completed"
)

// httpFields is the structured payload attached to request log lines.
type httpFields struct {
	Method     string `json:"method,omitempty"`
	Path       string `json:"path,omitempty"`
	UserAgent  string `json:"userAgent,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	BodyBytes  int    `json:"bodyBytes,omitempty"`
}

type hostFields struct {
	Hostname      string `json:"hostname,omitempty"`
	ForwardedHost string `json:"forwardedHost,omitempty"`
	IP            string `json:"ip,omitempty"`
}

func removePort(host string) string {
	return strings.Split(host, ":")[0]
}

// requestID returns the caller supplied request id or a freshly generated one.
func requestID(c *fiber.Ctx) string {
	if id := c.Get(RequestIDHeaderName); id != "" {
		return id
	}

	return uuid.NewString()
}

func hostOf(c *fiber.Ctx) hostFields {
	return hostFields{
		Hostname:      removePort(c.Hostname()),
		ForwardedHost: c.Get(forwardedHostHeaderKey),
		IP:            c.Get(forwardedForHeaderKey),
	}
}

// RequestMiddlewareLogger is a fiber middleware logging every request that does not match
// one of the excluded prefixes. The request scoped logger is stored in the user context.
func RequestMiddlewareLogger(logger Logger, excludedPrefix []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, prefix := range excludedPrefix {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		start := time.Now()
		id := requestID(c)
		c.Set(RequestIDHeaderName, id)

		requestLogger := logger.WithName("request").With("requestId", id)
		c.SetUserContext(WithContext(c.UserContext(), requestLogger))

		requestLogger.Trace(IncomingRequestMessage,
			"http", httpFields{
				Method:    c.Method(),
				Path:      path,
				UserAgent: c.Get(fiber.HeaderUserAgent),
			},
			"host", hostOf(c),
		)

		err := c.Next()

		statusCode := c.Response().StatusCode()
		bodyBytes := len(c.Response().Body())
		if fiberErr, ok := err.(*fiber.Error); ok {
			statusCode = fiberErr.Code
			bodyBytes = len(fiberErr.Message)
		}

		requestLogger.Info(RequestCompletedMessage,
			"http", httpFields{
				Method:     c.Method(),
				Path:       path,
				UserAgent:  c.Get(fiber.HeaderUserAgent),
				StatusCode: statusCode,
				BodyBytes:  bodyBytes,
			},
			"host", hostOf(c),
			"responseTime", float64(time.Since(start).Milliseconds()),
		)

		return err
	}
}
