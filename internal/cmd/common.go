// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/mia-platform/acctsync/internal/server"
)

var (
	errInvalidArguments = errors.New("invalid arguments")

	// serverGetter returns the HTTP server used by the serve command.
	// It can be overridden for testing purposes.
	serverGetter = server.NewServer
)

// handleError will do custom print error handling based on the type of error received.
// it will return nil if the command must return 0 exit code, otherwise it will return
// the original error.
func handleError(cmd *cobra.Command, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, errInvalidArguments):
		cmd.PrintErrln(err)
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return err
	default:
		cmd.PrintErrln(err)
		return err
	}
}

// argsValidator wraps validator printing the usage when the arguments are not valid.
func argsValidator(validator cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validator(cmd, args); err != nil {
			return handleError(cmd, errors.Join(errInvalidArguments, err))
		}
		return nil
	}
}
