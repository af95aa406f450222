// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	syncCmdUsage = "sync [ACCOUNT_ID]"
	syncCmdShort = "synchronize one or every linked account"
	syncCmdLong  = `Synchronize one or every linked account with the bank sync provider.
	Without arguments every linked account that is not closed is synced: accounts
	supporting the batch sync are synced with a single call, the others one at a time
	in the account list order. Every event produced by the run is sent to the
	configured webhook or printed with the --local-output flag.`

	syncCmdExample = `# Sync every account printing the events
	acctsync sync --local-output

	# Sync a single account replaying a local fixture
	acctsync sync 3f6c0e2a --fixture accounts.yaml --local-output`

	serveCmdUsage = "serve"
	serveCmdShort = "start the sync HTTP server"
	serveCmdLong  = `Start the HTTP server exposing the sync routes.
	The server accepts sync requests on POST /sync and POST /sync/{accountId} and
	exposes the sync progress and the failed accounts on GET /sync/progress and
	GET /sync/failures. Status and metrics are served under /-/.`

	serveCmdExample = `# Start the server on port 8080
	HTTP_PORT=8080 acctsync serve`

	linkCmdUsage = "link"
	linkCmdShort = "link an external account"
	linkCmdLong  = `Link an external account returned by a bank sync integration.
	A new local account is created unless --upgrade is set to the id of an existing one.`

	linkCmdExample = `# Link a SimpleFIN account to a new local account
	acctsync link --source simpleFin --external-id ACT-123 --name Checking --balance 120.50`

	unlinkCmdUsage = "unlink ACCOUNT_ID"
	unlinkCmdShort = "unlink an account from its bank sync integration"

	unlinkCmdExample = `# Unlink an account
	acctsync unlink 3f6c0e2a`

	moveCmdUsage = "move ACCOUNT_ID"
	moveCmdShort = "change the position of an account in the account list"
	moveCmdLong  = `Change the position of an account in the account list.
	The account is placed before the one set with --before, or at the end of the list.`

	moveCmdExample = `# Move an account before another one
	acctsync move 3f6c0e2a --before 9b1d44f0`
)

// SyncCmd returns the Cobra command that runs a single sync.
func SyncCmd() *cobra.Command {
	flags := &flags{}
	cmd := &cobra.Command{
		Use:     syncCmdUsage,
		Short:   heredoc.Doc(syncCmdShort),
		Long:    heredoc.Doc(syncCmdLong),
		Example: heredoc.Doc(syncCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              argsValidator(cobra.MaximumNArgs(1)),
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			targetID := ""
			if len(args) > 0 {
				targetID = args[0]
			}

			if err := opts.executeSync(cmd.Context(), targetID); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// ServeCmd returns the Cobra command that starts the HTTP server.
func ServeCmd() *cobra.Command {
	flags := &flags{}
	cmd := &cobra.Command{
		Use:     serveCmdUsage,
		Short:   heredoc.Doc(serveCmdShort),
		Long:    heredoc.Doc(serveCmdLong),
		Example: heredoc.Doc(serveCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              argsValidator(cobra.NoArgs),
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeServe(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// LinkCmd returns the Cobra command that links an external account.
func LinkCmd() *cobra.Command {
	flags := &flags{}
	link := &linkFlags{}
	cmd := &cobra.Command{
		Use:     linkCmdUsage,
		Short:   heredoc.Doc(linkCmdShort),
		Long:    heredoc.Doc(linkCmdLong),
		Example: heredoc.Doc(linkCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              argsValidator(cobra.NoArgs),
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			request, err := link.toRequest()
			if err != nil {
				return handleError(cmd, err)
			}

			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeLink(cmd.Context(), request); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	link.addFlags(cmd)
	return cmd
}

// UnlinkCmd returns the Cobra command that unlinks an account.
func UnlinkCmd() *cobra.Command {
	flags := &flags{}
	cmd := &cobra.Command{
		Use:     unlinkCmdUsage,
		Short:   heredoc.Doc(unlinkCmdShort),
		Example: heredoc.Doc(unlinkCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              argsValidator(cobra.ExactArgs(1)),
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeUnlink(cmd.Context(), args[0]); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// MoveCmd returns the Cobra command that reorders an account.
func MoveCmd() *cobra.Command {
	flags := &flags{}
	var targetID string
	cmd := &cobra.Command{
		Use:     moveCmdUsage,
		Short:   heredoc.Doc(moveCmdShort),
		Long:    heredoc.Doc(moveCmdLong),
		Example: heredoc.Doc(moveCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              argsValidator(cobra.ExactArgs(1)),
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeMove(cmd.Context(), args[0], targetID); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	cmd.Flags().StringVar(&targetID, beforeFlagName, "", beforeFlagUsage)
	return cmd
}
