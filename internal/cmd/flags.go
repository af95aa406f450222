// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mia-platform/acctsync/internal/bank"
	"github.com/mia-platform/acctsync/internal/events"
	"github.com/mia-platform/acctsync/internal/events/webhook"
	"github.com/mia-platform/acctsync/internal/events/writer"
	"github.com/mia-platform/acctsync/internal/provider"
	"github.com/mia-platform/acctsync/internal/provider/file"
	"github.com/mia-platform/acctsync/internal/provider/remote"
)

const (
	fixtureFlagName  = "fixture"
	fixtureFlagUsage = "Path to a YAML fixture replayed instead of calling the remote bank sync provider"

	localOutputFlagName  = "local-output"
	localOutputFlagUsage = "If set, writes the events to stdout instead of sending them to the remote webhook"
	defaultLocalOutput   = false

	beforeFlagName  = "before"
	beforeFlagUsage = "Id of the account that will follow the moved one, the account is moved to the end when empty"

	sourceFlagName        = "source"
	externalIDFlagName    = "external-id"
	nameFlagName          = "name"
	institutionFlagName   = "institution"
	orgDomainFlagName     = "org-domain"
	balanceFlagName       = "balance"
	requisitionIDFlagName = "requisition-id"
	upgradeFlagName       = "upgrade"
	offBudgetFlagName     = "off-budget"
)

// flags collects the CLI options shared by every command.
type flags struct {
	fixturePath string
	localOutput bool
}

// addFlags registers the CLI flags on cmd.
func (f *flags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.fixturePath, fixtureFlagName, "", fixtureFlagUsage)
	cmd.Flags().BoolVar(&f.localOutput, localOutputFlagName, defaultLocalOutput, localOutputFlagUsage)
}

// toOptions builds an options instance from the parsed flags.
func (f *flags) toOptions(cmd *cobra.Command) (*options, error) {
	var bankProvider provider.Provider
	if f.fixturePath != "" {
		fileProvider, err := file.NewProviderFromPath(f.fixturePath)
		if err != nil {
			return nil, err
		}
		bankProvider = fileProvider
	} else {
		client, err := remote.NewClient()
		if err != nil {
			return nil, err
		}
		bankProvider = client
	}

	var sink events.Sink
	if f.localOutput {
		sink = writer.NewSink(cmd.OutOrStdout())
	} else {
		var err error
		sink, err = webhook.NewSink()
		if err != nil {
			return nil, err
		}
	}

	return newOptions(bankProvider, sink), nil
}

// linkFlags holds the flags of the link command.
type linkFlags struct {
	source        string
	externalID    string
	name          string
	institution   string
	orgDomain     string
	balance       string
	requisitionID string
	upgradingID   string
	offBudget     bool
}

func (f *linkFlags) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.source, sourceFlagName, "", "Bank sync integration of the account (simpleFin, goCardless, pluggyai)")
	flags.StringVar(&f.externalID, externalIDFlagName, "", "Id of the account inside the bank sync integration")
	flags.StringVar(&f.name, nameFlagName, "", "Name of the account")
	flags.StringVar(&f.institution, institutionFlagName, "", "Name of the institution holding the account")
	flags.StringVar(&f.orgDomain, orgDomainFlagName, "", "Domain of the institution holding the account")
	flags.StringVar(&f.balance, balanceFlagName, "0", "Current balance of the account")
	flags.StringVar(&f.requisitionID, requisitionIDFlagName, "", "Requisition id, required for goCardless accounts")
	flags.StringVar(&f.upgradingID, upgradeFlagName, "", "Id of an existing local account to link instead of creating a new one")
	flags.BoolVar(&f.offBudget, offBudgetFlagName, false, "Create the new account off budget")
}

func (f *linkFlags) toRequest() (bank.LinkRequest, error) {
	balance, err := decimal.NewFromString(f.balance)
	if err != nil {
		return bank.LinkRequest{}, fmt.Errorf("%w: --%s %q is not a valid amount", errInvalidArguments, balanceFlagName, f.balance)
	}

	return bank.LinkRequest{
		Source:        bank.SyncSource(f.source),
		RequisitionID: f.requisitionID,
		Account: bank.ExternalAccount{
			AccountID:   f.externalID,
			Name:        f.name,
			Institution: f.institution,
			OrgDomain:   f.orgDomain,
			Balance:     balance,
		},
		UpgradingID: f.upgradingID,
		OffBudget:   f.offBudget,
	}, nil
}
