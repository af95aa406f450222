// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package remote

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
)

var (
	errParsingConfig       = errors.New("error parsing bank sync configuration from environment variables")
	errMissingClientID     = errors.New("BANK_SYNC_CLIENT_ID is required when BANK_SYNC_CLIENT_SECRET is set")
	errMissingClientSecret = errors.New("BANK_SYNC_CLIENT_SECRET is required when BANK_SYNC_CLIENT_ID is set")
)

// config holds the environment driven provider settings.
type config struct {
	Endpoint     string `env:"BANK_SYNC_ENDPOINT,required,notEmpty"`
	ClientID     string `env:"BANK_SYNC_CLIENT_ID"`
	ClientSecret string `env:"BANK_SYNC_CLIENT_SECRET"`
	AuthEndpoint string `env:"BANK_SYNC_AUTH_ENDPOINT"`
}

func loadConfigFromEnv() (*config, error) {
	config, err := env.ParseAs[config]()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errParsingConfig, err.Error())
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *config) validate() error {
	endpointURL, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid BANK_SYNC_ENDPOINT: %w", err)
	}

	switch {
	case len(c.ClientID) > 0 && len(c.ClientSecret) == 0:
		return errMissingClientSecret
	case len(c.ClientSecret) > 0 && len(c.ClientID) == 0:
		return errMissingClientID
	}

	if len(c.AuthEndpoint) == 0 {
		endpointURL.Path = "/oauth/token"
		c.AuthEndpoint = endpointURL.String()
	} else if _, err := url.Parse(c.AuthEndpoint); err != nil {
		return fmt.Errorf("invalid BANK_SYNC_AUTH_ENDPOINT: %w", err)
	}
	return nil
}
