// Copyright (c) 2024 Neomantra Corp
//
// Process-level bootstrap config (spec §7 ConfigError, SPEC_FULL.md §A):
// data roots, broker credentials, and base-data registry location, filled
// from the environment. Adapted from the teacher's live.LiveConfig.SetFromEnv
// pattern (the same flat-struct-plus-SetFromEnv shape, generalized from a
// single Databento API key/client pair to this domain's broker/registry
// bootstrap surface).

package config

import (
	"fmt"
	"os"

	"wondertrader/wt"
)

const (
	EnvDataRoot     = "WT_DATA_ROOT"
	EnvRegistryPath = "WT_REGISTRY_PATH"
	EnvRegistryURL  = "WT_REGISTRY_URL"
	EnvBrokerID     = "WT_BROKER_ID"
	EnvBrokerSecret = "WT_BROKER_SECRET"
)

// BootstrapConfig is the flat process-level configuration every cmd/wt-*
// binary loads before wiring up store/basedata/engine.
type BootstrapConfig struct {
	DataRoot     string // base directory for his/, rt/, marker.ini
	RegistryPath string // local contracts.yaml path
	RegistryURL  string // optional remote refresh URL
	BrokerID     string
	BrokerSecret string
	Verbose      bool
}

// SetFromEnv fills in the config from environment variables, matching the
// teacher's LiveConfig.SetFromEnv shape.
func (c *BootstrapConfig) SetFromEnv() error {
	c.DataRoot = os.Getenv(EnvDataRoot)
	if c.DataRoot == "" {
		c.DataRoot = "."
	}
	c.RegistryPath = os.Getenv(EnvRegistryPath)
	c.RegistryURL = os.Getenv(EnvRegistryURL)
	c.BrokerID = os.Getenv(EnvBrokerID)
	c.BrokerSecret = os.Getenv(EnvBrokerSecret)

	if c.RegistryPath == "" && c.RegistryURL == "" {
		return fmt.Errorf("%w: one of %s or %s must be set", wt.ErrConfig, EnvRegistryPath, EnvRegistryURL)
	}
	return nil
}
