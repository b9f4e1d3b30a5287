// Copyright 2026 Paideia DAO
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/assemble"
)

type ctxKey string

const configContextKey ctxKey = "paideia.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// ScriptsConfig holds the deployed protocol script addresses (bech32)
// and minting policy ids (hex).
type ScriptsConfig struct {
	DaoAddress      string `yaml:"daoAddress"      envconfig:"DAO_ADDRESS"`
	DaoPolicyId     string `yaml:"daoPolicyId"     envconfig:"DAO_POLICY_ID"`
	VoteAddress     string `yaml:"voteAddress"     envconfig:"VOTE_ADDRESS"`
	VotePolicyId    string `yaml:"votePolicyId"    envconfig:"VOTE_POLICY_ID"`
	ProposalAddress string `yaml:"proposalAddress" envconfig:"PROPOSAL_ADDRESS"`
	ActionAddress   string `yaml:"actionAddress"   envconfig:"ACTION_ADDRESS"`
	TreasuryAddress string `yaml:"treasuryAddress" envconfig:"TREASURY_ADDRESS"`
}

// SlotConfig overrides the slot timing defaults derived from the named
// network, for devnets and custom deployments. All values in ms.
type SlotConfig struct {
	ZeroTime   int64  `yaml:"zeroTime"   envconfig:"SLOT_ZERO_TIME"`
	ZeroSlot   uint64 `yaml:"zeroSlot"   envconfig:"SLOT_ZERO_SLOT"`
	SlotLength int64  `yaml:"slotLength" envconfig:"SLOT_LENGTH"`
}

type Config struct {
	Network          string        `yaml:"network"`
	UtxorpcUrl       string        `yaml:"utxorpcUrl"       envconfig:"UTXORPC_URL"`
	BuilderUrl       string        `yaml:"builderUrl"       envconfig:"BUILDER_URL"`
	ApiListenAddress string        `yaml:"apiListenAddress"                         split_words:"true"`
	MetricsPort      uint          `yaml:"metricsPort"                              split_words:"true"`
	ShutdownTimeout  string        `yaml:"shutdownTimeout"                          split_words:"true"`
	Tracing          bool          `yaml:"tracing"`
	TracingStdout    bool          `yaml:"tracingStdout"                            split_words:"true"`
	Scripts          ScriptsConfig `yaml:"scripts"`
	Slots            SlotConfig    `yaml:"slots"`
}

var globalConfig = &Config{
	Network:          "preview",
	ApiListenAddress: ":8090",
	MetricsPort:      12798,
	ShutdownTimeout:  DefaultShutdownTimeout,
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.paideia/paideia.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".paideia", "paideia.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/paideia/paideia.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/paideia/paideia.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	err := envconfig.Process("paideia", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}

// ParseShutdownTimeout parses the configured shutdown timeout string.
func (c *Config) ParseShutdownTimeout() (time.Duration, error) {
	timeout, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	return timeout, nil
}

// ParseScripts decodes the configured script addresses and policy ids
// into their wire representations.
func (c *Config) ParseScripts() (assemble.Scripts, error) {
	var scripts assemble.Scripts
	var err error
	if scripts.DAOAddress, err = parseAddress(c.Scripts.DaoAddress); err != nil {
		return scripts, fmt.Errorf("dao address: %w", err)
	}
	if scripts.VoteAddress, err = parseAddress(c.Scripts.VoteAddress); err != nil {
		return scripts, fmt.Errorf("vote address: %w", err)
	}
	if scripts.ProposalAddress, err = parseAddress(c.Scripts.ProposalAddress); err != nil {
		return scripts, fmt.Errorf("proposal address: %w", err)
	}
	if scripts.ActionAddress, err = parseAddress(c.Scripts.ActionAddress); err != nil {
		return scripts, fmt.Errorf("action address: %w", err)
	}
	if scripts.TreasuryAddress, err = parseAddress(c.Scripts.TreasuryAddress); err != nil {
		return scripts, fmt.Errorf("treasury address: %w", err)
	}
	if scripts.DAOPolicyID, err = parsePolicyId(c.Scripts.DaoPolicyId); err != nil {
		return scripts, fmt.Errorf("dao policy id: %w", err)
	}
	if scripts.VotePolicyID, err = parsePolicyId(c.Scripts.VotePolicyId); err != nil {
		return scripts, fmt.Errorf("vote policy id: %w", err)
	}
	return scripts, nil
}

func parseAddress(bech32 string) (lcommon.Address, error) {
	if bech32 == "" {
		return lcommon.Address{}, fmt.Errorf("no address defined")
	}
	addr, err := lcommon.NewAddress(bech32)
	if err != nil {
		return lcommon.Address{}, fmt.Errorf(
			"invalid address %q: %w",
			bech32,
			err,
		)
	}
	return addr, nil
}

func parsePolicyId(hexStr string) ([]byte, error) {
	if hexStr == "" {
		return nil, fmt.Errorf("no policy id defined")
	}
	policyId, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("invalid policy id %q: %w", hexStr, err)
	}
	if len(policyId) != 28 {
		return nil, fmt.Errorf(
			"invalid policy id length: expected 28 bytes, got %d",
			len(policyId),
		)
	}
	return policyId, nil
}
