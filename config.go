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

package paideia

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/assemble"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/txbuild"
)

type Config struct {
	promRegistry     prometheus.Registerer
	logger           *slog.Logger
	clock            txbuild.Clock
	network          string
	utxorpcURL       string
	builderURL       string
	apiListenAddress string
	scripts          assemble.Scripts
	slots            txbuild.SlotConverter
	tracing          bool
	tracingStdout    bool
	shutdownTimeout  time.Duration
}

// slotAnchor holds the post-Byron slot timing anchor of a named network.
type slotAnchor struct {
	zeroTime int64 // ms since Unix epoch
	zeroSlot uint64
}

// Shelley-era slot anchors for the public Cardano networks.
var networkSlotAnchors = map[string]slotAnchor{
	"mainnet": {zeroTime: 1596059091000, zeroSlot: 4492800},
	"preprod": {zeroTime: 1655769600000, zeroSlot: 86400},
	"preview": {zeroTime: 1666656000000, zeroSlot: 0},
}

// configPopulateSlots fills in the slot converter from the named network
// when no explicit slot configuration was given.
func (c *Coordinator) configPopulateSlots() error {
	if c.config.slots.SlotLength != 0 {
		return nil
	}
	anchor, ok := networkSlotAnchors[c.config.network]
	if !ok {
		return fmt.Errorf(
			"unknown network name: %s",
			c.config.network,
		)
	}
	c.config.slots = txbuild.SlotConverter{
		ZeroTime:   time.UnixMilli(anchor.zeroTime),
		ZeroSlot:   anchor.zeroSlot,
		SlotLength: time.Second,
	}
	return nil
}

func (c *Coordinator) configValidate() error {
	if c.config.utxorpcURL == "" {
		return errors.New("no UTxO RPC endpoint defined")
	}
	if c.config.builderURL == "" {
		return errors.New("no transaction builder endpoint defined")
	}
	if len(c.config.scripts.DAOPolicyID) == 0 {
		return errors.New("no protocol scripts defined")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the
// coordinator config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new coordinator config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		network:         "preview",
		shutdownTimeout: 30 * time.Second,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding log
// output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithNetwork specifies the named network to operate on. This determines
// the default slot timing configuration
func WithNetwork(network string) ConfigOptionFunc {
	return func(c *Config) {
		c.network = network
	}
}

// WithUtxorpcURL specifies the UTxO RPC endpoint used for chain state
// lookups
func WithUtxorpcURL(url string) ConfigOptionFunc {
	return func(c *Config) {
		c.utxorpcURL = url
	}
}

// WithBuilderURL specifies the endpoint of the transaction building
// service that balances and serializes assembled plans
func WithBuilderURL(url string) ConfigOptionFunc {
	return func(c *Config) {
		c.builderURL = url
	}
}

// WithApiListenAddress specifies the listen address for the REST API
// server. An empty string disables the server
func WithApiListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithScripts specifies the deployed protocol script addresses and
// policy ids
func WithScripts(scripts assemble.Scripts) ConfigOptionFunc {
	return func(c *Config) {
		c.scripts = scripts
	}
}

// WithSlotConfig specifies the slot timing configuration. This overrides
// the defaults derived from the named network
func WithSlotConfig(slots txbuild.SlotConverter) ConfigOptionFunc {
	return func(c *Config) {
		c.slots = slots
	}
}

// WithClock specifies the wall clock used for validity windows. This is
// mostly useful for testing
func WithClock(clock txbuild.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add
// metrics to. In most cases, prometheus.DefaultRegistry would be a good
// choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a
// HTTP(s) endpoint using OTLP. This can be configured using the
// OTEL_EXPORTER_OTLP_* env vars documented in the README for
// [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires
// tracing to be enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The
// default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
