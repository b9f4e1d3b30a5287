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
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/api"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/assemble"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/chain"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/event"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/txbuild"
)

// Coordinator wires the chain provider, transaction builder, and
// assembler together and optionally exposes them over the REST API.
type Coordinator struct {
	eventBus      *event.EventBus
	provider      *chain.UtxorpcProvider
	builder       *txbuild.HTTPBuilder
	assembler     *assemble.Assembler
	api           *api.API
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Coordinator, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	c := &Coordinator{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := c.configPopulateSlots(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	// Configure chain provider
	c.provider = chain.NewUtxorpcProvider(
		c.config.utxorpcURL,
		&http.Client{Timeout: 30 * time.Second},
		c.config.logger,
	)
	// Configure transaction builder
	c.builder = txbuild.NewHTTPBuilder(
		c.config.builderURL,
		&http.Client{Timeout: 30 * time.Second},
		c.config.logger,
	)
	// Configure assembler
	c.assembler = assemble.NewAssembler(
		assemble.AssemblerConfig{
			Provider: c.provider,
			Builder:  c.builder,
			Scripts: assemble.StaticScripts{
				Scripts: c.config.scripts,
			},
			Clock:        c.config.clock,
			Slots:        c.config.slots,
			EventBus:     c.eventBus,
			PromRegistry: c.config.promRegistry,
			Logger:       c.config.logger,
		},
	)
	return c, nil
}

// Assembler returns the transaction assembler for direct library use.
func (c *Coordinator) Assembler() *assemble.Assembler {
	return c.assembler
}

func (c *Coordinator) Run(ctx context.Context) error {
	// Configure tracing
	if c.config.tracing {
		if err := c.setupTracing(); err != nil {
			return err
		}
	}
	// Configure REST API
	if c.config.apiListenAddress != "" {
		c.api = api.New(
			api.APIConfig{
				ListenAddress: c.config.apiListenAddress,
			},
			c.assembler,
			c.config.logger,
		)
		if err := c.api.Start(ctx); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
	}

	// Wait for shutdown signal
	<-c.done
	return nil
}

func (c *Coordinator) Stop() error {
	var err error
	c.shutdownOnce.Do(func() {
		err = c.shutdown()
	})
	return err
}

func (c *Coordinator) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if c.config.shutdownTimeout > 0 {
		shutdownTimeout = c.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	c.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	if c.api != nil {
		if stopErr := c.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Phase 2: Cleanup resources
	for _, fn := range c.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	c.shutdownFuncs = nil

	if c.eventBus != nil {
		c.eventBus.Stop()
	}

	c.config.logger.Debug("graceful shutdown complete")
	close(c.done)
	return err
}
