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

package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	paideia "github.com/paideiadao/paideia-cardano-contracts-sub001"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/internal/config"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/txbuild"
)

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "coordinator")

	// Parse shutdown timeout
	shutdownTimeout := 30 * time.Second // Default timeout
	if cfg.ShutdownTimeout != "" {
		var err error
		shutdownTimeout, err = cfg.ParseShutdownTimeout()
		if err != nil {
			return err
		}
	}

	scripts, err := cfg.ParseScripts()
	if err != nil {
		return fmt.Errorf("invalid script config: %w", err)
	}

	opts := []paideia.ConfigOptionFunc{}
	if cfg.Slots.SlotLength > 0 {
		opts = append(opts, paideia.WithSlotConfig(txbuild.SlotConverter{
			ZeroTime:   time.UnixMilli(cfg.Slots.ZeroTime),
			ZeroSlot:   cfg.Slots.ZeroSlot,
			SlotLength: time.Duration(cfg.Slots.SlotLength) * time.Millisecond,
		}))
	}
	opts = append(opts,
		paideia.WithLogger(logger),
		paideia.WithNetwork(cfg.Network),
		paideia.WithUtxorpcURL(cfg.UtxorpcUrl),
		paideia.WithBuilderURL(cfg.BuilderUrl),
		paideia.WithApiListenAddress(cfg.ApiListenAddress),
		paideia.WithScripts(scripts),
		paideia.WithShutdownTimeout(shutdownTimeout),
		paideia.WithTracing(cfg.Tracing),
		paideia.WithTracingStdout(cfg.TracingStdout),
		// Enable metrics with default prometheus registry
		paideia.WithPrometheusRegistry(prometheus.DefaultRegisterer),
	)
	c, err := paideia.New(paideia.NewConfig(opts...))
	if err != nil {
		return err
	}
	// Metrics and debug listener
	http.Handle("/metrics", promhttp.Handler())
	logger.Info(
		fmt.Sprintf(
			"serving prometheus metrics on :%d",
			cfg.MetricsPort,
		),
		"component", "coordinator",
	)
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			logger.Error(
				fmt.Sprintf("failed to start metrics listener: %s", err),
				"component", "coordinator",
			)
			os.Exit(1)
		}
	}()
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Run coordinator in goroutine
	errChan := make(chan error, 1)
	go func() {
		//nolint:contextcheck
		err := c.Run(signalCtx)
		select {
		case errChan <- err:
		case <-signalCtx.Done():
		}
	}()

	// Wait for signal or error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")

		// Shutdown metrics server
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}

		// Shutdown coordinator
		if err := c.Stop(); err != nil {
			logger.Error("shutdown errors occurred", "error", err)
			return err
		}
		logger.Info("shutdown complete")
		return nil

	case err := <-errChan:
		if err == nil {
			logger.Info("coordinator stopped")
			// Graceful cleanup
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				shutdownTimeout,
			)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
			if err := c.Stop(); err != nil {
				logger.Error("shutdown errors occurred", "error", err)
				return err
			}
			return nil
		}
		logger.Error("coordinator error", "error", err)
		signalCtxStop()

		// Shutdown coordinator resources
		if stopErr := c.Stop(); stopErr != nil {
			logger.Error(
				"shutdown errors occurred during error cleanup",
				"error",
				stopErr,
			)
		}

		// Cleanup on error
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("metrics server shutdown error", "error", shutdownErr)
		}

		return err
	}
}
