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

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// API is the JSON REST server exposing coordinator operations.
type API struct {
	config     APIConfig
	logger     *slog.Logger
	coord      Coordinator
	httpServer *http.Server
	mu         sync.Mutex
}

type APIConfig struct {
	ListenAddress string
}

// New creates a new API server instance.
func New(
	cfg APIConfig,
	coord Coordinator,
	logger *slog.Logger,
) *API {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8090"
	}
	return &API{
		config: cfg,
		logger: logger,
		coord:  coord,
	}
}

// Start starts the HTTP server in a background goroutine.
func (a *API) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", a.handleRoot)
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("POST /api/v1/daos", a.handleCreateDAO)
	mux.HandleFunc("POST /api/v1/proposals", a.handleCreateProposal)
	mux.HandleFunc("POST /api/v1/registrations", a.handleRegister)
	mux.HandleFunc("POST /api/v1/votes", a.handleCastVote)
	mux.HandleFunc("POST /api/v1/evaluations", a.handleEvaluate)
	mux.HandleFunc("POST /api/v1/executions", a.handleExecuteAction)
	mux.HandleFunc("POST /api/v1/unregistrations", a.handleUnregister)
	mux.HandleFunc("GET /api/v1/daos/{key}", a.handleDAOInfo)
	mux.HandleFunc("GET /api/v1/proposals/{policy}", a.handleListProposals)
	mux.HandleFunc(
		"GET /api/v1/proposals/{policy}/{name}",
		a.handleProposalDetails,
	)
	mux.HandleFunc(
		"GET /api/v1/registrations/{dao}/{id}",
		a.handleRegistrationStatus,
	)
	mux.HandleFunc(
		"GET /api/v1/registrations/{dao}/{id}/eligibility",
		a.handleUnregisterEligibility,
	)

	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	a.mu.Unlock()

	if err := a.startServer(server); err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return err
	}

	a.logger.Info(
		"API listener started on " + a.config.ListenAddress,
	)

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		a.mu.Lock()
		srv := a.httpServer
		a.httpServer = nil
		a.mu.Unlock()

		if srv != nil {
			a.logger.Debug(
				"context cancelled, shutting down API server",
			)
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error(
					"failed to shutdown API server on context "+
						"cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (a *API) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()

	if srv != nil {
		a.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf(
				"failed to shutdown API server: %w",
				err,
			)
		}
	}
	return nil
}

// startServer binds the listening socket first so port conflicts are
// detected immediately, then serves in a background goroutine.
func (a *API) startServer(server *http.Server) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf(
			"failed to listen for API server: %w",
			err,
		)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	return nil
}
