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

package assemble

import (
	"context"
	"io"
	"log/slog"
	"time"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/chain"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/event"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/plutus"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/txbuild"
)

// Scripts describes the deployed validator surface of one protocol
// deployment: where each script lives and which minting policies it
// controls. Proposal and action policies are per-DAO whitelists and
// travel in requests instead.
type Scripts struct {
	DAOAddress      lcommon.Address
	DAOPolicyID     []byte
	VoteAddress     lcommon.Address
	VotePolicyID    []byte
	ProposalAddress lcommon.Address
	ActionAddress   lcommon.Address
	TreasuryAddress lcommon.Address
}

// ScriptResolver supplies the script surface for the DAO identified by
// its DAO key. A nil key requests the deployment defaults, used before
// a DAO exists (create-dao) and for listings keyed by an explicit
// policy. Implementations own their cache lifetime; the assembler never
// caches resolutions across operations.
type ScriptResolver interface {
	Resolve(ctx context.Context, daoKey []byte) (*Scripts, error)
}

// StaticScripts resolves every DAO to one fixed deployment, the common
// case for a coordinator serving a single protocol instance.
type StaticScripts struct {
	Scripts Scripts
}

func (s StaticScripts) Resolve(
	ctx context.Context,
	daoKey []byte,
) (*Scripts, error) {
	scripts := s.Scripts
	return &scripts, nil
}

// Assembler builds unsigned transactions for protocol operations. It
// holds no locks and no chain state of its own: operations are
// self-contained and run concurrently, and callers racing on the same
// protocol UTxOs see a retryable not-found once the other transaction
// lands. The assembler never retries internally.
type Assembler struct {
	provider chain.Provider
	builder  txbuild.Builder
	scripts  ScriptResolver
	clock    txbuild.Clock
	slots    txbuild.SlotConverter
	eventBus *event.EventBus
	metrics  *assemblerMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// AssemblerConfig carries the assembler's collaborators. Provider,
// Builder, and Scripts are required; the rest default to inert
// implementations.
type AssemblerConfig struct {
	Provider     chain.Provider
	Builder      txbuild.Builder
	Scripts      ScriptResolver
	Clock        txbuild.Clock
	Slots        txbuild.SlotConverter
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
}

func NewAssembler(cfg AssemblerConfig) *Assembler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = txbuild.SystemClock{}
	}
	slots := cfg.Slots
	if slots.SlotLength == 0 {
		slots = txbuild.SlotConverter{
			ZeroTime:   time.Unix(0, 0),
			ZeroSlot:   0,
			SlotLength: time.Second,
		}
	}
	a := &Assembler{
		provider: cfg.Provider,
		builder:  cfg.Builder,
		scripts:  cfg.Scripts,
		clock:    clock,
		slots:    slots,
		eventBus: cfg.EventBus,
		tracer:   otel.Tracer("assemble"),
		logger:   logger.With("component", "assemble"),
	}
	if cfg.PromRegistry != nil {
		a.metrics = newAssemblerMetrics(cfg.PromRegistry)
	}
	return a
}

// opRun tracks one operation invocation for tracing, metrics, and
// lifecycle events, correlated by operation id.
type opRun struct {
	id       string
	name     string
	start    time.Time
	span     trace.Span
	provider chain.Provider
}

// begin opens an operation: assigns an operation id, opens a span,
// publishes the started event, and wraps the provider in a fresh
// advisory cache scoped to this operation.
func (a *Assembler) begin(
	ctx context.Context,
	name string,
) (context.Context, *opRun) {
	run := &opRun{
		id:       uuid.NewString(),
		name:     name,
		start:    a.clock.Now(),
		provider: chain.NewCachingProvider(a.provider),
	}
	ctx, run.span = a.tracer.Start(
		ctx,
		name,
		trace.WithAttributes(
			attribute.String("operation.id", run.id),
		),
	)
	if a.eventBus != nil {
		a.eventBus.Publish(
			event.OperationStartedEventType,
			event.NewEvent(
				event.OperationStartedEventType,
				event.OperationStartedEvent{
					OperationId: run.id,
					Operation:   name,
				},
			),
		)
	}
	a.logger.Debug(
		"operation started",
		"operation", name,
		"operation_id", run.id,
	)
	return ctx, run
}

// finish closes an operation opened by begin. txSize is zero on failure.
func (a *Assembler) finish(run *opRun, txSize int, err error) {
	duration := a.clock.Now().Sub(run.start)
	outcome := "success"
	if err != nil {
		outcome = "failure"
		code := "internal"
		retriable := false
		if opErr, ok := AsOpError(err); ok {
			code = opErr.Code
			retriable = opErr.Retriable
		}
		run.span.RecordError(err)
		run.span.SetStatus(codes.Error, code)
		if a.eventBus != nil {
			a.eventBus.Publish(
				event.OperationFailedEventType,
				event.NewEvent(
					event.OperationFailedEventType,
					event.OperationFailedEvent{
						OperationId: run.id,
						Operation:   run.name,
						Duration:    duration,
						Code:        code,
						Retriable:   retriable,
					},
				),
			)
		}
		a.logger.Debug(
			"operation failed",
			"operation", run.name,
			"operation_id", run.id,
			"code", code,
			"error", err,
		)
	} else {
		run.span.SetStatus(codes.Ok, "")
		if a.eventBus != nil {
			a.eventBus.Publish(
				event.OperationCompletedEventType,
				event.NewEvent(
					event.OperationCompletedEventType,
					event.OperationCompletedEvent{
						OperationId: run.id,
						Operation:   run.name,
						Duration:    duration,
						TxSize:      uint(txSize), // #nosec G115
					},
				),
			)
		}
		a.logger.Debug(
			"operation completed",
			"operation", run.name,
			"operation_id", run.id,
			"tx_size", txSize,
		)
	}
	run.span.End()
	if a.metrics != nil {
		a.metrics.operationsTotal.WithLabelValues(run.name, outcome).Inc()
		a.metrics.operationDuration.WithLabelValues(run.name).
			Observe(duration.Seconds())
	}
}

// build delegates plan balancing and serialization to the external
// builder.
func (a *Assembler) build(
	ctx context.Context,
	plan *txbuild.Plan,
) ([]byte, error) {
	txBytes, err := a.builder.Build(ctx, plan)
	if err != nil {
		return nil, builderErr(err)
	}
	return txBytes, nil
}

// nowMillis is the wall clock as a ledger timestamp.
func (a *Assembler) nowMillis() uint64 {
	return uint64(a.clock.Now().UnixMilli()) // #nosec G115
}

// slotAtMillis converts a ledger timestamp to its slot.
func (a *Assembler) slotAtMillis(ms uint64) uint64 {
	return a.slots.SlotAt(time.UnixMilli(int64(ms))) // #nosec G115
}

// daoState locates the DAO identity UTxO and decodes its configuration.
// The DAO UTxO is always consumed read-only, as a reference input.
func (a *Assembler) daoState(
	ctx context.Context,
	run *opRun,
	scripts *Scripts,
	daoKey []byte,
) (*chain.UTxO, *plutus.DAODatum, error) {
	utxo, err := chain.FindAssetUTxO(
		ctx,
		run.provider,
		scripts.DAOAddress,
		scripts.DAOPolicyID,
		daoKey,
		1,
	)
	if err != nil {
		return nil, nil, lookupErr(err, CodeDAONotFound, "dao")
	}
	datum, err := plutus.DecodeDAODatum(utxo.DatumCbor)
	if err != nil {
		return nil, nil, decodeErr(err, CodeDAONotFound, "dao")
	}
	return utxo, datum, nil
}

// proposalState locates a proposal identity UTxO and decodes its datum.
func (a *Assembler) proposalState(
	ctx context.Context,
	run *opRun,
	scripts *Scripts,
	proposalPolicyID []byte,
	proposalAssetName []byte,
) (*chain.UTxO, *plutus.ProposalDatum, error) {
	utxo, err := chain.FindAssetUTxO(
		ctx,
		run.provider,
		scripts.ProposalAddress,
		proposalPolicyID,
		proposalAssetName,
		1,
	)
	if err != nil {
		return nil, nil, lookupErr(err, CodeProposalNotFound, "proposal")
	}
	datum, err := plutus.DecodeProposalDatum(utxo.DatumCbor)
	if err != nil {
		return nil, nil, decodeErr(err, CodeProposalNotFound, "proposal")
	}
	return utxo, datum, nil
}

// voteState locates the script-held vote UTxO for a registration id.
func (a *Assembler) voteState(
	ctx context.Context,
	run *opRun,
	scripts *Scripts,
	registrationID []byte,
) (*chain.UTxO, error) {
	utxo, err := chain.FindAssetUTxO(
		ctx,
		run.provider,
		scripts.VoteAddress,
		scripts.VotePolicyID,
		plutus.VoteReferenceAssetName(registrationID),
		1,
	)
	if err != nil {
		return nil, lookupErr(err, CodeVoteNotFound, "vote registration")
	}
	return utxo, nil
}

// governanceInputs selects wallet UTxOs carrying the governance token
// until the selection covers the required amount, and reports the total
// held across the whole wallet for precondition checks.
func (a *Assembler) governanceInputs(
	ctx context.Context,
	run *opRun,
	walletAddr lcommon.Address,
	govToken plutus.AssetClass,
	required uint64,
) ([]chain.UTxO, uint64, error) {
	utxos, err := run.provider.UTxOsByAddress(ctx, walletAddr)
	if err != nil {
		return nil, 0, providerErr(err, "listing wallet utxos")
	}
	var selected []chain.UTxO
	var selectedQty, totalQty uint64
	for _, utxo := range utxos {
		qty := utxo.Value.AssetQuantity(govToken.PolicyID, govToken.Name)
		totalQty += qty
		if qty > 0 && selectedQty < required {
			selected = append(selected, utxo)
			selectedQty += qty
		}
	}
	return selected, totalQty, nil
}

// addressFromBech32 parses a bech32 wallet or script address.
func addressFromBech32(s string) (lcommon.Address, error) {
	return lcommon.NewAddress(s)
}

// addressFromBytes parses raw serialized address bytes.
func addressFromBytes(b []byte) (lcommon.Address, error) {
	var addr lcommon.Address
	if err := addr.UnmarshalCBOR(b); err != nil {
		return lcommon.Address{}, err
	}
	return addr, nil
}

// utxoInput turns a located UTxO into a plan input with its redeemer.
func utxoInput(utxo *chain.UTxO, redeemer []byte) txbuild.Input {
	return txbuild.Input{
		TxHash:   utxo.TxHash,
		Index:    utxo.Index,
		Redeemer: redeemer,
	}
}

// utxoRef turns a located UTxO into a plan output reference.
func utxoRef(utxo *chain.UTxO) txbuild.OutputRef {
	return txbuild.OutputRef{
		TxHash: utxo.TxHash,
		Index:  utxo.Index,
	}
}
