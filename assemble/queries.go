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
	"bytes"
	"context"
	"errors"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/chain"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/governance"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/plutus"
)

// For read-only queries, absence of the queried entity is a negative
// result, not an error. They publish no lifecycle events, but still
// scope an advisory lookup cache to the single call.

// queryRun scopes a fresh advisory cache to one query.
func (a *Assembler) queryRun() *opRun {
	return &opRun{provider: chain.NewCachingProvider(a.provider)}
}

type DAOInfoRequest struct {
	DAOKey []byte
}

type DAOInfo struct {
	Found  bool
	Datum  *plutus.DAODatum
	TxHash []byte
	Index  uint32
}

// DAOInfo returns a DAO's configuration and the location of its
// identity UTxO.
func (a *Assembler) DAOInfo(
	ctx context.Context,
	req DAOInfoRequest,
) (*DAOInfo, error) {
	run := a.queryRun()
	scripts, err := a.scripts.Resolve(ctx, req.DAOKey)
	if err != nil {
		return nil, providerErr(err, "resolving scripts")
	}
	utxo, datum, err := a.daoState(ctx, run, scripts, req.DAOKey)
	if err != nil {
		if isNotFound(err) {
			return &DAOInfo{}, nil
		}
		return nil, err
	}
	return &DAOInfo{
		Found:  true,
		Datum:  datum,
		TxHash: utxo.TxHash,
		Index:  utxo.Index,
	}, nil
}

type ListProposalsRequest struct {
	ProposalPolicyID []byte
}

// ProposalSummary is one proposal in a listing.
type ProposalSummary struct {
	AssetName []byte
	Name      []byte
	Tally     []uint64
	EndTime   uint64
	Status    plutus.ProposalStatus
}

// ListProposals lists every proposal under a policy at the proposal
// script address. Outputs with foreign datums are skipped.
func (a *Assembler) ListProposals(
	ctx context.Context,
	req ListProposalsRequest,
) ([]ProposalSummary, error) {
	if len(req.ProposalPolicyID) != plutus.PolicyIDLength {
		return nil, validationErr(
			CodeInvalidField,
			"proposal policy id must be %d bytes",
			plutus.PolicyIDLength,
		)
	}
	run := a.queryRun()
	scripts, err := a.scripts.Resolve(ctx, nil)
	if err != nil {
		return nil, providerErr(err, "resolving scripts")
	}
	utxos, err := run.provider.UTxOsByAddress(
		ctx,
		scripts.ProposalAddress,
	)
	if err != nil {
		return nil, providerErr(err, "listing proposal utxos")
	}
	var summaries []ProposalSummary
	for i := range utxos {
		var identityName []byte
		for _, asset := range utxos[i].Value.Assets {
			if bytes.Equal(asset.PolicyID, req.ProposalPolicyID) &&
				asset.Quantity == 1 {
				identityName = asset.Name
				break
			}
		}
		if identityName == nil {
			continue
		}
		datum, err := plutus.DecodeProposalDatum(utxos[i].DatumCbor)
		if err != nil {
			continue
		}
		summaries = append(summaries, ProposalSummary{
			AssetName: identityName,
			Name:      datum.Name,
			Tally:     datum.Tally,
			EndTime:   datum.EndTime,
			Status:    datum.Status,
		})
	}
	return summaries, nil
}

type ProposalDetailsRequest struct {
	DAOKey            []byte
	ProposalPolicyID  []byte
	ProposalAssetName []byte
}

type ProposalDetails struct {
	Found  bool
	Datum  *plutus.ProposalDatum
	TxHash []byte
	Index  uint32
	// Projected previews the settlement outcome for an Active proposal
	// that has already ended. Nil otherwise.
	Projected *plutus.ProposalStatus
}

// ProposalDetails returns one proposal's full datum and, when it is
// past its end time but not yet evaluated, the outcome evaluation would
// record.
func (a *Assembler) ProposalDetails(
	ctx context.Context,
	req ProposalDetailsRequest,
) (*ProposalDetails, error) {
	run := a.queryRun()
	scripts, err := a.scripts.Resolve(ctx, req.DAOKey)
	if err != nil {
		return nil, providerErr(err, "resolving scripts")
	}
	utxo, datum, err := a.proposalState(
		ctx,
		run,
		scripts,
		req.ProposalPolicyID,
		req.ProposalAssetName,
	)
	if err != nil {
		if isNotFound(err) {
			return &ProposalDetails{}, nil
		}
		return nil, err
	}
	details := &ProposalDetails{
		Found:  true,
		Datum:  datum,
		TxHash: utxo.TxHash,
		Index:  utxo.Index,
	}
	if datum.Status.Kind == plutus.StatusActive &&
		a.nowMillis() > datum.EndTime &&
		len(req.DAOKey) > 0 {
		_, dao, err := a.daoState(ctx, run, scripts, req.DAOKey)
		if err == nil {
			projected := governance.Evaluate(
				datum.Tally,
				dao.Quorum,
				dao.Threshold,
			)
			details.Projected = &projected
		}
	}
	return details, nil
}

type RegistrationStatusRequest struct {
	DAOKey         []byte
	RegistrationID []byte
}

type RegistrationStatus struct {
	Registered bool
	// LockedGovernance is the governance token quantity held in the
	// vote UTxO.
	LockedGovernance uint64
	// Receipts are the vote-receipt balances held in the vote UTxO.
	Receipts []chain.Asset
}

// RegistrationStatus reports whether a registration id has a live vote
// UTxO, and what it holds.
func (a *Assembler) RegistrationStatus(
	ctx context.Context,
	req RegistrationStatusRequest,
) (*RegistrationStatus, error) {
	run := a.queryRun()
	scripts, err := a.scripts.Resolve(ctx, req.DAOKey)
	if err != nil {
		return nil, providerErr(err, "resolving scripts")
	}
	_, dao, err := a.daoState(ctx, run, scripts, req.DAOKey)
	if err != nil {
		return nil, err
	}
	voteUtxo, err := a.voteState(ctx, run, scripts, req.RegistrationID)
	if err != nil {
		if isNotFound(err) {
			return &RegistrationStatus{}, nil
		}
		return nil, err
	}
	status := &RegistrationStatus{
		Registered: true,
		LockedGovernance: voteUtxo.Value.AssetQuantity(
			dao.GovernanceToken.PolicyID,
			dao.GovernanceToken.Name,
		),
	}
	for _, asset := range voteUtxo.Value.Assets {
		if bytes.Equal(asset.PolicyID, scripts.VotePolicyID) {
			continue
		}
		if bytes.Equal(asset.PolicyID, dao.GovernanceToken.PolicyID) &&
			bytes.Equal(asset.Name, dao.GovernanceToken.Name) {
			continue
		}
		status.Receipts = append(status.Receipts, asset)
	}
	return status, nil
}

type UnregisterEligibilityRequest struct {
	DAOKey         []byte
	RegistrationID []byte
}

type UnregisterEligibility struct {
	Registered bool
	Eligible   bool
	// BlockingReceipts are receipt asset names tied to still-Active
	// proposals.
	BlockingReceipts [][]byte
}

// UnregisterEligibility reports whether a registration can be dissolved
// now, and which receipts block it if not.
func (a *Assembler) UnregisterEligibility(
	ctx context.Context,
	req UnregisterEligibilityRequest,
) (*UnregisterEligibility, error) {
	run := a.queryRun()
	scripts, err := a.scripts.Resolve(ctx, req.DAOKey)
	if err != nil {
		return nil, providerErr(err, "resolving scripts")
	}
	_, dao, err := a.daoState(ctx, run, scripts, req.DAOKey)
	if err != nil {
		return nil, err
	}
	voteUtxo, err := a.voteState(ctx, run, scripts, req.RegistrationID)
	if err != nil {
		if isNotFound(err) {
			return &UnregisterEligibility{}, nil
		}
		return nil, err
	}
	holdings, err := a.receiptHoldings(
		ctx,
		run,
		scripts,
		voteUtxo,
		dao.GovernanceToken,
	)
	if err != nil {
		return nil, err
	}
	eligibility := &UnregisterEligibility{Registered: true, Eligible: true}
	for _, holding := range holdings {
		if holding.Status.Kind == plutus.StatusActive {
			eligibility.Eligible = false
			eligibility.BlockingReceipts = append(
				eligibility.BlockingReceipts,
				holding.Asset.Name,
			)
		}
	}
	return eligibility, nil
}

func isNotFound(err error) bool {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Kind == KindNotFound
	}
	return false
}
