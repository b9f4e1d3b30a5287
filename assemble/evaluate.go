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

	"github.com/paideiadao/paideia-cardano-contracts-sub001/governance"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/plutus"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/txbuild"
)

// EvaluateRequest settles an ended proposal into its terminal status.
type EvaluateRequest struct {
	DAOKey            []byte
	ProposalPolicyID  []byte
	ProposalAssetName []byte
	WalletAddress     string
	Collateral        []txbuild.OutputRef
}

type EvaluateResponse struct {
	UnsignedTx []byte
	Status     plutus.ProposalStatus
}

func (r *EvaluateRequest) validate() error {
	if len(r.DAOKey) == 0 {
		return validationErr(CodeMissingField, "dao key is required")
	}
	if len(r.ProposalPolicyID) != plutus.PolicyIDLength {
		return validationErr(
			CodeInvalidField,
			"proposal policy id must be %d bytes",
			plutus.PolicyIDLength,
		)
	}
	if len(r.ProposalAssetName) == 0 {
		return validationErr(
			CodeMissingField,
			"proposal asset name is required",
		)
	}
	if r.WalletAddress == "" {
		return validationErr(CodeMissingField, "wallet address is required")
	}
	return nil
}

// Evaluate assembles the proposal settlement transaction: computes the
// outcome from the tally and the DAO's quorum/threshold, and rewrites
// only the status field of the proposal datum. The transition away from
// Active is one-way and terminal.
func (a *Assembler) Evaluate(
	ctx context.Context,
	req EvaluateRequest,
) (resp *EvaluateResponse, err error) {
	ctx, run := a.begin(ctx, "proposal.evaluate")
	var txBytes []byte
	defer func() { a.finish(run, len(txBytes), err) }()

	if err = req.validate(); err != nil {
		return nil, err
	}
	scripts, err := a.scripts.Resolve(ctx, req.DAOKey)
	if err != nil {
		return nil, providerErr(err, "resolving scripts")
	}
	daoUtxo, dao, err := a.daoState(ctx, run, scripts, req.DAOKey)
	if err != nil {
		return nil, err
	}
	proposalUtxo, proposal, err := a.proposalState(
		ctx,
		run,
		scripts,
		req.ProposalPolicyID,
		req.ProposalAssetName,
	)
	if err != nil {
		return nil, err
	}
	if proposal.Status.Kind != plutus.StatusActive {
		return nil, stateErr(
			CodeProposalNotActive,
			"proposal already settled as %s",
			proposal.Status.Kind,
		)
	}
	now := a.nowMillis()
	if now <= proposal.EndTime {
		return nil, stateErr(
			CodeProposalNotEnded,
			"proposal ends at %d, now %d",
			proposal.EndTime,
			now,
		)
	}

	status := governance.Evaluate(proposal.Tally, dao.Quorum, dao.Threshold)
	statusCbor, err := status.Encode()
	if err != nil {
		return nil, codecErr(err, "encoding status")
	}
	rawProposal, err := plutus.ParseRawDatum(proposalUtxo.DatumCbor)
	if err != nil {
		return nil, decodeErr(err, CodeProposalNotFound, "proposal")
	}
	rebuilt, err := rawProposal.WithField(
		plutus.ProposalFieldStatus,
		statusCbor,
	)
	if err != nil {
		return nil, codecErr(err, "rebuilding proposal datum")
	}

	validFrom := a.slotAtMillis(proposal.EndTime) + 1
	plan := &txbuild.Plan{
		Inputs: []txbuild.Input{
			utxoInput(proposalUtxo, evaluateRedeemer()),
		},
		ReferenceInputs: []txbuild.OutputRef{utxoRef(daoUtxo)},
		Outputs: []txbuild.Output{
			{
				Address:     scripts.ProposalAddress.String(),
				Coin:        proposalUtxo.Value.Coin,
				Assets:      proposalUtxo.Value.Assets,
				InlineDatum: rebuilt.Bytes(),
			},
		},
		Collateral:    req.Collateral,
		ChangeAddress: req.WalletAddress,
		ValidFrom:     &validFrom,
	}
	txBytes, err = a.build(ctx, plan)
	if err != nil {
		return nil, err
	}
	return &EvaluateResponse{
		UnsignedTx: txBytes,
		Status:     status,
	}, nil
}
