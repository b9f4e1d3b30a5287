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

	"github.com/paideiadao/paideia-cardano-contracts-sub001/chain"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/plutus"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/txbuild"
)

// CastVoteRequest adds vote weight to one option of an active proposal.
type CastVoteRequest struct {
	DAOKey            []byte
	ProposalPolicyID  []byte
	ProposalAssetName []byte
	RegistrationID    []byte
	Option            uint64
	VotePower         uint64
	WalletAddress     string
	Collateral        []txbuild.OutputRef
}

type CastVoteResponse struct {
	UnsignedTx []byte
	// NewTally is the proposal tally after this vote is applied.
	NewTally []uint64
	// ReceiptAssetName identifies the minted vote receipts.
	ReceiptAssetName []byte
}

func (r *CastVoteRequest) validate() error {
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
	if len(r.RegistrationID) != plutus.RegistrationIDLength {
		return validationErr(
			CodeInvalidField,
			"registration id must be %d bytes",
			plutus.RegistrationIDLength,
		)
	}
	if r.VotePower == 0 {
		return validationErr(
			CodeInvalidField,
			"vote power must be positive",
		)
	}
	if r.WalletAddress == "" {
		return validationErr(CodeMissingField, "wallet address is required")
	}
	return nil
}

// CastVote assembles a vote transaction: mints receipt tokens under the
// proposal's policy, merges them into the voter's locked vote UTxO
// preserving every prior asset, and rewrites only the tally field of the
// proposal datum. Two concurrent votes race for the same proposal UTxO;
// the loser surfaces as a retryable not-found on the next attempt.
func (a *Assembler) CastVote(
	ctx context.Context,
	req CastVoteRequest,
) (resp *CastVoteResponse, err error) {
	ctx, run := a.begin(ctx, "vote.cast")
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
			"proposal status is %s",
			proposal.Status.Kind,
		)
	}
	now := a.nowMillis()
	if now > proposal.EndTime {
		return nil, stateErr(
			CodeProposalEnded,
			"proposal ended at %d, now %d",
			proposal.EndTime,
			now,
		)
	}
	if req.Option >= uint64(len(proposal.Tally)) {
		return nil, validationErr(
			CodeInvalidField,
			"option %d out of range (%d options)",
			req.Option,
			len(proposal.Tally),
		)
	}
	voteUtxo, err := a.voteState(ctx, run, scripts, req.RegistrationID)
	if err != nil {
		return nil, err
	}
	locked := voteUtxo.Value.AssetQuantity(
		dao.GovernanceToken.PolicyID,
		dao.GovernanceToken.Name,
	)
	if req.VotePower > locked {
		return nil, stateErr(
			CodeInsufficientLocked,
			"vote power %d exceeds locked governance tokens %d",
			req.VotePower,
			locked,
		)
	}

	// Rewrite the tally field only; every other proposal field keeps its
	// original bytes so the validator's unchanged-fields check holds.
	newTally := make([]uint64, len(proposal.Tally))
	copy(newTally, proposal.Tally)
	newTally[req.Option] += req.VotePower
	tallyCbor, err := plutus.EncodeTally(newTally)
	if err != nil {
		return nil, codecErr(err, "encoding tally")
	}
	rawProposal, err := plutus.ParseRawDatum(proposalUtxo.DatumCbor)
	if err != nil {
		return nil, decodeErr(err, CodeProposalNotFound, "proposal")
	}
	rebuilt, err := rawProposal.WithField(
		plutus.ProposalFieldTally,
		tallyCbor,
	)
	if err != nil {
		return nil, codecErr(err, "rebuilding proposal datum")
	}

	receiptName := plutus.ReceiptAssetName(
		req.ProposalAssetName,
		req.Option,
	).Bytes()

	// Merge the new receipts into the vote UTxO's value, keeping the
	// reference NFT, locked governance tokens, and prior receipts.
	voteAssets := make([]chain.Asset, 0, len(voteUtxo.Value.Assets)+1)
	merged := false
	for _, asset := range voteUtxo.Value.Assets {
		if asset.Quantity == 0 {
			continue
		}
		if chainAssetIs(asset, req.ProposalPolicyID, receiptName) {
			asset.Quantity += req.VotePower
			merged = true
		}
		voteAssets = append(voteAssets, asset)
	}
	if !merged {
		voteAssets = append(voteAssets, chain.Asset{
			PolicyID: req.ProposalPolicyID,
			Name:     receiptName,
			Quantity: req.VotePower,
		})
	}

	validTo := a.slotAtMillis(proposal.EndTime)
	plan := &txbuild.Plan{
		Inputs: []txbuild.Input{
			utxoInput(
				proposalUtxo,
				castVoteRedeemer(req.Option, req.VotePower),
			),
			utxoInput(voteUtxo, constrRedeemer(0)),
		},
		ReferenceInputs: []txbuild.OutputRef{utxoRef(daoUtxo)},
		Mints: []txbuild.Mint{
			{
				PolicyID: req.ProposalPolicyID,
				Assets: []txbuild.MintAsset{
					{
						Name:     receiptName,
						Quantity: int64(req.VotePower), // #nosec G115
					},
				},
				Redeemer: receiptMintRedeemer(req.Option),
			},
		},
		Outputs: []txbuild.Output{
			{
				Address:     scripts.ProposalAddress.String(),
				Coin:        proposalUtxo.Value.Coin,
				Assets:      proposalUtxo.Value.Assets,
				InlineDatum: rebuilt.Bytes(),
			},
			{
				Address:     scripts.VoteAddress.String(),
				Coin:        voteUtxo.Value.Coin,
				Assets:      voteAssets,
				InlineDatum: voteUtxo.DatumCbor,
			},
		},
		Collateral:    req.Collateral,
		ChangeAddress: req.WalletAddress,
		ValidTo:       &validTo,
	}
	txBytes, err = a.build(ctx, plan)
	if err != nil {
		return nil, err
	}
	return &CastVoteResponse{
		UnsignedTx:       txBytes,
		NewTally:         newTally,
		ReceiptAssetName: receiptName,
	}, nil
}

func chainAssetIs(asset chain.Asset, policyID []byte, name []byte) bool {
	return bytes.Equal(asset.PolicyID, policyID) &&
		bytes.Equal(asset.Name, name)
}
