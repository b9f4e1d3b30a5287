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

// CreateDAORequest deploys a new DAO: its identity NFT is minted from a
// seed UTxO and its configuration datum locked at the DAO script address.
type CreateDAORequest struct {
	SeedTxHash    []byte
	SeedIndex     uint32
	Datum         plutus.DAODatum
	WalletAddress string
	ChangeAddress string
	Collateral    []txbuild.OutputRef
}

type CreateDAOResponse struct {
	UnsignedTx []byte
	DAOKey     []byte
}

func (r *CreateDAORequest) validate() error {
	if len(r.SeedTxHash) != 32 {
		return validationErr(
			CodeInvalidField,
			"seed tx hash must be 32 bytes, got %d",
			len(r.SeedTxHash),
		)
	}
	if len(r.Datum.Name) == 0 {
		return validationErr(CodeMissingField, "dao name is required")
	}
	if r.Datum.Threshold < 1 || r.Datum.Threshold > 100 {
		return validationErr(
			CodeInvalidField,
			"threshold must be 1-100 percent, got %d",
			r.Datum.Threshold,
		)
	}
	if r.Datum.MinProposalTime > r.Datum.MaxProposalTime {
		return validationErr(
			CodeInvalidField,
			"min proposal time %d exceeds max %d",
			r.Datum.MinProposalTime,
			r.Datum.MaxProposalTime,
		)
	}
	if len(r.Datum.GovernanceToken.PolicyID) != plutus.PolicyIDLength {
		return validationErr(
			CodeInvalidField,
			"governance token policy id must be %d bytes",
			plutus.PolicyIDLength,
		)
	}
	if r.WalletAddress == "" {
		return validationErr(CodeMissingField, "wallet address is required")
	}
	return nil
}

// CreateDAO assembles the DAO deployment transaction. The seed UTxO is
// consumed so the derived DAO key can never be minted twice.
func (a *Assembler) CreateDAO(
	ctx context.Context,
	req CreateDAORequest,
) (resp *CreateDAOResponse, err error) {
	ctx, run := a.begin(ctx, "dao.create")
	var txBytes []byte
	defer func() { a.finish(run, len(txBytes), err) }()

	if err = req.validate(); err != nil {
		return nil, err
	}
	scripts, err := a.scripts.Resolve(ctx, nil)
	if err != nil {
		return nil, providerErr(err, "resolving scripts")
	}
	seed, err := run.provider.ResolveUTxO(
		ctx,
		req.SeedTxHash,
		req.SeedIndex,
	)
	if err != nil {
		return nil, lookupErr(err, CodeUTxOSpent, "seed utxo")
	}
	daoKey := plutus.DAOKey(req.SeedTxHash, uint64(req.SeedIndex))
	datumCbor, err := req.Datum.Encode()
	if err != nil {
		return nil, codecErr(err, "encoding dao datum")
	}

	changeAddress := req.ChangeAddress
	if changeAddress == "" {
		changeAddress = req.WalletAddress
	}
	plan := &txbuild.Plan{
		Inputs: []txbuild.Input{utxoInput(seed, nil)},
		Mints: []txbuild.Mint{
			{
				PolicyID: scripts.DAOPolicyID,
				Assets: []txbuild.MintAsset{
					{Name: daoKey.Bytes(), Quantity: 1},
				},
				Redeemer: mintRedeemer(),
			},
		},
		Outputs: []txbuild.Output{
			{
				Address: scripts.DAOAddress.String(),
				Assets: []chain.Asset{
					{
						PolicyID: scripts.DAOPolicyID,
						Name:     daoKey.Bytes(),
						Quantity: 1,
					},
				},
				InlineDatum: datumCbor,
			},
		},
		Collateral:    req.Collateral,
		ChangeAddress: changeAddress,
	}
	txBytes, err = a.build(ctx, plan)
	if err != nil {
		return nil, err
	}
	return &CreateDAOResponse{
		UnsignedTx: txBytes,
		DAOKey:     daoKey.Bytes(),
	}, nil
}

// ActionSpec describes one treasury action created alongside a proposal.
type ActionSpec struct {
	Name           []byte
	Description    []byte
	ActivationTime uint64
	Option         uint64
	Targets        []plutus.ActionTarget
}

// CreateProposalRequest creates a proposal and its actions in one
// transaction. The proposal identity is derived from the seed UTxO; each
// action identity from the proposal and its index.
type CreateProposalRequest struct {
	DAOKey           []byte
	ProposalPolicyID []byte
	ActionPolicyID   []byte
	SeedTxHash       []byte
	SeedIndex        uint32
	Name             []byte
	Description      []byte
	NumOptions       int
	EndTime          uint64
	Actions          []ActionSpec
	WalletAddress    string
	Collateral       []txbuild.OutputRef
}

type CreateProposalResponse struct {
	UnsignedTx []byte
	ProposalID []byte
	ActionIDs  [][]byte
}

func (r *CreateProposalRequest) validate() error {
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
	if len(r.SeedTxHash) != 32 {
		return validationErr(
			CodeInvalidField,
			"seed tx hash must be 32 bytes, got %d",
			len(r.SeedTxHash),
		)
	}
	if len(r.Name) == 0 {
		return validationErr(CodeMissingField, "proposal name is required")
	}
	if r.NumOptions < 2 {
		return validationErr(
			CodeInvalidField,
			"proposal needs at least 2 options, got %d",
			r.NumOptions,
		)
	}
	if len(r.Actions) > 0 &&
		len(r.ActionPolicyID) != plutus.PolicyIDLength {
		return validationErr(
			CodeInvalidField,
			"action policy id must be %d bytes",
			plutus.PolicyIDLength,
		)
	}
	for _, action := range r.Actions {
		if action.Option >= uint64(r.NumOptions) { // #nosec G115
			return validationErr(
				CodeInvalidField,
				"action option %d out of range (%d options)",
				action.Option,
				r.NumOptions,
			)
		}
	}
	if r.WalletAddress == "" {
		return validationErr(CodeMissingField, "wallet address is required")
	}
	return nil
}

func whitelisted(list [][]byte, policyID []byte) bool {
	for _, entry := range list {
		if bytes.Equal(entry, policyID) {
			return true
		}
	}
	return false
}

// CreateProposal assembles a proposal creation transaction: the proposal
// identity NFT plus one identity NFT per action, minted together, each
// locked with its datum at its script address.
func (a *Assembler) CreateProposal(
	ctx context.Context,
	req CreateProposalRequest,
) (resp *CreateProposalResponse, err error) {
	ctx, run := a.begin(ctx, "proposal.create")
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
	if !whitelisted(dao.WhitelistedProposals, req.ProposalPolicyID) {
		return nil, stateErr(
			CodePolicyNotWhitelisted,
			"proposal policy %x is not whitelisted",
			req.ProposalPolicyID,
		)
	}
	if len(req.Actions) > 0 &&
		!whitelisted(dao.WhitelistedActions, req.ActionPolicyID) {
		return nil, stateErr(
			CodePolicyNotWhitelisted,
			"action policy %x is not whitelisted",
			req.ActionPolicyID,
		)
	}
	now := a.nowMillis()
	if req.EndTime <= now {
		return nil, validationErr(
			CodeInvalidField,
			"end time %d is in the past",
			req.EndTime,
		)
	}
	duration := req.EndTime - now
	if duration < dao.MinProposalTime || duration > dao.MaxProposalTime {
		return nil, validationErr(
			CodeInvalidField,
			"proposal duration %dms outside dao bounds [%d, %d]",
			duration,
			dao.MinProposalTime,
			dao.MaxProposalTime,
		)
	}

	seed, err := run.provider.ResolveUTxO(
		ctx,
		req.SeedTxHash,
		req.SeedIndex,
	)
	if err != nil {
		return nil, lookupErr(err, CodeUTxOSpent, "seed utxo")
	}

	walletAddr, err := addressFromBech32(req.WalletAddress)
	if err != nil {
		return nil, validationErr(
			CodeInvalidField,
			"wallet address: %v",
			err,
		)
	}
	govInputs, govHeld, err := a.governanceInputs(
		ctx,
		run,
		walletAddr,
		dao.GovernanceToken,
		dao.MinGovProposalCreate,
	)
	if err != nil {
		return nil, err
	}
	if govHeld < dao.MinGovProposalCreate {
		return nil, stateErr(
			CodeInsufficientGovernance,
			"wallet holds %d governance tokens, proposal creation requires %d",
			govHeld,
			dao.MinGovProposalCreate,
		)
	}

	proposalID := plutus.ProposalID(
		req.SeedTxHash,
		uint64(req.SeedIndex),
	).Bytes()
	proposalDatum := &plutus.ProposalDatum{
		Name:        req.Name,
		Description: req.Description,
		Tally:       make([]uint64, req.NumOptions),
		EndTime:     req.EndTime,
		Status:      plutus.ProposalStatus{Kind: plutus.StatusActive},
		Identifier: plutus.ProposalIdentifier{
			PolicyID: req.ProposalPolicyID,
			ID:       proposalID,
		},
	}
	proposalCbor, err := proposalDatum.Encode()
	if err != nil {
		return nil, codecErr(err, "encoding proposal datum")
	}

	inputs := []txbuild.Input{utxoInput(seed, nil)}
	for i := range govInputs {
		// the seed may itself hold governance tokens
		if bytes.Equal(govInputs[i].TxHash, seed.TxHash) &&
			govInputs[i].Index == seed.Index {
			continue
		}
		inputs = append(inputs, utxoInput(&govInputs[i], nil))
	}
	plan := &txbuild.Plan{
		Inputs:          inputs,
		ReferenceInputs: []txbuild.OutputRef{utxoRef(daoUtxo)},
		Mints: []txbuild.Mint{
			{
				PolicyID: req.ProposalPolicyID,
				Assets: []txbuild.MintAsset{
					{Name: proposalID, Quantity: 1},
				},
				Redeemer: mintRedeemer(),
			},
		},
		Outputs: []txbuild.Output{
			{
				Address: scripts.ProposalAddress.String(),
				Assets: []chain.Asset{
					{
						PolicyID: req.ProposalPolicyID,
						Name:     proposalID,
						Quantity: 1,
					},
				},
				InlineDatum: proposalCbor,
			},
		},
		Collateral:    req.Collateral,
		ChangeAddress: req.WalletAddress,
	}

	actionIDs := make([][]byte, 0, len(req.Actions))
	if len(req.Actions) > 0 {
		actionMint := txbuild.Mint{
			PolicyID: req.ActionPolicyID,
			Redeemer: mintRedeemer(),
		}
		for i, action := range req.Actions {
			actionID := plutus.ActionID(
				req.ProposalPolicyID,
				proposalID,
				uint64(i), // #nosec G115
			).Bytes()
			actionIDs = append(actionIDs, actionID)
			actionMint.Assets = append(actionMint.Assets,
				txbuild.MintAsset{Name: actionID, Quantity: 1},
			)
			treasuryBytes, err := scripts.TreasuryAddress.Bytes()
			if err != nil {
				return nil, codecErr(err, "serializing treasury address")
			}
			actionDatum := &plutus.ActionDatum{
				ProposalPolicyID: req.ProposalPolicyID,
				ProposalID:       proposalID,
				ActionIndex:      uint64(i), // #nosec G115
				Name:             action.Name,
				Description:      action.Description,
				ActivationTime:   action.ActivationTime,
				Option:           action.Option,
				Targets:          action.Targets,
				TreasuryAddress:  treasuryBytes,
			}
			actionCbor, err := actionDatum.Encode()
			if err != nil {
				return nil, codecErr(err, "encoding action datum")
			}
			plan.Outputs = append(plan.Outputs, txbuild.Output{
				Address: scripts.ActionAddress.String(),
				Assets: []chain.Asset{
					{
						PolicyID: req.ActionPolicyID,
						Name:     actionID,
						Quantity: 1,
					},
				},
				InlineDatum: actionCbor,
			})
		}
		plan.Mints = append(plan.Mints, actionMint)
	}

	txBytes, err = a.build(ctx, plan)
	if err != nil {
		return nil, err
	}
	return &CreateProposalResponse{
		UnsignedTx: txBytes,
		ProposalID: proposalID,
		ActionIDs:  actionIDs,
	}, nil
}
