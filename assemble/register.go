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

// RegisterRequest locks governance tokens for voting. The registration
// id is derived from the seed UTxO, which the transaction consumes so
// the same pair can never be minted twice.
type RegisterRequest struct {
	DAOKey        []byte
	SeedTxHash    []byte
	SeedIndex     uint32
	Amount        uint64
	WalletAddress string
	Collateral    []txbuild.OutputRef
}

type RegisterResponse struct {
	UnsignedTx     []byte
	RegistrationID []byte
}

func (r *RegisterRequest) validate() error {
	if len(r.DAOKey) == 0 {
		return validationErr(CodeMissingField, "dao key is required")
	}
	if len(r.SeedTxHash) != 32 {
		return validationErr(
			CodeInvalidField,
			"seed tx hash must be 32 bytes, got %d",
			len(r.SeedTxHash),
		)
	}
	if r.Amount == 0 {
		return validationErr(
			CodeInvalidField,
			"governance amount must be positive",
		)
	}
	if r.WalletAddress == "" {
		return validationErr(CodeMissingField, "wallet address is required")
	}
	return nil
}

// Register assembles the vote registration transaction: mints the
// reference/user NFT pair, locks the governance tokens and reference NFT
// at the vote script, and returns the user NFT to the wallet.
func (a *Assembler) Register(
	ctx context.Context,
	req RegisterRequest,
) (resp *RegisterResponse, err error) {
	ctx, run := a.begin(ctx, "vote.register")
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
		req.Amount,
	)
	if err != nil {
		return nil, err
	}
	if govHeld < req.Amount {
		return nil, stateErr(
			CodeInsufficientGovernance,
			"wallet holds %d governance tokens, registration locks %d",
			govHeld,
			req.Amount,
		)
	}

	registrationID := plutus.VoteRegistrationID(
		req.SeedTxHash,
		uint64(req.SeedIndex),
	)
	referenceName := plutus.VoteReferenceAssetName(registrationID)
	userName := plutus.VoteUserAssetName(registrationID)
	voteDatum := &plutus.VoteDatum{Version: plutus.VoteDatumVersion}
	voteCbor, err := voteDatum.Encode()
	if err != nil {
		return nil, codecErr(err, "encoding vote datum")
	}

	inputs := []txbuild.Input{utxoInput(seed, nil)}
	for i := range govInputs {
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
				PolicyID: scripts.VotePolicyID,
				Assets: []txbuild.MintAsset{
					{Name: referenceName, Quantity: 1},
					{Name: userName, Quantity: 1},
				},
				Redeemer: mintRedeemer(),
			},
		},
		Outputs: []txbuild.Output{
			{
				Address: scripts.VoteAddress.String(),
				Assets: []chain.Asset{
					{
						PolicyID: scripts.VotePolicyID,
						Name:     referenceName,
						Quantity: 1,
					},
					{
						PolicyID: dao.GovernanceToken.PolicyID,
						Name:     dao.GovernanceToken.Name,
						Quantity: req.Amount,
					},
				},
				InlineDatum: voteCbor,
			},
			{
				Address: req.WalletAddress,
				Assets: []chain.Asset{
					{
						PolicyID: scripts.VotePolicyID,
						Name:     userName,
						Quantity: 1,
					},
				},
			},
		},
		Collateral:    req.Collateral,
		ChangeAddress: req.WalletAddress,
	}
	txBytes, err = a.build(ctx, plan)
	if err != nil {
		return nil, err
	}
	return &RegisterResponse{
		UnsignedTx:     txBytes,
		RegistrationID: registrationID,
	}, nil
}
