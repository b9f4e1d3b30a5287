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

// UnregisterRequest dissolves a vote registration: burns the NFT pair
// and any receipts from settled proposals, and returns the locked
// governance tokens to the wallet.
type UnregisterRequest struct {
	DAOKey         []byte
	RegistrationID []byte
	WalletAddress  string
	Collateral     []txbuild.OutputRef
}

type UnregisterResponse struct {
	UnsignedTx []byte
	// ReturnedGovernance is the quantity of governance tokens unlocked.
	ReturnedGovernance uint64
}

func (r *UnregisterRequest) validate() error {
	if len(r.DAOKey) == 0 {
		return validationErr(CodeMissingField, "dao key is required")
	}
	if len(r.RegistrationID) != plutus.RegistrationIDLength {
		return validationErr(
			CodeInvalidField,
			"registration id must be %d bytes",
			plutus.RegistrationIDLength,
		)
	}
	if r.WalletAddress == "" {
		return validationErr(CodeMissingField, "wallet address is required")
	}
	return nil
}

// receiptHolding is one vote-receipt balance inside a vote UTxO together
// with the proposal it belongs to.
type receiptHolding struct {
	Asset        chain.Asset
	Proposal     *chain.UTxO
	ProposalName []byte
	Status       plutus.ProposalStatus
}

// receiptHoldings resolves every receipt asset in a vote UTxO to its
// proposal. Receipt names are hashes of (proposal name, option), so
// resolution scans the proposal address for identity NFTs under the
// receipt's policy and rederives candidate names per option.
func (a *Assembler) receiptHoldings(
	ctx context.Context,
	run *opRun,
	scripts *Scripts,
	voteUtxo *chain.UTxO,
	govToken plutus.AssetClass,
) ([]receiptHolding, error) {
	var receipts []chain.Asset
	for _, asset := range voteUtxo.Value.Assets {
		if bytes.Equal(asset.PolicyID, scripts.VotePolicyID) {
			continue
		}
		if bytes.Equal(asset.PolicyID, govToken.PolicyID) &&
			bytes.Equal(asset.Name, govToken.Name) {
			continue
		}
		receipts = append(receipts, asset)
	}
	if len(receipts) == 0 {
		return nil, nil
	}
	proposalUtxos, err := run.provider.UTxOsByAddress(
		ctx,
		scripts.ProposalAddress,
	)
	if err != nil {
		return nil, providerErr(err, "listing proposal utxos")
	}
	holdings := make([]receiptHolding, 0, len(receipts))
	for _, receipt := range receipts {
		holding, found := matchReceipt(receipt, proposalUtxos)
		if !found {
			return nil, notFoundErr(
				CodeProposalNotFound,
				nil,
				"no proposal matches receipt %x.%x",
				receipt.PolicyID,
				receipt.Name,
			)
		}
		holdings = append(holdings, holding)
	}
	return holdings, nil
}

// matchReceipt finds the proposal a receipt belongs to by rederiving
// receipt names for each option of each proposal under the receipt's
// policy. Foreign datums are skipped, absence is a negative result.
func matchReceipt(
	receipt chain.Asset,
	proposalUtxos []chain.UTxO,
) (receiptHolding, bool) {
	for i := range proposalUtxos {
		utxo := &proposalUtxos[i]
		var identityName []byte
		for _, asset := range utxo.Value.Assets {
			if bytes.Equal(asset.PolicyID, receipt.PolicyID) &&
				asset.Quantity == 1 {
				identityName = asset.Name
				break
			}
		}
		if identityName == nil {
			continue
		}
		datum, err := plutus.DecodeProposalDatum(utxo.DatumCbor)
		if err != nil {
			continue
		}
		for option := range datum.Tally {
			name := plutus.ReceiptAssetName(
				identityName,
				uint64(option), // #nosec G115
			)
			if bytes.Equal(name.Bytes(), receipt.Name) {
				return receiptHolding{
					Asset:        receipt,
					Proposal:     utxo,
					ProposalName: identityName,
					Status:       datum.Status,
				}, true
			}
		}
	}
	return receiptHolding{}, false
}

// Unregister assembles the unregistration transaction: burns the
// reference and user NFTs plus all held receipts (each burn group citing
// its settled proposal as a read-only input) and returns the locked
// governance tokens. A receipt from a still-Active proposal blocks the
// whole operation.
func (a *Assembler) Unregister(
	ctx context.Context,
	req UnregisterRequest,
) (resp *UnregisterResponse, err error) {
	ctx, run := a.begin(ctx, "vote.unregister")
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
	voteUtxo, err := a.voteState(ctx, run, scripts, req.RegistrationID)
	if err != nil {
		return nil, err
	}
	walletAddr, err := addressFromBech32(req.WalletAddress)
	if err != nil {
		return nil, validationErr(
			CodeInvalidField,
			"wallet address: %v",
			err,
		)
	}
	userName := plutus.VoteUserAssetName(req.RegistrationID)
	userUtxo, err := chain.FindAssetUTxO(
		ctx,
		run.provider,
		walletAddr,
		scripts.VotePolicyID,
		userName,
		1,
	)
	if err != nil {
		return nil, lookupErr(err, CodeVoteNotFound, "user vote token")
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
	for _, holding := range holdings {
		if holding.Status.Kind == plutus.StatusActive {
			return nil, stateErr(
				CodeReceiptsStillActive,
				"receipt %x belongs to a still-active proposal",
				holding.Asset.Name,
			)
		}
	}

	referenceName := plutus.VoteReferenceAssetName(req.RegistrationID)
	mints := []txbuild.Mint{
		{
			PolicyID: scripts.VotePolicyID,
			Assets: []txbuild.MintAsset{
				{Name: referenceName, Quantity: -1},
				{Name: userName, Quantity: -1},
			},
			Redeemer: burnRedeemer(),
		},
	}
	// Receipt burns are grouped per proposal policy, each group citing
	// its proposals as read-only inputs.
	referenceInputs := []txbuild.OutputRef{utxoRef(daoUtxo)}
	burnByPolicy := make(map[string]int)
	for _, holding := range holdings {
		key := string(holding.Asset.PolicyID)
		i, ok := burnByPolicy[key]
		if !ok {
			i = len(mints)
			burnByPolicy[key] = i
			mints = append(mints, txbuild.Mint{
				PolicyID: holding.Asset.PolicyID,
				Redeemer: burnRedeemer(),
			})
		}
		mints[i].Assets = append(mints[i].Assets, txbuild.MintAsset{
			Name:     holding.Asset.Name,
			Quantity: -int64(holding.Asset.Quantity), // #nosec G115
		})
		referenceInputs = append(referenceInputs, utxoRef(holding.Proposal))
	}

	returned := voteUtxo.Value.AssetQuantity(
		dao.GovernanceToken.PolicyID,
		dao.GovernanceToken.Name,
	)
	plan := &txbuild.Plan{
		Inputs: []txbuild.Input{
			utxoInput(voteUtxo, unregisterSpendRedeemer()),
			utxoInput(userUtxo, nil),
		},
		ReferenceInputs: referenceInputs,
		Mints:           mints,
		Collateral:      req.Collateral,
		ChangeAddress:   req.WalletAddress,
	}
	if returned > 0 {
		plan.Outputs = append(plan.Outputs, txbuild.Output{
			Address: req.WalletAddress,
			Assets: []chain.Asset{
				{
					PolicyID: dao.GovernanceToken.PolicyID,
					Name:     dao.GovernanceToken.Name,
					Quantity: returned,
				},
			},
		})
	}
	txBytes, err = a.build(ctx, plan)
	if err != nil {
		return nil, err
	}
	return &UnregisterResponse{
		UnsignedTx:         txBytes,
		ReturnedGovernance: returned,
	}, nil
}
