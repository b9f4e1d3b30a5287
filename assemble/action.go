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
	"errors"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/chain"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/governance"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/plutus"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/txbuild"
)

// ExecuteActionRequest executes a pending treasury action whose bound
// proposal passed with the matching option.
type ExecuteActionRequest struct {
	DAOKey            []byte
	ProposalPolicyID  []byte
	ProposalAssetName []byte
	ActionPolicyID    []byte
	ActionIndex       uint64
	WalletAddress     string
	Collateral        []txbuild.OutputRef
}

type ExecuteActionResponse struct {
	UnsignedTx []byte
	ActionID   []byte
	// PaidCoins is the total lovelace paid to action targets.
	PaidCoins uint64
	// ChangeCoins is the lovelace returned to the treasury.
	ChangeCoins uint64
}

func (r *ExecuteActionRequest) validate() error {
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
	if len(r.ActionPolicyID) != plutus.PolicyIDLength {
		return validationErr(
			CodeInvalidField,
			"action policy id must be %d bytes",
			plutus.PolicyIDLength,
		)
	}
	if r.WalletAddress == "" {
		return validationErr(CodeMissingField, "wallet address is required")
	}
	return nil
}

// ExecuteAction assembles the treasury payout transaction: burns the
// action identity token, spends just enough treasury inputs to cover the
// targets, pays each target, and returns the remainder to the treasury
// address the action datum names.
func (a *Assembler) ExecuteAction(
	ctx context.Context,
	req ExecuteActionRequest,
) (resp *ExecuteActionResponse, err error) {
	ctx, run := a.begin(ctx, "action.execute")
	var txBytes []byte
	defer func() { a.finish(run, len(txBytes), err) }()

	if err = req.validate(); err != nil {
		return nil, err
	}
	scripts, err := a.scripts.Resolve(ctx, req.DAOKey)
	if err != nil {
		return nil, providerErr(err, "resolving scripts")
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
	if proposal.Status.Kind != plutus.StatusPassed {
		return nil, stateErr(
			CodeProposalNotPassed,
			"proposal status is %s",
			proposal.Status.Kind,
		)
	}

	actionID := plutus.ActionID(
		req.ProposalPolicyID,
		proposal.Identifier.ID,
		req.ActionIndex,
	).Bytes()
	actionUtxo, err := chain.FindAssetUTxO(
		ctx,
		run.provider,
		scripts.ActionAddress,
		req.ActionPolicyID,
		actionID,
		1,
	)
	if err != nil {
		return nil, lookupErr(err, CodeActionNotFound, "action")
	}
	action, err := plutus.DecodeActionDatum(actionUtxo.DatumCbor)
	if err != nil {
		return nil, decodeErr(err, CodeActionNotFound, "action")
	}
	if action.Option != proposal.Status.Option {
		return nil, stateErr(
			CodeWrongOption,
			"action bound to option %d, proposal passed with %d",
			action.Option,
			proposal.Status.Option,
		)
	}
	now := a.nowMillis()
	if now < action.ActivationTime {
		return nil, stateErr(
			CodeActionNotReady,
			"action activates at %d, now %d",
			action.ActivationTime,
			now,
		)
	}

	var requiredCoins uint64
	requiredAssets := newAssetTotals()
	for _, target := range action.Targets {
		requiredCoins += target.Coins
		for _, asset := range target.Assets {
			requiredAssets.add(asset.PolicyID, asset.Name, asset.Amount)
		}
	}

	treasuryUtxos, err := run.provider.UTxOsByAddress(
		ctx,
		scripts.TreasuryAddress,
	)
	if err != nil {
		return nil, providerErr(err, "listing treasury utxos")
	}
	selected, changeCoins, changeAssets, err := selectTreasuryFunds(
		treasuryUtxos,
		requiredCoins,
		requiredAssets,
	)
	if err != nil {
		return nil, err
	}

	treasuryAddr, err := addressFromBytes(action.TreasuryAddress)
	if err != nil {
		return nil, codecErr(err, "parsing treasury return address")
	}

	inputs := []txbuild.Input{utxoInput(actionUtxo, executeRedeemer())}
	for i := range selected {
		inputs = append(inputs, utxoInput(&selected[i], executeRedeemer()))
	}
	plan := &txbuild.Plan{
		Inputs:          inputs,
		ReferenceInputs: []txbuild.OutputRef{utxoRef(proposalUtxo)},
		Mints: []txbuild.Mint{
			{
				PolicyID: req.ActionPolicyID,
				Assets: []txbuild.MintAsset{
					{Name: actionID, Quantity: -1},
				},
				Redeemer: burnRedeemer(),
			},
		},
		Collateral:    req.Collateral,
		ChangeAddress: req.WalletAddress,
	}
	for _, target := range action.Targets {
		targetAddr, err := addressFromBytes(target.Address)
		if err != nil {
			return nil, codecErr(err, "parsing target address")
		}
		output := txbuild.Output{
			Address: targetAddr.String(),
			Coin:    target.Coins,
		}
		for _, asset := range target.Assets {
			output.Assets = append(output.Assets, chain.Asset{
				PolicyID: asset.PolicyID,
				Name:     asset.Name,
				Quantity: asset.Amount,
			})
		}
		plan.Outputs = append(plan.Outputs, output)
	}
	if changeCoins > 0 || len(changeAssets) > 0 {
		plan.Outputs = append(plan.Outputs, txbuild.Output{
			Address: treasuryAddr.String(),
			Coin:    changeCoins,
			Assets:  changeAssets,
		})
	}
	validFrom := a.slotAtMillis(action.ActivationTime)
	plan.ValidFrom = &validFrom

	txBytes, err = a.build(ctx, plan)
	if err != nil {
		return nil, err
	}
	return &ExecuteActionResponse{
		UnsignedTx:  txBytes,
		ActionID:    actionID,
		PaidCoins:   requiredCoins,
		ChangeCoins: changeCoins,
	}, nil
}

// assetTotals tracks per-asset quantities keyed by policy id + name.
type assetTotals struct {
	order []chain.Asset
	index map[string]int
}

func newAssetTotals() *assetTotals {
	return &assetTotals{index: make(map[string]int)}
}

func assetKey(policyID []byte, name []byte) string {
	return string(policyID) + "/" + string(name)
}

func (t *assetTotals) add(policyID []byte, name []byte, qty uint64) {
	key := assetKey(policyID, name)
	if i, ok := t.index[key]; ok {
		t.order[i].Quantity += qty
		return
	}
	t.index[key] = len(t.order)
	t.order = append(t.order, chain.Asset{
		PolicyID: policyID,
		Name:     name,
		Quantity: qty,
	})
}

func (t *assetTotals) remaining(policyID []byte, name []byte) uint64 {
	if i, ok := t.index[assetKey(policyID, name)]; ok {
		return t.order[i].Quantity
	}
	return 0
}

func (t *assetTotals) take(policyID []byte, name []byte, qty uint64) uint64 {
	i, ok := t.index[assetKey(policyID, name)]
	if !ok {
		return 0
	}
	taken := min(qty, t.order[i].Quantity)
	t.order[i].Quantity -= taken
	return taken
}

func (t *assetTotals) unmet() bool {
	for _, asset := range t.order {
		if asset.Quantity > 0 {
			return true
		}
	}
	return false
}

func (t *assetTotals) clone() *assetTotals {
	out := newAssetTotals()
	for _, asset := range t.order {
		out.add(asset.PolicyID, asset.Name, asset.Quantity)
	}
	return out
}

// selectTreasuryFunds extends the greedy lovelace selector with native
// asset requirements: a first pass picks UTxOs contributing any
// still-needed asset, a second pass greedily covers the remaining
// lovelace. Change is whatever the selection holds beyond the targets.
func selectTreasuryFunds(
	utxos []chain.UTxO,
	requiredCoins uint64,
	requiredAssets *assetTotals,
) ([]chain.UTxO, uint64, []chain.Asset, error) {
	needed := requiredAssets.clone()
	var selected []chain.UTxO
	var remainder []chain.UTxO
	var selectedCoins uint64
	for _, utxo := range utxos {
		wanted := false
		for _, asset := range utxo.Value.Assets {
			if needed.remaining(asset.PolicyID, asset.Name) > 0 {
				wanted = true
				break
			}
		}
		if wanted {
			for _, asset := range utxo.Value.Assets {
				needed.take(
					asset.PolicyID,
					asset.Name,
					asset.Quantity,
				)
			}
			selected = append(selected, utxo)
			selectedCoins += utxo.Value.Coin
		} else {
			remainder = append(remainder, utxo)
		}
	}
	if needed.unmet() {
		return nil, 0, nil, stateErr(
			CodeInsufficientTreasury,
			"treasury does not hold the required assets",
		)
	}
	if selectedCoins < requiredCoins {
		extra, _, err := governance.SelectFunds(
			remainder,
			requiredCoins-selectedCoins,
		)
		if err != nil {
			if errors.Is(err, governance.ErrInsufficientTreasury) {
				return nil, 0, nil, stateErr(
					CodeInsufficientTreasury,
					"treasury balance below required %d lovelace",
					requiredCoins,
				)
			}
			return nil, 0, nil, providerErr(err, "selecting treasury funds")
		}
		for _, utxo := range extra {
			selected = append(selected, utxo)
			selectedCoins += utxo.Value.Coin
		}
	}

	// Change: everything selected beyond what the targets consume.
	changeAssets := newAssetTotals()
	for _, utxo := range selected {
		for _, asset := range utxo.Value.Assets {
			changeAssets.add(asset.PolicyID, asset.Name, asset.Quantity)
		}
	}
	for _, asset := range requiredAssets.order {
		changeAssets.take(asset.PolicyID, asset.Name, asset.Quantity)
	}
	var change []chain.Asset
	for _, asset := range changeAssets.order {
		if asset.Quantity > 0 {
			change = append(change, asset)
		}
	}
	return selected, selectedCoins - requiredCoins, change, nil
}
