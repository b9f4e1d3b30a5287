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
	"encoding/hex"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/assemble"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/chain"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/plutus"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/txbuild"
)

// All byte-valued fields travel hex-encoded. Human-readable text
// (names, descriptions) travels as plain strings.

// RootResponse is returned by GET /.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

type OutputRefWire struct {
	TxHash string `json:"tx_hash"`
	Index  uint32 `json:"index"`
}

type AssetWire struct {
	PolicyID string `json:"policy_id"`
	Name     string `json:"name"`
	Quantity uint64 `json:"quantity"`
}

type DAODatumWire struct {
	Name                 string   `json:"name"`
	GovernancePolicyID   string   `json:"governance_policy_id"`
	GovernanceAssetName  string   `json:"governance_asset_name"`
	Threshold            uint64   `json:"threshold"`
	MinProposalTime      uint64   `json:"min_proposal_time"`
	MaxProposalTime      uint64   `json:"max_proposal_time"`
	Quorum               uint64   `json:"quorum"`
	MinGovProposalCreate uint64   `json:"min_gov_proposal_create"`
	WhitelistedProposals []string `json:"whitelisted_proposals"`
	WhitelistedActions   []string `json:"whitelisted_actions"`
}

type CreateDAORequestWire struct {
	SeedTxHash    string          `json:"seed_tx_hash"`
	SeedIndex     uint32          `json:"seed_index"`
	Datum         DAODatumWire    `json:"datum"`
	WalletAddress string          `json:"wallet_address"`
	ChangeAddress string          `json:"change_address,omitempty"`
	Collateral    []OutputRefWire `json:"collateral,omitempty"`
}

type CreateDAOResponseWire struct {
	UnsignedTx string `json:"unsigned_tx"`
	DAOKey     string `json:"dao_key"`
}

type TargetAssetWire struct {
	PolicyID string `json:"policy_id"`
	Name     string `json:"name"`
	Amount   uint64 `json:"amount"`
}

type ActionTargetWire struct {
	Address string            `json:"address"`
	Coins   uint64            `json:"coins"`
	Assets  []TargetAssetWire `json:"assets,omitempty"`
}

type ActionSpecWire struct {
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	ActivationTime uint64             `json:"activation_time"`
	Option         uint64             `json:"option"`
	Targets        []ActionTargetWire `json:"targets"`
}

type CreateProposalRequestWire struct {
	DAOKey           string           `json:"dao_key"`
	ProposalPolicyID string           `json:"proposal_policy_id"`
	ActionPolicyID   string           `json:"action_policy_id,omitempty"`
	SeedTxHash       string           `json:"seed_tx_hash"`
	SeedIndex        uint32           `json:"seed_index"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	NumOptions       int              `json:"num_options"`
	EndTime          uint64           `json:"end_time"`
	Actions          []ActionSpecWire `json:"actions,omitempty"`
	WalletAddress    string           `json:"wallet_address"`
	Collateral       []OutputRefWire  `json:"collateral,omitempty"`
}

type CreateProposalResponseWire struct {
	UnsignedTx string   `json:"unsigned_tx"`
	ProposalID string   `json:"proposal_id"`
	ActionIDs  []string `json:"action_ids"`
}

type RegisterRequestWire struct {
	DAOKey        string          `json:"dao_key"`
	SeedTxHash    string          `json:"seed_tx_hash"`
	SeedIndex     uint32          `json:"seed_index"`
	Amount        uint64          `json:"amount"`
	WalletAddress string          `json:"wallet_address"`
	Collateral    []OutputRefWire `json:"collateral,omitempty"`
}

type RegisterResponseWire struct {
	UnsignedTx     string `json:"unsigned_tx"`
	RegistrationID string `json:"registration_id"`
}

type CastVoteRequestWire struct {
	DAOKey            string          `json:"dao_key"`
	ProposalPolicyID  string          `json:"proposal_policy_id"`
	ProposalAssetName string          `json:"proposal_asset_name"`
	RegistrationID    string          `json:"registration_id"`
	Option            uint64          `json:"option"`
	VotePower         uint64          `json:"vote_power"`
	WalletAddress     string          `json:"wallet_address"`
	Collateral        []OutputRefWire `json:"collateral,omitempty"`
}

type CastVoteResponseWire struct {
	UnsignedTx       string   `json:"unsigned_tx"`
	NewTally         []uint64 `json:"new_tally"`
	ReceiptAssetName string   `json:"receipt_asset_name"`
}

type EvaluateRequestWire struct {
	DAOKey            string          `json:"dao_key"`
	ProposalPolicyID  string          `json:"proposal_policy_id"`
	ProposalAssetName string          `json:"proposal_asset_name"`
	WalletAddress     string          `json:"wallet_address"`
	Collateral        []OutputRefWire `json:"collateral,omitempty"`
}

type ProposalStatusWire struct {
	Kind   string `json:"kind"`
	Option uint64 `json:"option,omitempty"`
}

type EvaluateResponseWire struct {
	UnsignedTx string             `json:"unsigned_tx"`
	Status     ProposalStatusWire `json:"status"`
}

type ExecuteActionRequestWire struct {
	DAOKey            string          `json:"dao_key"`
	ProposalPolicyID  string          `json:"proposal_policy_id"`
	ProposalAssetName string          `json:"proposal_asset_name"`
	ActionPolicyID    string          `json:"action_policy_id"`
	ActionIndex       uint64          `json:"action_index"`
	WalletAddress     string          `json:"wallet_address"`
	Collateral        []OutputRefWire `json:"collateral,omitempty"`
}

type ExecuteActionResponseWire struct {
	UnsignedTx  string `json:"unsigned_tx"`
	ActionID    string `json:"action_id"`
	PaidCoins   uint64 `json:"paid_coins"`
	ChangeCoins uint64 `json:"change_coins"`
}

type UnregisterRequestWire struct {
	DAOKey         string          `json:"dao_key"`
	RegistrationID string          `json:"registration_id"`
	WalletAddress  string          `json:"wallet_address"`
	Collateral     []OutputRefWire `json:"collateral,omitempty"`
}

type UnregisterResponseWire struct {
	UnsignedTx         string `json:"unsigned_tx"`
	ReturnedGovernance uint64 `json:"returned_governance"`
}

type DAOInfoWire struct {
	Found  bool          `json:"found"`
	Datum  *DAODatumWire `json:"datum,omitempty"`
	TxHash string        `json:"tx_hash,omitempty"`
	Index  uint32        `json:"index,omitempty"`
}

type ProposalSummaryWire struct {
	AssetName string             `json:"asset_name"`
	Name      string             `json:"name"`
	Tally     []uint64           `json:"tally"`
	EndTime   uint64             `json:"end_time"`
	Status    ProposalStatusWire `json:"status"`
}

type ProposalDetailsWire struct {
	Found       bool                `json:"found"`
	Name        string              `json:"name,omitempty"`
	Description string              `json:"description,omitempty"`
	Tally       []uint64            `json:"tally,omitempty"`
	EndTime     uint64              `json:"end_time,omitempty"`
	Status      *ProposalStatusWire `json:"status,omitempty"`
	TxHash      string              `json:"tx_hash,omitempty"`
	Index       uint32              `json:"index,omitempty"`
	Projected   *ProposalStatusWire `json:"projected,omitempty"`
}

type RegistrationStatusWire struct {
	Registered       bool        `json:"registered"`
	LockedGovernance uint64      `json:"locked_governance"`
	Receipts         []AssetWire `json:"receipts,omitempty"`
}

type UnregisterEligibilityWire struct {
	Registered       bool     `json:"registered"`
	Eligible         bool     `json:"eligible"`
	BlockingReceipts []string `json:"blocking_receipts,omitempty"`
}

func collateralFromWire(refs []OutputRefWire) ([]txbuild.OutputRef, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]txbuild.OutputRef, 0, len(refs))
	for _, ref := range refs {
		txHash, err := hex.DecodeString(ref.TxHash)
		if err != nil {
			return nil, err
		}
		out = append(out, txbuild.OutputRef{
			TxHash: txHash,
			Index:  ref.Index,
		})
	}
	return out, nil
}

func daoDatumFromWire(wire DAODatumWire) (*plutus.DAODatum, error) {
	govPolicy, err := hex.DecodeString(wire.GovernancePolicyID)
	if err != nil {
		return nil, err
	}
	datum := &plutus.DAODatum{
		Name: []byte(wire.Name),
		GovernanceToken: plutus.AssetClass{
			PolicyID: govPolicy,
			Name:     []byte(wire.GovernanceAssetName),
		},
		Threshold:            wire.Threshold,
		MinProposalTime:      wire.MinProposalTime,
		MaxProposalTime:      wire.MaxProposalTime,
		Quorum:               wire.Quorum,
		MinGovProposalCreate: wire.MinGovProposalCreate,
	}
	for _, entry := range wire.WhitelistedProposals {
		policy, err := hex.DecodeString(entry)
		if err != nil {
			return nil, err
		}
		datum.WhitelistedProposals = append(
			datum.WhitelistedProposals,
			policy,
		)
	}
	for _, entry := range wire.WhitelistedActions {
		policy, err := hex.DecodeString(entry)
		if err != nil {
			return nil, err
		}
		datum.WhitelistedActions = append(datum.WhitelistedActions, policy)
	}
	return datum, nil
}

func daoDatumToWire(datum *plutus.DAODatum) *DAODatumWire {
	wire := &DAODatumWire{
		Name:                 string(datum.Name),
		GovernancePolicyID:   hex.EncodeToString(datum.GovernanceToken.PolicyID),
		GovernanceAssetName:  string(datum.GovernanceToken.Name),
		Threshold:            datum.Threshold,
		MinProposalTime:      datum.MinProposalTime,
		MaxProposalTime:      datum.MaxProposalTime,
		Quorum:               datum.Quorum,
		MinGovProposalCreate: datum.MinGovProposalCreate,
	}
	for _, entry := range datum.WhitelistedProposals {
		wire.WhitelistedProposals = append(
			wire.WhitelistedProposals,
			hex.EncodeToString(entry),
		)
	}
	for _, entry := range datum.WhitelistedActions {
		wire.WhitelistedActions = append(
			wire.WhitelistedActions,
			hex.EncodeToString(entry),
		)
	}
	return wire
}

func actionsFromWire(specs []ActionSpecWire) ([]assemble.ActionSpec, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]assemble.ActionSpec, 0, len(specs))
	for _, spec := range specs {
		action := assemble.ActionSpec{
			Name:           []byte(spec.Name),
			Description:    []byte(spec.Description),
			ActivationTime: spec.ActivationTime,
			Option:         spec.Option,
		}
		for _, target := range spec.Targets {
			addr, err := hex.DecodeString(target.Address)
			if err != nil {
				return nil, err
			}
			actionTarget := plutus.ActionTarget{
				Address: addr,
				Coins:   target.Coins,
			}
			for _, asset := range target.Assets {
				policy, err := hex.DecodeString(asset.PolicyID)
				if err != nil {
					return nil, err
				}
				name, err := hex.DecodeString(asset.Name)
				if err != nil {
					return nil, err
				}
				actionTarget.Assets = append(
					actionTarget.Assets,
					plutus.TargetAsset{
						PolicyID: policy,
						Name:     name,
						Amount:   asset.Amount,
					},
				)
			}
			action.Targets = append(action.Targets, actionTarget)
		}
		out = append(out, action)
	}
	return out, nil
}

func statusToWire(status plutus.ProposalStatus) ProposalStatusWire {
	return ProposalStatusWire{
		Kind:   status.Kind.String(),
		Option: status.Option,
	}
}

func assetsToWire(assets []chain.Asset) []AssetWire {
	if len(assets) == 0 {
		return nil
	}
	out := make([]AssetWire, 0, len(assets))
	for _, asset := range assets {
		out = append(out, AssetWire{
			PolicyID: hex.EncodeToString(asset.PolicyID),
			Name:     hex.EncodeToString(asset.Name),
			Quantity: asset.Quantity,
		})
	}
	return out
}

func hexList(items [][]byte) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, hex.EncodeToString(item))
	}
	return out
}
