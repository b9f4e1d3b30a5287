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

package txbuild

import (
	"bytes"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/chain"
)

// OutputRef identifies a transaction output by its creating transaction
// and index.
type OutputRef struct {
	TxHash []byte
	Index  uint32
}

// Input is a spent transaction input. Script-locked inputs carry the
// redeemer selecting the validator branch.
type Input struct {
	TxHash   []byte
	Index    uint32
	Redeemer []byte
}

// MintAsset is one asset name minted (positive) or burned (negative)
// under a policy.
type MintAsset struct {
	Name     []byte
	Quantity int64
}

// Mint groups the mints and burns under one policy with the redeemer for
// that policy's minting validator.
type Mint struct {
	PolicyID []byte
	Assets   []MintAsset
	Redeemer []byte
}

// Output is one produced transaction output. InlineDatum holds the full
// datum CBOR to attach inline; minimum-ADA adjustment is left to the
// builder.
type Output struct {
	Address     string
	Coin        uint64
	Assets      []chain.Asset
	InlineDatum []byte
}

// Plan is the complete input/output/mint specification for one protocol
// operation, handed to the external transaction builder for fee
// balancing, minimum-ADA calculation, and serialization. Validity bounds
// are ledger slots.
type Plan struct {
	Inputs          []Input
	ReferenceInputs []OutputRef
	Mints           []Mint
	Outputs         []Output
	RequiredSigners [][]byte
	Collateral      []OutputRef
	ChangeAddress   string
	ValidFrom       *uint64
	ValidTo         *uint64
}

// MintQuantity returns the planned quantity for one asset across the
// plan's mints, zero if the plan does not touch it.
func (p *Plan) MintQuantity(policyID []byte, name []byte) int64 {
	for _, mint := range p.Mints {
		if !bytes.Equal(mint.PolicyID, policyID) {
			continue
		}
		for _, asset := range mint.Assets {
			if bytes.Equal(asset.Name, name) {
				return asset.Quantity
			}
		}
	}
	return 0
}
