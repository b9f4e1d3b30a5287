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

package chain

import (
	"bytes"
	"context"
	"errors"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
)

// ErrUTxONotFound is returned when an expected UTxO is absent. This is an
// expected outcome in normal operation (the output may have been spent by
// a concurrent actor between queries), not a defect.
var ErrUTxONotFound = errors.New("utxo not found")

// Asset is one token amount inside a UTxO value.
type Asset struct {
	PolicyID []byte
	Name     []byte
	Quantity uint64
}

// Value is the full value of a UTxO: lovelace plus native assets.
type Value struct {
	Coin   uint64
	Assets []Asset
}

// AssetQuantity returns the quantity of the given asset in the value,
// zero if absent.
func (v Value) AssetQuantity(policyID []byte, name []byte) uint64 {
	for _, asset := range v.Assets {
		if bytes.Equal(asset.PolicyID, policyID) &&
			bytes.Equal(asset.Name, name) {
			return asset.Quantity
		}
	}
	return 0
}

// UTxO is one unspent transaction output, with its inline datum bytes
// when present.
type UTxO struct {
	TxHash    []byte
	Index     uint32
	Address   lcommon.Address
	Value     Value
	DatumCbor []byte
}

// Provider is the external chain-data collaborator. Implementations are
// fallible on network and API errors; results reflect a snapshot of an
// externally mutable ledger and must never be treated as authoritative.
type Provider interface {
	// UTxOsByAddress returns the unspent outputs at an address.
	UTxOsByAddress(
		ctx context.Context,
		addr lcommon.Address,
	) ([]UTxO, error)
	// ResolveUTxO resolves a single output by reference, returning
	// ErrUTxONotFound if it does not exist or is already spent.
	ResolveUTxO(
		ctx context.Context,
		txHash []byte,
		index uint32,
	) (*UTxO, error)
}
