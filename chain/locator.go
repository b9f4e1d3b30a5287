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
	"context"
	"fmt"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
)

// FindAssetUTxO scans the unspent outputs at an address and returns the
// first one whose value holds exactly the given quantity of the asset.
// Identity NFTs use quantity 1; the minting policy enforces uniqueness,
// so first-match is sufficient. Returns ErrUTxONotFound when no output
// qualifies.
func FindAssetUTxO(
	ctx context.Context,
	p Provider,
	addr lcommon.Address,
	policyID []byte,
	assetName []byte,
	quantity uint64,
) (*UTxO, error) {
	utxos, err := p.UTxOsByAddress(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("find asset utxo: %w", err)
	}
	for i := range utxos {
		if utxos[i].Value.AssetQuantity(policyID, assetName) == quantity {
			return &utxos[i], nil
		}
	}
	return nil, fmt.Errorf(
		"%w: %x.%x at %s",
		ErrUTxONotFound,
		policyID,
		assetName,
		addr.String(),
	)
}
