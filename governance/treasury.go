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

package governance

import (
	"errors"
	"fmt"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/chain"
)

// ErrInsufficientTreasury is returned when the whole treasury UTxO set
// does not cover the required payout.
var ErrInsufficientTreasury = errors.New("insufficient treasury funds")

// SelectFunds picks just enough treasury inputs to cover the required
// lovelace amount. Selection is greedy and deterministic: UTxOs are
// accumulated in the order given until the total reaches the
// requirement. The remainder is returned as change to re-lock at the
// treasury address.
func SelectFunds(
	utxos []chain.UTxO,
	requiredCoins uint64,
) ([]chain.UTxO, uint64, error) {
	var accumulated uint64
	var selected []chain.UTxO
	for _, utxo := range utxos {
		if accumulated >= requiredCoins {
			break
		}
		selected = append(selected, utxo)
		accumulated += utxo.Value.Coin
	}
	if accumulated < requiredCoins {
		return nil, 0, fmt.Errorf(
			"%w: have %d, need %d",
			ErrInsufficientTreasury,
			accumulated,
			requiredCoins,
		)
	}
	return selected, accumulated - requiredCoins, nil
}
