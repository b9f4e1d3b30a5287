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
	"math/big"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/plutus"
)

// Evaluate maps a closed proposal's tally and the DAO governance
// parameters to its terminal status. Quorum is checked strictly before
// threshold. On an exact tie the lowest-index option wins; the protocol
// does not detect or report ties.
//
// Only valid once the proposal has ended and is still Active; callers
// enforce that timing.
func Evaluate(
	tally []uint64,
	quorum uint64,
	thresholdPercent uint64,
) plutus.ProposalStatus {
	// Totals and products can exceed uint64 for large vote weights, so
	// the arithmetic runs in big.Int
	total := new(big.Int)
	for _, weight := range tally {
		total.Add(total, new(big.Int).SetUint64(weight))
	}
	if total.Cmp(new(big.Int).SetUint64(quorum)) < 0 {
		return plutus.ProposalStatus{Kind: plutus.StatusFailedQuorum}
	}

	var winner int
	var maxVotes uint64
	for i, weight := range tally {
		if weight > maxVotes {
			maxVotes = weight
			winner = i
		}
	}

	lhs := new(big.Int).Mul(
		big.NewInt(100),
		new(big.Int).SetUint64(maxVotes),
	)
	rhs := new(big.Int).Mul(
		new(big.Int).SetUint64(thresholdPercent),
		total,
	)
	// total == 0 can only reach here with quorum == 0; nothing won
	if total.Sign() == 0 || lhs.Cmp(rhs) < 0 {
		return plutus.ProposalStatus{Kind: plutus.StatusFailedThreshold}
	}
	return plutus.ProposalStatus{
		Kind:   plutus.StatusPassed,
		Option: uint64(winner), // #nosec G115
	}
}
