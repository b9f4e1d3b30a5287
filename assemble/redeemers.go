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
	"math/big"

	"github.com/blinklabs-io/plutigo/data"
)

// Redeemer constructor alternatives, fixed by the on-chain validators.
// Minting policies use alternative 0 for mints and 1 for burns; spending
// validators number their branches per script.
func constrRedeemer(alt uint, fields ...data.PlutusData) []byte {
	enc, err := data.Encode(data.NewConstr(alt, fields...))
	if err != nil {
		// constructors over byte strings and integers always encode
		panic(err)
	}
	return enc
}

func redeemerUint(v uint64) data.PlutusData {
	return data.NewInteger(new(big.Int).SetUint64(v))
}

func mintRedeemer() []byte {
	return constrRedeemer(0)
}

func burnRedeemer() []byte {
	return constrRedeemer(1)
}

// castVoteRedeemer selects the proposal spend branch that adds votePower
// receipts for an option.
func castVoteRedeemer(option uint64, votePower uint64) []byte {
	return constrRedeemer(0,
		redeemerUint(option),
		redeemerUint(votePower),
	)
}

// receiptMintRedeemer selects the proposal policy branch that mints vote
// receipts for an option.
func receiptMintRedeemer(option uint64) []byte {
	return constrRedeemer(1, redeemerUint(option))
}

// evaluateRedeemer selects the proposal spend branch that records the
// terminal status.
func evaluateRedeemer() []byte {
	return constrRedeemer(1)
}

// executeRedeemer selects the action and treasury spend branches of a
// treasury payout.
func executeRedeemer() []byte {
	return constrRedeemer(0)
}

// unregisterSpendRedeemer selects the vote spend branch that releases
// locked governance tokens.
func unregisterSpendRedeemer() []byte {
	return constrRedeemer(1)
}
