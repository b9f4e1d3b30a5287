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

package plutus

import (
	"math/big"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/plutigo/data"
)

// hashConstr computes blake2b-256 over the CBOR encoding of a
// constructor-0 wrapping the given fields. This is the hash preimage shape
// the on-chain validators use for every derived identifier, so field order
// and types must match the validator exactly.
func hashConstr(fields ...data.PlutusData) lcommon.Blake2b256 {
	enc, err := data.Encode(data.NewConstr(0, fields...))
	if err != nil {
		// constructors over byte strings and integers always encode
		panic(err)
	}
	return lcommon.Blake2b256Hash(enc)
}

// DAOKey derives the DAO identity asset name from the seed UTxO consumed
// by the DAO creation transaction.
func DAOKey(seedTxHash []byte, seedIndex uint64) lcommon.Blake2b256 {
	return hashConstr(
		data.NewByteString(seedTxHash),
		data.NewInteger(new(big.Int).SetUint64(seedIndex)),
	)
}

// VoteRegistrationID derives a vote registration id from the voter's seed
// UTxO. Only the first 28 bytes of the digest are kept so the id fits an
// asset name alongside its two-byte protocol prefix.
func VoteRegistrationID(seedTxHash []byte, seedIndex uint64) []byte {
	digest := hashConstr(
		data.NewByteString(seedTxHash),
		data.NewInteger(new(big.Int).SetUint64(seedIndex)),
	)
	id := make([]byte, RegistrationIDLength)
	copy(id, digest.Bytes())
	return id
}

// ProposalID derives the proposal identity asset name from the seed UTxO
// consumed by the proposal creation transaction.
func ProposalID(seedTxHash []byte, seedIndex uint64) lcommon.Blake2b256 {
	return hashConstr(
		data.NewByteString(seedTxHash),
		data.NewInteger(new(big.Int).SetUint64(seedIndex)),
	)
}

// ActionID derives the identity asset name of a treasury action from the
// proposal that created it and the action's position within that proposal.
func ActionID(
	proposalPolicyID []byte,
	proposalAssetName []byte,
	actionIndex uint64,
) lcommon.Blake2b256 {
	return hashConstr(
		data.NewByteString(proposalPolicyID),
		data.NewByteString(proposalAssetName),
		data.NewInteger(new(big.Int).SetUint64(actionIndex)),
	)
}

// ReceiptAssetName derives the asset name of the fungible vote receipt for
// one option of a proposal. Receipts for different options of the same
// proposal get distinct names.
func ReceiptAssetName(
	proposalAssetName []byte,
	option uint64,
) lcommon.Blake2b256 {
	return hashConstr(
		data.NewByteString(proposalAssetName),
		data.NewInteger(new(big.Int).SetUint64(option)),
	)
}
