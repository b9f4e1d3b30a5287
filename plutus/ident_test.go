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
	"bytes"
	"encoding/hex"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("unexpected error decoding hex: %v", err)
	}
	return b
}

func TestDAOKeyDeterministic(t *testing.T) {
	seedTx := mustHex(
		t,
		"5c7c1d9ae2a4e96d4fd0b2dd21b323ed4c2d2b21f1e9e9df1f3dd44c8b9a2a10",
	)
	key1 := DAOKey(seedTx, 0)
	key2 := DAOKey(seedTx, 0)
	if key1 != key2 {
		t.Fatalf("derivation not deterministic: %s != %s", key1, key2)
	}
}

func TestDAOKeySeedSensitivity(t *testing.T) {
	seedTx := mustHex(
		t,
		"5c7c1d9ae2a4e96d4fd0b2dd21b323ed4c2d2b21f1e9e9df1f3dd44c8b9a2a10",
	)
	otherTx := mustHex(
		t,
		"aa7c1d9ae2a4e96d4fd0b2dd21b323ed4c2d2b21f1e9e9df1f3dd44c8b9a2a10",
	)
	base := DAOKey(seedTx, 0)
	if DAOKey(otherTx, 0) == base {
		t.Fatalf("different seed tx produced identical key")
	}
	if DAOKey(seedTx, 1) == base {
		t.Fatalf("different seed index produced identical key")
	}
}

func TestVoteRegistrationIDLength(t *testing.T) {
	seedTx := mustHex(
		t,
		"5c7c1d9ae2a4e96d4fd0b2dd21b323ed4c2d2b21f1e9e9df1f3dd44c8b9a2a10",
	)
	id := VoteRegistrationID(seedTx, 3)
	if len(id) != RegistrationIDLength {
		t.Fatalf(
			"expected %d byte id, got %d",
			RegistrationIDLength,
			len(id),
		)
	}
	// The id is the truncated DAO key digest over the same preimage
	digest := DAOKey(seedTx, 3)
	if !bytes.Equal(id, digest.Bytes()[:RegistrationIDLength]) {
		t.Fatalf("id does not match truncated digest")
	}
}

func TestActionIDDistinctPerIndex(t *testing.T) {
	policy := mustHex(
		t,
		"b1a3c6d2e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7",
	)
	name := []byte("proposal-1")
	if ActionID(policy, name, 0) == ActionID(policy, name, 1) {
		t.Fatalf("different action indexes produced identical id")
	}
}

func TestReceiptAssetNameStability(t *testing.T) {
	proposalName := mustHex(t, "ab12cd34")
	first := ReceiptAssetName(proposalName, 1)
	second := ReceiptAssetName(proposalName, 1)
	if first != second {
		t.Fatalf(
			"receipt name not stable across invocations: %s != %s",
			first,
			second,
		)
	}
	if first == ReceiptAssetName(proposalName, 0) {
		t.Fatalf("receipt names for options 0 and 1 collide")
	}
}
