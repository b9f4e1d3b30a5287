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

import "bytes"

// CIP-67 asset name label prefixes. Each is the 4-byte encoding of the
// numeric label (bracket nibbles plus CRC-8 checksum) as registered in the
// CIP-67 standard.
var (
	// LabelReference is CIP-67 label 100, used for CIP-68 reference tokens.
	LabelReference = []byte{0x00, 0x06, 0x43, 0xb0}
	// LabelNFT is CIP-67 label 222, used for user-facing NFTs.
	LabelNFT = []byte{0x00, 0x0d, 0xe1, 0x40}
	// LabelFungible is CIP-67 label 333, used for fungible tokens.
	LabelFungible = []byte{0x00, 0x14, 0xdf, 0x10}
)

// Protocol-specific prefixes distinguishing the two halves of a vote
// registration pair. The reference token stays at the vote script with the
// locked governance tokens; the user token proves registration from the
// voter's wallet.
var (
	VoteReferencePrefix = []byte{0x00, 0x00}
	VoteUserPrefix      = []byte{0x00, 0x01}
)

// RegistrationIDLength is the length in bytes of a vote registration id
// (a truncated blake2b-256 digest).
const RegistrationIDLength = 28

// VoteReferenceAssetName builds the asset name of the script-held
// reference token for a registration id.
func VoteReferenceAssetName(id []byte) []byte {
	name := make([]byte, 0, len(VoteReferencePrefix)+len(id))
	name = append(name, VoteReferencePrefix...)
	name = append(name, id...)
	return name
}

// VoteUserAssetName builds the asset name of the wallet-held user token
// for a registration id.
func VoteUserAssetName(id []byte) []byte {
	name := make([]byte, 0, len(VoteUserPrefix)+len(id))
	name = append(name, VoteUserPrefix...)
	name = append(name, id...)
	return name
}

// RegistrationIDFromAssetName extracts the registration id from a vote
// reference or user asset name. Returns nil if the name does not carry
// either protocol prefix or has the wrong length.
func RegistrationIDFromAssetName(name []byte) []byte {
	if len(name) != 2+RegistrationIDLength {
		return nil
	}
	if !bytes.HasPrefix(name, VoteReferencePrefix) &&
		!bytes.HasPrefix(name, VoteUserPrefix) {
		return nil
	}
	return name[2:]
}

// IsVoteReferenceAssetName reports whether the asset name is a vote
// reference token name.
func IsVoteReferenceAssetName(name []byte) bool {
	return len(name) == 2+RegistrationIDLength &&
		bytes.HasPrefix(name, VoteReferencePrefix)
}

// IsVoteUserAssetName reports whether the asset name is a vote user token
// name.
func IsVoteUserAssetName(name []byte) bool {
	return len(name) == 2+RegistrationIDLength &&
		bytes.HasPrefix(name, VoteUserPrefix)
}
