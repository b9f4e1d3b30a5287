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
	"errors"
	"fmt"
	"math/big"

	"github.com/blinklabs-io/plutigo/data"
)

// ErrMalformed indicates bytes that do not decode as Plutus data at all.
var ErrMalformed = errors.New("malformed datum")

// ErrWrongShape indicates well-formed Plutus data whose constructor
// alternative or field layout does not match the expected entity. Callers
// treat this as "foreign UTxO", not as a fault.
var ErrWrongShape = errors.New("unexpected datum shape")

// PolicyIDLength is the length in bytes of a minting policy id
// (a blake2b-224 script hash).
const PolicyIDLength = 28

// AssetClass identifies a token class as a minting policy id plus an
// asset name within that policy.
type AssetClass struct {
	PolicyID []byte
	Name     []byte
}

// Concat returns the on-chain representation of the asset class: the
// 28-byte policy id with the asset name appended.
func (a AssetClass) Concat() []byte {
	out := make([]byte, 0, len(a.PolicyID)+len(a.Name))
	out = append(out, a.PolicyID...)
	out = append(out, a.Name...)
	return out
}

// AssetClassFromBytes splits a concatenated policy id and asset name.
func AssetClassFromBytes(b []byte) (AssetClass, error) {
	if len(b) < PolicyIDLength {
		return AssetClass{}, fmt.Errorf(
			"%w: asset class shorter than policy id: %d bytes",
			ErrWrongShape,
			len(b),
		)
	}
	return AssetClass{
		PolicyID: b[:PolicyIDLength],
		Name:     b[PolicyIDLength:],
	}, nil
}

// DAODatum is the immutable configuration record locked at the DAO script
// address alongside the DAO identity NFT.
type DAODatum struct {
	Name                 []byte
	GovernanceToken      AssetClass
	Threshold            uint64
	MinProposalTime      uint64
	MaxProposalTime      uint64
	Quorum               uint64
	MinGovProposalCreate uint64
	WhitelistedProposals [][]byte
	WhitelistedActions   [][]byte
}

func (d *DAODatum) ToPlutusData() data.PlutusData {
	return data.NewConstr(0,
		data.NewByteString(d.Name),
		data.NewByteString(d.GovernanceToken.Concat()),
		newUint(d.Threshold),
		newUint(d.MinProposalTime),
		newUint(d.MaxProposalTime),
		newUint(d.Quorum),
		newUint(d.MinGovProposalCreate),
		newByteList(d.WhitelistedProposals),
		newByteList(d.WhitelistedActions),
	)
}

func (d *DAODatum) Encode() ([]byte, error) {
	return data.Encode(d.ToPlutusData())
}

// DecodeDAODatum decodes a DAO datum from CBOR bytes.
func DecodeDAODatum(b []byte) (*DAODatum, error) {
	pd, err := data.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	fields, err := constrFields(pd, 0, 9)
	if err != nil {
		return nil, err
	}
	govToken, err := asBytes(fields[1])
	if err != nil {
		return nil, err
	}
	govClass, err := AssetClassFromBytes(govToken)
	if err != nil {
		return nil, err
	}
	d := &DAODatum{GovernanceToken: govClass}
	if d.Name, err = asBytes(fields[0]); err != nil {
		return nil, err
	}
	if d.Threshold, err = asUint(fields[2]); err != nil {
		return nil, err
	}
	if d.MinProposalTime, err = asUint(fields[3]); err != nil {
		return nil, err
	}
	if d.MaxProposalTime, err = asUint(fields[4]); err != nil {
		return nil, err
	}
	if d.Quorum, err = asUint(fields[5]); err != nil {
		return nil, err
	}
	if d.MinGovProposalCreate, err = asUint(fields[6]); err != nil {
		return nil, err
	}
	if d.WhitelistedProposals, err = asByteList(fields[7]); err != nil {
		return nil, err
	}
	if d.WhitelistedActions, err = asByteList(fields[8]); err != nil {
		return nil, err
	}
	return d, nil
}

// StatusKind is the constructor alternative of a proposal status.
type StatusKind uint

const (
	StatusActive StatusKind = iota
	StatusFailedThreshold
	StatusFailedQuorum
	StatusPassed
)

func (k StatusKind) String() string {
	switch k {
	case StatusActive:
		return "Active"
	case StatusFailedThreshold:
		return "FailedThreshold"
	case StatusFailedQuorum:
		return "FailedQuorum"
	case StatusPassed:
		return "Passed"
	default:
		return fmt.Sprintf("StatusKind(%d)", uint(k))
	}
}

// ProposalStatus is the tagged status variant of a proposal. Option is
// only meaningful for StatusPassed. The transition away from Active is
// one-way and terminal.
type ProposalStatus struct {
	Kind   StatusKind
	Option uint64
}

func (s ProposalStatus) ToPlutusData() data.PlutusData {
	if s.Kind == StatusPassed {
		return data.NewConstr(uint(StatusPassed), newUint(s.Option))
	}
	return data.NewConstr(uint(s.Kind))
}

func (s ProposalStatus) Encode() ([]byte, error) {
	return data.Encode(s.ToPlutusData())
}

func statusFromData(pd data.PlutusData) (ProposalStatus, error) {
	constr, ok := pd.(*data.Constr)
	if !ok {
		return ProposalStatus{}, fmt.Errorf(
			"%w: status is not a constructor",
			ErrWrongShape,
		)
	}
	switch StatusKind(constr.Tag) {
	case StatusActive, StatusFailedThreshold, StatusFailedQuorum:
		if len(constr.Fields) != 0 {
			return ProposalStatus{}, fmt.Errorf(
				"%w: status alternative %d carries %d fields",
				ErrWrongShape,
				constr.Tag,
				len(constr.Fields),
			)
		}
		return ProposalStatus{Kind: StatusKind(constr.Tag)}, nil
	case StatusPassed:
		if len(constr.Fields) != 1 {
			return ProposalStatus{}, fmt.Errorf(
				"%w: Passed status carries %d fields",
				ErrWrongShape,
				len(constr.Fields),
			)
		}
		option, err := asUint(constr.Fields[0])
		if err != nil {
			return ProposalStatus{}, err
		}
		return ProposalStatus{Kind: StatusPassed, Option: option}, nil
	default:
		return ProposalStatus{}, fmt.Errorf(
			"%w: unknown status alternative %d",
			ErrWrongShape,
			constr.Tag,
		)
	}
}

// ProposalIdentifier is the back-reference a proposal carries to its
// creating policy and opaque proposal id.
type ProposalIdentifier struct {
	PolicyID []byte
	ID       []byte
}

func (p ProposalIdentifier) ToPlutusData() data.PlutusData {
	return data.NewConstr(0,
		data.NewByteString(p.PolicyID),
		data.NewByteString(p.ID),
	)
}

// Field indices of the proposal datum, used for minimal-diff rebuilds.
const (
	ProposalFieldName = iota
	ProposalFieldDescription
	ProposalFieldTally
	ProposalFieldEndTime
	ProposalFieldStatus
	ProposalFieldIdentifier

	proposalFieldCount
)

// ProposalDatum is the mutable proposal record. The tally and status
// fields are the only ones rewritten after creation, always via a
// minimal-diff rebuild so validators can verify the rest unchanged.
type ProposalDatum struct {
	Name        []byte
	Description []byte
	Tally       []uint64
	EndTime     uint64
	Status      ProposalStatus
	Identifier  ProposalIdentifier
}

func (d *ProposalDatum) ToPlutusData() data.PlutusData {
	tally := make([]data.PlutusData, 0, len(d.Tally))
	for _, weight := range d.Tally {
		tally = append(tally, newUint(weight))
	}
	return data.NewConstr(0,
		data.NewByteString(d.Name),
		data.NewByteString(d.Description),
		data.NewList(tally...),
		newUint(d.EndTime),
		d.Status.ToPlutusData(),
		d.Identifier.ToPlutusData(),
	)
}

func (d *ProposalDatum) Encode() ([]byte, error) {
	return data.Encode(d.ToPlutusData())
}

// DecodeProposalDatum decodes a proposal datum from CBOR bytes.
func DecodeProposalDatum(b []byte) (*ProposalDatum, error) {
	pd, err := data.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	fields, err := constrFields(pd, 0, proposalFieldCount)
	if err != nil {
		return nil, err
	}
	d := &ProposalDatum{}
	if d.Name, err = asBytes(fields[ProposalFieldName]); err != nil {
		return nil, err
	}
	if d.Description, err = asBytes(fields[ProposalFieldDescription]); err != nil {
		return nil, err
	}
	tallyItems, err := asList(fields[ProposalFieldTally])
	if err != nil {
		return nil, err
	}
	for _, item := range tallyItems {
		weight, err := asUint(item)
		if err != nil {
			return nil, err
		}
		d.Tally = append(d.Tally, weight)
	}
	if d.EndTime, err = asUint(fields[ProposalFieldEndTime]); err != nil {
		return nil, err
	}
	if d.Status, err = statusFromData(fields[ProposalFieldStatus]); err != nil {
		return nil, err
	}
	identFields, err := constrFields(fields[ProposalFieldIdentifier], 0, 2)
	if err != nil {
		return nil, err
	}
	if d.Identifier.PolicyID, err = asBytes(identFields[0]); err != nil {
		return nil, err
	}
	if d.Identifier.ID, err = asBytes(identFields[1]); err != nil {
		return nil, err
	}
	return d, nil
}

// EncodeTally encodes a tally as a standalone Plutus list, for splicing
// into an existing proposal datum.
func EncodeTally(tally []uint64) ([]byte, error) {
	items := make([]data.PlutusData, 0, len(tally))
	for _, weight := range tally {
		items = append(items, newUint(weight))
	}
	return data.Encode(data.NewList(items...))
}

// VoteMetadataValue is a CIP-68 metadata value, either a byte string or
// an integer.
type VoteMetadataValue struct {
	Bytes []byte
	Int   *big.Int
}

// VoteMetadataEntry is one ordered key/value pair of the CIP-68 metadata
// map.
type VoteMetadataEntry struct {
	Key   []byte
	Value VoteMetadataValue
}

// VoteDatumVersion is the CIP-68 metadata version this protocol uses.
const VoteDatumVersion = 1

// VoteDatum is the CIP-68 style datum attached to the script-held vote
// reference token.
type VoteDatum struct {
	Metadata []VoteMetadataEntry
	Version  uint64
	Extra    []byte
}

func (d *VoteDatum) ToPlutusData() data.PlutusData {
	pairs := make([][2]data.PlutusData, 0, len(d.Metadata))
	for _, entry := range d.Metadata {
		var value data.PlutusData
		if entry.Value.Int != nil {
			value = data.NewInteger(entry.Value.Int)
		} else {
			value = data.NewByteString(entry.Value.Bytes)
		}
		pairs = append(pairs, [2]data.PlutusData{
			data.NewByteString(entry.Key),
			value,
		})
	}
	return data.NewConstr(0,
		data.NewMap(pairs),
		newUint(d.Version),
		data.NewByteString(d.Extra),
	)
}

func (d *VoteDatum) Encode() ([]byte, error) {
	return data.Encode(d.ToPlutusData())
}

// DecodeVoteDatum decodes a CIP-68 vote datum from CBOR bytes.
func DecodeVoteDatum(b []byte) (*VoteDatum, error) {
	pd, err := data.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	fields, err := constrFields(pd, 0, 3)
	if err != nil {
		return nil, err
	}
	metaMap, ok := fields[0].(*data.Map)
	if !ok {
		return nil, fmt.Errorf(
			"%w: vote metadata is not a map",
			ErrWrongShape,
		)
	}
	d := &VoteDatum{}
	for _, pair := range metaMap.Pairs {
		key, err := asBytes(pair[0])
		if err != nil {
			return nil, err
		}
		entry := VoteMetadataEntry{Key: key}
		switch v := pair[1].(type) {
		case *data.ByteString:
			entry.Value.Bytes = v.Inner
		case *data.Integer:
			entry.Value.Int = v.Inner
		default:
			return nil, fmt.Errorf(
				"%w: vote metadata value is %T",
				ErrWrongShape,
				pair[1],
			)
		}
		d.Metadata = append(d.Metadata, entry)
	}
	if d.Version, err = asUint(fields[1]); err != nil {
		return nil, err
	}
	if d.Extra, err = asBytes(fields[2]); err != nil {
		return nil, err
	}
	return d, nil
}

// TargetAsset is one non-ADA token amount paid to an action target.
type TargetAsset struct {
	PolicyID []byte
	Name     []byte
	Amount   uint64
}

// ActionTarget is one payout destination of a treasury action.
type ActionTarget struct {
	Address []byte
	Coins   uint64
	Assets  []TargetAsset
}

func (t ActionTarget) ToPlutusData() data.PlutusData {
	assets := make([]data.PlutusData, 0, len(t.Assets))
	for _, asset := range t.Assets {
		assets = append(assets, data.NewConstr(0,
			data.NewByteString(asset.PolicyID),
			data.NewByteString(asset.Name),
			newUint(asset.Amount),
		))
	}
	return data.NewConstr(0,
		data.NewByteString(t.Address),
		newUint(t.Coins),
		data.NewList(assets...),
	)
}

// ActionDatum is a pending treasury instruction, consumable exactly once
// after its bound proposal has passed with the matching option.
type ActionDatum struct {
	ProposalPolicyID []byte
	ProposalID       []byte
	ActionIndex      uint64
	Name             []byte
	Description      []byte
	ActivationTime   uint64
	Option           uint64
	Targets          []ActionTarget
	TreasuryAddress  []byte
}

func (d *ActionDatum) ToPlutusData() data.PlutusData {
	targets := make([]data.PlutusData, 0, len(d.Targets))
	for _, target := range d.Targets {
		targets = append(targets, target.ToPlutusData())
	}
	return data.NewConstr(0,
		data.NewByteString(d.ProposalPolicyID),
		data.NewByteString(d.ProposalID),
		newUint(d.ActionIndex),
		data.NewByteString(d.Name),
		data.NewByteString(d.Description),
		newUint(d.ActivationTime),
		newUint(d.Option),
		data.NewList(targets...),
		data.NewByteString(d.TreasuryAddress),
	)
}

func (d *ActionDatum) Encode() ([]byte, error) {
	return data.Encode(d.ToPlutusData())
}

// DecodeActionDatum decodes an action datum from CBOR bytes.
func DecodeActionDatum(b []byte) (*ActionDatum, error) {
	pd, err := data.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	fields, err := constrFields(pd, 0, 9)
	if err != nil {
		return nil, err
	}
	d := &ActionDatum{}
	if d.ProposalPolicyID, err = asBytes(fields[0]); err != nil {
		return nil, err
	}
	if d.ProposalID, err = asBytes(fields[1]); err != nil {
		return nil, err
	}
	if d.ActionIndex, err = asUint(fields[2]); err != nil {
		return nil, err
	}
	if d.Name, err = asBytes(fields[3]); err != nil {
		return nil, err
	}
	if d.Description, err = asBytes(fields[4]); err != nil {
		return nil, err
	}
	if d.ActivationTime, err = asUint(fields[5]); err != nil {
		return nil, err
	}
	if d.Option, err = asUint(fields[6]); err != nil {
		return nil, err
	}
	targetItems, err := asList(fields[7])
	if err != nil {
		return nil, err
	}
	for _, item := range targetItems {
		target, err := targetFromData(item)
		if err != nil {
			return nil, err
		}
		d.Targets = append(d.Targets, target)
	}
	if d.TreasuryAddress, err = asBytes(fields[8]); err != nil {
		return nil, err
	}
	return d, nil
}

func targetFromData(pd data.PlutusData) (ActionTarget, error) {
	fields, err := constrFields(pd, 0, 3)
	if err != nil {
		return ActionTarget{}, err
	}
	target := ActionTarget{}
	if target.Address, err = asBytes(fields[0]); err != nil {
		return ActionTarget{}, err
	}
	if target.Coins, err = asUint(fields[1]); err != nil {
		return ActionTarget{}, err
	}
	assetItems, err := asList(fields[2])
	if err != nil {
		return ActionTarget{}, err
	}
	for _, item := range assetItems {
		assetFields, err := constrFields(item, 0, 3)
		if err != nil {
			return ActionTarget{}, err
		}
		asset := TargetAsset{}
		if asset.PolicyID, err = asBytes(assetFields[0]); err != nil {
			return ActionTarget{}, err
		}
		if asset.Name, err = asBytes(assetFields[1]); err != nil {
			return ActionTarget{}, err
		}
		if asset.Amount, err = asUint(assetFields[2]); err != nil {
			return ActionTarget{}, err
		}
		target.Assets = append(target.Assets, asset)
	}
	return target, nil
}

func newUint(v uint64) data.PlutusData {
	return data.NewInteger(new(big.Int).SetUint64(v))
}

func newByteList(items [][]byte) data.PlutusData {
	out := make([]data.PlutusData, 0, len(items))
	for _, item := range items {
		out = append(out, data.NewByteString(item))
	}
	return data.NewList(out...)
}

func constrFields(
	pd data.PlutusData,
	tag uint,
	count int,
) ([]data.PlutusData, error) {
	constr, ok := pd.(*data.Constr)
	if !ok {
		return nil, fmt.Errorf(
			"%w: expected constructor, got %T",
			ErrWrongShape,
			pd,
		)
	}
	if constr.Tag != tag {
		return nil, fmt.Errorf(
			"%w: expected constructor alternative %d, got %d",
			ErrWrongShape,
			tag,
			constr.Tag,
		)
	}
	if len(constr.Fields) != count {
		return nil, fmt.Errorf(
			"%w: expected %d fields, got %d",
			ErrWrongShape,
			count,
			len(constr.Fields),
		)
	}
	return constr.Fields, nil
}

func asBytes(pd data.PlutusData) ([]byte, error) {
	bs, ok := pd.(*data.ByteString)
	if !ok {
		return nil, fmt.Errorf(
			"%w: expected byte string, got %T",
			ErrWrongShape,
			pd,
		)
	}
	return bs.Inner, nil
}

func asUint(pd data.PlutusData) (uint64, error) {
	num, ok := pd.(*data.Integer)
	if !ok {
		return 0, fmt.Errorf(
			"%w: expected integer, got %T",
			ErrWrongShape,
			pd,
		)
	}
	if !num.Inner.IsUint64() {
		return 0, fmt.Errorf(
			"%w: integer out of range: %s",
			ErrWrongShape,
			num.Inner.String(),
		)
	}
	return num.Inner.Uint64(), nil
}

func asList(pd data.PlutusData) ([]data.PlutusData, error) {
	list, ok := pd.(*data.List)
	if !ok {
		return nil, fmt.Errorf(
			"%w: expected list, got %T",
			ErrWrongShape,
			pd,
		)
	}
	return list.Items, nil
}

func asByteList(pd data.PlutusData) ([][]byte, error) {
	items, err := asList(pd)
	if err != nil {
		return nil, err
	}
	var out [][]byte
	for _, item := range items {
		b, err := asBytes(item)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
