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
	"errors"
	"testing"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
)

type fakeProvider struct {
	utxos     map[string][]UTxO
	err       error
	addrCalls int
}

func (f *fakeProvider) UTxOsByAddress(
	_ context.Context,
	addr lcommon.Address,
) ([]UTxO, error) {
	f.addrCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.utxos[addr.String()], nil
}

func (f *fakeProvider) ResolveUTxO(
	_ context.Context,
	txHash []byte,
	index uint32,
) (*UTxO, error) {
	return nil, ErrUTxONotFound
}

func testAddress(t *testing.T, fill byte) lcommon.Address {
	t.Helper()
	keyHash := make([]byte, 28)
	for i := range keyHash {
		keyHash[i] = fill
	}
	addr, err := lcommon.NewAddressFromParts(
		lcommon.AddressTypeKeyNone,
		0,
		keyHash,
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error building address: %v", err)
	}
	return addr
}

func fillBytes(n int, fill byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return b
}

func TestFindAssetUTxO(t *testing.T) {
	addr := testAddress(t, 0x01)
	policy := fillBytes(28, 0xaa)
	name := []byte("dao key")
	provider := &fakeProvider{
		utxos: map[string][]UTxO{
			addr.String(): {
				{
					TxHash: fillBytes(32, 0x01),
					Index:  0,
					Value:  Value{Coin: 2000000},
				},
				{
					TxHash: fillBytes(32, 0x02),
					Index:  1,
					Value: Value{
						Coin: 2000000,
						Assets: []Asset{
							{
								PolicyID: policy,
								Name:     name,
								Quantity: 1,
							},
						},
					},
				},
			},
		},
	}

	utxo, err := FindAssetUTxO(
		context.Background(),
		provider,
		addr,
		policy,
		name,
		1,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if utxo.Index != 1 {
		t.Fatalf("expected utxo index 1, got %d", utxo.Index)
	}
}

func TestFindAssetUTxONotFound(t *testing.T) {
	addr := testAddress(t, 0x02)
	provider := &fakeProvider{utxos: map[string][]UTxO{}}
	_, err := FindAssetUTxO(
		context.Background(),
		provider,
		addr,
		fillBytes(28, 0xbb),
		[]byte("missing"),
		1,
	)
	if !errors.Is(err, ErrUTxONotFound) {
		t.Fatalf("expected ErrUTxONotFound, got %v", err)
	}
}

func TestFindAssetUTxOQuantityMismatch(t *testing.T) {
	addr := testAddress(t, 0x03)
	policy := fillBytes(28, 0xcc)
	name := []byte("receipt")
	provider := &fakeProvider{
		utxos: map[string][]UTxO{
			addr.String(): {
				{
					TxHash: fillBytes(32, 0x03),
					Value: Value{
						Coin: 2000000,
						Assets: []Asset{
							{
								PolicyID: policy,
								Name:     name,
								Quantity: 5,
							},
						},
					},
				},
			},
		},
	}
	// Looking for exactly 1, the output holds 5
	_, err := FindAssetUTxO(
		context.Background(),
		provider,
		addr,
		policy,
		name,
		1,
	)
	if !errors.Is(err, ErrUTxONotFound) {
		t.Fatalf("expected ErrUTxONotFound, got %v", err)
	}
}

func TestCachingProviderMemoizes(t *testing.T) {
	addr := testAddress(t, 0x04)
	provider := &fakeProvider{
		utxos: map[string][]UTxO{
			addr.String(): {
				{TxHash: fillBytes(32, 0x04), Value: Value{Coin: 1}},
			},
		},
	}
	cached := NewCachingProvider(provider)
	for range 3 {
		utxos, err := cached.UTxOsByAddress(context.Background(), addr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(utxos) != 1 {
			t.Fatalf("expected 1 utxo, got %d", len(utxos))
		}
	}
	if provider.addrCalls != 1 {
		t.Fatalf(
			"expected 1 provider call, got %d",
			provider.addrCalls,
		)
	}
}

func TestCachingProviderDoesNotCacheErrors(t *testing.T) {
	addr := testAddress(t, 0x05)
	provider := &fakeProvider{err: errors.New("boom")}
	cached := NewCachingProvider(provider)
	if _, err := cached.UTxOsByAddress(context.Background(), addr); err == nil {
		t.Fatalf("expected error")
	}
	provider.err = nil
	provider.utxos = map[string][]UTxO{}
	if _, err := cached.UTxOsByAddress(context.Background(), addr); err != nil {
		t.Fatalf("unexpected error after provider recovery: %v", err)
	}
	if provider.addrCalls != 2 {
		t.Fatalf("expected 2 provider calls, got %d", provider.addrCalls)
	}
}

func TestValueAssetQuantity(t *testing.T) {
	policy := fillBytes(28, 0xdd)
	value := Value{
		Coin: 5,
		Assets: []Asset{
			{PolicyID: policy, Name: []byte("a"), Quantity: 7},
		},
	}
	if got := value.AssetQuantity(policy, []byte("a")); got != 7 {
		t.Fatalf("expected quantity 7, got %d", got)
	}
	if got := value.AssetQuantity(policy, []byte("b")); got != 0 {
		t.Fatalf("expected quantity 0, got %d", got)
	}
}
