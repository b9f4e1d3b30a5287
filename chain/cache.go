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
	"sync"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
)

// CachingProvider memoizes address lookups for the lifetime of a single
// operation. The cache is advisory only: the ledger can change between a
// lookup and transaction submission, so a CachingProvider must be
// created per operation and discarded afterwards, never shared or
// treated as authoritative.
type CachingProvider struct {
	inner     Provider
	mu        sync.Mutex
	byAddress map[string][]UTxO
}

// NewCachingProvider wraps a provider with a per-operation lookup memo.
func NewCachingProvider(inner Provider) *CachingProvider {
	return &CachingProvider{
		inner:     inner,
		byAddress: make(map[string][]UTxO),
	}
}

// UTxOsByAddress returns the memoized result for the address, querying
// the inner provider on first use.
func (c *CachingProvider) UTxOsByAddress(
	ctx context.Context,
	addr lcommon.Address,
) ([]UTxO, error) {
	key := addr.String()
	c.mu.Lock()
	cached, ok := c.byAddress[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}
	utxos, err := c.inner.UTxOsByAddress(ctx, addr)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.byAddress[key] = utxos
	c.mu.Unlock()
	return utxos, nil
}

// ResolveUTxO passes through to the inner provider; by-reference
// resolution is not memoized.
func (c *CachingProvider) ResolveUTxO(
	ctx context.Context,
	txHash []byte,
	index uint32,
) (*UTxO, error) {
	return c.inner.ResolveUTxO(ctx, txHash, index)
}
