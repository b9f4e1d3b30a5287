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
	"io"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	cardano "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
	query "github.com/utxorpc/go-codegen/utxorpc/v1alpha/query"
	"github.com/utxorpc/go-codegen/utxorpc/v1alpha/query/queryconnect"
)

// UtxorpcProvider is a Provider backed by a UTxO RPC QueryService
// endpoint.
type UtxorpcProvider struct {
	client queryconnect.QueryServiceClient
	logger *slog.Logger
}

// NewUtxorpcProvider creates a provider talking to the given UTxO RPC
// base URL.
func NewUtxorpcProvider(
	baseURL string,
	httpClient *http.Client,
	logger *slog.Logger,
) *UtxorpcProvider {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &UtxorpcProvider{
		client: queryconnect.NewQueryServiceClient(
			httpClient,
			baseURL,
		),
		logger: logger.With("component", "chain"),
	}
}

// UTxOsByAddress queries the unspent outputs at an address via
// SearchUtxos with an exact-address pattern.
func (p *UtxorpcProvider) UTxOsByAddress(
	ctx context.Context,
	addr lcommon.Address,
) ([]UTxO, error) {
	addrBytes, err := addr.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode address: %w", err)
	}
	req := connect.NewRequest(&query.SearchUtxosRequest{
		Predicate: &query.UtxoPredicate{
			Match: &query.AnyUtxoPattern{
				UtxoPattern: &query.AnyUtxoPattern_Cardano{
					Cardano: &cardano.TxOutputPattern{
						Address: &cardano.AddressPattern{
							ExactAddress: addrBytes,
						},
					},
				},
			},
		},
	})
	resp, err := p.client.SearchUtxos(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search utxos: %w", err)
	}
	items := resp.Msg.GetItems()
	utxos := make([]UTxO, 0, len(items))
	for _, item := range items {
		utxo, err := utxoFromItem(item)
		if err != nil {
			return nil, err
		}
		utxos = append(utxos, utxo)
	}
	p.logger.Debug(
		"queried unspent outputs",
		"address", addr.String(),
		"count", len(utxos),
	)
	return utxos, nil
}

// ResolveUTxO resolves one output by reference via ReadUtxos.
func (p *UtxorpcProvider) ResolveUTxO(
	ctx context.Context,
	txHash []byte,
	index uint32,
) (*UTxO, error) {
	req := connect.NewRequest(&query.ReadUtxosRequest{
		Keys: []*query.TxoRef{
			{
				Hash:  txHash,
				Index: index,
			},
		},
	})
	resp, err := p.client.ReadUtxos(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("read utxos: %w", err)
	}
	items := resp.Msg.GetItems()
	if len(items) == 0 {
		return nil, ErrUTxONotFound
	}
	utxo, err := utxoFromItem(items[0])
	if err != nil {
		return nil, err
	}
	return &utxo, nil
}

func utxoFromItem(item *query.AnyUtxoData) (UTxO, error) {
	txOut := item.GetCardano()
	if txOut == nil {
		return UTxO{}, fmt.Errorf("utxo item has no cardano output")
	}
	var addr lcommon.Address
	if err := addr.UnmarshalCBOR(txOut.GetAddress()); err != nil {
		return UTxO{}, fmt.Errorf("decode output address: %w", err)
	}
	utxo := UTxO{
		TxHash:  item.GetTxoRef().GetHash(),
		Index:   item.GetTxoRef().GetIndex(),
		Address: addr,
		Value: Value{
			Coin: txOut.GetCoin(),
		},
		DatumCbor: txOut.GetDatum().GetOriginalCbor(),
	}
	for _, multiasset := range txOut.GetAssets() {
		for _, asset := range multiasset.GetAssets() {
			utxo.Value.Assets = append(utxo.Value.Assets, Asset{
				PolicyID: multiasset.GetPolicyId(),
				Name:     asset.GetName(),
				Quantity: asset.GetOutputCoin(),
			})
		}
	}
	return utxo, nil
}
