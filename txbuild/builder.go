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

package txbuild

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Builder is the external transaction-building collaborator. It accepts
// a complete input/output/mint specification and returns serialized
// unsigned transaction bytes, taking care of fee balancing and
// minimum-ADA adjustment. Signing stays with the caller's wallet.
type Builder interface {
	Build(ctx context.Context, plan *Plan) ([]byte, error)
}

// HTTPBuilder posts plans to a transaction build service over JSON.
type HTTPBuilder struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPBuilder creates a builder client for the given build service
// endpoint.
func NewHTTPBuilder(
	endpoint string,
	httpClient *http.Client,
	logger *slog.Logger,
) *HTTPBuilder {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPBuilder{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger.With("component", "txbuild"),
	}
}

type buildResponse struct {
	UnsignedTx string `json:"unsigned_tx"`
	Error      string `json:"error,omitempty"`
}

// Build submits the plan and returns the unsigned transaction CBOR.
func (b *HTTPBuilder) Build(
	ctx context.Context,
	plan *Plan,
) ([]byte, error) {
	body, err := json.Marshal(planToWire(plan))
	if err != nil {
		return nil, fmt.Errorf("encode build request: %w", err)
	}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		b.endpoint,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("create build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("build service: %w", err)
	}
	defer resp.Body.Close()

	var buildResp buildResponse
	if err := json.NewDecoder(resp.Body).Decode(&buildResp); err != nil {
		return nil, fmt.Errorf("decode build response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if buildResp.Error != "" {
			return nil, fmt.Errorf(
				"build service returned %d: %s",
				resp.StatusCode,
				buildResp.Error,
			)
		}
		return nil, fmt.Errorf(
			"build service returned %d",
			resp.StatusCode,
		)
	}
	txBytes, err := hex.DecodeString(buildResp.UnsignedTx)
	if err != nil {
		return nil, fmt.Errorf("decode unsigned tx hex: %w", err)
	}
	b.logger.Debug(
		"built unsigned transaction",
		"size", len(txBytes),
	)
	return txBytes, nil
}

// Wire representation of a plan. Byte fields travel as hex strings.
type wirePlan struct {
	Inputs          []wireInput  `json:"inputs"`
	ReferenceInputs []wireRef    `json:"reference_inputs,omitempty"`
	Mints           []wireMint   `json:"mints,omitempty"`
	Outputs         []wireOutput `json:"outputs"`
	RequiredSigners []string     `json:"required_signers,omitempty"`
	Collateral      []wireRef    `json:"collateral,omitempty"`
	ChangeAddress   string       `json:"change_address,omitempty"`
	ValidFrom       *uint64      `json:"valid_from,omitempty"`
	ValidTo         *uint64      `json:"valid_to,omitempty"`
}

type wireRef struct {
	TxHash string `json:"tx_hash"`
	Index  uint32 `json:"index"`
}

type wireInput struct {
	TxHash   string `json:"tx_hash"`
	Index    uint32 `json:"index"`
	Redeemer string `json:"redeemer,omitempty"`
}

type wireMintAsset struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type wireMint struct {
	PolicyID string          `json:"policy_id"`
	Assets   []wireMintAsset `json:"assets"`
	Redeemer string          `json:"redeemer,omitempty"`
}

type wireAsset struct {
	PolicyID string `json:"policy_id"`
	Name     string `json:"name"`
	Quantity uint64 `json:"quantity"`
}

type wireOutput struct {
	Address     string      `json:"address"`
	Coin        uint64      `json:"coin"`
	Assets      []wireAsset `json:"assets,omitempty"`
	InlineDatum string      `json:"inline_datum,omitempty"`
}

func planToWire(plan *Plan) wirePlan {
	wire := wirePlan{
		ChangeAddress: plan.ChangeAddress,
		ValidFrom:     plan.ValidFrom,
		ValidTo:       plan.ValidTo,
	}
	for _, input := range plan.Inputs {
		wire.Inputs = append(wire.Inputs, wireInput{
			TxHash:   hex.EncodeToString(input.TxHash),
			Index:    input.Index,
			Redeemer: hex.EncodeToString(input.Redeemer),
		})
	}
	for _, ref := range plan.ReferenceInputs {
		wire.ReferenceInputs = append(wire.ReferenceInputs, wireRef{
			TxHash: hex.EncodeToString(ref.TxHash),
			Index:  ref.Index,
		})
	}
	for _, mint := range plan.Mints {
		wireMintEntry := wireMint{
			PolicyID: hex.EncodeToString(mint.PolicyID),
			Redeemer: hex.EncodeToString(mint.Redeemer),
		}
		for _, asset := range mint.Assets {
			wireMintEntry.Assets = append(
				wireMintEntry.Assets,
				wireMintAsset{
					Name:     hex.EncodeToString(asset.Name),
					Quantity: asset.Quantity,
				},
			)
		}
		wire.Mints = append(wire.Mints, wireMintEntry)
	}
	for _, output := range plan.Outputs {
		wireOutputEntry := wireOutput{
			Address:     output.Address,
			Coin:        output.Coin,
			InlineDatum: hex.EncodeToString(output.InlineDatum),
		}
		for _, asset := range output.Assets {
			wireOutputEntry.Assets = append(
				wireOutputEntry.Assets,
				wireAsset{
					PolicyID: hex.EncodeToString(asset.PolicyID),
					Name:     hex.EncodeToString(asset.Name),
					Quantity: asset.Quantity,
				},
			)
		}
		wire.Outputs = append(wire.Outputs, wireOutputEntry)
	}
	for _, signer := range plan.RequiredSigners {
		wire.RequiredSigners = append(
			wire.RequiredSigners,
			hex.EncodeToString(signer),
		)
	}
	for _, ref := range plan.Collateral {
		wire.Collateral = append(wire.Collateral, wireRef{
			TxHash: hex.EncodeToString(ref.TxHash),
			Index:  ref.Index,
		})
	}
	return wire
}
