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
	"bytes"
	"testing"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/plutus"
)

func createDAORequest(wallet string) CreateDAORequest {
	return CreateDAORequest{
		SeedTxHash:    fillBytes(0xee, 32),
		SeedIndex:     0,
		Datum:         *testDAODatum(),
		WalletAddress: wallet,
	}
}

func TestCreateDAO(t *testing.T) {
	env := newTestEnv(t)
	env.addWalletUTxO(0xee, 0, 5_000_000)

	resp, err := env.assembler.CreateDAO(
		t.Context(),
		createDAORequest(env.wallet.String()),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectedKey := plutus.DAOKey(fillBytes(0xee, 32), 0).Bytes()
	if !bytes.Equal(resp.DAOKey, expectedKey) {
		t.Fatalf("unexpected dao key %x", resp.DAOKey)
	}

	plan := env.builder.lastPlan
	if qty := plan.MintQuantity(testDAOPolicy, expectedKey); qty != 1 {
		t.Fatalf("dao identity NFT not minted, got %d", qty)
	}
	daoOut := findOutput(t, plan, env.scripts.DAOAddress.String())
	if qty := assetQuantity(daoOut.Assets, testDAOPolicy, expectedKey); qty != 1 {
		t.Fatalf("dao identity NFT not locked at script")
	}
	decoded, err := plutus.DecodeDAODatum(daoOut.InlineDatum)
	if err != nil {
		t.Fatalf("dao datum does not decode: %v", err)
	}
	if !bytes.Equal(decoded.Name, []byte("TestDAO")) {
		t.Fatalf("unexpected dao name %q", decoded.Name)
	}
	if len(plan.Inputs) != 1 {
		t.Fatalf("expected only the seed input, got %d", len(plan.Inputs))
	}
}

func TestCreateDAOValidation(t *testing.T) {
	testDefs := []struct {
		name   string
		mutate func(*CreateDAORequest)
	}{
		{
			name: "short seed hash",
			mutate: func(req *CreateDAORequest) {
				req.SeedTxHash = fillBytes(0xee, 16)
			},
		},
		{
			name: "threshold above 100",
			mutate: func(req *CreateDAORequest) {
				req.Datum.Threshold = 150
			},
		},
		{
			name: "inverted proposal time bounds",
			mutate: func(req *CreateDAORequest) {
				req.Datum.MinProposalTime = 10
				req.Datum.MaxProposalTime = 5
			},
		},
		{
			name: "bad governance policy length",
			mutate: func(req *CreateDAORequest) {
				req.Datum.GovernanceToken.PolicyID = fillBytes(0x11, 10)
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := createDAORequest(env.wallet.String())
			testDef.mutate(&req)
			_, err := env.assembler.CreateDAO(t.Context(), req)
			requireOpErr(t, err, KindValidation, CodeInvalidField)
		})
	}
}

func createProposalRequest(wallet string) CreateProposalRequest {
	return CreateProposalRequest{
		DAOKey:           testDAOKey,
		ProposalPolicyID: testProposalPolicy,
		ActionPolicyID:   testActionPolicy,
		SeedTxHash:       fillBytes(0xee, 32),
		SeedIndex:        0,
		Name:             []byte("Fund the swimming pool"),
		Description:      []byte("Should we?"),
		NumOptions:       2,
		EndTime:          testNow + 86_400_000,
		WalletAddress:    wallet,
	}
}

func TestCreateProposal(t *testing.T) {
	env := newTestEnv(t)
	env.addDAO(t, testDAODatum())
	// seed holds governance, covering the creation threshold by itself
	env.addWalletUTxO(0xee, 0, 5_000_000,
		chainAssetFor(testGovPolicy, testGovName, 25),
	)
	req := createProposalRequest(env.wallet.String())
	req.Actions = []ActionSpec{
		{
			Name:           []byte("Pay the builder"),
			ActivationTime: testNow + 90_000_000,
			Option:         1,
			Targets: []plutus.ActionTarget{
				{Address: fillBytes(0xe1, 29), Coins: 40_000_000},
			},
		},
	}

	resp, err := env.assembler.CreateProposal(t.Context(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectedID := plutus.ProposalID(fillBytes(0xee, 32), 0).Bytes()
	if !bytes.Equal(resp.ProposalID, expectedID) {
		t.Fatalf("unexpected proposal id %x", resp.ProposalID)
	}
	if len(resp.ActionIDs) != 1 {
		t.Fatalf("expected 1 action id, got %d", len(resp.ActionIDs))
	}
	expectedActionID := plutus.ActionID(
		testProposalPolicy,
		expectedID,
		0,
	).Bytes()
	if !bytes.Equal(resp.ActionIDs[0], expectedActionID) {
		t.Fatalf("unexpected action id %x", resp.ActionIDs[0])
	}

	plan := env.builder.lastPlan
	if qty := plan.MintQuantity(testProposalPolicy, expectedID); qty != 1 {
		t.Fatalf("proposal identity NFT not minted, got %d", qty)
	}
	if qty := plan.MintQuantity(testActionPolicy, expectedActionID); qty != 1 {
		t.Fatalf("action identity NFT not minted, got %d", qty)
	}

	proposalOut := findOutput(t, plan, env.scripts.ProposalAddress.String())
	proposal, err := plutus.DecodeProposalDatum(proposalOut.InlineDatum)
	if err != nil {
		t.Fatalf("proposal datum does not decode: %v", err)
	}
	if proposal.Status.Kind != plutus.StatusActive {
		t.Fatalf("new proposal must start Active, got %s",
			proposal.Status.Kind)
	}
	for i, weight := range proposal.Tally {
		if weight != 0 {
			t.Fatalf("tally option %d starts at %d, want 0", i, weight)
		}
	}
	if len(proposal.Tally) != 2 {
		t.Fatalf("expected 2 tally slots, got %d", len(proposal.Tally))
	}

	actionOut := findOutput(t, plan, env.scripts.ActionAddress.String())
	action, err := plutus.DecodeActionDatum(actionOut.InlineDatum)
	if err != nil {
		t.Fatalf("action datum does not decode: %v", err)
	}
	if action.Option != 1 || action.ActionIndex != 0 {
		t.Fatalf("unexpected action binding: option %d index %d",
			action.Option, action.ActionIndex)
	}
	treasuryBytes, err := env.scripts.TreasuryAddress.Bytes()
	if err != nil {
		t.Fatalf("serializing treasury address: %v", err)
	}
	if !bytes.Equal(action.TreasuryAddress, treasuryBytes) {
		t.Fatalf("action datum carries wrong treasury address")
	}

	// the governance-bearing seed is not consumed twice
	if len(plan.Inputs) != 1 {
		t.Fatalf("expected 1 input, got %d", len(plan.Inputs))
	}
	if len(plan.ReferenceInputs) != 1 {
		t.Fatalf("dao identity must be a reference input")
	}
}

func TestCreateProposalFailures(t *testing.T) {
	testDefs := []struct {
		name         string
		datum        func() *plutus.DAODatum
		mutate       func(*CreateProposalRequest)
		expectedKind ErrorKind
		expectedCode string
	}{
		{
			name: "proposal policy not whitelisted",
			datum: func() *plutus.DAODatum {
				datum := testDAODatum()
				datum.WhitelistedProposals = [][]byte{fillBytes(0x99, 28)}
				return datum
			},
			expectedKind: KindState,
			expectedCode: CodePolicyNotWhitelisted,
		},
		{
			name:  "end time in the past",
			datum: testDAODatum,
			mutate: func(req *CreateProposalRequest) {
				req.EndTime = testNow - 1
			},
			expectedKind: KindValidation,
			expectedCode: CodeInvalidField,
		},
		{
			name:  "duration below dao minimum",
			datum: testDAODatum,
			mutate: func(req *CreateProposalRequest) {
				req.EndTime = testNow + 60_000
			},
			expectedKind: KindValidation,
			expectedCode: CodeInvalidField,
		},
		{
			name:  "duration above dao maximum",
			datum: testDAODatum,
			mutate: func(req *CreateProposalRequest) {
				req.EndTime = testNow + 3_000_000_000
			},
			expectedKind: KindValidation,
			expectedCode: CodeInvalidField,
		},
		{
			name:  "single option",
			datum: testDAODatum,
			mutate: func(req *CreateProposalRequest) {
				req.NumOptions = 1
			},
			expectedKind: KindValidation,
			expectedCode: CodeInvalidField,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.addDAO(t, testDef.datum())
			env.addWalletUTxO(0xee, 0, 5_000_000,
				chainAssetFor(testGovPolicy, testGovName, 25),
			)
			req := createProposalRequest(env.wallet.String())
			if testDef.mutate != nil {
				testDef.mutate(&req)
			}
			_, err := env.assembler.CreateProposal(t.Context(), req)
			requireOpErr(
				t,
				err,
				testDef.expectedKind,
				testDef.expectedCode,
			)
		})
	}
}

func TestCreateProposalInsufficientGovernance(t *testing.T) {
	env := newTestEnv(t)
	env.addDAO(t, testDAODatum())
	env.addWalletUTxO(0xee, 0, 5_000_000,
		chainAssetFor(testGovPolicy, testGovName, 5),
	)

	_, err := env.assembler.CreateProposal(
		t.Context(),
		createProposalRequest(env.wallet.String()),
	)
	requireOpErr(t, err, KindState, CodeInsufficientGovernance)
}
