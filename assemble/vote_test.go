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

func castVoteRequest(wallet string) CastVoteRequest {
	return CastVoteRequest{
		DAOKey:            testDAOKey,
		ProposalPolicyID:  testProposalPolicy,
		ProposalAssetName: testProposalName,
		RegistrationID:    testRegistrationID,
		Option:            1,
		VotePower:         40,
		WalletAddress:     wallet,
	}
}

func TestCastVote(t *testing.T) {
	env := newTestEnv(t)
	env.addDAO(t, testDAODatum())
	endTime := testNow + 3_600_000
	proposalUtxo := env.addProposal(t, testProposalDatum(
		plutus.ProposalStatus{Kind: plutus.StatusActive},
		endTime,
		[]uint64{10, 5},
	))
	env.addVote(t, 100)

	resp, err := env.assembler.CastVote(
		t.Context(),
		castVoteRequest(env.wallet.String()),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.UnsignedTx) == 0 {
		t.Fatalf("expected unsigned tx bytes")
	}
	expectedTally := []uint64{10, 45}
	for i, weight := range resp.NewTally {
		if weight != expectedTally[i] {
			t.Fatalf("unexpected tally: %v", resp.NewTally)
		}
	}

	plan := env.builder.lastPlan
	receiptName := plutus.ReceiptAssetName(testProposalName, 1).Bytes()
	if !bytes.Equal(resp.ReceiptAssetName, receiptName) {
		t.Fatalf("unexpected receipt name %x", resp.ReceiptAssetName)
	}
	if qty := plan.MintQuantity(testProposalPolicy, receiptName); qty != 40 {
		t.Fatalf("expected 40 receipts minted, got %d", qty)
	}

	// Proposal is re-locked with only the tally field changed
	proposalOut := findOutput(t, plan, env.scripts.ProposalAddress.String())
	original, err := plutus.ParseRawDatum(proposalUtxo.DatumCbor)
	if err != nil {
		t.Fatalf("parsing original datum: %v", err)
	}
	rebuilt, err := plutus.ParseRawDatum(proposalOut.InlineDatum)
	if err != nil {
		t.Fatalf("parsing rebuilt datum: %v", err)
	}
	for i := range original.NumFields() {
		same := bytes.Equal(original.Field(i), rebuilt.Field(i))
		if i == plutus.ProposalFieldTally {
			if same {
				t.Fatalf("tally field was not rewritten")
			}
		} else if !same {
			t.Fatalf("field %d changed byte-wise", i)
		}
	}
	decoded, err := plutus.DecodeProposalDatum(proposalOut.InlineDatum)
	if err != nil {
		t.Fatalf("decoding rebuilt datum: %v", err)
	}
	if decoded.Tally[1] != 45 {
		t.Fatalf("unexpected rebuilt tally: %v", decoded.Tally)
	}

	// Receipts are merged into the vote UTxO preserving prior assets
	voteOut := findOutput(t, plan, env.scripts.VoteAddress.String())
	if qty := assetQuantity(voteOut.Assets, testProposalPolicy, receiptName); qty != 40 {
		t.Fatalf("expected 40 receipts in vote output, got %d", qty)
	}
	if qty := assetQuantity(voteOut.Assets, testGovPolicy, testGovName); qty != 100 {
		t.Fatalf("governance tokens not preserved, got %d", qty)
	}
	refName := plutus.VoteReferenceAssetName(testRegistrationID)
	if qty := assetQuantity(voteOut.Assets, testVotePolicy, refName); qty != 1 {
		t.Fatalf("reference NFT not preserved")
	}

	if plan.ValidTo == nil || *plan.ValidTo != endTime/1000 {
		t.Fatalf("unexpected validity bound: %v", plan.ValidTo)
	}
}

func TestCastVoteMergesExistingReceipts(t *testing.T) {
	env := newTestEnv(t)
	env.addDAO(t, testDAODatum())
	env.addProposal(t, testProposalDatum(
		plutus.ProposalStatus{Kind: plutus.StatusActive},
		testNow+3_600_000,
		[]uint64{10, 5},
	))
	receiptName := plutus.ReceiptAssetName(testProposalName, 1).Bytes()
	env.addVote(t, 100, chainAssetFor(testProposalPolicy, receiptName, 15))

	_, err := env.assembler.CastVote(
		t.Context(),
		castVoteRequest(env.wallet.String()),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	voteOut := findOutput(
		t,
		env.builder.lastPlan,
		env.scripts.VoteAddress.String(),
	)
	if qty := assetQuantity(voteOut.Assets, testProposalPolicy, receiptName); qty != 55 {
		t.Fatalf("expected merged receipt quantity 55, got %d", qty)
	}
}

func TestCastVoteFailures(t *testing.T) {
	testDefs := []struct {
		name         string
		setup        func(*testing.T, *testEnv)
		mutate       func(*CastVoteRequest)
		expectedKind ErrorKind
		expectedCode string
	}{
		{
			name: "proposal not active",
			setup: func(t *testing.T, env *testEnv) {
				env.addDAO(t, testDAODatum())
				env.addProposal(t, testProposalDatum(
					plutus.ProposalStatus{
						Kind:   plutus.StatusPassed,
						Option: 0,
					},
					testNow+3_600_000,
					[]uint64{10, 5},
				))
				env.addVote(t, 100)
			},
			expectedKind: KindState,
			expectedCode: CodeProposalNotActive,
		},
		{
			name: "proposal ended",
			setup: func(t *testing.T, env *testEnv) {
				env.addDAO(t, testDAODatum())
				env.addProposal(t, testProposalDatum(
					plutus.ProposalStatus{Kind: plutus.StatusActive},
					testNow-1,
					[]uint64{10, 5},
				))
				env.addVote(t, 100)
			},
			expectedKind: KindState,
			expectedCode: CodeProposalEnded,
		},
		{
			name: "vote power exceeds locked",
			setup: func(t *testing.T, env *testEnv) {
				env.addDAO(t, testDAODatum())
				env.addProposal(t, testProposalDatum(
					plutus.ProposalStatus{Kind: plutus.StatusActive},
					testNow+3_600_000,
					[]uint64{10, 5},
				))
				env.addVote(t, 30)
			},
			expectedKind: KindState,
			expectedCode: CodeInsufficientLocked,
		},
		{
			name: "option out of range",
			setup: func(t *testing.T, env *testEnv) {
				env.addDAO(t, testDAODatum())
				env.addProposal(t, testProposalDatum(
					plutus.ProposalStatus{Kind: plutus.StatusActive},
					testNow+3_600_000,
					[]uint64{10, 5},
				))
				env.addVote(t, 100)
			},
			mutate: func(req *CastVoteRequest) {
				req.Option = 5
			},
			expectedKind: KindValidation,
			expectedCode: CodeInvalidField,
		},
		{
			name: "proposal missing is retryable",
			setup: func(t *testing.T, env *testEnv) {
				env.addDAO(t, testDAODatum())
				env.addVote(t, 100)
			},
			expectedKind: KindNotFound,
			expectedCode: CodeProposalNotFound,
		},
		{
			name: "vote registration missing",
			setup: func(t *testing.T, env *testEnv) {
				env.addDAO(t, testDAODatum())
				env.addProposal(t, testProposalDatum(
					plutus.ProposalStatus{Kind: plutus.StatusActive},
					testNow+3_600_000,
					[]uint64{10, 5},
				))
			},
			expectedKind: KindNotFound,
			expectedCode: CodeVoteNotFound,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			env := newTestEnv(t)
			testDef.setup(t, env)
			req := castVoteRequest(env.wallet.String())
			if testDef.mutate != nil {
				testDef.mutate(&req)
			}
			_, err := env.assembler.CastVote(t.Context(), req)
			opErr := requireOpErr(
				t,
				err,
				testDef.expectedKind,
				testDef.expectedCode,
			)
			if testDef.expectedKind == KindNotFound && !opErr.Retriable {
				t.Fatalf("not-found errors must be retryable")
			}
		})
	}
}
