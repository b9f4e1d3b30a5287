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

func evaluateRequest(wallet string) EvaluateRequest {
	return EvaluateRequest{
		DAOKey:            testDAOKey,
		ProposalPolicyID:  testProposalPolicy,
		ProposalAssetName: testProposalName,
		WalletAddress:     wallet,
	}
}

func TestEvaluate(t *testing.T) {
	env := newTestEnv(t)
	env.addDAO(t, testDAODatum())
	endTime := testNow - 60_000
	proposalUtxo := env.addProposal(t, testProposalDatum(
		plutus.ProposalStatus{Kind: plutus.StatusActive},
		endTime,
		[]uint64{20, 80},
	))

	resp, err := env.assembler.Evaluate(
		t.Context(),
		evaluateRequest(env.wallet.String()),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// quorum 20 met (total 100), winner option 1 at 80% >= threshold 50
	expected := plutus.ProposalStatus{
		Kind:   plutus.StatusPassed,
		Option: 1,
	}
	if resp.Status != expected {
		t.Fatalf("unexpected status %#v", resp.Status)
	}

	plan := env.builder.lastPlan
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
		if i == plutus.ProposalFieldStatus {
			if same {
				t.Fatalf("status field was not rewritten")
			}
		} else if !same {
			t.Fatalf("field %d changed byte-wise", i)
		}
	}
	decoded, err := plutus.DecodeProposalDatum(proposalOut.InlineDatum)
	if err != nil {
		t.Fatalf("decoding rebuilt datum: %v", err)
	}
	if decoded.Status != expected {
		t.Fatalf("unexpected rebuilt status %#v", decoded.Status)
	}

	if plan.ValidFrom == nil || *plan.ValidFrom != endTime/1000+1 {
		t.Fatalf("unexpected validity bound: %v", plan.ValidFrom)
	}
	if len(plan.Mints) != 0 {
		t.Fatalf("evaluation mints nothing, got %v", plan.Mints)
	}
}

func TestEvaluateQuorumFail(t *testing.T) {
	env := newTestEnv(t)
	env.addDAO(t, testDAODatum())
	env.addProposal(t, testProposalDatum(
		plutus.ProposalStatus{Kind: plutus.StatusActive},
		testNow-60_000,
		[]uint64{10, 5},
	))

	resp, err := env.assembler.Evaluate(
		t.Context(),
		evaluateRequest(env.wallet.String()),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status.Kind != plutus.StatusFailedQuorum {
		t.Fatalf("expected FailedQuorum, got %s", resp.Status.Kind)
	}
}

func TestEvaluateNotEnded(t *testing.T) {
	env := newTestEnv(t)
	env.addDAO(t, testDAODatum())
	env.addProposal(t, testProposalDatum(
		plutus.ProposalStatus{Kind: plutus.StatusActive},
		testNow+3_600_000,
		[]uint64{20, 80},
	))

	_, err := env.assembler.Evaluate(
		t.Context(),
		evaluateRequest(env.wallet.String()),
	)
	requireOpErr(t, err, KindState, CodeProposalNotEnded)
}

func TestEvaluateAlreadySettled(t *testing.T) {
	env := newTestEnv(t)
	env.addDAO(t, testDAODatum())
	env.addProposal(t, testProposalDatum(
		plutus.ProposalStatus{Kind: plutus.StatusFailedQuorum},
		testNow-60_000,
		[]uint64{10, 5},
	))

	_, err := env.assembler.Evaluate(
		t.Context(),
		evaluateRequest(env.wallet.String()),
	)
	requireOpErr(t, err, KindState, CodeProposalNotActive)
}
