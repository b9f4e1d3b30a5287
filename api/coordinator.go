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

package api

import (
	"context"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/assemble"
)

// Coordinator is the interface the API server requires from the
// transaction assembler.
type Coordinator interface {
	CreateDAO(
		ctx context.Context,
		req assemble.CreateDAORequest,
	) (*assemble.CreateDAOResponse, error)
	CreateProposal(
		ctx context.Context,
		req assemble.CreateProposalRequest,
	) (*assemble.CreateProposalResponse, error)
	Register(
		ctx context.Context,
		req assemble.RegisterRequest,
	) (*assemble.RegisterResponse, error)
	CastVote(
		ctx context.Context,
		req assemble.CastVoteRequest,
	) (*assemble.CastVoteResponse, error)
	Evaluate(
		ctx context.Context,
		req assemble.EvaluateRequest,
	) (*assemble.EvaluateResponse, error)
	ExecuteAction(
		ctx context.Context,
		req assemble.ExecuteActionRequest,
	) (*assemble.ExecuteActionResponse, error)
	Unregister(
		ctx context.Context,
		req assemble.UnregisterRequest,
	) (*assemble.UnregisterResponse, error)
	DAOInfo(
		ctx context.Context,
		req assemble.DAOInfoRequest,
	) (*assemble.DAOInfo, error)
	ListProposals(
		ctx context.Context,
		req assemble.ListProposalsRequest,
	) ([]assemble.ProposalSummary, error)
	ProposalDetails(
		ctx context.Context,
		req assemble.ProposalDetailsRequest,
	) (*assemble.ProposalDetails, error)
	RegistrationStatus(
		ctx context.Context,
		req assemble.RegistrationStatusRequest,
	) (*assemble.RegistrationStatus, error)
	UnregisterEligibility(
		ctx context.Context,
		req assemble.UnregisterEligibilityRequest,
	) (*assemble.UnregisterEligibility, error)
}
