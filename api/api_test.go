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
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/assemble"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/plutus"
)

// mockCoordinator implements Coordinator for testing.
type mockCoordinator struct {
	castVoteReq  *assemble.CastVoteRequest
	registerReq  *assemble.RegisterRequest
	daoInfoReq   *assemble.DAOInfoRequest
	castVoteResp *assemble.CastVoteResponse
	daoInfo      *assemble.DAOInfo
	err          error
}

func (m *mockCoordinator) CreateDAO(
	_ context.Context,
	req assemble.CreateDAORequest,
) (*assemble.CreateDAOResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &assemble.CreateDAOResponse{
		UnsignedTx: []byte{0x84, 0xa0},
		DAOKey:     bytes.Repeat([]byte{0x23}, 32),
	}, nil
}

func (m *mockCoordinator) CreateProposal(
	_ context.Context,
	req assemble.CreateProposalRequest,
) (*assemble.CreateProposalResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &assemble.CreateProposalResponse{
		UnsignedTx: []byte{0x84, 0xa0},
		ProposalID: bytes.Repeat([]byte{0x77}, 32),
	}, nil
}

func (m *mockCoordinator) Register(
	_ context.Context,
	req assemble.RegisterRequest,
) (*assemble.RegisterResponse, error) {
	m.registerReq = &req
	if m.err != nil {
		return nil, m.err
	}
	return &assemble.RegisterResponse{
		UnsignedTx:     []byte{0x84, 0xa0},
		RegistrationID: bytes.Repeat([]byte{0x66}, 28),
	}, nil
}

func (m *mockCoordinator) CastVote(
	_ context.Context,
	req assemble.CastVoteRequest,
) (*assemble.CastVoteResponse, error) {
	m.castVoteReq = &req
	if m.err != nil {
		return nil, m.err
	}
	return m.castVoteResp, nil
}

func (m *mockCoordinator) Evaluate(
	_ context.Context,
	req assemble.EvaluateRequest,
) (*assemble.EvaluateResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &assemble.EvaluateResponse{
		UnsignedTx: []byte{0x84, 0xa0},
		Status: plutus.ProposalStatus{
			Kind:   plutus.StatusPassed,
			Option: 1,
		},
	}, nil
}

func (m *mockCoordinator) ExecuteAction(
	_ context.Context,
	req assemble.ExecuteActionRequest,
) (*assemble.ExecuteActionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &assemble.ExecuteActionResponse{
		UnsignedTx: []byte{0x84, 0xa0},
	}, nil
}

func (m *mockCoordinator) Unregister(
	_ context.Context,
	req assemble.UnregisterRequest,
) (*assemble.UnregisterResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &assemble.UnregisterResponse{
		UnsignedTx:         []byte{0x84, 0xa0},
		ReturnedGovernance: 100,
	}, nil
}

func (m *mockCoordinator) DAOInfo(
	_ context.Context,
	req assemble.DAOInfoRequest,
) (*assemble.DAOInfo, error) {
	m.daoInfoReq = &req
	if m.err != nil {
		return nil, m.err
	}
	return m.daoInfo, nil
}

func (m *mockCoordinator) ListProposals(
	_ context.Context,
	req assemble.ListProposalsRequest,
) ([]assemble.ProposalSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []assemble.ProposalSummary{
		{
			AssetName: bytes.Repeat([]byte{0x77}, 32),
			Name:      []byte("Fund the swimming pool"),
			Tally:     []uint64{10, 45},
			EndTime:   1_700_000_000_000,
			Status:    plutus.ProposalStatus{Kind: plutus.StatusActive},
		},
	}, nil
}

func (m *mockCoordinator) ProposalDetails(
	_ context.Context,
	req assemble.ProposalDetailsRequest,
) (*assemble.ProposalDetails, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &assemble.ProposalDetails{}, nil
}

func (m *mockCoordinator) RegistrationStatus(
	_ context.Context,
	req assemble.RegistrationStatusRequest,
) (*assemble.RegistrationStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &assemble.RegistrationStatus{
		Registered:       true,
		LockedGovernance: 100,
	}, nil
}

func (m *mockCoordinator) UnregisterEligibility(
	_ context.Context,
	req assemble.UnregisterEligibilityRequest,
) (*assemble.UnregisterEligibility, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &assemble.UnregisterEligibility{
		Registered: true,
		Eligible:   true,
	}, nil
}

func newTestAPI(coord Coordinator) *API {
	return New(
		APIConfig{ListenAddress: ":0"},
		coord,
		slog.Default(),
	)
}

func TestStartStop(t *testing.T) {
	mock := &mockCoordinator{}
	a := newTestAPI(mock)

	err := a.Start(t.Context())
	require.NoError(t, err)

	a.mu.Lock()
	assert.NotNil(t, a.httpServer)
	a.mu.Unlock()

	stopCtx, stopCancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer stopCancel()
	err = a.Stop(stopCtx)
	require.NoError(t, err)

	a.mu.Lock()
	assert.Nil(t, a.httpServer)
	a.mu.Unlock()
}

func TestStartAlreadyStarted(t *testing.T) {
	mock := &mockCoordinator{}
	a := newTestAPI(mock)

	ctx := t.Context()
	err := a.Start(ctx)
	require.NoError(t, err)
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer stopCancel()
		_ = a.Stop(stopCtx)
	}()

	err = a.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
}

func TestHandleHealth(t *testing.T) {
	a := newTestAPI(&mockCoordinator{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	a.handleHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.IsHealthy)
}

func TestHandleCastVote(t *testing.T) {
	mock := &mockCoordinator{
		castVoteResp: &assemble.CastVoteResponse{
			UnsignedTx:       []byte{0x84, 0xa0},
			NewTally:         []uint64{10, 45},
			ReceiptAssetName: bytes.Repeat([]byte{0x88}, 32),
		},
	}
	a := newTestAPI(mock)

	body := CastVoteRequestWire{
		DAOKey:            hex.EncodeToString(bytes.Repeat([]byte{0x23}, 32)),
		ProposalPolicyID:  hex.EncodeToString(bytes.Repeat([]byte{0x44}, 28)),
		ProposalAssetName: hex.EncodeToString(bytes.Repeat([]byte{0x77}, 32)),
		RegistrationID:    hex.EncodeToString(bytes.Repeat([]byte{0x66}, 28)),
		Option:            1,
		VotePower:         40,
		WalletAddress:     "addr_test1example",
	}
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v1/votes",
		bytes.NewReader(encoded),
	)
	rec := httptest.NewRecorder()
	a.handleCastVote(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, mock.castVoteReq)
	assert.Equal(t, bytes.Repeat([]byte{0x23}, 32), mock.castVoteReq.DAOKey)
	assert.Equal(t, uint64(40), mock.castVoteReq.VotePower)

	var resp CastVoteResponseWire
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "84a0", resp.UnsignedTx)
	assert.Equal(t, []uint64{10, 45}, resp.NewTally)
	assert.Equal(
		t,
		hex.EncodeToString(bytes.Repeat([]byte{0x88}, 32)),
		resp.ReceiptAssetName,
	)
}

func TestHandleCastVoteBadHex(t *testing.T) {
	a := newTestAPI(&mockCoordinator{})

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v1/votes",
		strings.NewReader(`{"dao_key":"not-hex"}`),
	)
	rec := httptest.NewRecorder()
	a.handleCastVote(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, assemble.CodeInvalidField, resp.Code)
	assert.False(t, resp.Retriable)
}

func TestErrorMapping(t *testing.T) {
	testDefs := []struct {
		name           string
		err            *assemble.OpError
		expectedStatus int
	}{
		{
			name: "validation maps to 400",
			err: &assemble.OpError{
				Kind:    assemble.KindValidation,
				Code:    assemble.CodeInvalidField,
				Message: "bad field",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not found maps to 404",
			err: &assemble.OpError{
				Kind:      assemble.KindNotFound,
				Code:      assemble.CodeProposalNotFound,
				Message:   "no proposal",
				Retriable: true,
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "state maps to 409",
			err: &assemble.OpError{
				Kind:    assemble.KindState,
				Code:    assemble.CodeProposalEnded,
				Message: "voting closed",
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "provider maps to 502",
			err: &assemble.OpError{
				Kind:      assemble.KindProvider,
				Code:      assemble.CodeProviderFailed,
				Message:   "upstream down",
				Retriable: true,
			},
			expectedStatus: http.StatusBadGateway,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			mock := &mockCoordinator{err: testDef.err}
			a := newTestAPI(mock)

			req := httptest.NewRequest(
				http.MethodPost,
				"/api/v1/registrations",
				strings.NewReader(`{"dao_key":"23","seed_tx_hash":"ee",`+
					`"amount":50,"wallet_address":"addr_test1example"}`),
			)
			rec := httptest.NewRecorder()
			a.handleRegister(rec, req)

			require.Equal(t, testDef.expectedStatus, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, testDef.err.Code, resp.Code)
			assert.Equal(t, testDef.err.Retriable, resp.Retriable)
		})
	}
}

func TestHandleDAOInfo(t *testing.T) {
	mock := &mockCoordinator{
		daoInfo: &assemble.DAOInfo{
			Found: true,
			Datum: &plutus.DAODatum{
				Name: []byte("TestDAO"),
				GovernanceToken: plutus.AssetClass{
					PolicyID: bytes.Repeat([]byte{0x11}, 28),
					Name:     []byte("GOV"),
				},
				Threshold: 50,
				Quorum:    20,
			},
			TxHash: bytes.Repeat([]byte{0xaa}, 32),
			Index:  0,
		},
	}
	a := newTestAPI(mock)
	daoKey := hex.EncodeToString(bytes.Repeat([]byte{0x23}, 32))

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/daos/"+daoKey,
		nil,
	)
	req.SetPathValue("key", daoKey)
	rec := httptest.NewRecorder()
	a.handleDAOInfo(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, mock.daoInfoReq)
	assert.Equal(t, bytes.Repeat([]byte{0x23}, 32), mock.daoInfoReq.DAOKey)

	var resp DAOInfoWire
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Found)
	require.NotNil(t, resp.Datum)
	assert.Equal(t, "TestDAO", resp.Datum.Name)
	assert.Equal(t, uint64(50), resp.Datum.Threshold)
}

func TestHandleDAOInfoAbsent(t *testing.T) {
	mock := &mockCoordinator{daoInfo: &assemble.DAOInfo{}}
	a := newTestAPI(mock)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/daos/23", nil)
	req.SetPathValue("key", "23")
	rec := httptest.NewRecorder()
	a.handleDAOInfo(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DAOInfoWire
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Found)
	assert.Nil(t, resp.Datum)
}

func TestHandleListProposals(t *testing.T) {
	a := newTestAPI(&mockCoordinator{})
	policy := hex.EncodeToString(bytes.Repeat([]byte{0x44}, 28))

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/proposals/"+policy,
		nil,
	)
	req.SetPathValue("policy", policy)
	rec := httptest.NewRecorder()
	a.handleListProposals(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []ProposalSummaryWire
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Fund the swimming pool", resp[0].Name)
	assert.Equal(t, "Active", resp[0].Status.Kind)
}
