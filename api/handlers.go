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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/assemble"
)

const apiVersion = "0.1.0"

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("malformed request body: %w", err)
	}
	return nil
}

// pathBytes decodes a hex-encoded path segment.
func pathBytes(r *http.Request, name string) ([]byte, error) {
	value, err := hex.DecodeString(r.PathValue(name))
	if err != nil {
		return nil, fmt.Errorf("path segment %q is not hex: %w", name, err)
	}
	return value, nil
}

// handleRoot handles GET / and returns API metadata.
func (a *API) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Name:    "paideia-coordinator",
		Version: apiVersion,
	})
}

// handleHealth handles GET /health.
func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

// handleCreateDAO handles POST /api/v1/daos.
func (a *API) handleCreateDAO(w http.ResponseWriter, r *http.Request) {
	var wire CreateDAORequestWire
	if err := decodeBody(r, &wire); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	seedTxHash, err := hex.DecodeString(wire.SeedTxHash)
	if err != nil {
		writeBadRequest(w, "seed_tx_hash is not hex")
		return
	}
	datum, err := daoDatumFromWire(wire.Datum)
	if err != nil {
		writeBadRequest(w, "datum carries a non-hex field")
		return
	}
	collateral, err := collateralFromWire(wire.Collateral)
	if err != nil {
		writeBadRequest(w, "collateral reference is not hex")
		return
	}
	resp, err := a.coord.CreateDAO(r.Context(), assemble.CreateDAORequest{
		SeedTxHash:    seedTxHash,
		SeedIndex:     wire.SeedIndex,
		Datum:         *datum,
		WalletAddress: wire.WalletAddress,
		ChangeAddress: wire.ChangeAddress,
		Collateral:    collateral,
	})
	if err != nil {
		a.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CreateDAOResponseWire{
		UnsignedTx: hex.EncodeToString(resp.UnsignedTx),
		DAOKey:     hex.EncodeToString(resp.DAOKey),
	})
}

// handleCreateProposal handles POST /api/v1/proposals.
func (a *API) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	var wire CreateProposalRequestWire
	if err := decodeBody(r, &wire); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	daoKey, err := hex.DecodeString(wire.DAOKey)
	if err != nil {
		writeBadRequest(w, "dao_key is not hex")
		return
	}
	proposalPolicy, err := hex.DecodeString(wire.ProposalPolicyID)
	if err != nil {
		writeBadRequest(w, "proposal_policy_id is not hex")
		return
	}
	actionPolicy, err := hex.DecodeString(wire.ActionPolicyID)
	if err != nil {
		writeBadRequest(w, "action_policy_id is not hex")
		return
	}
	seedTxHash, err := hex.DecodeString(wire.SeedTxHash)
	if err != nil {
		writeBadRequest(w, "seed_tx_hash is not hex")
		return
	}
	actions, err := actionsFromWire(wire.Actions)
	if err != nil {
		writeBadRequest(w, "action spec carries a non-hex field")
		return
	}
	collateral, err := collateralFromWire(wire.Collateral)
	if err != nil {
		writeBadRequest(w, "collateral reference is not hex")
		return
	}
	resp, err := a.coord.CreateProposal(
		r.Context(),
		assemble.CreateProposalRequest{
			DAOKey:           daoKey,
			ProposalPolicyID: proposalPolicy,
			ActionPolicyID:   actionPolicy,
			SeedTxHash:       seedTxHash,
			SeedIndex:        wire.SeedIndex,
			Name:             []byte(wire.Name),
			Description:      []byte(wire.Description),
			NumOptions:       wire.NumOptions,
			EndTime:          wire.EndTime,
			Actions:          actions,
			WalletAddress:    wire.WalletAddress,
			Collateral:       collateral,
		},
	)
	if err != nil {
		a.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CreateProposalResponseWire{
		UnsignedTx: hex.EncodeToString(resp.UnsignedTx),
		ProposalID: hex.EncodeToString(resp.ProposalID),
		ActionIDs:  hexList(resp.ActionIDs),
	})
}

// handleRegister handles POST /api/v1/registrations.
func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var wire RegisterRequestWire
	if err := decodeBody(r, &wire); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	daoKey, err := hex.DecodeString(wire.DAOKey)
	if err != nil {
		writeBadRequest(w, "dao_key is not hex")
		return
	}
	seedTxHash, err := hex.DecodeString(wire.SeedTxHash)
	if err != nil {
		writeBadRequest(w, "seed_tx_hash is not hex")
		return
	}
	collateral, err := collateralFromWire(wire.Collateral)
	if err != nil {
		writeBadRequest(w, "collateral reference is not hex")
		return
	}
	resp, err := a.coord.Register(r.Context(), assemble.RegisterRequest{
		DAOKey:        daoKey,
		SeedTxHash:    seedTxHash,
		SeedIndex:     wire.SeedIndex,
		Amount:        wire.Amount,
		WalletAddress: wire.WalletAddress,
		Collateral:    collateral,
	})
	if err != nil {
		a.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RegisterResponseWire{
		UnsignedTx:     hex.EncodeToString(resp.UnsignedTx),
		RegistrationID: hex.EncodeToString(resp.RegistrationID),
	})
}

// handleCastVote handles POST /api/v1/votes.
func (a *API) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var wire CastVoteRequestWire
	if err := decodeBody(r, &wire); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	daoKey, err := hex.DecodeString(wire.DAOKey)
	if err != nil {
		writeBadRequest(w, "dao_key is not hex")
		return
	}
	proposalPolicy, err := hex.DecodeString(wire.ProposalPolicyID)
	if err != nil {
		writeBadRequest(w, "proposal_policy_id is not hex")
		return
	}
	proposalName, err := hex.DecodeString(wire.ProposalAssetName)
	if err != nil {
		writeBadRequest(w, "proposal_asset_name is not hex")
		return
	}
	registrationID, err := hex.DecodeString(wire.RegistrationID)
	if err != nil {
		writeBadRequest(w, "registration_id is not hex")
		return
	}
	collateral, err := collateralFromWire(wire.Collateral)
	if err != nil {
		writeBadRequest(w, "collateral reference is not hex")
		return
	}
	resp, err := a.coord.CastVote(r.Context(), assemble.CastVoteRequest{
		DAOKey:            daoKey,
		ProposalPolicyID:  proposalPolicy,
		ProposalAssetName: proposalName,
		RegistrationID:    registrationID,
		Option:            wire.Option,
		VotePower:         wire.VotePower,
		WalletAddress:     wire.WalletAddress,
		Collateral:        collateral,
	})
	if err != nil {
		a.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CastVoteResponseWire{
		UnsignedTx:       hex.EncodeToString(resp.UnsignedTx),
		NewTally:         resp.NewTally,
		ReceiptAssetName: hex.EncodeToString(resp.ReceiptAssetName),
	})
}

// handleEvaluate handles POST /api/v1/evaluations.
func (a *API) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var wire EvaluateRequestWire
	if err := decodeBody(r, &wire); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	daoKey, err := hex.DecodeString(wire.DAOKey)
	if err != nil {
		writeBadRequest(w, "dao_key is not hex")
		return
	}
	proposalPolicy, err := hex.DecodeString(wire.ProposalPolicyID)
	if err != nil {
		writeBadRequest(w, "proposal_policy_id is not hex")
		return
	}
	proposalName, err := hex.DecodeString(wire.ProposalAssetName)
	if err != nil {
		writeBadRequest(w, "proposal_asset_name is not hex")
		return
	}
	collateral, err := collateralFromWire(wire.Collateral)
	if err != nil {
		writeBadRequest(w, "collateral reference is not hex")
		return
	}
	resp, err := a.coord.Evaluate(r.Context(), assemble.EvaluateRequest{
		DAOKey:            daoKey,
		ProposalPolicyID:  proposalPolicy,
		ProposalAssetName: proposalName,
		WalletAddress:     wire.WalletAddress,
		Collateral:        collateral,
	})
	if err != nil {
		a.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EvaluateResponseWire{
		UnsignedTx: hex.EncodeToString(resp.UnsignedTx),
		Status:     statusToWire(resp.Status),
	})
}

// handleExecuteAction handles POST /api/v1/executions.
func (a *API) handleExecuteAction(w http.ResponseWriter, r *http.Request) {
	var wire ExecuteActionRequestWire
	if err := decodeBody(r, &wire); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	daoKey, err := hex.DecodeString(wire.DAOKey)
	if err != nil {
		writeBadRequest(w, "dao_key is not hex")
		return
	}
	proposalPolicy, err := hex.DecodeString(wire.ProposalPolicyID)
	if err != nil {
		writeBadRequest(w, "proposal_policy_id is not hex")
		return
	}
	proposalName, err := hex.DecodeString(wire.ProposalAssetName)
	if err != nil {
		writeBadRequest(w, "proposal_asset_name is not hex")
		return
	}
	actionPolicy, err := hex.DecodeString(wire.ActionPolicyID)
	if err != nil {
		writeBadRequest(w, "action_policy_id is not hex")
		return
	}
	collateral, err := collateralFromWire(wire.Collateral)
	if err != nil {
		writeBadRequest(w, "collateral reference is not hex")
		return
	}
	resp, err := a.coord.ExecuteAction(
		r.Context(),
		assemble.ExecuteActionRequest{
			DAOKey:            daoKey,
			ProposalPolicyID:  proposalPolicy,
			ProposalAssetName: proposalName,
			ActionPolicyID:    actionPolicy,
			ActionIndex:       wire.ActionIndex,
			WalletAddress:     wire.WalletAddress,
			Collateral:        collateral,
		},
	)
	if err != nil {
		a.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExecuteActionResponseWire{
		UnsignedTx:  hex.EncodeToString(resp.UnsignedTx),
		ActionID:    hex.EncodeToString(resp.ActionID),
		PaidCoins:   resp.PaidCoins,
		ChangeCoins: resp.ChangeCoins,
	})
}

// handleUnregister handles POST /api/v1/unregistrations.
func (a *API) handleUnregister(w http.ResponseWriter, r *http.Request) {
	var wire UnregisterRequestWire
	if err := decodeBody(r, &wire); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	daoKey, err := hex.DecodeString(wire.DAOKey)
	if err != nil {
		writeBadRequest(w, "dao_key is not hex")
		return
	}
	registrationID, err := hex.DecodeString(wire.RegistrationID)
	if err != nil {
		writeBadRequest(w, "registration_id is not hex")
		return
	}
	collateral, err := collateralFromWire(wire.Collateral)
	if err != nil {
		writeBadRequest(w, "collateral reference is not hex")
		return
	}
	resp, err := a.coord.Unregister(r.Context(), assemble.UnregisterRequest{
		DAOKey:         daoKey,
		RegistrationID: registrationID,
		WalletAddress:  wire.WalletAddress,
		Collateral:     collateral,
	})
	if err != nil {
		a.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UnregisterResponseWire{
		UnsignedTx:         hex.EncodeToString(resp.UnsignedTx),
		ReturnedGovernance: resp.ReturnedGovernance,
	})
}

// handleDAOInfo handles GET /api/v1/daos/{key}.
func (a *API) handleDAOInfo(w http.ResponseWriter, r *http.Request) {
	daoKey, err := pathBytes(r, "key")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	info, err := a.coord.DAOInfo(r.Context(), assemble.DAOInfoRequest{
		DAOKey: daoKey,
	})
	if err != nil {
		a.writeOpError(w, err)
		return
	}
	wire := DAOInfoWire{Found: info.Found}
	if info.Found {
		wire.Datum = daoDatumToWire(info.Datum)
		wire.TxHash = hex.EncodeToString(info.TxHash)
		wire.Index = info.Index
	}
	writeJSON(w, http.StatusOK, wire)
}

// handleListProposals handles GET /api/v1/proposals/{policy}.
func (a *API) handleListProposals(w http.ResponseWriter, r *http.Request) {
	policy, err := pathBytes(r, "policy")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	summaries, err := a.coord.ListProposals(
		r.Context(),
		assemble.ListProposalsRequest{ProposalPolicyID: policy},
	)
	if err != nil {
		a.writeOpError(w, err)
		return
	}
	wire := make([]ProposalSummaryWire, 0, len(summaries))
	for _, summary := range summaries {
		wire = append(wire, ProposalSummaryWire{
			AssetName: hex.EncodeToString(summary.AssetName),
			Name:      string(summary.Name),
			Tally:     summary.Tally,
			EndTime:   summary.EndTime,
			Status:    statusToWire(summary.Status),
		})
	}
	writeJSON(w, http.StatusOK, wire)
}

// handleProposalDetails handles GET /api/v1/proposals/{policy}/{name}.
// An optional "dao" query parameter enables outcome projection for
// proposals past their end time.
func (a *API) handleProposalDetails(w http.ResponseWriter, r *http.Request) {
	policy, err := pathBytes(r, "policy")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	assetName, err := pathBytes(r, "name")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var daoKey []byte
	if daoParam := r.URL.Query().Get("dao"); daoParam != "" {
		daoKey, err = hex.DecodeString(daoParam)
		if err != nil {
			writeBadRequest(w, "dao query parameter is not hex")
			return
		}
	}
	details, err := a.coord.ProposalDetails(
		r.Context(),
		assemble.ProposalDetailsRequest{
			DAOKey:            daoKey,
			ProposalPolicyID:  policy,
			ProposalAssetName: assetName,
		},
	)
	if err != nil {
		a.writeOpError(w, err)
		return
	}
	wire := ProposalDetailsWire{Found: details.Found}
	if details.Found {
		status := statusToWire(details.Datum.Status)
		wire.Name = string(details.Datum.Name)
		wire.Description = string(details.Datum.Description)
		wire.Tally = details.Datum.Tally
		wire.EndTime = details.Datum.EndTime
		wire.Status = &status
		wire.TxHash = hex.EncodeToString(details.TxHash)
		wire.Index = details.Index
		if details.Projected != nil {
			projected := statusToWire(*details.Projected)
			wire.Projected = &projected
		}
	}
	writeJSON(w, http.StatusOK, wire)
}

// handleRegistrationStatus handles GET /api/v1/registrations/{dao}/{id}.
func (a *API) handleRegistrationStatus(
	w http.ResponseWriter,
	r *http.Request,
) {
	daoKey, err := pathBytes(r, "dao")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	registrationID, err := pathBytes(r, "id")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	status, err := a.coord.RegistrationStatus(
		r.Context(),
		assemble.RegistrationStatusRequest{
			DAOKey:         daoKey,
			RegistrationID: registrationID,
		},
	)
	if err != nil {
		a.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RegistrationStatusWire{
		Registered:       status.Registered,
		LockedGovernance: status.LockedGovernance,
		Receipts:         assetsToWire(status.Receipts),
	})
}

// handleUnregisterEligibility handles
// GET /api/v1/registrations/{dao}/{id}/eligibility.
func (a *API) handleUnregisterEligibility(
	w http.ResponseWriter,
	r *http.Request,
) {
	daoKey, err := pathBytes(r, "dao")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	registrationID, err := pathBytes(r, "id")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	eligibility, err := a.coord.UnregisterEligibility(
		r.Context(),
		assemble.UnregisterEligibilityRequest{
			DAOKey:         daoKey,
			RegistrationID: registrationID,
		},
	)
	if err != nil {
		a.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UnregisterEligibilityWire{
		Registered:       eligibility.Registered,
		Eligible:         eligibility.Eligible,
		BlockingReceipts: hexList(eligibility.BlockingReceipts),
	})
}
