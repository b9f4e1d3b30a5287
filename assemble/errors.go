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
	"errors"
	"fmt"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/chain"
	"github.com/paideiadao/paideia-cardano-contracts-sub001/plutus"
)

// ErrorKind classifies an operation failure.
type ErrorKind string

const (
	// KindValidation covers missing or malformed request fields. Never
	// retried.
	KindValidation ErrorKind = "validation"
	// KindNotFound covers expected UTxOs, datums, or scripts being
	// absent. Retryable after re-querying chain state; not a defect.
	KindNotFound ErrorKind = "not_found"
	// KindState covers operations attempted against an entity in the
	// wrong state. Requires waiting or a different action, not a retry.
	KindState ErrorKind = "state"
	// KindCodec covers datums present but undecodable into the expected
	// shape. Callers treat it like not-found (foreign UTxO).
	KindCodec ErrorKind = "codec"
	// KindProvider covers chain-data or build-service failures.
	// Retryable with backoff.
	KindProvider ErrorKind = "provider"
)

// OpError is the single structured error value an operation resolves all
// failures into. Code is stable and machine-readable; Message is for
// humans. No partial transaction ever accompanies an OpError.
type OpError struct {
	Kind      ErrorKind
	Code      string
	Message   string
	Retriable bool
	Err       error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Stable error codes surfaced to callers.
const (
	CodeMissingField           = "missing_field"
	CodeInvalidField           = "invalid_field"
	CodeDAONotFound            = "dao_not_found"
	CodeProposalNotFound       = "proposal_not_found"
	CodeVoteNotFound           = "vote_not_found"
	CodeActionNotFound         = "action_not_found"
	CodeUTxOSpent              = "utxo_spent"
	CodeProposalNotActive      = "proposal_not_active"
	CodeProposalEnded          = "proposal_ended"
	CodeProposalNotEnded       = "proposal_not_ended"
	CodeProposalNotPassed      = "proposal_not_passed"
	CodeActionNotReady         = "action_not_ready"
	CodeWrongOption            = "wrong_option"
	CodePolicyNotWhitelisted   = "policy_not_whitelisted"
	CodeInsufficientGovernance = "insufficient_governance"
	CodeInsufficientLocked     = "insufficient_locked"
	CodeInsufficientTreasury   = "insufficient_treasury"
	CodeReceiptsStillActive    = "receipts_still_active"
	CodeDatumMalformed         = "datum_malformed"
	CodeProviderFailed         = "provider_failed"
	CodeBuilderFailed          = "builder_failed"
)

func validationErr(code string, format string, args ...any) *OpError {
	return &OpError{
		Kind:    KindValidation,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func notFoundErr(code string, err error, format string, args ...any) *OpError {
	return &OpError{
		Kind:      KindNotFound,
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Retriable: true,
		Err:       err,
	}
}

func stateErr(code string, format string, args ...any) *OpError {
	return &OpError{
		Kind:    KindState,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func codecErr(err error, format string, args ...any) *OpError {
	return &OpError{
		Kind:    KindCodec,
		Code:    CodeDatumMalformed,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func providerErr(err error, format string, args ...any) *OpError {
	return &OpError{
		Kind:      KindProvider,
		Code:      CodeProviderFailed,
		Message:   fmt.Sprintf(format, args...),
		Retriable: true,
		Err:       err,
	}
}

func builderErr(err error) *OpError {
	return &OpError{
		Kind:      KindProvider,
		Code:      CodeBuilderFailed,
		Message:   "transaction build service failed",
		Retriable: true,
		Err:       err,
	}
}

// lookupErr maps a failed UTxO lookup into the taxonomy: absence becomes
// a retryable not-found with the given code (the output may have been
// spent between queries), anything else a provider failure.
func lookupErr(err error, code string, what string) *OpError {
	if errors.Is(err, chain.ErrUTxONotFound) {
		return notFoundErr(code, err, "%s not found", what)
	}
	return providerErr(err, "looking up %s", what)
}

// decodeErr maps a datum decode failure: a wrong-shape datum on an
// otherwise located UTxO means a foreign or incompatible output and is
// folded into not-found per the taxonomy, while malformed bytes are a
// codec fault.
func decodeErr(err error, code string, what string) *OpError {
	if errors.Is(err, plutus.ErrWrongShape) {
		return notFoundErr(code, err, "%s datum has foreign shape", what)
	}
	return codecErr(err, "decoding %s datum", what)
}

// AsOpError extracts the structured error from an operation failure.
func AsOpError(err error) (*OpError, bool) {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr, true
	}
	return nil, false
}
