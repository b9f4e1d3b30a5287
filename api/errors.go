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
	"net/http"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/assemble"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Retriable  bool   `json:"retriable"`
}

// statusForKind maps an operation error category to an HTTP status.
// Not-found results are retryable because the coordinator may simply be
// behind the chain tip.
func statusForKind(kind assemble.ErrorKind) int {
	switch kind {
	case assemble.KindValidation:
		return http.StatusBadRequest
	case assemble.KindNotFound:
		return http.StatusNotFound
	case assemble.KindState:
		return http.StatusConflict
	case assemble.KindCodec:
		return http.StatusInternalServerError
	case assemble.KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeOpError renders an operation error with its stable code, or a
// generic 500 when the error does not carry one.
func (a *API) writeOpError(w http.ResponseWriter, err error) {
	opErr, ok := assemble.AsOpError(err)
	if !ok {
		a.logger.Error("unclassified operation error", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "internal",
			Message:    "internal server error",
			Retriable:  false,
		})
		return
	}
	status := statusForKind(opErr.Kind)
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Code:       opErr.Code,
		Message:    opErr.Message,
		Retriable:  opErr.Retriable,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Code:       assemble.CodeInvalidField,
		Message:    message,
		Retriable:  false,
	})
}
