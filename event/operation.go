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

package event

import "time"

// OperationStartedEventType is the event type for accepted coordinator operations
const OperationStartedEventType = EventType("operation.started")

// OperationCompletedEventType is the event type for successfully assembled operations
const OperationCompletedEventType = EventType("operation.completed")

// OperationFailedEventType is the event type for operations that ended in an error
const OperationFailedEventType = EventType("operation.failed")

// OperationStartedEvent is emitted when the coordinator accepts an
// operation and begins chain lookups for it.
type OperationStartedEvent struct {
	// OperationId uniquely identifies this invocation for correlation
	OperationId string
	// Operation is the coordinator operation name, e.g. "vote.cast"
	Operation string
}

// OperationCompletedEvent is emitted after the unsigned transaction for
// an operation has been assembled.
type OperationCompletedEvent struct {
	// OperationId matches the corresponding started event
	OperationId string
	// Operation is the coordinator operation name
	Operation string
	// Duration is the total time spent assembling
	Duration time.Duration
	// TxSize is the size of the unsigned transaction in bytes
	TxSize uint
}

// OperationFailedEvent is emitted when an operation ends in an error.
type OperationFailedEvent struct {
	// OperationId matches the corresponding started event
	OperationId string
	// Operation is the coordinator operation name
	Operation string
	// Duration is the total time spent before failing
	Duration time.Duration
	// Code is the stable error code for the failure
	Code string
	// Retriable indicates whether retrying the same request may succeed
	Retriable bool
}
