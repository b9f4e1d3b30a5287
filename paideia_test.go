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

package paideia

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCoordinatorRunStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, err := New(NewConfig(
		WithUtxorpcURL("http://localhost:9090"),
		WithBuilderURL("http://localhost:9091"),
		WithScripts(testScripts()),
	))
	require.NoError(t, err)
	require.NotNil(t, c.Assembler())

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Run(t.Context())
	}()

	require.NoError(t, c.Stop())
	select {
	case runErr := <-errCh:
		assert.NoError(t, runErr)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestCoordinatorStopIdempotent(t *testing.T) {
	c, err := New(NewConfig(
		WithUtxorpcURL("http://localhost:9090"),
		WithBuilderURL("http://localhost:9091"),
		WithScripts(testScripts()),
	))
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Run(t.Context())
	}()

	require.NoError(t, c.Stop())
	require.NoError(t, c.Stop())
	<-errCh
}
