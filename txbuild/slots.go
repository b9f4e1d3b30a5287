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

package txbuild

import (
	"time"
)

// Clock provides the current wall-clock time. Operations take a Clock so
// tests can pin proposal and validity windows.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Time
}

// SlotConverter translates between wall-clock time and ledger slots
// using the network's linear slot schedule. Anchor the converter at any
// known (time, slot) pair after the last slot-length change.
type SlotConverter struct {
	ZeroTime   time.Time
	ZeroSlot   uint64
	SlotLength time.Duration
}

// SlotAt returns the slot containing the given time. Times before the
// anchor clamp to the anchor slot.
func (c SlotConverter) SlotAt(t time.Time) uint64 {
	if !t.After(c.ZeroTime) {
		return c.ZeroSlot
	}
	elapsed := t.Sub(c.ZeroTime)
	return c.ZeroSlot + uint64(elapsed/c.SlotLength) // #nosec G115
}

// TimeAt returns the start time of the given slot.
func (c SlotConverter) TimeAt(slot uint64) time.Time {
	if slot <= c.ZeroSlot {
		return c.ZeroTime
	}
	return c.ZeroTime.Add(
		time.Duration(slot-c.ZeroSlot) * c.SlotLength, // #nosec G115
	)
}
