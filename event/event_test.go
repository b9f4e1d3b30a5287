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

package event_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paideiadao/paideia-cardano-contracts-sub001/event"
)

func TestEventBusSingleSubscriber(t *testing.T) {
	testEvtData := event.OperationStartedEvent{
		OperationId: "op-1",
		Operation:   "vote.cast",
	}
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(event.OperationStartedEventType)
	eb.Publish(
		event.OperationStartedEventType,
		event.NewEvent(event.OperationStartedEventType, testEvtData),
	)
	select {
	case evt, ok := <-subCh:
		if !ok {
			t.Fatalf("event channel closed unexpectedly")
		}
		switch v := evt.Data.(type) {
		case event.OperationStartedEvent:
			if v != testEvtData {
				t.Fatalf("did not get expected event")
			}
		default:
			t.Fatalf(
				"event data was not of expected type, got %T",
				evt.Data,
			)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for event")
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 999))
	for _, subCh := range []<-chan event.Event{sub1Ch, sub2Ch} {
		select {
		case evt, ok := <-subCh:
			if !ok {
				t.Fatalf("event channel closed unexpectedly")
			}
			if v, ok := evt.Data.(int); !ok || v != 999 {
				t.Fatalf("did not get expected event: %#v", evt.Data)
			}
		case <-time.After(1 * time.Second):
			t.Fatalf("timeout waiting for event")
		}
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 999))
	select {
	case _, ok := <-subCh:
		if !ok {
			// Expected: Unsubscribe closes the subscriber channel
			return
		}
		t.Fatalf("received unexpected event")
	case <-time.After(1 * time.Second):
		t.Fatalf("subscriber channel was not closed after Unsubscribe")
	}
}

func TestEventBusStop(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)

	_, subCh := eb.Subscribe(testEvtType)

	var handled atomic.Int32
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		handled.Add(1)
	})

	eb.Publish(testEvtType, event.NewEvent(testEvtType, "before"))
	require.Eventually(t, func() bool {
		return handled.Load() == 1
	}, 2*time.Second, 10*time.Millisecond,
		"handler should receive event before Stop",
	)

	eb.Stop()

	// Drain buffered events and verify the channel eventually closes
	channelClosed := false
	timeout := time.After(100 * time.Millisecond)
	for !channelClosed {
		select {
		case _, ok := <-subCh:
			if !ok {
				channelClosed = true
			}
		case <-timeout:
			t.Fatal("subscriber channel was not closed within timeout")
		}
	}

	// Publishing after Stop reaches nobody
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "after"))
	time.Sleep(100 * time.Millisecond)
	if handled.Load() != 1 {
		t.Fatal("handler should not receive events after Stop")
	}

	// The bus remains usable for new subscribers after Stop
	_, subCh2 := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "new"))
	select {
	case _, ok := <-subCh2:
		if !ok {
			t.Fatal("new subscriber should receive event")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("new subscriber did not receive event")
	}
	eb.Stop()
}
