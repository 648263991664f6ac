package testutil

import (
	"testing"
	"time"

	"github.com/jessedrelick/agens/core"
)

// Collect drains an event channel until it closes, failing the test if no
// progress is made within timeout.
func Collect(t *testing.T, ch <-chan core.Event, timeout time.Duration) []core.Event {
	t.Helper()

	var events []core.Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-time.After(timeout):
			t.Fatalf("timed out waiting for events after %d received", len(events))
			return events
		}
	}
}

// Types projects the event type sequence for order assertions.
func Types(events []core.Event) []core.EventType {
	types := make([]core.EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

// Payloads projects the payload sequence of all events of the given type.
func Payloads(events []core.Event, typ core.EventType) []string {
	var payloads []string
	for _, ev := range events {
		if ev.Type == typ {
			payloads = append(payloads, ev.Payload)
		}
	}
	return payloads
}

// Last returns the final event, failing the test on an empty stream.
func Last(t *testing.T, events []core.Event) core.Event {
	t.Helper()

	if len(events) == 0 {
		t.Fatal("no events collected")
	}
	return events[len(events)-1]
}
