package SSE

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastDeliversToClient(t *testing.T) {
	b := NewEventBroadcaster()
	client := make(chan string, 1)
	b.Register(client)

	b.Broadcast("payment_received", "payment posted")

	select {
	case raw := <-client:
		var event AgentEvent
		require.NoError(t, json.Unmarshal([]byte(raw), &event))
		assert.Equal(t, "payment_received", event.Kind)
		assert.Equal(t, "payment posted", event.Message)
		assert.NotEmpty(t, event.Time)
	default:
		t.Fatal("no event delivered")
	}

	b.Unregister(client)
}

func TestUnregisterAfterSlowClientDropped(t *testing.T) {
	b := NewEventBroadcaster()
	slow := make(chan string)
	b.Register(slow)

	// Nobody reads, so Broadcast drops the client and closes the channel
	// after the send timeout. The later deferred Unregister from the
	// handler must not close it a second time.
	b.Broadcast("appointment_scheduled", "booked")

	assert.NotPanics(t, func() { b.Unregister(slow) })
	assert.NotPanics(t, func() { b.Unregister(slow) })

	// The channel was closed exactly once by Broadcast.
	_, open := <-slow
	assert.False(t, open)
}
