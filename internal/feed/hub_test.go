package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "change",
			data:      `{"type":"change"}`,
			expected:  "event: change\ndata: {\"type\":\"change\"}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "change",
			data:      "line1\nline2",
			expected:  "event: change\ndata: line1\ndata: line2\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "carriage returns and trailing newline",
			eventName: "test",
			data:      "line1\r\nline2\n",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatSSEMessage(tt.eventName, tt.data)))
		})
	}
}

func change(version int64) Message {
	return Message{Event: EventChange, Change: &model.ChangeNotification{SessionID: "S1", Version: version}}
}

func TestHubBroadcastsInOrder(t *testing.T) {
	hub := NewHub("S1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	a := NewClient(hub, "a")
	b := NewClient(hub, "b")
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))

	for v := int64(1); v <= 3; v++ {
		hub.Broadcast(context.Background(), change(v))
	}

	for _, c := range []*Client{a, b} {
		for v := int64(1); v <= 3; v++ {
			select {
			case msg := <-c.Messages():
				assert.Equal(t, v, msg.Change.Version)
			case <-time.After(time.Second):
				t.Fatal("client did not receive message")
			}
		}
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub("S1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	slow := NewClient(hub, "slow")
	require.True(t, hub.Register(slow))

	for v := int64(1); v <= sendBufferSize+1; v++ {
		hub.Broadcast(context.Background(), change(v))
	}

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	// The queue holds what fit, then ends
	count := 0
	for range slow.Messages() {
		count++
	}
	assert.Equal(t, sendBufferSize, count)
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub("S1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	c := NewClient(hub, "a")
	require.True(t, hub.Register(c))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister(c)
	_, ok := <-c.Messages()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())

	// A second unregister is harmless
	hub.Unregister(c)
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	hub := NewHub("S1", testutil.NopLogger())
	go hub.Run()

	c := NewClient(hub, "a")
	require.True(t, hub.Register(c))

	hub.Close()
	hub.Close()

	select {
	case _, ok := <-c.Messages():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client queue not closed")
	}
	assert.False(t, hub.Register(NewClient(hub, "late")))
}
