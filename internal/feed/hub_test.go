package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sendmoni/rates-backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForEvent republishes until the subscriber sees an event, which rides
// out the window between Subscribe returning and the broker registering it.
func waitForEvent(t *testing.T, client *Client, publish func()) []byte {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		publish()
		select {
		case raw := <-client.send:
			return raw
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatal("subscriber never received the event")
		}
	}
}

func TestHub_FansOutFeedEvents(t *testing.T) {
	redisClient, _ := newFeedRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(redisClient)
	go hub.Run(ctx)

	client := NewClient(nil)
	hub.Register(client)

	publisher := NewPublisher(redisClient)
	raw := waitForEvent(t, client, func() { publisher.PublishAllRatesUpdate(ctx) })

	var event dto.FeedEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, dto.FeedAllRatesUpdate, event.Type)
}

func TestHub_UnregisterClosesSendQueue(t *testing.T) {
	redisClient, _ := newFeedRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(redisClient)
	go hub.Run(ctx)

	client := NewClient(nil)
	hub.Register(client)
	hub.Unregister(client)

	select {
	case _, ok := <-client.send:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("send queue was not closed on unregister")
	}
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	redisClient, _ := newFeedRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(redisClient)
	go hub.Run(ctx)

	slow := NewClient(nil)
	for slow.Send([]byte("backlog")) {
	}
	healthy := NewClient(nil)
	hub.Register(slow)
	hub.Register(healthy)

	publisher := NewPublisher(redisClient)
	// Once the healthy subscriber sees an event, a fanout has run against
	// the full queue and the slow subscriber must have been cut loose.
	waitForEvent(t, healthy, func() { publisher.PublishAllRatesUpdate(ctx) })

	for i := 0; i <= sendBuffer; i++ {
		if _, ok := <-slow.send; !ok {
			return
		}
	}
	t.Fatal("slow subscriber was never dropped")
}

func TestHub_RunStopsOnContextCancel(t *testing.T) {
	redisClient, _ := newFeedRedis(t)
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(redisClient)
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	client := NewClient(nil)
	hub.Register(client)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop after cancellation")
	}

	_, ok := <-client.send
	assert.False(t, ok)
}

func TestHub_RegistryCallsDoNotBlockAfterShutdown(t *testing.T) {
	redisClient, _ := newFeedRedis(t)
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(redisClient)
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	client := NewClient(nil)
	hub.Register(client)
	cancel()
	<-done

	// Late connection teardown must return instead of hanging on the
	// stopped hub.
	finished := make(chan struct{})
	go func() {
		hub.Unregister(client)
		hub.Register(NewClient(nil))
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("registry call blocked after the hub stopped")
	}
}

func TestClient_SendReportsFullBuffer(t *testing.T) {
	client := NewClient(nil)
	for i := 0; i < sendBuffer; i++ {
		require.True(t, client.Send([]byte("event")))
	}
	assert.False(t, client.Send([]byte("overflow")))
}
