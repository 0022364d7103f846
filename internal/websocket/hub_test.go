package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"legalai-be/internal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, rdb *redis.Client) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(rdb, logger.NewNop())
	go hub.Run(ctx)

	select {
	case <-hub.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("hub never became ready")
	}
	return hub
}

func attach(hub *Hub, userID string) *Client {
	c := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 4)}
	hub.Register(c)
	return c
}

func receive(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case raw := <-c.Send:
		var f Frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("no frame delivered")
		return Frame{}
	}
}

func TestHubDeliversToEveryDeviceOfUser(t *testing.T) {
	hub := startHub(t, nil)
	phone := attach(hub, "u1")
	laptop := attach(hub, "u1")
	other := attach(hub, "u2")

	require.Eventually(t, func() bool { return hub.Connected("u1") == 2 }, time.Second, 5*time.Millisecond)

	hub.Send(context.Background(), "u1", Frame{Type: FrameChatTyping, Data: map[string]string{"text": "Hel"}})

	assert.Equal(t, FrameChatTyping, receive(t, phone).Type)
	assert.Equal(t, FrameChatTyping, receive(t, laptop).Type)
	assert.Empty(t, other.Send)
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	hub := startHub(t, nil)
	c := attach(hub, "u1")
	require.Eventually(t, func() bool { return hub.Connected("u1") == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister(c)

	require.Eventually(t, func() bool { return hub.Connected("u1") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHubFanOutAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	rdbA := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rdbB := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdbA.Close()
	defer rdbB.Close()

	a := startHub(t, rdbA)
	b := startHub(t, rdbB)

	local := attach(a, "u1")
	remote := attach(b, "u1")
	require.Eventually(t, func() bool { return a.Connected("u1") == 1 && b.Connected("u1") == 1 }, time.Second, 5*time.Millisecond)

	a.Send(context.Background(), "u1", Frame{Type: FrameSummaryStage, Data: map[string]int{"stage": 2}})

	assert.Equal(t, FrameSummaryStage, receive(t, remote).Type)
	assert.Equal(t, FrameSummaryStage, receive(t, local).Type)

	// The origin instance ignores its own echo.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, local.Send)
}

func TestHubStopReleasesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, logger.NewNop())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := attach(hub, "u1")
	require.Eventually(t, func() bool { return hub.Connected("u1") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-stopped

	_, open := <-c.Send
	assert.False(t, open)
	assert.Zero(t, hub.Connected("u1"))

	unregistered := make(chan struct{})
	go func() {
		hub.Unregister(c)
		close(unregistered)
	}()
	select {
	case <-unregistered:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after the hub stopped")
	}
	assert.False(t, hub.Register(&Client{Hub: hub, UserID: "u2", Send: make(chan []byte, 1)}))
}
