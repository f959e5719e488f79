package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alo-api/internal/dto"
)

type testNode struct {
	relay       *Relay
	bridge      *Bridge
	broadcaster *Broadcaster
}

func startTestNode(t *testing.T, ctx context.Context, addr string) testNode {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	relay := NewRelay(zerolog.Nop())
	bridge := NewBridge(relay, client, nil, "alo-test", zerolog.Nop())
	require.True(t, bridge.Enabled())
	require.NoError(t, bridge.Start(ctx))

	return testNode{relay: relay, bridge: bridge, broadcaster: NewBroadcaster(relay, bridge, zerolog.Nop())}
}

func TestBridgeDeliversAcrossNodes(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nodeA := startTestNode(t, ctx, server.Addr())
	nodeB := startTestNode(t, ctx, server.Addr())
	require.NotEqual(t, nodeA.bridge.nodeID, nodeB.bridge.nodeID)

	local, _ := newTestSession(nodeA.relay, "user_a")
	remote, _ := newTestSession(nodeB.relay, "user_b")
	elsewhere, _ := newTestSession(nodeB.relay, "user_c")
	nodeA.relay.Join(local, ChannelForCommunity("c1"))
	nodeB.relay.Join(remote, ChannelForCommunity("c1"))
	nodeB.relay.Join(elsewhere, ChannelForCommunity("c2"))

	nodeA.broadcaster.Broadcast(ctx, "c1", dto.MessageResponse{ID: "m1", Content: "salam", CommunityID: "c1"})

	require.Len(t, drain(local), 1)

	var received []dto.RealtimeEvent
	require.Eventually(t, func() bool {
		received = append(received, drain(remote)...)
		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, dto.EventMessageNew, received[0].Event)

	message, ok := received[0].Data.(dto.MessageResponse)
	require.True(t, ok)
	require.Equal(t, "salam", message.Content)

	time.Sleep(100 * time.Millisecond)
	require.Empty(t, drain(local), "node must ignore its own bridge events")
	require.Empty(t, drain(elsewhere))
}

func TestBridgeHandleIgnoresOwnAndInvalidEvents(t *testing.T) {
	relay := NewRelay(zerolog.Nop())
	bridge := NewBridge(relay, nil, nil, "alo", zerolog.Nop())
	require.False(t, bridge.Enabled())

	session, _ := newTestSession(relay, "user_a")
	relay.Join(session, ChannelForCommunity("c1"))

	own, err := json.Marshal(bridgeEvent{Source: bridge.nodeID, Channel: ChannelForCommunity("c1"), Event: dto.EventMessageNew})
	require.NoError(t, err)
	bridge.handle("redis", own)
	bridge.handle("redis", []byte("not-json"))
	require.Empty(t, drain(session))

	peer, err := json.Marshal(bridgeEvent{
		Source:  "peer-node",
		Channel: ChannelForCommunity("c1"),
		Event:   dto.EventMessageNew,
		Message: dto.MessageResponse{ID: "m2", Content: "hello"},
	})
	require.NoError(t, err)
	bridge.handle("nats", peer)

	events := drain(session)
	require.Len(t, events, 1)
	require.Equal(t, "m2", events[0].Data.(dto.MessageResponse).ID)
}

func TestBridgeWithoutTransportsIsNoop(t *testing.T) {
	relay := NewRelay(zerolog.Nop())
	bridge := NewBridge(relay, nil, nil, "alo", zerolog.Nop())

	require.NoError(t, bridge.Start(context.Background()))
	bridge.Forward(ChannelForCommunity("c1"), dto.MessageResponse{ID: "m1"})
	require.Empty(t, bridge.queue)
}

func TestBroadcasterWithoutBridge(t *testing.T) {
	relay := NewRelay(zerolog.Nop())
	session, _ := newTestSession(relay, "user_a")
	relay.Join(session, ChannelForCommunity("c1"))

	NewBroadcaster(relay, nil, zerolog.Nop()).Broadcast(context.Background(), "c1", dto.MessageResponse{ID: "m1"})

	events := drain(session)
	require.Len(t, events, 1)
	require.Equal(t, dto.EventMessageNew, events[0].Event)
}
