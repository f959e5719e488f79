package realtime

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/alo-api/internal/dto"
)

// Broadcaster delivers new messages to the local relay and forwards them to peer nodes.
type Broadcaster struct {
	relay  *Relay
	bridge *Bridge
	logger zerolog.Logger
}

// NewBroadcaster wires the relay with an optional bridge.
func NewBroadcaster(relay *Relay, bridge *Bridge, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		relay:  relay,
		bridge: bridge,
		logger: logger.With().Str("component", "realtime_broadcaster").Logger(),
	}
}

// Broadcast emits a message:new event to every session of the community channel.
func (b *Broadcaster) Broadcast(_ context.Context, communityID string, message dto.MessageResponse) {
	channel := ChannelForCommunity(communityID)
	delivered := b.relay.Publish(channel, dto.RealtimeEvent{Event: dto.EventMessageNew, Data: message})

	if b.bridge != nil {
		b.bridge.Forward(channel, message)
	}

	b.logger.Debug().
		Str("channel", channel).
		Str("message_id", message.ID).
		Int("delivered", delivered).
		Msg("message broadcast")
}
