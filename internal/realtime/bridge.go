package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/observability"
)

const (
	bridgeQueueSize      = 256
	bridgePublishTimeout = 3 * time.Second
)

// bridgeEvent is the cross-node envelope for relay events.
type bridgeEvent struct {
	Source  string              `json:"source"`
	Channel string              `json:"channel"`
	Event   string              `json:"event"`
	Message dto.MessageResponse `json:"message"`
	SentAt  time.Time           `json:"sent_at"`
}

// Bridge mirrors relay events across API nodes over Redis pub/sub and/or NATS.
// Events published by this node are ignored on receipt.
type Bridge struct {
	relay        *Relay
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	nodeID       string
	queue        chan bridgeEvent
	logger       zerolog.Logger
}

// NewBridge constructs a bridge. Either transport may be nil.
func NewBridge(relay *Relay, redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) *Bridge {
	redisChannel := ""
	natsSubject := ""
	if channelBase != "" {
		redisChannel = channelBase + ":relay"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".relay"
	}

	return &Bridge{
		relay:        relay,
		redis:        redisClient,
		redisChannel: redisChannel,
		nats:         natsConn,
		natsSubject:  natsSubject,
		nodeID:       uuid.NewString(),
		queue:        make(chan bridgeEvent, bridgeQueueSize),
		logger:       logger.With().Str("component", "realtime_bridge").Logger(),
	}
}

// Enabled reports whether at least one transport is configured.
func (b *Bridge) Enabled() bool {
	return b.redisEnabled() || b.natsEnabled()
}

func (b *Bridge) redisEnabled() bool {
	return b.redis != nil && b.redisChannel != ""
}

func (b *Bridge) natsEnabled() bool {
	return b.nats != nil && b.natsSubject != ""
}

// Start subscribes to the configured transports and launches the outbound worker.
// Subscriptions are confirmed before it returns.
func (b *Bridge) Start(ctx context.Context) error {
	if !b.Enabled() {
		return nil
	}

	if b.redisEnabled() {
		pubsub := b.redis.Subscribe(ctx, b.redisChannel)
		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			return fmt.Errorf("subscribe redis channel %s: %w", b.redisChannel, err)
		}
		go b.consumeRedis(ctx, pubsub)
	}

	if b.natsEnabled() {
		sub, err := b.nats.Subscribe(b.natsSubject, func(msg *nats.Msg) {
			b.handle("nats", msg.Data)
		})
		if err != nil {
			return fmt.Errorf("subscribe nats subject %s: %w", b.natsSubject, err)
		}
		if err := b.nats.Flush(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to flush nats subscription")
		}
		go func() {
			<-ctx.Done()
			if err := sub.Drain(); err != nil {
				b.logger.Warn().Err(err).Msg("failed to drain relay nats subscription")
			}
		}()
	}

	go b.worker(ctx)

	b.logger.Info().
		Str("node_id", b.nodeID).
		Bool("redis", b.redisEnabled()).
		Bool("nats", b.natsEnabled()).
		Msg("realtime bridge started")

	return nil
}

// Forward queues a message event for the other nodes without blocking the caller.
func (b *Bridge) Forward(channel string, message dto.MessageResponse) {
	if !b.Enabled() {
		return
	}

	event := bridgeEvent{
		Source:  b.nodeID,
		Channel: channel,
		Event:   dto.EventMessageNew,
		Message: message,
		SentAt:  time.Now().UTC(),
	}

	select {
	case b.queue <- event:
	default:
		b.logger.Warn().Str("channel", channel).Str("message_id", message.ID).Msg("bridge queue full, dropping event")
	}
}

func (b *Bridge) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-b.queue:
			if err := b.publish(ctx, event); err != nil {
				b.logger.Error().Err(err).Str("channel", event.Channel).Msg("failed to publish relay event")
			}
		}
	}
}

func (b *Bridge) publish(ctx context.Context, event bridgeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if b.redisEnabled() {
		publishCtx, cancel := context.WithTimeout(ctx, bridgePublishTimeout)
		err := b.redis.Publish(publishCtx, b.redisChannel, payload).Err()
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		} else {
			observability.BridgeEvents().WithLabelValues("redis", "out").Inc()
		}
	}

	if b.natsEnabled() {
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			errs = append(errs, fmt.Errorf("nats: %w", err))
		} else {
			observability.BridgeEvents().WithLabelValues("nats", "out").Inc()
		}
	}

	return errors.Join(errs...)
}

func (b *Bridge) consumeRedis(ctx context.Context, pubsub *redis.PubSub) {
	defer func() {
		_ = pubsub.Close()
	}()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) {
				return
			}
			b.logger.Error().Err(err).Msg("relay redis subscription closed")
			return
		}
		b.handle("redis", []byte(msg.Payload))
	}
}

func (b *Bridge) handle(transport string, data []byte) {
	var event bridgeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		b.logger.Warn().Err(err).Str("transport", transport).Msg("invalid relay event")
		return
	}

	if event.Source == b.nodeID || event.Channel == "" {
		return
	}

	observability.BridgeEvents().WithLabelValues(transport, "in").Inc()
	b.relay.Publish(event.Channel, dto.RealtimeEvent{Event: event.Event, Data: event.Message})
}
