package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/observability"
)

const (
	sessionSendBufferSize = 32
	defaultPingInterval   = 30 * time.Second
)

// Conn is the subset of a websocket connection a session needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// SessionOptions configures a session.
type SessionOptions struct {
	UserID        string
	CorrelationID string
	PingInterval  time.Duration
}

// Session is the per-connection state. channel is owned by the relay and only
// read or written while holding the relay lock.
type Session struct {
	id           string
	userID       string
	conn         Conn
	relay        *Relay
	send         chan dto.RealtimeEvent
	closed       chan struct{}
	once         sync.Once
	channel      string
	pingInterval time.Duration
	logger       zerolog.Logger
}

// NewSession wraps conn with an empty channel binding.
func NewSession(conn Conn, relay *Relay, logger zerolog.Logger, opts SessionOptions) *Session {
	interval := opts.PingInterval
	if interval <= 0 {
		interval = defaultPingInterval
	}

	id := uuid.NewString()
	sessionLogger := logger.With().
		Str("component", "realtime_session").
		Str("session_id", id).
		Str("user_id", opts.UserID)
	if opts.CorrelationID != "" {
		sessionLogger = sessionLogger.Str("correlation_id", opts.CorrelationID)
	}

	return &Session{
		id:           id,
		userID:       opts.UserID,
		conn:         conn,
		relay:        relay,
		send:         make(chan dto.RealtimeEvent, sessionSendBufferSize),
		closed:       make(chan struct{}),
		pingInterval: interval,
		logger:       sessionLogger.Logger(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Channel returns the channel the session is currently bound to.
func (s *Session) Channel() string {
	return s.relay.ChannelOf(s)
}

// Serve runs the read and write loops and returns once the connection is done.
func (s *Session) Serve(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	observability.RealtimeConnections().Inc()
	defer observability.RealtimeConnections().Dec()

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.closed:
		}
	}()

	// the connection is released once Serve returns, so the writer must be done with it
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writer()
	}()
	s.reader()
	<-writerDone
}

// Close leaves the current channel and closes the connection. It is safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.closed)
		s.relay.Leave(s)
		_ = s.conn.Close()
	})
}

func (s *Session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *Session) enqueue(event dto.RealtimeEvent) bool {
	if s.isClosed() {
		return false
	}

	select {
	case s.send <- event:
		return true
	default:
		return false
	}
}

func (s *Session) reader() {
	defer s.Close()

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			s.logger.Debug().Err(err).Msg("realtime read loop ended")
			return
		}

		var inbound dto.RealtimeInbound
		if err := json.Unmarshal(frame, &inbound); err != nil {
			s.reject("INVALID_PAYLOAD", "malformed event envelope")
			continue
		}

		s.handle(inbound)

		if s.isClosed() {
			return
		}
	}
}

func (s *Session) handle(inbound dto.RealtimeInbound) {
	switch inbound.Event {
	case dto.EventRoomJoin:
		var payload dto.RoomJoinPayload
		if len(inbound.Data) > 0 {
			if err := json.Unmarshal(inbound.Data, &payload); err != nil {
				s.reject("INVALID_PAYLOAD", "invalid room:join payload")
				return
			}
		}
		communityID := strings.TrimSpace(payload.CommunityID)
		if communityID == "" {
			s.reject("COMMUNITY_ID_REQUIRED", "communityId is required")
			return
		}
		if !s.relay.Join(s, ChannelForCommunity(communityID)) {
			return
		}
		s.reply(dto.RealtimeEvent{Event: dto.EventRoomJoined, Data: dto.RoomJoinPayload{CommunityID: communityID}})
	case dto.EventRoomLeave:
		s.relay.Leave(s)
	default:
		s.reject("UNKNOWN_EVENT", "unsupported event")
	}
}

func (s *Session) reject(code, message string) {
	s.reply(dto.RealtimeEvent{Event: dto.EventError, Data: dto.RealtimeError{Code: code, Message: message}})
}

func (s *Session) reply(event dto.RealtimeEvent) {
	if !s.enqueue(event) {
		s.logger.Warn().Str("event", event.Event).Msg("session queue full, dropping reply")
	}
}

func (s *Session) writer() {
	defer s.Close()

	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-s.send:
			if err := s.conn.WriteJSON(event); err != nil {
				s.logger.Debug().Err(err).Msg("realtime write loop terminated")
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				s.logger.Debug().Err(err).Msg("realtime ping failed")
				return
			}
		case <-s.closed:
			return
		}
	}
}
