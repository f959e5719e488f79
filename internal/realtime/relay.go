package realtime

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/observability"
)

const communityChannelPrefix = "community:"

// ChannelForCommunity returns the relay channel label of a community.
func ChannelForCommunity(communityID string) string {
	return communityChannelPrefix + communityID
}

// Relay is the process-wide hub grouping live sessions into channels.
// A session belongs to at most one channel at a time.
type Relay struct {
	mu       sync.RWMutex
	channels map[string]map[*Session]struct{}
	log      zerolog.Logger
}

// NewRelay constructs an empty relay.
func NewRelay(logger zerolog.Logger) *Relay {
	return &Relay{
		channels: make(map[string]map[*Session]struct{}),
		log:      logger.With().Str("component", "realtime_relay").Logger(),
	}
}

// Join moves the session into label, leaving its previous channel first.
// It reports false when the session is already closed.
func (r *Relay) Join(session *Session, label string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.isClosed() {
		return false
	}

	if session.channel == label {
		if _, ok := r.channels[label][session]; ok {
			return true
		}
	}

	previous := r.removeLocked(session)

	members, ok := r.channels[label]
	if !ok {
		members = make(map[*Session]struct{})
		r.channels[label] = members
	}
	members[session] = struct{}{}
	session.channel = label

	r.log.Debug().
		Str("session_id", session.id).
		Str("user_id", session.userID).
		Str("from", previous).
		Str("channel", label).
		Msg("session joined channel")

	return true
}

// Leave removes the session from whatever channel it belongs to.
func (r *Relay) Leave(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous := r.removeLocked(session); previous != "" {
		r.log.Debug().Str("session_id", session.id).Str("channel", previous).Msg("session left channel")
	}
}

// Publish enqueues event to every session in label at the time of the call and
// returns how many sessions accepted it. It never blocks on slow sessions.
func (r *Relay) Publish(label string, event dto.RealtimeEvent) int {
	r.mu.RLock()
	members := make([]*Session, 0, len(r.channels[label]))
	for session := range r.channels[label] {
		members = append(members, session)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, session := range members {
		if session.enqueue(event) {
			delivered++
			continue
		}
		observability.RelayDropped().Inc()
		r.log.Warn().Str("channel", label).Str("session_id", session.id).Msg("dropping realtime event for slow or closed session")
	}

	observability.RelayDeliveries().Add(float64(delivered))
	return delivered
}

// ChannelOf returns the channel the session currently belongs to.
func (r *Relay) ChannelOf(session *Session) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return session.channel
}

// MemberCount returns the number of sessions joined to label.
func (r *Relay) MemberCount(label string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[label])
}

// channelCount returns the number of channels with at least one member.
func (r *Relay) channelCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// removeLocked drops the session from its channel and returns the old label. Caller holds mu.
func (r *Relay) removeLocked(session *Session) string {
	previous := session.channel
	if previous == "" {
		return ""
	}

	if members, ok := r.channels[previous]; ok {
		delete(members, session)
		if len(members) == 0 {
			delete(r.channels, previous)
		}
	}
	session.channel = ""
	return previous
}
