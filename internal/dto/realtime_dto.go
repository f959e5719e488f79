package dto

import "encoding/json"

// Realtime event names exchanged over the websocket.
const (
	EventRoomJoin   = "room:join"
	EventRoomJoined = "room:joined"
	EventRoomLeave  = "room:leave"
	EventMessageNew = "message:new"
	EventError      = "error"
)

// RealtimeInbound is an envelope received from a websocket client.
type RealtimeInbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RealtimeEvent is an envelope pushed to websocket clients.
type RealtimeEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// RoomJoinPayload binds the connection to a community channel.
type RoomJoinPayload struct {
	CommunityID string `json:"communityId"`
}

// RealtimeError reports a rejected inbound event.
type RealtimeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
