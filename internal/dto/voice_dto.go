package dto

// VoiceTokenRequest asks for a media transport credential scoped to one room.
type VoiceTokenRequest struct {
	RoomName string `json:"roomName" validate:"max=128"`
}

// VoiceTokenResponse carries the signed credential and the transport endpoint.
type VoiceTokenResponse struct {
	Token     string `json:"token"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expiresAt"`
}
