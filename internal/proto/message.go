package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const (
	InboundTypeCreateRoom  = "CREATE_ROOM"
	InboundTypeJoinRoom    = "JOIN_ROOM"
	InboundTypeLeaveRoom   = "LEAVE_ROOM"
	InboundTypeChatMessage = "CHAT_MESSAGE"
	InboundTypeRemoveUser  = "REMOVE_USER"

	OutboundTypeRoomUpdate  = "ROOM_UPDATE"
	OutboundTypeUserJoined  = "USER_JOINED"
	OutboundTypeChatMessage = "CHAT_MESSAGE"
	OutboundTypeRemoveUser  = "REMOVE_USER"
	OutboundTypeUserLeft    = "USER_LEFT"
	OutboundTypeAdminLeft   = "ADMIN_LEFT"
)

// CreateRoomPayload asks to create a room with the sender as admin.
type CreateRoomPayload struct {
	RoomName string `json:"roomName"`
	UserName string `json:"userName"`
}

// JoinRoomPayload asks to join an existing room by code.
type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

// LeaveRoomPayload asks to leave the given room.
type LeaveRoomPayload struct {
	RoomID string `json:"roomId"`
}

// ChatMessagePayload carries a chat message for a room.
type ChatMessagePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// RemoveUserPayload asks to evict a member; admin only.
type RemoveUserPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// Outbound is the envelope for messages sent to the client. Exactly one of
// Type/Payload or Error is set.
type Outbound struct {
	Type    string `json:"type,omitempty"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// User identifies a room member on the wire.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Room is the wire representation of a room snapshot.
type Room struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	AdminID string `json:"adminId"`
	Users   []User `json:"users"`
}

// RoomEventPayload is shared by ROOM_UPDATE, USER_JOINED, REMOVE_USER,
// USER_LEFT and ADMIN_LEFT: the subject user plus the room snapshot.
type RoomEventPayload struct {
	User User `json:"user"`
	Room Room `json:"room"`
}

// ChatEventPayload delivers a broadcast chat message.
type ChatEventPayload struct {
	User      User   `json:"user"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}
