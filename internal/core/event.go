package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomUpdate confirms a room creation to the creator.
	EventRoomUpdate EventKind = iota
	// EventUserJoined notifies room members that a user joined.
	EventUserJoined
	// EventChatMessage delivers a chat message to room members.
	EventChatMessage
	// EventUserRemoved tells an evicted user it lost room membership.
	EventUserRemoved
	// EventUserLeft notifies remaining members that a user left.
	EventUserLeft
	// EventAdminLeft notifies members that the admin left and the room is gone.
	EventAdminLeft
	// EventError notifies the requester about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
// Room carries a snapshot taken when the event was emitted, so it stays
// meaningful even after the room itself is deleted.
type Event struct {
	Kind   EventKind
	User   Member
	Room   *RoomSnapshot
	Text   string
	SentAt time.Time
	Error  *CoreError
}

// RoomSnapshot is an immutable copy of a room's state.
type RoomSnapshot struct {
	ID      string
	Name    string
	AdminID string
	Members []Member
}
