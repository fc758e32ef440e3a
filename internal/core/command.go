package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandCreateRoom creates a room with the requester as admin.
	CommandCreateRoom CommandKind = iota
	// CommandJoinRoom adds the requester to an existing room.
	CommandJoinRoom
	// CommandLeaveRoom removes the requester from its room voluntarily.
	CommandLeaveRoom
	// CommandSendMessage broadcasts a chat message to room members.
	CommandSendMessage
	// CommandRemoveUser evicts a member; only the room admin may do this.
	CommandRemoveUser
)

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	RoomID   string
	RoomName string
	UserName string
	TargetID string
	Text     string
}
