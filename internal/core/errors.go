package core

// Error codes for domain errors.
const (
	ErrCodeBadPayload     = "bad_payload"
	ErrCodeUnknownType    = "unknown_type"
	ErrCodeRoomLimit      = "room_limit"
	ErrCodeDuplicateAdmin = "duplicate_admin"
	ErrCodeRoomNotFound   = "room_not_found"
	ErrCodeRoomFull       = "room_full"
	ErrCodeAlreadyMember  = "already_member"
	ErrCodeNotAMember     = "not_a_member"
	ErrCodeNotAdmin       = "not_admin"
	ErrCodeUserNotFound   = "user_not_found"
)

// Wire-facing error messages. These are the strings clients see.
const (
	MsgBadPayload     = "Invalid JSON format."
	MsgUnknownType    = "Unknown message type."
	MsgRoomLimit      = "Room limit reached. Please try after sometime."
	MsgDuplicateAdmin = "You already created a room!"
	MsgRoomNotFound   = "Incorrect room id."
	MsgRoomFull       = "Room has reached its max capacity."
	MsgAlreadyMember  = "You are already in a room."
	MsgNotAMember     = "You are not part of this room."
	MsgNotAdmin       = "Only admin can remove users"
	MsgUserNotFound   = "No corresponding user found."
)

// CoreError wraps a code and the human-readable message sent to clients.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
