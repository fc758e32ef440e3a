package core

const defaultEventBuffer = 16

// Client is a connected participant as seen by the core layer. Its ID is
// the user identifier generated at connection open; the display name is
// only known once the user creates or joins a room.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels.
func NewClient(id string, eventBuffer int) *Client {
	if eventBuffer <= 0 {
		eventBuffer = defaultEventBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, eventBuffer),
	}
}
