package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// session tracks the per-connection state owned by the hub: the room the
// user currently occupies, empty while merely connected.
type session struct {
	client *Client
	roomID string
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

type roomsQuery struct {
	reply chan []*RoomSnapshot
}

// Hub is the session coordinator. All room and registry state is owned by
// the single goroutine running Run; registrations, disconnects, commands
// and queries are serialized through its channels, so no two handlers ever
// interleave on shared state.
type Hub struct {
	log      *zerolog.Logger
	rooms    *RoomStore
	registry *Registry
	sessions map[string]*session

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	queries    chan roomsQuery
}

// NewHub creates a hub enforcing the given room and membership ceilings.
func NewHub(logger *zerolog.Logger, maxRooms, maxMembers int) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		log:        logger,
		rooms:      NewRoomStore(maxRooms, maxMembers),
		registry:   NewRegistry(),
		sessions:   make(map[string]*session),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand),
		queries:    make(chan roomsQuery),
	}
}

// RegisterClient adds a client to the hub and starts pumping its command
// channel into the coordinator loop.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
	go func() {
		for cmd := range c.Commands {
			h.commands <- clientCommand{client: c, cmd: cmd}
		}
	}()
}

// UnregisterClient reports a closed connection. Processed in the same
// serialized path as inbound commands.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Rooms returns snapshots of all active rooms.
func (h *Hub) Rooms(ctx context.Context) ([]*RoomSnapshot, error) {
	q := roomsQuery{reply: make(chan []*RoomSnapshot, 1)}
	select {
	case h.queries <- q:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case snapshots := <-q.reply:
		return snapshots, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run processes hub traffic until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.handleRegister(c)
		case c := <-h.unregister:
			h.handleDisconnect(c)
		case cc := <-h.commands:
			h.handleCommand(cc.client, cc.cmd)
		case q := <-h.queries:
			q.reply <- h.rooms.List()
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	h.sessions[c.ID] = &session{client: c}
	h.registry.Register(c.ID, c.Events)
	h.log.Debug().Str("user_id", c.ID).Int("connections", h.registry.Len()).Msg("client registered")
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	sess, ok := h.sessions[c.ID]
	if !ok {
		// Connection already closed; late commands are dropped.
		return
	}

	switch cmd.Kind {
	case CommandCreateRoom:
		h.handleCreateRoom(sess, cmd)
	case CommandJoinRoom:
		h.handleJoinRoom(sess, cmd)
	case CommandLeaveRoom:
		h.handleLeaveRoom(sess, cmd)
	case CommandSendMessage:
		h.handleSendMessage(sess, cmd)
	case CommandRemoveUser:
		h.handleRemoveUser(sess, cmd)
	default:
		h.sendError(sess, coreError(ErrCodeUnknownType, MsgUnknownType))
	}
}

func (h *Hub) handleCreateRoom(sess *session, cmd *Command) {
	if sess.roomID != "" {
		if room, ok := h.rooms.Find(sess.roomID); ok && room.AdminID == sess.client.ID {
			h.sendError(sess, coreError(ErrCodeDuplicateAdmin, MsgDuplicateAdmin))
		} else {
			h.sendError(sess, coreError(ErrCodeAlreadyMember, MsgAlreadyMember))
		}
		return
	}

	admin := Member{ID: sess.client.ID, Name: cmd.UserName}
	room, cerr := h.rooms.Create(cmd.RoomName, admin)
	if cerr != nil {
		h.sendError(sess, cerr)
		return
	}

	sess.roomID = room.ID
	h.send(sess.client.ID, &Event{Kind: EventRoomUpdate, User: admin, Room: room.Snapshot()})
	h.log.Info().Str("room_id", room.ID).Str("room_name", room.Name).Str("admin_id", admin.ID).Msg("room created")
}

func (h *Hub) handleJoinRoom(sess *session, cmd *Command) {
	if sess.roomID != "" && sess.roomID != cmd.RoomID {
		h.sendError(sess, coreError(ErrCodeAlreadyMember, MsgAlreadyMember))
		return
	}

	member := Member{ID: sess.client.ID, Name: cmd.UserName}
	room, already, cerr := h.rooms.Join(cmd.RoomID, member)
	if cerr != nil {
		h.sendError(sess, cerr)
		return
	}

	sess.roomID = room.ID
	if already {
		// Duplicate join is a no-op success: echo the current state to the
		// requester only, keeping the originally recorded name.
		existing, _ := room.Member(sess.client.ID)
		h.send(sess.client.ID, &Event{Kind: EventUserJoined, User: existing, Room: room.Snapshot()})
		return
	}

	h.broadcast(room, &Event{Kind: EventUserJoined, User: member, Room: room.Snapshot()}, nil)
	h.log.Info().Str("room_id", room.ID).Str("user_id", member.ID).Msg("user joined room")
}

func (h *Hub) handleLeaveRoom(sess *session, cmd *Command) {
	room, ok := h.rooms.Find(cmd.RoomID)
	if !ok {
		h.sendError(sess, coreError(ErrCodeRoomNotFound, MsgRoomNotFound))
		return
	}
	member, in := room.Member(sess.client.ID)
	if !in {
		h.sendError(sess, coreError(ErrCodeNotAMember, MsgNotAMember))
		return
	}

	sess.roomID = ""
	h.leaveRoom(room, member)
	h.log.Info().Str("room_id", room.ID).Str("user_id", member.ID).Msg("user left room")
}

func (h *Hub) handleSendMessage(sess *session, cmd *Command) {
	room, ok := h.rooms.Find(cmd.RoomID)
	if !ok {
		h.sendError(sess, coreError(ErrCodeRoomNotFound, MsgRoomNotFound))
		return
	}
	member, in := room.Member(sess.client.ID)
	if !in {
		h.sendError(sess, coreError(ErrCodeNotAMember, MsgNotAMember))
		return
	}

	h.broadcast(room, &Event{
		Kind:   EventChatMessage,
		User:   member,
		Text:   cmd.Text,
		SentAt: time.Now(),
	}, nil)
}

func (h *Hub) handleRemoveUser(sess *session, cmd *Command) {
	room, ok := h.rooms.Find(cmd.RoomID)
	if !ok {
		h.sendError(sess, coreError(ErrCodeRoomNotFound, MsgRoomNotFound))
		return
	}
	if room.AdminID != sess.client.ID {
		h.sendError(sess, coreError(ErrCodeNotAdmin, MsgNotAdmin))
		return
	}
	target, in := room.Member(cmd.TargetID)
	if !in {
		h.sendError(sess, coreError(ErrCodeUserNotFound, MsgUserNotFound))
		return
	}

	if target.ID == room.AdminID {
		// Admin removing itself dissolves the room, same as leaving.
		sess.roomID = ""
		h.leaveRoom(room, target)
		return
	}

	h.rooms.RemoveMember(room.ID, target.ID)
	if tsess, ok := h.sessions[target.ID]; ok {
		tsess.roomID = ""
	}
	h.send(target.ID, &Event{Kind: EventUserRemoved, User: target, Room: room.Snapshot()})
	h.log.Info().Str("room_id", room.ID).Str("user_id", target.ID).Msg("user removed from room")
}

func (h *Hub) handleDisconnect(c *Client) {
	delete(h.sessions, c.ID)
	h.registry.Unregister(c.ID)

	room, ok := h.rooms.FindContaining(c.ID)
	if !ok {
		return
	}
	member, _ := room.Member(c.ID)
	h.leaveRoom(room, member)
	h.log.Debug().Str("user_id", c.ID).Str("room_id", room.ID).Msg("client disconnected from room")
}

// leaveRoom applies a departure, voluntary or not. An admin departure
// deletes the room and notifies every remaining member once; any other
// departure shrinks membership and notifies the remainder.
func (h *Hub) leaveRoom(room *Room, member Member) {
	if member.ID == room.AdminID {
		remaining := room.Members()
		h.rooms.Delete(room.ID)
		snapshot := room.Snapshot()
		for _, m := range remaining {
			if m.ID == member.ID {
				continue
			}
			if sess, ok := h.sessions[m.ID]; ok {
				sess.roomID = ""
			}
			h.send(m.ID, &Event{Kind: EventAdminLeft, User: member, Room: snapshot})
		}
		h.log.Info().Str("room_id", room.ID).Msg("room dissolved, admin left")
		return
	}

	h.rooms.RemoveMember(room.ID, member.ID)
	h.broadcast(room, &Event{Kind: EventUserLeft, User: member, Room: room.Snapshot()}, nil)
}

// broadcast delivers an event to every room member not in exclude.
// A missing registry entry is silently skipped.
func (h *Hub) broadcast(room *Room, event *Event, exclude map[string]struct{}) {
	for _, m := range room.Members() {
		if exclude != nil {
			if _, skip := exclude[m.ID]; skip {
				continue
			}
		}
		h.send(m.ID, event)
	}
}

// send delivers an event to one user, best-effort. Slow consumers whose
// buffer is full have the event dropped rather than blocking the loop.
func (h *Hub) send(userID string, event *Event) {
	ch, ok := h.registry.Lookup(userID)
	if !ok {
		return
	}
	select {
	case ch <- event:
	default:
		h.log.Warn().Str("user_id", userID).Msg("event dropped, slow consumer")
	}
}

func (h *Hub) sendError(sess *session, cerr *CoreError) {
	h.send(sess.client.ID, &Event{Kind: EventError, Error: cerr})
}
