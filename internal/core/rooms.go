package core

import "github.com/akimpr/roomrelay-server/internal/utils"

// Member is a user as recorded in a room's membership list.
type Member struct {
	ID   string
	Name string
}

// Room is a named, admin-owned group of users. Members keep join order.
type Room struct {
	ID      string
	Name    string
	AdminID string
	members []Member
}

// Members returns a copy of the membership list in join order.
func (r *Room) Members() []Member {
	out := make([]Member, len(r.members))
	copy(out, r.members)
	return out
}

// Member returns the member with the given user id, if present.
func (r *Room) Member(userID string) (Member, bool) {
	for _, m := range r.members {
		if m.ID == userID {
			return m, true
		}
	}
	return Member{}, false
}

// Snapshot returns an immutable copy of the room's current state.
func (r *Room) Snapshot() *RoomSnapshot {
	return &RoomSnapshot{
		ID:      r.ID,
		Name:    r.Name,
		AdminID: r.AdminID,
		Members: r.Members(),
	}
}

func (r *Room) removeMember(userID string) bool {
	for i, m := range r.members {
		if m.ID == userID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return true
		}
	}
	return false
}

// RoomStore holds the authoritative set of active rooms.
// Not safe for concurrent use; the hub goroutine is its sole owner.
type RoomStore struct {
	maxRooms   int
	maxMembers int
	rooms      map[string]*Room
	newCode    func() string
}

// NewRoomStore returns an empty store enforcing the given ceilings.
func NewRoomStore(maxRooms, maxMembers int) *RoomStore {
	return &RoomStore{
		maxRooms:   maxRooms,
		maxMembers: maxMembers,
		rooms:      make(map[string]*Room),
		newCode:    utils.NewRoomCode,
	}
}

// Create allocates a new room with admin as its sole member. It fails when
// the active room ceiling is reached or when admin already administers a
// room. Code generation retries until the code is unused.
func (s *RoomStore) Create(name string, admin Member) (*Room, *CoreError) {
	if len(s.rooms) >= s.maxRooms {
		return nil, coreError(ErrCodeRoomLimit, MsgRoomLimit)
	}
	for _, r := range s.rooms {
		if r.AdminID == admin.ID {
			return nil, coreError(ErrCodeDuplicateAdmin, MsgDuplicateAdmin)
		}
	}

	var code string
	for {
		code = s.newCode()
		if _, taken := s.rooms[code]; !taken {
			break
		}
	}

	room := &Room{
		ID:      code,
		Name:    name,
		AdminID: admin.ID,
		members: []Member{admin},
	}
	s.rooms[code] = room
	return room, nil
}

// Find returns the room with the given id, if it exists.
func (s *RoomStore) Find(roomID string) (*Room, bool) {
	r, ok := s.rooms[roomID]
	return r, ok
}

// Join appends a member to a room. A join by an existing member is a no-op
// success; the second return value reports whether the user was already in.
func (s *RoomStore) Join(roomID string, member Member) (*Room, bool, *CoreError) {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, false, coreError(ErrCodeRoomNotFound, MsgRoomNotFound)
	}
	if _, in := room.Member(member.ID); in {
		return room, true, nil
	}
	if len(room.members) >= s.maxMembers {
		return nil, false, coreError(ErrCodeRoomFull, MsgRoomFull)
	}
	room.members = append(room.members, member)
	return room, false, nil
}

// RemoveMember drops a user from a room's membership. No-op if absent.
func (s *RoomStore) RemoveMember(roomID, userID string) bool {
	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	return room.removeMember(userID)
}

// Delete removes the room entirely.
func (s *RoomStore) Delete(roomID string) {
	delete(s.rooms, roomID)
}

// FindContaining locates the room a user is currently a member of.
// Linear scan; room and member counts are bounded small.
func (s *RoomStore) FindContaining(userID string) (*Room, bool) {
	for _, room := range s.rooms {
		if _, in := room.Member(userID); in {
			return room, true
		}
	}
	return nil, false
}

// List returns snapshots of all active rooms.
func (s *RoomStore) List() []*RoomSnapshot {
	out := make([]*RoomSnapshot, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room.Snapshot())
	}
	return out
}

// Len returns the active room count.
func (s *RoomStore) Len() int {
	return len(s.rooms)
}
