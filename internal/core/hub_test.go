package core

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func startHub(t *testing.T) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(nil, 4, 8)
	go hub.Run(ctx)
	return hub
}

func createRoom(t *testing.T, hub *Hub, c *Client, roomName, userName string) string {
	t.Helper()

	c.Commands <- &Command{Kind: CommandCreateRoom, RoomName: roomName, UserName: userName}
	ev := mustEvent(t, c.Events, EventRoomUpdate)
	if ev.Room == nil || ev.Room.ID == "" {
		t.Fatalf("room update without room snapshot: %+v", ev)
	}
	return ev.Room.ID
}

func TestHubCreateJoinChatRemoveScenario(t *testing.T) {
	hub := startHub(t)

	alice := NewClient("a", 0)
	bob := NewClient("b", 0)
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	roomID := createRoom(t, hub, alice, "lobby", "Alice")

	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID, UserName: "Bob"}

	// Both members, joiner included, see the join.
	for _, c := range []*Client{alice, bob} {
		ev := mustEvent(t, c.Events, EventUserJoined)
		if ev.User.Name != "Bob" || ev.Room.ID != roomID {
			t.Fatalf("unexpected join event: %+v", ev)
		}
		if len(ev.Room.Members) != 2 {
			t.Fatalf("expected 2 members in snapshot, got %d", len(ev.Room.Members))
		}
	}

	bob.Commands <- &Command{Kind: CommandSendMessage, RoomID: roomID, Text: "hi"}
	for _, c := range []*Client{alice, bob} {
		ev := mustEvent(t, c.Events, EventChatMessage)
		if ev.User.ID != "b" || ev.Text != "hi" {
			t.Fatalf("unexpected chat event: %+v", ev)
		}
		if ev.SentAt.IsZero() {
			t.Fatal("chat event missing timestamp")
		}
	}

	alice.Commands <- &Command{Kind: CommandRemoveUser, RoomID: roomID, TargetID: "b"}
	ev := mustEvent(t, bob.Events, EventUserRemoved)
	if ev.User.ID != "b" || ev.Room.ID != roomID {
		t.Fatalf("unexpected remove event: %+v", ev)
	}
	// Eviction is delivered to the target only.
	assertNoEvent(t, alice.Events)

	snapshots, err := hub.Rooms(context.Background())
	if err != nil {
		t.Fatalf("rooms query: %v", err)
	}
	if len(snapshots) != 1 || len(snapshots[0].Members) != 1 || snapshots[0].Members[0].ID != "a" {
		t.Fatalf("expected alice as sole member, got %+v", snapshots)
	}

	// The evicted user's next room-scoped action fails.
	bob.Commands <- &Command{Kind: CommandSendMessage, RoomID: roomID, Text: "still here?"}
	mustError(t, bob.Events, ErrCodeNotAMember)
}

func TestHubRoomLimit(t *testing.T) {
	hub := startHub(t)

	for i := 0; i < 4; i++ {
		c := NewClient(fmt.Sprintf("admin-%d", i), 0)
		hub.RegisterClient(c)
		createRoom(t, hub, c, fmt.Sprintf("room-%d", i), "admin")
	}

	extra := NewClient("admin-extra", 0)
	hub.RegisterClient(extra)
	extra.Commands <- &Command{Kind: CommandCreateRoom, RoomName: "one too many", UserName: "late"}
	mustError(t, extra.Events, ErrCodeRoomLimit)
}

func TestHubRoomFull(t *testing.T) {
	hub := startHub(t)

	admin := NewClient("admin", 0)
	hub.RegisterClient(admin)
	roomID := createRoom(t, hub, admin, "packed", "admin")

	for i := 0; i < 7; i++ {
		c := NewClient(fmt.Sprintf("member-%d", i), 0)
		hub.RegisterClient(c)
		c.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID, UserName: fmt.Sprintf("m%d", i)}
		mustEvent(t, c.Events, EventUserJoined)
	}

	ninth := NewClient("member-late", 0)
	hub.RegisterClient(ninth)
	ninth.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID, UserName: "late"}
	mustError(t, ninth.Events, ErrCodeRoomFull)
}

func TestHubDuplicateAdmin(t *testing.T) {
	hub := startHub(t)

	alice := NewClient("a", 0)
	hub.RegisterClient(alice)
	roomID := createRoom(t, hub, alice, "first", "Alice")

	alice.Commands <- &Command{Kind: CommandCreateRoom, RoomName: "second", UserName: "Alice"}
	mustError(t, alice.Events, ErrCodeDuplicateAdmin)

	// After the first room is gone the same user may create again.
	alice.Commands <- &Command{Kind: CommandLeaveRoom, RoomID: roomID}
	createRoom(t, hub, alice, "second", "Alice")
}

func TestHubJoinUnknownRoom(t *testing.T) {
	hub := startHub(t)

	alice := NewClient("a", 0)
	hub.RegisterClient(alice)

	alice.Commands <- &Command{Kind: CommandJoinRoom, RoomID: "ghost1", UserName: "Alice"}
	mustError(t, alice.Events, ErrCodeRoomNotFound)
}

func TestHubDuplicateJoinIsNoOpSuccess(t *testing.T) {
	hub := startHub(t)

	admin := NewClient("a", 0)
	bob := NewClient("b", 0)
	hub.RegisterClient(admin)
	hub.RegisterClient(bob)
	roomID := createRoom(t, hub, admin, "lobby", "Alice")

	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID, UserName: "Bob"}
	mustEvent(t, admin.Events, EventUserJoined)
	mustEvent(t, bob.Events, EventUserJoined)

	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID, UserName: "Bobby"}
	ev := mustEvent(t, bob.Events, EventUserJoined)
	if ev.User.Name != "Bob" {
		t.Fatalf("duplicate join must keep original name, got %q", ev.User.Name)
	}
	if len(ev.Room.Members) != 2 {
		t.Fatalf("duplicate join changed membership: %+v", ev.Room.Members)
	}
	// Existing members are not re-notified.
	assertNoEvent(t, admin.Events)
}

func TestHubChatValidation(t *testing.T) {
	hub := startHub(t)

	alice := NewClient("a", 0)
	hub.RegisterClient(alice)

	alice.Commands <- &Command{Kind: CommandSendMessage, RoomID: "nosuch", Text: "hi"}
	mustError(t, alice.Events, ErrCodeRoomNotFound)

	bob := NewClient("b", 0)
	hub.RegisterClient(bob)
	roomID := createRoom(t, hub, bob, "private", "Bob")

	alice.Commands <- &Command{Kind: CommandSendMessage, RoomID: roomID, Text: "let me in"}
	mustError(t, alice.Events, ErrCodeNotAMember)
}

func TestHubRemoveUserValidation(t *testing.T) {
	hub := startHub(t)

	admin := NewClient("a", 0)
	bob := NewClient("b", 0)
	hub.RegisterClient(admin)
	hub.RegisterClient(bob)
	roomID := createRoom(t, hub, admin, "lobby", "Alice")

	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID, UserName: "Bob"}
	mustEvent(t, bob.Events, EventUserJoined)

	bob.Commands <- &Command{Kind: CommandRemoveUser, RoomID: roomID, TargetID: "a"}
	mustError(t, bob.Events, ErrCodeNotAdmin)

	admin.Commands <- &Command{Kind: CommandRemoveUser, RoomID: roomID, TargetID: "nobody"}
	mustError(t, admin.Events, ErrCodeUserNotFound)

	admin.Commands <- &Command{Kind: CommandRemoveUser, RoomID: "nosuch", TargetID: "b"}
	mustError(t, admin.Events, ErrCodeRoomNotFound)
}

func TestHubAdminDisconnectDissolvesRoom(t *testing.T) {
	hub := startHub(t)

	admin := NewClient("a", 0)
	bob := NewClient("b", 0)
	carol := NewClient("c", 0)
	hub.RegisterClient(admin)
	hub.RegisterClient(bob)
	hub.RegisterClient(carol)

	roomID := createRoom(t, hub, admin, "doomed", "Alice")
	for _, c := range []*Client{bob, carol} {
		c.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID, UserName: "member"}
		mustEvent(t, c.Events, EventUserJoined)
	}

	hub.UnregisterClient(admin)

	for _, c := range []*Client{bob, carol} {
		ev := mustEvent(t, c.Events, EventAdminLeft)
		if ev.User.ID != "a" || ev.Room.ID != roomID {
			t.Fatalf("unexpected admin_left event: %+v", ev)
		}
		// Exactly one ADMIN_LEFT per remaining member.
		assertNoEvent(t, c.Events)
	}

	bob.Commands <- &Command{Kind: CommandSendMessage, RoomID: roomID, Text: "anyone?"}
	mustError(t, bob.Events, ErrCodeRoomNotFound)

	snapshots, err := hub.Rooms(context.Background())
	if err != nil {
		t.Fatalf("rooms query: %v", err)
	}
	if len(snapshots) != 0 {
		t.Fatalf("expected no rooms, got %+v", snapshots)
	}
}

func TestHubMemberDisconnectNotifiesRoom(t *testing.T) {
	hub := startHub(t)

	admin := NewClient("a", 0)
	bob := NewClient("b", 0)
	hub.RegisterClient(admin)
	hub.RegisterClient(bob)

	roomID := createRoom(t, hub, admin, "lobby", "Alice")
	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID, UserName: "Bob"}
	mustEvent(t, admin.Events, EventUserJoined)

	hub.UnregisterClient(bob)

	ev := mustEvent(t, admin.Events, EventUserLeft)
	if ev.User.ID != "b" || ev.Room.ID != roomID {
		t.Fatalf("unexpected user_left event: %+v", ev)
	}
	if len(ev.Room.Members) != 1 {
		t.Fatalf("expected membership to shrink to 1, got %d", len(ev.Room.Members))
	}
}

func TestHubLeaveRoom(t *testing.T) {
	hub := startHub(t)

	admin := NewClient("a", 0)
	bob := NewClient("b", 0)
	hub.RegisterClient(admin)
	hub.RegisterClient(bob)

	roomID := createRoom(t, hub, admin, "lobby", "Alice")
	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID, UserName: "Bob"}
	mustEvent(t, admin.Events, EventUserJoined)
	mustEvent(t, bob.Events, EventUserJoined)

	bob.Commands <- &Command{Kind: CommandLeaveRoom, RoomID: roomID}
	ev := mustEvent(t, admin.Events, EventUserLeft)
	if ev.User.ID != "b" {
		t.Fatalf("unexpected user_left event: %+v", ev)
	}

	// The former member may now join a fresh room.
	roomID2 := createRoom(t, hub, bob, "bobs place", "Bob")
	if roomID2 == roomID {
		t.Fatalf("expected a fresh room id")
	}

	// Admin leave dissolves the room.
	carol := NewClient("c", 0)
	hub.RegisterClient(carol)
	carol.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID, UserName: "Carol"}
	mustEvent(t, carol.Events, EventUserJoined)

	admin.Commands <- &Command{Kind: CommandLeaveRoom, RoomID: roomID}
	ev = mustEvent(t, carol.Events, EventAdminLeft)
	if ev.User.ID != "a" {
		t.Fatalf("unexpected admin_left event: %+v", ev)
	}
}

func TestHubDisconnectWithoutRoom(t *testing.T) {
	hub := startHub(t)

	alice := NewClient("a", 0)
	hub.RegisterClient(alice)
	hub.UnregisterClient(alice)

	// No room side effects; a new client can still interact normally.
	bob := NewClient("b", 0)
	hub.RegisterClient(bob)
	createRoom(t, hub, bob, "lobby", "Bob")

	snapshots, err := hub.Rooms(context.Background())
	if err != nil {
		t.Fatalf("rooms query: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected one room, got %d", len(snapshots))
	}
}

func TestHubRoomsQueryCancelled(t *testing.T) {
	hub := NewHub(nil, 4, 8) // not running

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := hub.Rooms(ctx); err == nil {
		t.Fatal("expected context error from stopped hub")
	}
}
