package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/akimpr/roomrelay-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "display name")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	fmt.Printf("Connected to %s as %s\n", *addr, *user)
	fmt.Println("Commands: /create <name> | /join <roomId> | /leave | /remove <userId> | anything else is chat. Ctrl+C to exit.")

	state := &clientState{user: *user}

	go func() {
		defer cancel()
		readLoop(ctx, conn, state)
	}()

	writeLoop(ctx, conn, state)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

// clientState tracks the room the server last placed us in.
type clientState struct {
	user   string
	roomID string
}

func readLoop(ctx context.Context, conn *websocket.Conn, state *clientState) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if outbound.Error != "" {
			fmt.Printf("error: %s\n", outbound.Error)
			continue
		}

		switch outbound.Type {
		case proto.OutboundTypeChatMessage:
			var evt proto.ChatEventPayload
			if err := decodePayload(outbound.Payload, &evt); err != nil {
				log.Printf("decode chat: %v", err)
				continue
			}
			fmt.Printf("%s: %s\n", evt.User.Name, evt.Message)
		case proto.OutboundTypeRoomUpdate:
			var evt proto.RoomEventPayload
			if err := decodePayload(outbound.Payload, &evt); err != nil {
				log.Printf("decode room update: %v", err)
				continue
			}
			state.roomID = evt.Room.ID
			fmt.Printf("room %q created, code %s\n", evt.Room.Name, evt.Room.ID)
		case proto.OutboundTypeUserJoined:
			var evt proto.RoomEventPayload
			if err := decodePayload(outbound.Payload, &evt); err != nil {
				log.Printf("decode user joined: %v", err)
				continue
			}
			state.roomID = evt.Room.ID
			fmt.Printf("[%s] %s joined (%d members)\n", evt.Room.ID, evt.User.Name, len(evt.Room.Users))
		case proto.OutboundTypeUserLeft:
			var evt proto.RoomEventPayload
			if err := decodePayload(outbound.Payload, &evt); err != nil {
				log.Printf("decode user left: %v", err)
				continue
			}
			fmt.Printf("[%s] %s left\n", evt.Room.ID, evt.User.Name)
		case proto.OutboundTypeAdminLeft:
			state.roomID = ""
			fmt.Println("admin left, room closed")
		case proto.OutboundTypeRemoveUser:
			state.roomID = ""
			fmt.Println("you were removed from the room")
		default:
			fmt.Printf("type=%s payload=%v\n", outbound.Type, outbound.Payload)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, state *clientState) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := sendLine(ctx, conn, state, text); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

func sendLine(ctx context.Context, conn *websocket.Conn, state *clientState, text string) error {
	var (
		inboundType string
		payload     any
	)

	switch {
	case strings.HasPrefix(text, "/create "):
		inboundType = proto.InboundTypeCreateRoom
		payload = proto.CreateRoomPayload{
			RoomName: strings.TrimSpace(strings.TrimPrefix(text, "/create ")),
			UserName: state.user,
		}
	case strings.HasPrefix(text, "/join "):
		inboundType = proto.InboundTypeJoinRoom
		payload = proto.JoinRoomPayload{
			RoomID:   strings.TrimSpace(strings.TrimPrefix(text, "/join ")),
			UserName: state.user,
		}
	case text == "/leave":
		inboundType = proto.InboundTypeLeaveRoom
		payload = proto.LeaveRoomPayload{RoomID: state.roomID}
		state.roomID = ""
	case strings.HasPrefix(text, "/remove "):
		inboundType = proto.InboundTypeRemoveUser
		payload = proto.RemoveUserPayload{
			RoomID: state.roomID,
			UserID: strings.TrimSpace(strings.TrimPrefix(text, "/remove ")),
		}
	default:
		inboundType = proto.InboundTypeChatMessage
		payload = proto.ChatMessagePayload{RoomID: state.roomID, Message: text}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return wsjson.Write(ctx, conn, proto.Inbound{Type: inboundType, Payload: raw})
}

func decodePayload(payload any, dst any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
