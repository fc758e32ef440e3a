package http

import (
	"encoding/json"

	"github.com/akimpr/roomrelay-server/internal/core"
	"github.com/akimpr/roomrelay-server/internal/proto"
)

// inboundToCommand maps a wire envelope to a core command. A non-empty
// errMsg means the envelope was rejected and the message should be sent
// back to the requester as {error}.
func inboundToCommand(inbound proto.Inbound) (cmd *core.Command, errMsg string) {
	switch inbound.Type {
	case proto.InboundTypeCreateRoom:
		var p proto.CreateRoomPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return nil, core.MsgBadPayload
		}
		return &core.Command{
			Kind:     core.CommandCreateRoom,
			RoomName: p.RoomName,
			UserName: p.UserName,
		}, ""
	case proto.InboundTypeJoinRoom:
		var p proto.JoinRoomPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return nil, core.MsgBadPayload
		}
		return &core.Command{
			Kind:     core.CommandJoinRoom,
			RoomID:   p.RoomID,
			UserName: p.UserName,
		}, ""
	case proto.InboundTypeLeaveRoom:
		var p proto.LeaveRoomPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return nil, core.MsgBadPayload
		}
		return &core.Command{
			Kind:   core.CommandLeaveRoom,
			RoomID: p.RoomID,
		}, ""
	case proto.InboundTypeChatMessage:
		var p proto.ChatMessagePayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return nil, core.MsgBadPayload
		}
		return &core.Command{
			Kind:   core.CommandSendMessage,
			RoomID: p.RoomID,
			Text:   p.Message,
		}, ""
	case proto.InboundTypeRemoveUser:
		var p proto.RemoveUserPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return nil, core.MsgBadPayload
		}
		return &core.Command{
			Kind:     core.CommandRemoveUser,
			RoomID:   p.RoomID,
			TargetID: p.UserID,
		}, ""
	default:
		return nil, core.MsgUnknownType
	}
}

// outboundFromEvent maps a core event to its wire envelope.
func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoomUpdate:
		return roomOutbound(proto.OutboundTypeRoomUpdate, event)
	case core.EventUserJoined:
		return roomOutbound(proto.OutboundTypeUserJoined, event)
	case core.EventUserRemoved:
		return roomOutbound(proto.OutboundTypeRemoveUser, event)
	case core.EventUserLeft:
		return roomOutbound(proto.OutboundTypeUserLeft, event)
	case core.EventAdminLeft:
		return roomOutbound(proto.OutboundTypeAdminLeft, event)
	case core.EventChatMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeChatMessage,
			Payload: proto.ChatEventPayload{
				User:      userFromMember(event.User),
				Message:   event.Text,
				Timestamp: event.SentAt.Unix(),
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Error: "unknown error"}
		}
		return proto.Outbound{Error: event.Error.Message}
	default:
		return proto.Outbound{Error: "unknown error"}
	}
}

func roomOutbound(outboundType string, event *core.Event) proto.Outbound {
	payload := proto.RoomEventPayload{User: userFromMember(event.User)}
	if event.Room != nil {
		payload.Room = roomFromSnapshot(event.Room)
	}
	return proto.Outbound{Type: outboundType, Payload: payload}
}

func userFromMember(m core.Member) proto.User {
	return proto.User{ID: m.ID, Name: m.Name}
}

func roomFromSnapshot(snap *core.RoomSnapshot) proto.Room {
	users := make([]proto.User, 0, len(snap.Members))
	for _, m := range snap.Members {
		users = append(users, userFromMember(m))
	}
	return proto.Room{
		ID:      snap.ID,
		Name:    snap.Name,
		AdminID: snap.AdminID,
		Users:   users,
	}
}
