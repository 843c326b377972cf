package http

import (
	"encoding/json"

	"github.com/vovakirdan/ghostcord/internal/core"
	"github.com/vovakirdan/ghostcord/internal/proto"
)

var errInvalidPayload = &proto.Error{Code: core.ErrCodeBadRequest, Msg: "invalid payload"}

var signalCommands = map[string]core.CommandKind{
	proto.InboundTypeCallUser:     core.CommandCallUser,
	proto.InboundTypeAnswerCall:   core.CommandAnswerCall,
	proto.InboundTypeIceCandidate: core.CommandIceCandidate,
	proto.InboundTypeEndCall:      core.CommandEndCall,
}

// decode unmarshals data into v. An absent payload decodes as an empty object.
func decode(data json.RawMessage, v any) *proto.Error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errInvalidPayload
	}
	return nil
}

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if perr := decode(inbound.Data, &join); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandJoin, Name: join.Name, Token: join.Token}, nil

	case proto.InboundTypeChannelMessage:
		var msg proto.ChannelMessageData
		if perr := decode(inbound.Data, &msg); perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind:     core.CommandChannelMessage,
			ServerID: msg.Server,
			Channel:  msg.Channel,
			Text:     msg.Msg.Text,
		}, nil

	case proto.InboundTypeGlobalMessage:
		var msg proto.GlobalMessageData
		if perr := decode(inbound.Data, &msg); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandGlobalMessage, Text: msg.Text}, nil

	case proto.InboundTypeDirectMessage:
		var msg proto.DirectMessageData
		if perr := decode(inbound.Data, &msg); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandDirectMessage, To: msg.To, Text: msg.Msg.Text}, nil

	case proto.InboundTypeGetMessages:
		var req proto.GetMessagesData
		if perr := decode(inbound.Data, &req); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandGetMessages, ServerID: req.Server, Channel: req.Channel}, nil

	case proto.InboundTypeGetDirectMessages:
		var req proto.GetDirectMessagesData
		if perr := decode(inbound.Data, &req); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandGetDirectMessages, To: req.With}, nil

	case proto.InboundTypeGetGlobalMessages:
		return &core.Command{Kind: core.CommandGetGlobalMessages}, nil

	case proto.InboundTypeGetServers:
		return &core.Command{Kind: core.CommandGetServers}, nil

	case proto.InboundTypeCreateServer:
		var req proto.CreateServerData
		if perr := decode(inbound.Data, &req); perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind:     core.CommandCreateServer,
			ServerID: req.ServerID,
			Name:     req.Server.Name,
			User:     req.Server.Owner,
		}, nil

	case proto.InboundTypeJoinServer:
		var req proto.JoinServerData
		if perr := decode(inbound.Data, &req); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandJoinServer, ServerID: req.ServerID, User: req.Username}, nil

	case proto.InboundTypeCreateChannel:
		var req proto.CreateChannelData
		if perr := decode(inbound.Data, &req); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandCreateChannel, ServerID: req.ServerID, Name: req.Name}, nil

	case proto.InboundTypeFriendRequest, proto.InboundTypeAcceptFriend:
		var req proto.FriendData
		if perr := decode(inbound.Data, &req); perr != nil {
			return nil, perr
		}
		kind := core.CommandFriendRequest
		if inbound.Type == proto.InboundTypeAcceptFriend {
			kind = core.CommandAcceptFriend
		}
		return &core.Command{Kind: kind, To: req.To}, nil

	case proto.InboundTypeRemoveFriend:
		var req proto.RemoveFriendData
		if perr := decode(inbound.Data, &req); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandRemoveFriend, To: req.Username}, nil

	case proto.InboundTypeGetFriends:
		return &core.Command{Kind: core.CommandGetFriends}, nil

	case proto.InboundTypeCallUser, proto.InboundTypeAnswerCall,
		proto.InboundTypeIceCandidate, proto.InboundTypeEndCall:
		return signalToCommand(signalCommands[inbound.Type], inbound.Data)

	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}
	}
}

// signalToCommand reads the target and keeps every other field opaque.
func signalToCommand(kind core.CommandKind, data json.RawMessage) (*core.Command, *proto.Error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, errInvalidPayload
	}

	var target proto.SignalTarget
	if perr := decode(data, &target); perr != nil {
		return nil, perr
	}
	delete(fields, "to")

	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, errInvalidPayload
	}
	return &core.Command{Kind: kind, To: target.To, Payload: payload}, nil
}

// isMessageCommand reports whether the command counts against the rate limit.
func isMessageCommand(kind core.CommandKind) bool {
	switch kind {
	case core.CommandChannelMessage, core.CommandGlobalMessage, core.CommandDirectMessage:
		return true
	}
	return false
}

var eventNames = map[core.EventKind]string{
	core.EventInit:                  proto.EventInit,
	core.EventOnlineUsers:           proto.EventOnlineUsers,
	core.EventUserOnline:            proto.EventUserOnline,
	core.EventUserOffline:           proto.EventUserOffline,
	core.EventChannelMessage:        proto.EventChannelMessage,
	core.EventGlobalMessage:         proto.EventGlobalMessage,
	core.EventDirectMessage:         proto.EventDirectMessage,
	core.EventDirectMessageSent:     proto.EventDirectMessageSent,
	core.EventHistory:               proto.EventMessages,
	core.EventDirectHistory:         proto.EventDirectMessages,
	core.EventGlobalHistory:         proto.EventGlobalMessages,
	core.EventServers:               proto.EventServers,
	core.EventServerCreated:         proto.EventServerCreated,
	core.EventServerJoined:          proto.EventServerJoined,
	core.EventMemberJoined:          proto.EventMemberJoined,
	core.EventChannelCreated:        proto.EventChannelCreated,
	core.EventFriendRequest:         proto.EventFriendRequest,
	core.EventFriendRequestSent:     proto.EventFriendRequestSent,
	core.EventFriendAcceptedBy:      proto.EventAcceptFriend,
	core.EventFriendAccepted:        proto.EventFriendAccepted,
	core.EventFriendRemoved:         proto.EventFriendRemoved,
	core.EventFriendRemoveConfirmed: proto.EventFriendRemoveConfirmed,
	core.EventFriends:               proto.EventFriends,
	core.EventIncomingCall:          proto.EventIncomingCall,
	core.EventCallAnswered:          proto.EventCallAnswered,
	core.EventIceCandidate:          proto.EventIceCandidate,
	core.EventCallEnded:             proto.EventCallEnded,
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	if event.Kind == core.EventError {
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	}

	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: eventNames[event.Kind],
		Data:  eventData(event),
	}
}

func eventData(event *core.Event) any {
	switch event.Kind {
	case core.EventInit:
		return proto.EventInit{
			Username: event.User,
			Servers:  protoServers(event.Servers),
			Friends:  protoFriends(event.Friends),
			Online:   nonNil(event.Online),
		}
	case core.EventOnlineUsers:
		users := make(map[string]string, len(event.Online))
		for _, u := range event.Online {
			users[u] = "online"
		}
		return proto.EventOnlineUsers{Users: users}
	case core.EventUserOnline, core.EventUserOffline:
		return proto.EventUser{Username: event.User}
	case core.EventChannelMessage, core.EventGlobalMessage, core.EventDirectMessage:
		return protoMessage(event.Message)
	case core.EventDirectMessageSent:
		return proto.EventDirectMessageSent{EventMessage: protoMessage(event.Message), Delivered: event.Delivered}
	case core.EventHistory:
		return proto.EventMessages{Server: event.ServerID, Channel: event.Channel, Messages: protoMessages(event.Messages)}
	case core.EventDirectHistory:
		return proto.EventDirectMessages{With: event.User, Messages: protoMessages(event.Messages)}
	case core.EventGlobalHistory:
		return proto.EventGlobalMessages{Messages: protoMessages(event.Messages)}
	case core.EventServers:
		return proto.EventServers{Servers: protoServers(event.Servers)}
	case core.EventServerCreated, core.EventServerJoined:
		if event.Server == nil {
			return nil
		}
		return protoServer(*event.Server)
	case core.EventMemberJoined:
		return proto.EventMemberJoined{ServerID: event.ServerID, Username: event.User}
	case core.EventChannelCreated:
		return proto.EventChannelCreated{ServerID: event.ServerID, Channel: event.Channel, By: event.User}
	case core.EventFriendRequest, core.EventFriendAcceptedBy:
		return proto.EventFrom{From: event.User}
	case core.EventFriendRequestSent:
		return proto.EventTo{To: event.User}
	case core.EventFriendAccepted:
		return proto.EventFriend{Friend: event.User}
	case core.EventFriendRemoved, core.EventFriendRemoveConfirmed:
		return proto.EventUser{Username: event.User}
	case core.EventFriends:
		return proto.EventFriends{Friends: protoFriends(event.Friends)}
	case core.EventIncomingCall, core.EventCallAnswered, core.EventIceCandidate, core.EventCallEnded:
		return signalData(event.User, event.Payload)
	default:
		return nil
	}
}

// signalData merges the sender into the relayed payload.
func signalData(from string, payload json.RawMessage) map[string]json.RawMessage {
	fields := map[string]json.RawMessage{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &fields); err != nil {
			fields = map[string]json.RawMessage{"payload": payload}
		}
	}
	fromJSON, _ := json.Marshal(from)
	fields["from"] = fromJSON
	return fields
}

func protoMessage(m core.Message) proto.EventMessage {
	return proto.EventMessage{
		ID:      m.ID,
		Server:  m.ServerID,
		Channel: m.Channel,
		From:    m.From,
		To:      m.To,
		Text:    m.Text,
		TS:      m.CreatedAt.Unix(),
	}
}

func protoMessages(msgs []core.Message) []proto.EventMessage {
	out := make([]proto.EventMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, protoMessage(m))
	}
	return out
}

func protoServer(s core.ServerView) proto.Server {
	return proto.Server{
		ID:       s.ID,
		Name:     s.Name,
		Owner:    s.Owner,
		Channels: nonNil(s.Channels),
		Members:  nonNil(s.Members),
	}
}

func protoServers(views []core.ServerView) []proto.Server {
	out := make([]proto.Server, 0, len(views))
	for _, v := range views {
		out = append(out, protoServer(v))
	}
	return out
}

func protoFriends(views []core.FriendView) []proto.Friend {
	out := make([]proto.Friend, 0, len(views))
	for _, v := range views {
		out = append(out, proto.Friend{Username: v.Username, Status: v.Status})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
