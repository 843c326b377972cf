package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin              = "join"
	InboundTypeChannelMessage    = "channelMessage"
	InboundTypeGlobalMessage     = "globalMessage"
	InboundTypeDirectMessage     = "dm"
	InboundTypeGetMessages       = "getMessages"
	InboundTypeGetDirectMessages = "getDirectMessages"
	InboundTypeGetGlobalMessages = "getGlobalMessages"
	InboundTypeGetServers        = "getServers"
	InboundTypeCreateServer      = "createServer"
	InboundTypeJoinServer        = "joinServer"
	InboundTypeCreateChannel     = "createChannel"
	InboundTypeFriendRequest     = "friendRequest"
	InboundTypeAcceptFriend      = "acceptFriend"
	InboundTypeRemoveFriend      = "removeFriend"
	InboundTypeGetFriends        = "getFriends"
	InboundTypeCallUser          = "callUser"
	InboundTypeAnswerCall        = "answerCall"
	InboundTypeIceCandidate      = "iceCandidate"
	InboundTypeEndCall           = "endCall"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Outbound event names.
const (
	EventInit                  = "init"
	EventOnlineUsers           = "onlineUsers"
	EventUserOnline            = "userOnline"
	EventUserOffline           = "userOffline"
	EventChannelMessage        = "channelMessage"
	EventGlobalMessage         = "globalMessage"
	EventDirectMessage         = "dm"
	EventDirectMessageSent     = "dmSent"
	EventMessages              = "messages"
	EventDirectMessages        = "directMessages"
	EventGlobalMessages        = "globalMessages"
	EventServers               = "servers"
	EventServerCreated         = "serverCreated"
	EventServerJoined          = "serverJoined"
	EventMemberJoined          = "memberJoined"
	EventChannelCreated        = "channelCreated"
	EventFriendRequest         = "friendRequest"
	EventFriendRequestSent     = "friendRequestSent"
	EventAcceptFriend          = "acceptFriend"
	EventFriendAccepted        = "friendAccepted"
	EventFriendRemoved         = "friendRemoved"
	EventFriendRemoveConfirmed = "friendRemoveConfirmed"
	EventFriends               = "friends"
	EventIncomingCall          = "incomingCall"
	EventCallAnswered          = "callAnswered"
	EventIceCandidate          = "iceCandidate"
	EventCallEnded             = "callEnded"
)

// JoinData binds the connection to a display name.
type JoinData struct {
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

// MsgBody is the message part of channel and direct messages.
type MsgBody struct {
	Text string `json:"text"`
}

// ChannelMessageData posts to a server channel.
type ChannelMessageData struct {
	Server  string  `json:"server"`
	Channel string  `json:"channel"`
	Msg     MsgBody `json:"msg"`
}

// GlobalMessageData posts to everyone. Time is accepted but the server clock wins.
type GlobalMessageData struct {
	Text string          `json:"text"`
	Time json.RawMessage `json:"time,omitempty"`
}

// DirectMessageData sends a message to one user.
type DirectMessageData struct {
	To  string  `json:"to"`
	Msg MsgBody `json:"msg"`
}

// GetMessagesData requests channel history.
type GetMessagesData struct {
	Server  string `json:"server"`
	Channel string `json:"channel"`
}

// GetDirectMessagesData requests the conversation with one user.
type GetDirectMessagesData struct {
	With string `json:"with"`
}

// CreateServerData creates a server. An empty ServerID lets the relay allocate one.
type CreateServerData struct {
	ServerID string `json:"serverId"`
	Server   struct {
		Name  string `json:"name"`
		Owner string `json:"owner"`
	} `json:"server"`
}

// JoinServerData joins an existing server.
type JoinServerData struct {
	ServerID string `json:"serverId"`
	Username string `json:"username"`
}

// CreateChannelData adds a channel to a server.
type CreateChannelData struct {
	ServerID string `json:"serverId"`
	Name     string `json:"name"`
}

// FriendData targets friendRequest and acceptFriend.
type FriendData struct {
	To string `json:"to"`
}

// RemoveFriendData targets removeFriend.
type RemoveFriendData struct {
	Username string `json:"username"`
}

// SignalTarget is the only field the relay reads from call signaling.
type SignalTarget struct {
	To string `json:"to"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMessage is a channel, direct or global message.
type EventMessage struct {
	ID      int64  `json:"id,omitempty"`
	Server  string `json:"server,omitempty"`
	Channel string `json:"channel,omitempty"`
	From    string `json:"from"`
	To      string `json:"to,omitempty"`
	Text    string `json:"text"`
	TS      int64  `json:"ts"`
}

// EventDirectMessageSent confirms a direct message to its sender.
type EventDirectMessageSent struct {
	EventMessage
	Delivered bool `json:"delivered"`
}

// Server describes a server with its channels and members.
type Server struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Owner    string   `json:"owner"`
	Channels []string `json:"channels"`
	Members  []string `json:"members"`
}

// Friend is one entry of the reader's friend list.
type Friend struct {
	Username string `json:"username"`
	Status   string `json:"status"`
}

// EventInit answers a join.
type EventInit struct {
	Username string   `json:"username"`
	Servers  []Server `json:"servers"`
	Friends  []Friend `json:"friends"`
	Online   []string `json:"online"`
}

// EventOnlineUsers maps every online identity to its status.
type EventOnlineUsers struct {
	Users map[string]string `json:"users"`
}

// EventUser names the identity an event is about.
type EventUser struct {
	Username string `json:"username"`
}

// EventServers lists servers.
type EventServers struct {
	Servers []Server `json:"servers"`
}

// EventMemberJoined announces a new member.
type EventMemberJoined struct {
	ServerID string `json:"serverId"`
	Username string `json:"username"`
}

// EventChannelCreated announces a new channel.
type EventChannelCreated struct {
	ServerID string `json:"serverId"`
	Channel  string `json:"channel"`
	By       string `json:"by"`
}

// EventMessages carries channel history.
type EventMessages struct {
	Server   string         `json:"server"`
	Channel  string         `json:"channel"`
	Messages []EventMessage `json:"messages"`
}

// EventDirectMessages carries the conversation with one user.
type EventDirectMessages struct {
	With     string         `json:"with"`
	Messages []EventMessage `json:"messages"`
}

// EventGlobalMessages carries global history.
type EventGlobalMessages struct {
	Messages []EventMessage `json:"messages"`
}

// EventFrom names the sender of a friend request or acceptance.
type EventFrom struct {
	From string `json:"from"`
}

// EventTo names the recipient of a sent request.
type EventTo struct {
	To string `json:"to"`
}

// EventFriend names the friend just accepted.
type EventFriend struct {
	Friend string `json:"friend"`
}

// EventFriends lists the reader's friends.
type EventFriends struct {
	Friends []Friend `json:"friends"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
