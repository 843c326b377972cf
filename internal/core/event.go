package core

import "encoding/json"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventInit answers a join with the user's servers, friends and the online set.
	EventInit EventKind = iota
	// EventOnlineUsers carries the full online set.
	EventOnlineUsers
	// EventUserOnline announces a single identity coming online.
	EventUserOnline
	// EventUserOffline announces a single identity going offline.
	EventUserOffline

	EventChannelMessage
	EventGlobalMessage
	EventDirectMessage
	// EventDirectMessageSent confirms a direct message to its sender.
	EventDirectMessageSent

	// EventHistory delivers channel history to the requester.
	EventHistory
	EventDirectHistory
	EventGlobalHistory

	EventServers
	EventServerCreated
	// EventServerJoined confirms membership to the joiner.
	EventServerJoined
	// EventMemberJoined announces a new member to everyone.
	EventMemberJoined
	EventChannelCreated

	// EventFriendRequest notifies the recipient of a request.
	EventFriendRequest
	// EventFriendRequestSent confirms a request to its sender.
	EventFriendRequestSent
	// EventFriendAcceptedBy notifies the other party that the request was accepted.
	EventFriendAcceptedBy
	// EventFriendAccepted confirms acceptance to the accepter.
	EventFriendAccepted
	// EventFriendRemoved notifies the other party of a removal.
	EventFriendRemoved
	// EventFriendRemoveConfirmed confirms a removal to the remover.
	EventFriendRemoveConfirmed
	EventFriends

	// Call signaling, forwarded to the target with the sender attached.
	EventIncomingCall
	EventCallAnswered
	EventIceCandidate
	EventCallEnded

	// EventError notifies a client about a failed command.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind EventKind
	// User is the identity the event is about: the joiner, the sender of a
	// request or signal, the peer of a confirmation.
	User     string
	Online   []string
	ServerID string
	Channel  string
	Message  Message
	Messages []Message
	Server   *ServerView
	Servers  []ServerView
	Friends  []FriendView
	// Delivered reports whether a direct message reached its target live.
	Delivered bool
	Payload   json.RawMessage
	Error     *CoreError
}
