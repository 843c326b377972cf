package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin binds the connection to an identity.
	CommandJoin CommandKind = iota
	// CommandChannelMessage posts a message to a server channel.
	CommandChannelMessage
	// CommandGlobalMessage posts a message everyone sees.
	CommandGlobalMessage
	// CommandDirectMessage sends a message to one user.
	CommandDirectMessage
	// CommandGetMessages requests channel history.
	CommandGetMessages
	// CommandGetDirectMessages requests direct message history with one user.
	CommandGetDirectMessages
	// CommandGetGlobalMessages requests global message history.
	CommandGetGlobalMessages
	// CommandGetServers lists every server.
	CommandGetServers
	// CommandCreateServer creates a server owned by the sender.
	CommandCreateServer
	// CommandJoinServer grants the sender membership of a server.
	CommandJoinServer
	// CommandCreateChannel adds a channel to a server.
	CommandCreateChannel
	// CommandFriendRequest asks another user to become friends.
	CommandFriendRequest
	// CommandAcceptFriend accepts the pending request of a pair.
	CommandAcceptFriend
	// CommandRemoveFriend deletes the friendship or pending request of a pair.
	CommandRemoveFriend
	// CommandGetFriends lists the sender's friends.
	CommandGetFriends

	// Call signaling, relayed opaquely to To.
	CommandCallUser
	CommandAnswerCall
	CommandIceCandidate
	CommandEndCall
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind

	// Name is the display name for CommandJoin, the server name for
	// CommandCreateServer and the channel name for CommandCreateChannel.
	Name     string
	Token    string
	ServerID string
	Channel  string
	// To is the target identity of direct messages, friend and call commands.
	To   string
	Text string
	// User is the identity a client claims in createServer/joinServer payloads.
	User string
	// Payload carries call signaling data untouched.
	Payload json.RawMessage
}
