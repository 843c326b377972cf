package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with an existing row.
	ErrConflict = errors.New("conflict")
)

// DefaultChannel is created together with every server.
const DefaultChannel = "general"

// User represents a registered user. The username is the identity key.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Server represents a community container of channels.
type Server struct {
	ID        string
	Name      string
	Owner     string
	CreatedAt time.Time
}

// ServerInfo is a server together with its channel names and member usernames,
// read from a single snapshot.
type ServerInfo struct {
	Server
	Channels []string
	Members  []string
}

// Message represents a persisted channel message.
type Message struct {
	ID        int64
	ServerID  string
	Channel   string
	Username  string
	Text      string
	CreatedAt time.Time
}

// DirectMessage represents a persisted message between two users.
type DirectMessage struct {
	ID        int64
	From      string
	To        string
	Text      string
	CreatedAt time.Time
}

// GlobalMessage represents a persisted message visible to everyone.
type GlobalMessage struct {
	ID        int64
	Username  string
	Text      string
	CreatedAt time.Time
}

// FriendStatus defines friend relationship status.
type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "pending"
	FriendStatusAccepted FriendStatus = "accepted"
)

// Friend represents the single relationship row of an unordered user pair.
// UserA is always lexicographically smaller than UserB.
type Friend struct {
	UserA     string
	UserB     string
	Requester string
	Status    FriendStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Other returns the member of the pair that is not username.
func (f *Friend) Other(username string) string {
	if f.UserA == username {
		return f.UserB
	}
	return f.UserA
}

// PairKey orders two usernames canonically.
func PairKey(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	// Returns ErrConflict if the username is taken.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUser retrieves a user by username.
	GetUser(ctx context.Context, username string) (*User, error)

	// DeleteAllUserData removes the user and everything referencing it in one transaction.
	DeleteAllUserData(ctx context.Context, username string) error
}

// ServerStore handles servers, channels and membership.
type ServerStore interface {
	// CreateServer inserts the server, the owner's membership and the default
	// channel atomically.
	CreateServer(ctx context.Context, srv *Server) (*ServerInfo, error)

	// GetServer retrieves a server with its channels and members.
	GetServer(ctx context.Context, id string) (*ServerInfo, error)

	// AddMember grants membership. Reports whether the row is new.
	AddMember(ctx context.Context, serverID, username string) (bool, error)

	// CreateChannel adds a channel to a server.
	CreateChannel(ctx context.Context, serverID, name string) error

	// ListServers lists every server.
	ListServers(ctx context.Context) ([]*ServerInfo, error)

	// ListServersForUser lists the servers a user is a member of.
	ListServersForUser(ctx context.Context, username string) ([]*ServerInfo, error)

	// ListChannels lists channel names of a server in creation order.
	ListChannels(ctx context.Context, serverID string) ([]string, error)

	// ListMembers lists member usernames of a server in join order.
	ListMembers(ctx context.Context, serverID string) ([]string, error)
}

// MessageStore handles message persistence.
// List methods return the most recent limit records in ascending order.
type MessageStore interface {
	SaveChannelMessage(ctx context.Context, msg *Message) error
	ListChannelMessages(ctx context.Context, serverID, channel string, limit int) ([]*Message, error)

	SaveDirectMessage(ctx context.Context, msg *DirectMessage) error
	ListDirectMessages(ctx context.Context, userA, userB string, limit int) ([]*DirectMessage, error)

	SaveGlobalMessage(ctx context.Context, msg *GlobalMessage) error
	ListGlobalMessages(ctx context.Context, limit int) ([]*GlobalMessage, error)
}

// FriendStore handles friend persistence. Every method is pair-order-insensitive.
type FriendStore interface {
	// CreateFriendRequest creates a pending row requested by from.
	// Returns ErrConflict if the pair already has a row.
	CreateFriendRequest(ctx context.Context, from, to string) (*Friend, error)

	// GetFriendship retrieves the row of a pair.
	GetFriendship(ctx context.Context, a, b string) (*Friend, error)

	// UpdateFriendStatus updates the status of a pair.
	UpdateFriendStatus(ctx context.Context, a, b string, status FriendStatus) error

	// DeleteFriendship removes the row of a pair.
	DeleteFriendship(ctx context.Context, a, b string) error

	// ListFriends lists every row the user is part of.
	ListFriends(ctx context.Context, username string) ([]*Friend, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	ServerStore
	MessageStore
	FriendStore

	// Close closes the underlying database connection.
	Close() error
}
