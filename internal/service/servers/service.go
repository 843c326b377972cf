package servers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/vovakirdan/ghostcord/internal/store"
)

// Common errors for server and channel operations.
var (
	ErrInvalidName     = errors.New("name must be 1-64 characters")
	ErrServerExists    = errors.New("server already exists")
	ErrServerNotFound  = errors.New("server not found")
	ErrChannelExists   = errors.New("channel already exists")
	ErrNotServerMember = errors.New("not a member of this server")
)

const maxNameLen = 64

// Service creates servers and channels and admits members.
type Service struct {
	store store.Store
}

// New creates a new server service.
func New(st store.Store) *Service {
	return &Service{store: st}
}

// CreateServer creates a server owned by owner together with its owner
// membership and default channel. An empty id is replaced by a generated one.
func (s *Service) CreateServer(ctx context.Context, owner, id, name string) (*store.ServerInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return nil, ErrInvalidName
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}

	info, err := s.store.CreateServer(ctx, &store.Server{ID: id, Name: name, Owner: owner})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrServerExists
		}
		return nil, fmt.Errorf("create server: %w", err)
	}
	return info, nil
}

// JoinServer grants membership. Joining a server twice succeeds; added reports
// whether the membership is new.
func (s *Service) JoinServer(ctx context.Context, username, serverID string) (info *store.ServerInfo, added bool, err error) {
	added, err = s.store.AddMember(ctx, serverID, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, ErrServerNotFound
		}
		return nil, false, fmt.Errorf("add member: %w", err)
	}

	info, err = s.store.GetServer(ctx, serverID)
	if err != nil {
		return nil, false, fmt.Errorf("load server: %w", err)
	}
	return info, added, nil
}

// CreateChannel adds a channel to a server the user belongs to.
func (s *Service) CreateChannel(ctx context.Context, username, serverID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return ErrInvalidName
	}

	members, err := s.store.ListMembers(ctx, serverID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	if len(members) == 0 {
		return ErrServerNotFound
	}
	if !slices.Contains(members, username) {
		return ErrNotServerMember
	}

	if err := s.store.CreateChannel(ctx, serverID, name); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			return ErrChannelExists
		case errors.Is(err, store.ErrNotFound):
			return ErrServerNotFound
		}
		return fmt.Errorf("create channel: %w", err)
	}
	return nil
}

// ListServers lists every server.
func (s *Service) ListServers(ctx context.Context) ([]*store.ServerInfo, error) {
	infos, err := s.store.ListServers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	return infos, nil
}

// ListServersForUser lists the servers the user is a member of.
func (s *Service) ListServersForUser(ctx context.Context, username string) ([]*store.ServerInfo, error) {
	infos, err := s.store.ListServersForUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list user servers: %w", err)
	}
	return infos, nil
}
