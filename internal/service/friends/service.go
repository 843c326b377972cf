package friends

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vovakirdan/ghostcord/internal/store"
)

// Common errors for friend operations.
var (
	ErrCannotFriendSelf     = errors.New("cannot send friend request to yourself")
	ErrAlreadyFriends       = errors.New("already friends")
	ErrRequestAlreadyExists = errors.New("friend request already pending")
	ErrRequestNotFound      = errors.New("no friend request or friendship with this user")
	ErrUserNotFound         = errors.New("user not found")
)

// View statuses as seen by the user reading their own list.
const (
	ViewSent     = "sent"
	ViewPending  = "pending"
	ViewAccepted = "accepted"
)

// View is one entry of a user's friend list.
type View struct {
	Username string
	Status   string
}

// Service drives the friend-request lifecycle: none -> pending -> accepted,
// with removal returning any state to none.
type Service struct {
	store store.Store
	pairs pairLocks
}

// New creates a new FriendService.
func New(st store.Store) *Service {
	return &Service{
		store: st,
		pairs: pairLocks{locks: make(map[[2]string]*pairLock)},
	}
}

// SendRequest creates a pending request from one user to another.
func (s *Service) SendRequest(ctx context.Context, from, to string) (*store.Friend, error) {
	if from == to {
		return nil, ErrCannotFriendSelf
	}

	if _, err := s.store.GetUser(ctx, to); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	unlock := s.pairs.lock(from, to)
	defer unlock()

	existing, err := s.store.GetFriendship(ctx, from, to)
	switch {
	case err == nil:
		if existing.Status == store.FriendStatusAccepted {
			return nil, ErrAlreadyFriends
		}
		return nil, ErrRequestAlreadyExists
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("lookup friendship: %w", err)
	}

	friend, err := s.store.CreateFriendRequest(ctx, from, to)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrRequestAlreadyExists
		}
		return nil, fmt.Errorf("create friend request: %w", err)
	}

	return friend, nil
}

// AcceptRequest marks the pair's row as accepted. Either member of the pair may
// accept; the requester is not checked.
func (s *Service) AcceptRequest(ctx context.Context, by, other string) error {
	unlock := s.pairs.lock(by, other)
	defer unlock()

	if err := s.store.UpdateFriendStatus(ctx, by, other, store.FriendStatusAccepted); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("accept request: %w", err)
	}
	return nil
}

// Remove deletes the pair's row whatever its status. This is also how a
// pending request is declined or withdrawn.
func (s *Service) Remove(ctx context.Context, by, other string) error {
	unlock := s.pairs.lock(by, other)
	defer unlock()

	if err := s.store.DeleteFriendship(ctx, by, other); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("remove friendship: %w", err)
	}
	return nil
}

// List returns the user's friend list. Pending rows read as "sent" for the
// requester and "pending" for the recipient.
func (s *Service) List(ctx context.Context, username string) ([]View, error) {
	rows, err := s.store.ListFriends(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}

	views := make([]View, 0, len(rows))
	for _, f := range rows {
		views = append(views, View{Username: f.Other(username), Status: viewStatus(f, username)})
	}
	return views, nil
}

func viewStatus(f *store.Friend, viewer string) string {
	if f.Status == store.FriendStatusAccepted {
		return ViewAccepted
	}
	if f.Requester == viewer {
		return ViewSent
	}
	return ViewPending
}

// pairLocks serializes operations on the same unordered pair.
type pairLocks struct {
	mu    sync.Mutex
	locks map[[2]string]*pairLock
}

type pairLock struct {
	mu   sync.Mutex
	refs int
}

func (p *pairLocks) lock(x, y string) func() {
	a, b := store.PairKey(x, y)
	key := [2]string{a, b}

	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &pairLock{}
		p.locks[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}
