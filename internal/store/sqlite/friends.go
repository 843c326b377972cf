package sqlite

import (
	"context"
	"fmt"

	"github.com/vovakirdan/ghostcord/internal/store"
)

// ==== FriendStore implementation ====
// Rows are keyed by the canonical pair (user_a < user_b), so one pair can only
// ever have one row no matter who asked first.

// CreateFriendRequest creates a new friend request (pending status).
func (s *SQLiteStore) CreateFriendRequest(ctx context.Context, from, to string) (*store.Friend, error) {
	a, b := store.PairKey(from, to)
	ts := now()
	query := `
		INSERT INTO friends (user_a, user_b, requester, status, created_at, updated_at)
		VALUES (?, ?, ?, 'pending', ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, a, b, from, ts, ts); err != nil {
		return nil, wrapErr("insert friend request", err)
	}

	return &store.Friend{
		UserA:     a,
		UserB:     b,
		Requester: from,
		Status:    store.FriendStatusPending,
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}

// GetFriendship retrieves the friendship row of a pair.
func (s *SQLiteStore) GetFriendship(ctx context.Context, x, y string) (*store.Friend, error) {
	a, b := store.PairKey(x, y)
	query := `
		SELECT user_a, user_b, requester, status, created_at, updated_at
		FROM friends
		WHERE user_a = ? AND user_b = ?
	`
	var friend store.Friend
	var status string
	err := s.db.QueryRowContext(ctx, query, a, b).Scan(
		&friend.UserA,
		&friend.UserB,
		&friend.Requester,
		&status,
		&friend.CreatedAt,
		&friend.UpdatedAt,
	)
	if err != nil {
		return nil, wrapErr("query friendship", err)
	}
	friend.Status = store.FriendStatus(status)
	return &friend, nil
}

// UpdateFriendStatus updates the status of a friendship.
func (s *SQLiteStore) UpdateFriendStatus(ctx context.Context, x, y string, status store.FriendStatus) error {
	a, b := store.PairKey(x, y)
	query := `
		UPDATE friends
		SET status = ?, updated_at = ?
		WHERE user_a = ? AND user_b = ?
	`
	result, err := s.db.ExecContext(ctx, query, string(status), now(), a, b)
	if err != nil {
		return wrapErr("update friend status", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update friend status: %w", store.ErrNotFound)
	}
	return nil
}

// DeleteFriendship removes a friendship row regardless of its status.
func (s *SQLiteStore) DeleteFriendship(ctx context.Context, x, y string) error {
	a, b := store.PairKey(x, y)
	result, err := s.db.ExecContext(ctx, `DELETE FROM friends WHERE user_a = ? AND user_b = ?`, a, b)
	if err != nil {
		return wrapErr("delete friendship", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete friendship: %w", store.ErrNotFound)
	}
	return nil
}

// ListFriends lists every friendship row the user is part of.
func (s *SQLiteStore) ListFriends(ctx context.Context, username string) ([]*store.Friend, error) {
	query := `
		SELECT user_a, user_b, requester, status, created_at, updated_at
		FROM friends
		WHERE user_a = ? OR user_b = ?
		ORDER BY updated_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, username, username)
	if err != nil {
		return nil, fmt.Errorf("query friends: %w", err)
	}
	defer rows.Close()

	friends := []*store.Friend{}
	for rows.Next() {
		var friend store.Friend
		var status string
		if err := rows.Scan(&friend.UserA, &friend.UserB, &friend.Requester, &status, &friend.CreatedAt, &friend.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		friend.Status = store.FriendStatus(status)
		friends = append(friends, &friend)
	}

	return friends, rows.Err()
}
