package sqlite

import (
	"context"
	"fmt"

	"github.com/vovakirdan/ghostcord/internal/store"
)

// ==== MessageStore implementation ====

// SaveChannelMessage persists a channel message. The channel must exist.
func (s *SQLiteStore) SaveChannelMessage(ctx context.Context, msg *store.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now()
	}
	query := `
		INSERT INTO messages (server_id, channel, username, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.ServerID, msg.Channel, msg.Username, msg.Text, msg.CreatedAt)
	if err != nil {
		return wrapErr("insert message", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	msg.ID = id
	return nil
}

// ListChannelMessages returns the most recent limit messages of a channel in ascending order.
func (s *SQLiteStore) ListChannelMessages(ctx context.Context, serverID, channel string, limit int) ([]*store.Message, error) {
	query := `
		SELECT id, server_id, channel, username, text, created_at
		FROM messages
		WHERE server_id = ? AND channel = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, serverID, channel, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := []*store.Message{}
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.ServerID, &msg.Channel, &msg.Username, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	reverse(messages)
	return messages, nil
}

// SaveDirectMessage persists a direct message.
func (s *SQLiteStore) SaveDirectMessage(ctx context.Context, msg *store.DirectMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now()
	}
	query := `
		INSERT INTO direct_messages (from_user, to_user, text, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.From, msg.To, msg.Text, msg.CreatedAt)
	if err != nil {
		return wrapErr("insert direct message", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	msg.ID = id
	return nil
}

// ListDirectMessages returns the most recent limit messages exchanged between
// two users, in either direction, in ascending order.
func (s *SQLiteStore) ListDirectMessages(ctx context.Context, userA, userB string, limit int) ([]*store.DirectMessage, error) {
	query := `
		SELECT id, from_user, to_user, text, created_at
		FROM direct_messages
		WHERE (from_user = ? AND to_user = ?) OR (from_user = ? AND to_user = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, userA, userB, userB, userA, limit)
	if err != nil {
		return nil, fmt.Errorf("query direct messages: %w", err)
	}
	defer rows.Close()

	messages := []*store.DirectMessage{}
	for rows.Next() {
		var msg store.DirectMessage
		if err := rows.Scan(&msg.ID, &msg.From, &msg.To, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan direct message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate direct messages: %w", err)
	}

	reverse(messages)
	return messages, nil
}

// SaveGlobalMessage persists a global message.
func (s *SQLiteStore) SaveGlobalMessage(ctx context.Context, msg *store.GlobalMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now()
	}
	query := `
		INSERT INTO global_messages (username, text, created_at)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.Username, msg.Text, msg.CreatedAt)
	if err != nil {
		return wrapErr("insert global message", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	msg.ID = id
	return nil
}

// ListGlobalMessages returns the most recent limit global messages in ascending order.
func (s *SQLiteStore) ListGlobalMessages(ctx context.Context, limit int) ([]*store.GlobalMessage, error) {
	query := `
		SELECT id, username, text, created_at
		FROM global_messages
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query global messages: %w", err)
	}
	defer rows.Close()

	messages := []*store.GlobalMessage{}
	for rows.Next() {
		var msg store.GlobalMessage
		if err := rows.Scan(&msg.ID, &msg.Username, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan global message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate global messages: %w", err)
	}

	reverse(messages)
	return messages, nil
}

// reverse flips newest-first query results into chronological order.
func reverse[T any](items []T) {
	for i := 0; i < len(items)/2; i++ {
		items[i], items[len(items)-1-i] = items[len(items)-1-i], items[i]
	}
}
