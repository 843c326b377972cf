package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vovakirdan/ghostcord/internal/store"
)

// CreateServer inserts the server row, the owner's membership and the default
// channel in one transaction. Nothing is visible unless all three succeed.
func (s *SQLiteStore) CreateServer(ctx context.Context, srv *store.Server) (*store.ServerInfo, error) {
	if srv.CreatedAt.IsZero() {
		srv.CreatedAt = now()
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO servers (id, name, owner, created_at)
			VALUES (?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query, srv.ID, srv.Name, srv.Owner, srv.CreatedAt); err != nil {
			return wrapErr("insert server", err)
		}

		memberQuery := `
			INSERT INTO server_members (server_id, username, joined_at)
			VALUES (?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, memberQuery, srv.ID, srv.Owner, srv.CreatedAt); err != nil {
			return wrapErr("insert owner membership", err)
		}

		channelQuery := `
			INSERT INTO channels (server_id, name, created_at)
			VALUES (?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, channelQuery, srv.ID, store.DefaultChannel, srv.CreatedAt); err != nil {
			return wrapErr("insert default channel", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &store.ServerInfo{
		Server:   *srv,
		Channels: []string{store.DefaultChannel},
		Members:  []string{srv.Owner},
	}, nil
}

// GetServer retrieves a server with its channels and members.
func (s *SQLiteStore) GetServer(ctx context.Context, id string) (*store.ServerInfo, error) {
	var info *store.ServerInfo
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		query := `
			SELECT id, name, owner, created_at
			FROM servers
			WHERE id = ?
		`
		var srv store.Server
		if err := tx.QueryRowContext(ctx, query, id).Scan(&srv.ID, &srv.Name, &srv.Owner, &srv.CreatedAt); err != nil {
			return wrapErr("query server", err)
		}

		infos, err := fillServers(ctx, tx, []store.Server{srv})
		if err != nil {
			return err
		}
		info = infos[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// AddMember grants membership. Joining twice is not an error.
func (s *SQLiteStore) AddMember(ctx context.Context, serverID, username string) (bool, error) {
	query := `
		INSERT OR IGNORE INTO server_members (server_id, username, joined_at)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, serverID, username, now())
	if err != nil {
		return false, wrapErr("insert server member", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// CreateChannel adds a channel to a server.
func (s *SQLiteStore) CreateChannel(ctx context.Context, serverID, name string) error {
	query := `
		INSERT INTO channels (server_id, name, created_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, serverID, name, now()); err != nil {
		return wrapErr("insert channel", err)
	}
	return nil
}

// ListServers lists every server, oldest first.
func (s *SQLiteStore) ListServers(ctx context.Context) ([]*store.ServerInfo, error) {
	query := `
		SELECT id, name, owner, created_at
		FROM servers
		ORDER BY created_at ASC, id ASC
	`
	return s.listServers(ctx, query)
}

// ListServersForUser lists the servers a user is a member of.
func (s *SQLiteStore) ListServersForUser(ctx context.Context, username string) ([]*store.ServerInfo, error) {
	query := `
		SELECT s.id, s.name, s.owner, s.created_at
		FROM servers s
		JOIN server_members m ON m.server_id = s.id
		WHERE m.username = ?
		ORDER BY s.created_at ASC, s.id ASC
	`
	return s.listServers(ctx, query, username)
}

// ListChannels lists channel names of a server in creation order.
func (s *SQLiteStore) ListChannels(ctx context.Context, serverID string) ([]string, error) {
	return listChannels(ctx, s.db, serverID)
}

// ListMembers lists member usernames of a server in join order.
func (s *SQLiteStore) ListMembers(ctx context.Context, serverID string) ([]string, error) {
	return listMembers(ctx, s.db, serverID)
}

// listServers reads servers and their channel/member lists inside a single
// transaction so concurrent creations never show up half populated.
func (s *SQLiteStore) listServers(ctx context.Context, query string, args ...any) ([]*store.ServerInfo, error) {
	var infos []*store.ServerInfo
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query servers: %w", err)
		}

		var servers []store.Server
		for rows.Next() {
			var srv store.Server
			if err := rows.Scan(&srv.ID, &srv.Name, &srv.Owner, &srv.CreatedAt); err != nil {
				rows.Close()
				return fmt.Errorf("scan server: %w", err)
			}
			servers = append(servers, srv)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate servers: %w", err)
		}

		infos, err = fillServers(ctx, tx, servers)
		return err
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

func fillServers(ctx context.Context, q queryer, servers []store.Server) ([]*store.ServerInfo, error) {
	infos := make([]*store.ServerInfo, 0, len(servers))
	for _, srv := range servers {
		channels, err := listChannels(ctx, q, srv.ID)
		if err != nil {
			return nil, err
		}
		members, err := listMembers(ctx, q, srv.ID)
		if err != nil {
			return nil, err
		}
		infos = append(infos, &store.ServerInfo{Server: srv, Channels: channels, Members: members})
	}
	return infos, nil
}

func listChannels(ctx context.Context, q queryer, serverID string) ([]string, error) {
	query := `
		SELECT name FROM channels
		WHERE server_id = ?
		ORDER BY created_at ASC, rowid ASC
	`
	return listStrings(ctx, q, "channels", query, serverID)
}

func listMembers(ctx context.Context, q queryer, serverID string) ([]string, error) {
	query := `
		SELECT username FROM server_members
		WHERE server_id = ?
		ORDER BY joined_at ASC, rowid ASC
	`
	return listStrings(ctx, q, "members", query, serverID)
}

func listStrings(ctx context.Context, q queryer, what, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, v)
	}

	return out, rows.Err()
}
