package core

import (
	"time"

	"github.com/vovakirdan/ghostcord/internal/store"
)

// Message is the domain model for channel, direct and global messages.
type Message struct {
	ID        int64
	ServerID  string
	Channel   string
	From      string
	To        string
	Text      string
	CreatedAt time.Time
}

// ServerView is a server with its channel names and members.
type ServerView struct {
	ID       string
	Name     string
	Owner    string
	Channels []string
	Members  []string
}

// FriendView is one entry of a friend list as seen by its reader.
type FriendView struct {
	Username string
	Status   string
}

func messageFromChannel(m *store.Message) Message {
	return Message{
		ID:        m.ID,
		ServerID:  m.ServerID,
		Channel:   m.Channel,
		From:      m.Username,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func messageFromDirect(m *store.DirectMessage) Message {
	return Message{
		ID:        m.ID,
		From:      m.From,
		To:        m.To,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func messageFromGlobal(m *store.GlobalMessage) Message {
	return Message{
		ID:        m.ID,
		From:      m.Username,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func serverView(info *store.ServerInfo) ServerView {
	return ServerView{
		ID:       info.ID,
		Name:     info.Name,
		Owner:    info.Owner,
		Channels: info.Channels,
		Members:  info.Members,
	}
}

func serverViews(infos []*store.ServerInfo) []ServerView {
	views := make([]ServerView, 0, len(infos))
	for _, info := range infos {
		views = append(views, serverView(info))
	}
	return views
}
