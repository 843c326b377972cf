package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/vovakirdan/ghostcord/internal/service/friends"
	"github.com/vovakirdan/ghostcord/internal/service/servers"
	"github.com/vovakirdan/ghostcord/internal/store/sqlite"
)

func benchmarkGlobalBroadcast(b *testing.B, recipients int) {
	st, err := sqlite.New(":memory:")
	if err != nil {
		b.Fatal(err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(st, friends.New(st), servers.New(st), nil)
	go hub.Run(ctx)

	sender := NewClient("sender")
	hub.RegisterClient(sender)
	sender.Commands <- &Command{Kind: CommandJoin, Name: "sender"}

	clients := make([]*Client, 0, recipients)
	for i := range recipients {
		c := NewClient(fmt.Sprintf("c%d", i))
		hub.RegisterClient(c)
		c.Commands <- &Command{Kind: CommandJoin, Name: fmt.Sprintf("user%d", i)}
		clients = append(clients, c)
	}

	// Drain events for everyone but the first recipient to avoid backpressure.
	target := clients[0]
	for _, c := range append(clients[1:], sender) {
		go func(cl *Client) {
			for {
				select {
				case <-cl.Events:
				case <-ctx.Done():
					return
				}
			}
		}(c)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sender.Commands <- &Command{Kind: CommandGlobalMessage, Text: "payload"}
		for ev := range target.Events {
			if ev.Kind == EventGlobalMessage {
				break
			}
		}
	}
}

func BenchmarkGlobalBroadcast_10(b *testing.B)  { benchmarkGlobalBroadcast(b, 10) }
func BenchmarkGlobalBroadcast_100(b *testing.B) { benchmarkGlobalBroadcast(b, 100) }
