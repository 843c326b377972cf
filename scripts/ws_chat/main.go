package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/ghostcord/internal/proto"
)

const help = `Plain lines go to the global chat. Commands:
  /dm <user> <text>     send a direct message
  /friend <user>        send a friend request
  /accept <user>        accept a friend request
  /unfriend <user>      remove a friend or decline a request
  /friends              list friends
  /servers              list servers
  /join <server>        join a server
  /say <server> <channel> <text>
  /history <server> <channel>`

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	token := flag.String("token", "", "login token, if the server requires one")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, conn, proto.InboundTypeJoin, proto.JoinData{Name: *user, Token: *token}); err != nil {
		return err
	}

	fmt.Printf("Connected to %s as %s\n%s\n", *addr, *user, help)

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)
	return nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var out struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if out.Error != nil {
			fmt.Printf("! %s: %s\n", out.Error.Code, out.Error.Msg)
			continue
		}

		switch out.Event {
		case proto.EventGlobalMessage, proto.EventChannelMessage, proto.EventDirectMessage:
			var evt proto.EventMessage
			if err := json.Unmarshal(out.Data, &evt); err != nil {
				log.Printf("unmarshal %s: %v", out.Event, err)
				continue
			}
			switch {
			case evt.Server != "":
				fmt.Printf("[%s/#%s] %s: %s\n", evt.Server, evt.Channel, evt.From, evt.Text)
			case evt.To != "":
				fmt.Printf("[dm] %s: %s\n", evt.From, evt.Text)
			default:
				fmt.Printf("[global] %s: %s\n", evt.From, evt.Text)
			}
		case proto.EventUserOnline, proto.EventUserOffline:
			var evt proto.EventUser
			if err := json.Unmarshal(out.Data, &evt); err == nil {
				fmt.Printf("* %s %s\n", evt.Username, strings.ToLower(strings.TrimPrefix(out.Event, "user")))
			}
		case proto.EventOnlineUsers:
			// presence deltas above are enough for a terminal
		default:
			fmt.Printf("event=%s data=%s\n", out.Event, out.Data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			typ, data, ok := parseLine(strings.TrimSpace(line))
			if !ok {
				fmt.Println(help)
				continue
			}
			if typ == "" {
				continue
			}
			if err := send(ctx, conn, typ, data); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

// parseLine turns a terminal line into an inbound message. ok is false for
// commands it does not understand.
func parseLine(line string) (typ string, data any, ok bool) {
	if line == "" {
		return "", nil, true
	}
	if !strings.HasPrefix(line, "/") {
		return proto.InboundTypeGlobalMessage, proto.GlobalMessageData{Text: line}, true
	}

	fields := strings.Fields(line)
	args := fields[1:]
	rest := func(n int) string {
		return strings.Join(args[n:], " ")
	}

	switch {
	case fields[0] == "/dm" && len(args) >= 2:
		return proto.InboundTypeDirectMessage, proto.DirectMessageData{To: args[0], Msg: proto.MsgBody{Text: rest(1)}}, true
	case fields[0] == "/friend" && len(args) == 1:
		return proto.InboundTypeFriendRequest, proto.FriendData{To: args[0]}, true
	case fields[0] == "/accept" && len(args) == 1:
		return proto.InboundTypeAcceptFriend, proto.FriendData{To: args[0]}, true
	case fields[0] == "/unfriend" && len(args) == 1:
		return proto.InboundTypeRemoveFriend, proto.RemoveFriendData{Username: args[0]}, true
	case fields[0] == "/friends":
		return proto.InboundTypeGetFriends, struct{}{}, true
	case fields[0] == "/servers":
		return proto.InboundTypeGetServers, struct{}{}, true
	case fields[0] == "/join" && len(args) == 1:
		return proto.InboundTypeJoinServer, proto.JoinServerData{ServerID: args[0]}, true
	case fields[0] == "/say" && len(args) >= 3:
		return proto.InboundTypeChannelMessage, proto.ChannelMessageData{
			Server:  args[0],
			Channel: args[1],
			Msg:     proto.MsgBody{Text: rest(2)},
		}, true
	case fields[0] == "/history" && len(args) == 2:
		return proto.InboundTypeGetMessages, proto.GetMessagesData{Server: args[0], Channel: args[1]}, true
	}
	return "", nil, false
}
