package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/vovakirdan/ghostcord/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("ws_smoke: %v", err)
	}
}

type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "tester", "name to join as")
	token := flag.String("token", "", "login token, if the server requires one")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	serverID := "smoke-" + uuid.NewString()[:8]

	var create proto.CreateServerData
	create.ServerID = serverID
	create.Server.Name = "Smoke test"
	create.Server.Owner = *user

	steps := []struct {
		typ  string
		data any
	}{
		{proto.InboundTypeJoin, proto.JoinData{Name: *user, Token: *token}},
		{proto.InboundTypeCreateServer, create},
		{proto.InboundTypeChannelMessage, proto.ChannelMessageData{
			Server:  serverID,
			Channel: "general",
			Msg:     proto.MsgBody{Text: *text},
		}},
	}
	for _, step := range steps {
		if err := send(step.typ, step.data); err != nil {
			return err
		}
	}

	for {
		var out outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		if out.Type == proto.OutboundTypeError && out.Error != nil {
			return fmt.Errorf("server error %s: %s", out.Error.Code, out.Error.Msg)
		}
		fmt.Printf("event=%s data=%s\n", out.Event, out.Data)

		if out.Event == proto.EventChannelMessage {
			var evt proto.EventMessage
			if err := json.Unmarshal(out.Data, &evt); err != nil {
				return fmt.Errorf("unmarshal message: %w", err)
			}
			if evt.Server == serverID && evt.Text == *text {
				fmt.Println("smoke test passed")
				return nil
			}
		}
	}
}
