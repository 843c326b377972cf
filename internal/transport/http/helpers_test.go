package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/ghostcord/internal/auth"
	"github.com/vovakirdan/ghostcord/internal/config"
	"github.com/vovakirdan/ghostcord/internal/core"
	"github.com/vovakirdan/ghostcord/internal/proto"
	"github.com/vovakirdan/ghostcord/internal/service/friends"
	"github.com/vovakirdan/ghostcord/internal/service/servers"
	"github.com/vovakirdan/ghostcord/internal/store/sqlite"
)

type testEnv struct {
	server *httptest.Server
	auth   *auth.Service
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.JWTSecret = "test-secret"
	cfg.JWTIssuer = "test"
	cfg.JWTAudience = "test"
	return cfg
}

func startTestServer(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	})

	logger := zerolog.Nop()
	hub := core.NewHub(st, friends.New(st), servers.New(st), &logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	ts := httptest.NewServer(NewRouter(hub, authService, st, &cfg, &logger))
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, auth: authService}
}

type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(e.server.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}))
}

// readEvent reads until the named event arrives and decodes its data into v.
func readEvent(t *testing.T, conn *websocket.Conn, name string, v any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	for {
		var out outbound
		require.NoError(t, wsjson.Read(ctx, conn, &out), "waiting for %s", name)
		if out.Type == proto.OutboundTypeEvent && out.Event == name {
			if v != nil {
				require.NoError(t, json.Unmarshal(out.Data, v))
			}
			return
		}
	}
}

// readError reads until an error arrives.
func readError(t *testing.T, conn *websocket.Conn) *proto.Error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	for {
		var out outbound
		require.NoError(t, wsjson.Read(ctx, conn, &out), "waiting for error")
		if out.Type == proto.OutboundTypeError {
			require.NotNil(t, out.Error)
			return out.Error
		}
	}
}

func join(t *testing.T, conn *websocket.Conn, name string) proto.EventInit {
	t.Helper()

	send(t, conn, proto.InboundTypeJoin, proto.JoinData{Name: name})
	var init proto.EventInit
	readEvent(t, conn, proto.EventInit, &init)
	return init
}
