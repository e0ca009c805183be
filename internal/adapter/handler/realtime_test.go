package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-quality/internal/infrastructure/realtime"
	"github.com/johnquangdev/meeting-quality/internal/usecase/presence"
	"github.com/johnquangdev/meeting-quality/pkg/config"
	"github.com/johnquangdev/meeting-quality/pkg/jwt"
)

type wsFixture struct {
	url    string
	tokens *jwt.Manager
	hub    *realtime.Hub
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Realtime.MessagesPerSecond = 50
	cfg.Realtime.Burst = 50

	hub := realtime.NewHub(nil)
	hub.UsePresence(presence.NewTracker(hub, nil))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	tokens := jwt.NewManager("ws-secret", time.Hour, "meeting-quality")
	e := echo.New()
	e.GET("/ws", NewRealtimeHandler(hub, tokens, cfg, nil).Serve)
	srv := httptest.NewServer(e)

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &wsFixture{
		url:    "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
		tokens: tokens,
		hub:    hub,
	}
}

func (f *wsFixture) token(t *testing.T, name string) string {
	t.Helper()
	token, err := f.tokens.GenerateAccessToken(uuid.New(), name+"@example.com", name)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return token
}

func readFrame(t *testing.T, conn *websocket.Conn) realtime.Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env realtime.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return env
}

func TestRealtimeRejectsInvalidToken(t *testing.T) {
	f := newWSFixture(t)

	conn, _, err := websocket.DefaultDialer.Dial(f.url+"?token=garbage", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	env := readFrame(t, conn)
	if env.Event != realtime.EventAuthError {
		t.Fatalf("event = %s, want auth_error", env.Event)
	}
	var body realtime.AuthError
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatal(err)
	}
	if body.Message != "Authentication failed" || body.Code != "AUTH_INVALID_TOKEN" {
		t.Errorf("auth_error = %+v", body)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Errorf("expected policy close, got %v", err)
	}
}

func TestRealtimeClosesWithoutToken(t *testing.T) {
	f := newWSFixture(t)

	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Errorf("expected policy close, got %v", err)
	}
}

func TestRealtimeRejectsForeignOrigin(t *testing.T) {
	f := newWSFixture(t)

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(f.url+"?token="+f.token(t, "Ada"), header)
	if err == nil {
		t.Fatal("dial succeeded from a foreign origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v", resp)
	}
}

func TestRealtimeJoinOverSubprotocol(t *testing.T) {
	f := newWSFixture(t)
	meetingID := uuid.New()

	dialer := websocket.Dialer{Subprotocols: []string{Subprotocol, "bearer." + f.token(t, "Ada")}}
	conn, resp, err := dialer.Dial(f.url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if got := resp.Header.Get("Sec-WebSocket-Protocol"); got != Subprotocol {
		t.Errorf("negotiated subprotocol = %q", got)
	}

	join := `{"event":"join_meeting","data":{"meetingId":"` + meetingID.String() + `"}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(join)); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The joiner sees both the roster broadcast and its ack; order between them is not fixed.
	seen := map[string]realtime.Envelope{}
	for len(seen) < 2 {
		env := readFrame(t, conn)
		seen[env.Event] = env
	}

	var ack realtime.JoinAck
	if err := json.Unmarshal(seen[realtime.EventJoinMeetingAck].Data, &ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if !ack.Success || ack.TotalParticipants != 1 || ack.Participants[0].FullName != "Ada" {
		t.Errorf("ack = %+v", ack)
	}
	if _, ok := seen[realtime.EventParticipantsUpdated]; !ok {
		t.Error("no participants_updated broadcast")
	}
	if f.hub.RoomSize(meetingID) != 1 {
		t.Errorf("room size = %d", f.hub.RoomSize(meetingID))
	}
}

func TestHandshakeToken(t *testing.T) {
	tests := []struct {
		name     string
		protocol string
		header   string
		query    string
		want     string
	}{
		{name: "subprotocol wins", protocol: "meetings.v1, bearer.proto", header: "Bearer head", query: "q", want: "proto"},
		{name: "header before query", header: "Bearer head", query: "q", want: "head"},
		{name: "query fallback", query: "q", want: "q"},
		{name: "nothing", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/ws"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			r := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.protocol != "" {
				r.Header.Set("Sec-WebSocket-Protocol", tt.protocol)
			}
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := HandshakeToken(r); got != tt.want {
				t.Errorf("HandshakeToken = %q, want %q", got, tt.want)
			}
		})
	}
}
