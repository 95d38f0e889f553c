package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	notifdomain "octagram/backend/internal/notification/domain"
	"octagram/backend/internal/security"
	userdomain "octagram/backend/internal/user/domain"
)

// stubAuth identifies the caller from the "as" query parameter.
type stubAuth struct{}

func (stubAuth) Identify(r *http.Request) (*security.AccessClaims, error) {
	as := r.URL.Query().Get("as")
	if as == "" {
		return nil, security.ErrInvalidToken
	}
	return &security.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: as},
		Username:         as,
		Role:             userdomain.RoleUser,
	}, nil
}

type wsClient struct {
	t  *testing.T
	ws *websocket.Conn
}

func dialWS(t *testing.T, serverURL, channel, as string) *wsClient {
	t.Helper()
	url := strings.Replace(serverURL, "http", "ws", 1) + "/" + channel + "?as=" + as
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s as %s: %v", channel, as, err)
	}
	t.Cleanup(func() { ws.Close() })
	return &wsClient{t: t, ws: ws}
}

func (c *wsClient) write(frame ClientFrame) {
	c.t.Helper()
	if err := c.ws.WriteJSON(frame); err != nil {
		c.t.Fatalf("write frame: %v", err)
	}
}

func (c *wsClient) read() Event {
	c.t.Helper()
	c.ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var e Event
	if err := c.ws.ReadJSON(&e); err != nil {
		c.t.Fatalf("read event: %v", err)
	}
	return e
}

func (c *wsClient) expectSilence() {
	c.t.Helper()
	c.ws.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var e Event
	if err := c.ws.ReadJSON(&e); err == nil {
		c.t.Fatalf("unexpected event: %+v", e)
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *Dispatcher) {
	t.Helper()
	users := &memUserStore{m: map[string]*userdomain.User{
		"alice": {ID: "alice", Username: "alice"},
		"bob":   {ID: "bob", Username: "bob"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := NewDispatcher(users, &memMessageStore{}, NewRegistry(), NewRegistry(), logger, otel.Meter("test"))
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/messages", NewMessageChannelHandler(d, stubAuth{}, logger))
	mux.Handle("/notifications", NewNotificationChannelHandler(d, stubAuth{}, logger))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, d
}

func waitForMembers(t *testing.T, reg *Registry, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(reg.MembersOf(userID)) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("members of %s never reached %d", userID, want)
}

func TestChannelHandler_SendAndEcho(t *testing.T) {
	srv, d := newTestServer(t)

	alice := dialWS(t, srv.URL, "messages", "alice")
	bob := dialWS(t, srv.URL, "messages", "bob")

	alice.write(ClientFrame{Type: FrameJoin, UserID: "alice"})
	bob.write(ClientFrame{Type: FrameJoin, UserID: "bob"})
	waitForMembers(t, d.MessageRegistry(), "alice", 1)
	waitForMembers(t, d.MessageRegistry(), "bob", 1)

	alice.write(ClientFrame{Type: FrameSendMessage, SenderID: "alice", ReceiverID: "bob", Content: "hi bob"})

	for name, c := range map[string]*wsClient{"bob": bob, "alice": alice} {
		e := c.read()
		if e.Type != EventReceiveMessage {
			t.Fatalf("%s: got event %q, want %q", name, e.Type, EventReceiveMessage)
		}
		raw, _ := json.Marshal(e.Data)
		var payload struct {
			SenderID   string `json:"senderId"`
			ReceiverID string `json:"receiverId"`
			Content    string `json:"content"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("%s: decode payload: %v", name, err)
		}
		if payload.SenderID != "alice" || payload.ReceiverID != "bob" || payload.Content != "hi bob" {
			t.Errorf("%s: payload: got %+v", name, payload)
		}
	}
}

func TestChannelHandler_SpoofedSender(t *testing.T) {
	srv, d := newTestServer(t)

	alice := dialWS(t, srv.URL, "messages", "alice")
	bob := dialWS(t, srv.URL, "messages", "bob")
	bob.write(ClientFrame{Type: FrameJoin, UserID: "bob"})
	waitForMembers(t, d.MessageRegistry(), "bob", 1)

	alice.write(ClientFrame{Type: FrameSendMessage, SenderID: "bob", ReceiverID: "alice", Content: "spoofed"})

	e := alice.read()
	if e.Type != EventError {
		t.Fatalf("got event %q, want %q", e.Type, EventError)
	}
	raw, _ := json.Marshal(e.Data)
	var data ErrorData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("decode error data: %v", err)
	}
	if data.Message != "Invalid sender ID" {
		t.Errorf("error message: got %q", data.Message)
	}
	bob.expectSilence()
}

func TestChannelHandler_JoinOtherUsersGroup(t *testing.T) {
	srv, d := newTestServer(t)

	alice := dialWS(t, srv.URL, "messages", "alice")
	alice.write(ClientFrame{Type: FrameJoin, UserID: "bob"})

	e := alice.read()
	if e.Type != EventError {
		t.Fatalf("got event %q, want %q", e.Type, EventError)
	}
	if got := len(d.MessageRegistry().MembersOf("bob")); got != 0 {
		t.Errorf("bob members: got %d, want 0", got)
	}
}

func TestChannelHandler_Unauthenticated(t *testing.T) {
	srv, _ := newTestServer(t)
	url := strings.Replace(srv.URL, "http", "ws", 1) + "/messages"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial without token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
}

func TestChannelHandler_NotificationPush(t *testing.T) {
	srv, d := newTestServer(t)

	bob := dialWS(t, srv.URL, "notifications", "bob")
	bob.write(ClientFrame{Type: FrameJoin, UserID: "bob"})
	waitForMembers(t, d.NotificationRegistry(), "bob", 1)

	n := &notifdomain.Notification{ID: "n1", RecipientID: "bob", SenderID: "alice", Type: notifdomain.TypeComment, TargetID: "p1"}
	if err := d.PublishNotification(context.Background(), n); err != nil {
		t.Fatalf("PublishNotification: %v", err)
	}

	e := bob.read()
	if e.Type != EventReceiveNotification {
		t.Fatalf("got event %q, want %q", e.Type, EventReceiveNotification)
	}
}

func TestChannelHandler_NotificationChannelRejectsSendMessage(t *testing.T) {
	srv, _ := newTestServer(t)

	bob := dialWS(t, srv.URL, "notifications", "bob")
	bob.write(ClientFrame{Type: FrameSendMessage, SenderID: "bob", ReceiverID: "alice", Content: "hi"})

	e := bob.read()
	if e.Type != EventError {
		t.Errorf("got event %q, want %q", e.Type, EventError)
	}
}

func TestChannelHandler_DisconnectReapsMembership(t *testing.T) {
	srv, d := newTestServer(t)

	bob := dialWS(t, srv.URL, "messages", "bob")
	bob.write(ClientFrame{Type: FrameJoin, UserID: "bob"})
	waitForMembers(t, d.MessageRegistry(), "bob", 1)

	bob.ws.Close()
	waitForMembers(t, d.MessageRegistry(), "bob", 0)
}
