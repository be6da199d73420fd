package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"suryawash/internal/domain"
	"suryawash/internal/identity"
	"suryawash/internal/modules/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	mu      sync.Mutex
	revoked bool
}

func (f *fakeSessions) CurrentSession(_ context.Context, token string) (*identity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token != "good" || f.revoked {
		return nil, &identity.Error{Code: identity.CodeSessionExpired, Message: "expired"}
	}
	return &identity.Session{UserID: "u1", SessionID: "s1", Token: token}, nil
}

func (f *fakeSessions) revoke() {
	f.mu.Lock()
	f.revoked = true
	f.mu.Unlock()
}

type fakeStates struct {
	mu           sync.Mutex
	fn           func(auth.SessionState)
	unsubscribed chan struct{}
}

func (f *fakeStates) CurrentState(_ context.Context, userID string) (*auth.SessionState, error) {
	return &auth.SessionState{
		Event: string(identity.EventSignedIn),
		User:  &domain.Profile{ID: userID, FullName: "Ravi Kumar"},
		At:    time.Now().UTC(),
	}, nil
}

func (f *fakeStates) WatchSession(_ string, fn func(auth.SessionState)) func() {
	f.mu.Lock()
	f.fn = fn
	f.mu.Unlock()
	return func() { close(f.unsubscribed) }
}

func (f *fakeStates) emit(st auth.SessionState) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	fn(st)
}

func startServer(t *testing.T) (*httptest.Server, *fakeSessions, *fakeStates, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sessions := &fakeSessions{}
	states := &fakeStates{unsubscribed: make(chan struct{})}
	hub := NewHub()

	r := gin.New()
	NewWSHandler(hub, sessions, states, nil, func(string, ...interface{}) {}).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, sessions, states, hub
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/session?token=" + token
	return websocket.DefaultDialer.Dial(u, nil)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m Message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestSessionStream_Rejects(t *testing.T) {
	srv, _, _, _ := startServer(t)

	_, resp, err := dial(t, srv, "")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dial(t, srv, "bad")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionStream_StatesAndSignOut(t *testing.T) {
	srv, sessions, states, hub := startServer(t)

	conn, _, err := dial(t, srv, "good")
	require.NoError(t, err)
	defer conn.Close()

	first := readMessage(t, conn)
	assert.Equal(t, MessageState, first.Type)
	require.NotNil(t, first.State.User)
	assert.Equal(t, "u1", first.State.User.ID)
	assert.True(t, hub.IsOnline("u1"))

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "ping"}))
	assert.Equal(t, MessagePong, readMessage(t, conn).Type)

	states.emit(auth.SessionState{Event: string(identity.EventRefreshed), User: &domain.Profile{ID: "u1"}})
	assert.Equal(t, string(identity.EventRefreshed), readMessage(t, conn).State.Event)

	// Another device signing out leaves this stream alone.
	states.emit(auth.SessionState{Event: string(identity.EventSignedOut)})
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "ping"}))
	assert.Equal(t, MessagePong, readMessage(t, conn).Type)

	sessions.revoke()
	states.emit(auth.SessionState{Event: string(identity.EventSignedOut)})
	last := readMessage(t, conn)
	assert.Equal(t, string(identity.EventSignedOut), last.State.Event)
	assert.Nil(t, last.State.User)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))

	select {
	case <-states.unsubscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher was not released")
	}
	assert.Eventually(t, func() bool { return !hub.IsOnline("u1") }, 2*time.Second, 10*time.Millisecond)
}

func TestSessionStream_UnknownMessage(t *testing.T) {
	srv, _, _, _ := startServer(t)

	conn, _, err := dial(t, srv, "good")
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	assert.Equal(t, "INVALID_JSON", readMessage(t, conn).Error.Code)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "subscribe"}))
	assert.Equal(t, "UNKNOWN_TYPE", readMessage(t, conn).Error.Code)
}

func TestHub_Count(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.GetOnlineCount())
	assert.False(t, hub.IsOnline("u1"))
}
