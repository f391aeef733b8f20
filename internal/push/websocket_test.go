package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// newEventServer starts a websocket server that accepts token "good",
// sends frames and then holds the connection open until the client leaves.
func newEventServer(t *testing.T, frames ...string) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketDialerReadsEvents(t *testing.T) {
	url := newEventServer(t,
		`{"event":"task:created","data":{"_id":"2","title":"B"}}`,
		`{"event":"task:typing","data":{}}`,
		`{"event":"task:deleted","data":{"task_id":"2"}}`,
	)

	conn, err := NewWebSocketDialer(url).Dial(context.Background(), "good")
	require.NoError(t, err)
	defer conn.Close()

	ev, err := conn.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, EventCreated, ev.Kind)
	assert.Equal(t, "B", ev.Task.Title)

	_, err = conn.ReadEvent()
	var decErr *DecodeError
	assert.ErrorAs(t, err, &decErr)

	ev, err = conn.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, EventDeleted, ev.Kind)
	assert.Equal(t, "2", ev.TaskID)
}

func TestWebSocketDialerRejectedToken(t *testing.T) {
	url := newEventServer(t)

	_, err := NewWebSocketDialer(url).Dial(context.Background(), "bad")
	require.Error(t, err)
	assert.True(t, IsRejected(err))
}

func TestWebSocketDialerUnreachable(t *testing.T) {
	_, err := NewWebSocketDialer("ws://127.0.0.1:1/ws").Dial(context.Background(), "good")
	require.Error(t, err)
	assert.False(t, IsRejected(err))
}

func TestManagerOverWebSocket(t *testing.T) {
	url := newEventServer(t, `{"event":"task:updated","data":{"_id":"1","title":"A2"}}`)

	m := NewManager(NewWebSocketDialer(url), Options{BackoffInitial: 10 * time.Millisecond})
	m.Open("good")
	t.Cleanup(m.Close)

	ev := recv(t, m)
	assert.Equal(t, EventUpdated, ev.Kind)
	assert.Equal(t, "A2", ev.Task.Title)
	assert.Equal(t, StateOpen, m.State())

	m.Close()
	assert.Equal(t, StateClosed, m.State())
}
