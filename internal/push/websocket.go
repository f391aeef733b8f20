package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// HandshakeError reports a failed connection attempt. Status is the HTTP
// status of the handshake response, or 0 if none was received.
type HandshakeError struct {
	Status int
	Err    error
}

func (e *HandshakeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("push handshake failed (%d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("push handshake failed: %v", e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// IsRejected reports whether err is a handshake refused for its credential.
func IsRejected(err error) bool {
	var hsErr *HandshakeError
	if !errors.As(err, &hsErr) {
		return false
	}
	return hsErr.Status == http.StatusUnauthorized || hsErr.Status == http.StatusForbidden
}

// WebSocketDialer connects to the event stream over a websocket,
// authenticating the handshake with the bearer token.
type WebSocketDialer struct {
	url    string
	dialer *websocket.Dialer
}

// NewWebSocketDialer creates a dialer for the given ws:// or wss:// URL.
func NewWebSocketDialer(url string) *WebSocketDialer {
	return &WebSocketDialer{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 15 * time.Second,
		},
	}
}

// Dial implements Dialer.
func (d *WebSocketDialer) Dial(ctx context.Context, token string) (Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	ws, resp, err := d.dialer.DialContext(ctx, d.url, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
			resp.Body.Close()
		}
		return nil, &HandshakeError{Status: status, Err: err}
	}

	return &wsConn{ws: ws}, nil
}

type wsConn struct {
	ws *websocket.Conn
}

func (c *wsConn) ReadEvent() (Event, error) {
	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			return Event{}, err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		return DecodeEvent(data)
	}
}

func (c *wsConn) Close() error {
	_ = c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return c.ws.Close()
}
