// ABOUTME: Transport abstraction over the websocket connection
// ABOUTME: Lets session tests substitute an in-memory frame pipe

package gateway

import (
	"context"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Transport is the minimal connection surface a Session needs: JSON frame
// reads and writes plus close. The production implementation wraps a
// websocket connection; tests substitute in-memory pipes.
type Transport interface {
	ReadJSON(ctx context.Context, v any) error
	WriteJSON(ctx context.Context, v any) error
	Close(code websocket.StatusCode, reason string) error
}

// wsTransport adapts a coder/websocket connection to the Transport interface.
type wsTransport struct {
	conn *websocket.Conn
}

// NewWebsocketTransport wraps an accepted websocket connection.
func NewWebsocketTransport(conn *websocket.Conn) Transport {
	return &wsTransport{conn: conn}
}

func (t *wsTransport) ReadJSON(ctx context.Context, v any) error {
	return wsjson.Read(ctx, t.conn, v)
}

func (t *wsTransport) WriteJSON(ctx context.Context, v any) error {
	return wsjson.Write(ctx, t.conn, v)
}

func (t *wsTransport) Close(code websocket.StatusCode, reason string) error {
	return t.conn.Close(code, reason)
}
