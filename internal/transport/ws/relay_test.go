package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

// session drives the relay side of one accepted connection.
type session func(ctx context.Context, c *Conn) error

// startRelay serves each websocket connection to sess, standing in for the
// match runner that bridges bots to the simulation.
func startRelay(t *testing.T, sess session) string {
	t.Helper()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		wc, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		c := newConn(wc, Options{})
		defer c.Close()
		_ = sess(r.Context(), c)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}
