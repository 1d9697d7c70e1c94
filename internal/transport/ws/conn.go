// Package ws carries frames over a websocket, one text message per frame.
package ws

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"asteroids.ai/internal/protocol"
)

type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Conn is the bot's end of a frame relay.
type Conn struct {
	ws   *websocket.Conn
	opts Options

	closeOnce sync.Once
	closeErr  error
}

func newConn(c *websocket.Conn, opts Options) *Conn {
	c.SetReadLimit(16 << 20)
	return &Conn{ws: c, opts: opts}
}

func Dial(ctx context.Context, url string, opts Options) (*Conn, error) {
	c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return newConn(c, opts), nil
}

// ReadFrame returns io.EOF when the peer closes the socket normally between
// frames.
func (c *Conn) ReadFrame(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var deadline time.Time
	if c.opts.ReadTimeout > 0 {
		deadline = time.Now().Add(c.opts.ReadTimeout)
	}
	_ = c.ws.SetReadDeadline(deadline)
	stop := context.AfterFunc(ctx, func() { _ = c.ws.SetReadDeadline(time.Now()) })
	defer stop()

	typ, msg, err := c.ws.ReadMessage()
	if err != nil {
		return "", c.mapErr(ctx, "read", err)
	}
	if typ != websocket.TextMessage {
		return "", protocol.Framingf("read", "unexpected websocket message type %d", typ)
	}
	return protocol.DecodeFrame(msg)
}

func (c *Conn) WriteFrame(ctx context.Context, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := protocol.EncodeFrame(payload)
	if err != nil {
		return err
	}
	var deadline time.Time
	if c.opts.WriteTimeout > 0 {
		deadline = time.Now().Add(c.opts.WriteTimeout)
	}
	_ = c.ws.SetWriteDeadline(deadline)
	if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
		return c.mapErr(ctx, "write", err)
	}
	return nil
}

// Close sends a normal close message before dropping the socket.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

func (c *Conn) mapErr(ctx context.Context, op string, err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return protocol.Timeout(op, err)
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return io.EOF
	}
	return err
}
