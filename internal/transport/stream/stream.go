// Package stream carries frames over a pair of byte streams, normally the
// bot process's stdin and stdout.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"asteroids.ai/internal/protocol"
)

type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type readDeadliner interface {
	SetReadDeadline(time.Time) error
}

type writeDeadliner interface {
	SetWriteDeadline(time.Time) error
}

type Conn struct {
	fr *protocol.FrameReader
	fw *protocol.FrameWriter

	rd readDeadliner
	wd writeDeadliner

	opts    Options
	closers []io.Closer

	// broken is set once a read has been abandoned mid-frame; the reader
	// position is unknown after that.
	broken error
}

type readResult struct {
	payload string
	err     error
}

// New wraps r and w. Deadlines are set on r and w when they support them
// (pollable pipes, sockets). Otherwise the read timeout and ctx are enforced
// by abandoning the blocked read, which leaves the Conn unusable.
func New(r io.Reader, w io.Writer, opts Options) *Conn {
	c := &Conn{
		fr:   protocol.NewFrameReader(r),
		fw:   protocol.NewFrameWriter(w),
		opts: opts,
	}
	if d, ok := r.(readDeadliner); ok && supportsDeadline(d.SetReadDeadline) {
		c.rd = d
	}
	if d, ok := w.(writeDeadliner); ok && supportsDeadline(d.SetWriteDeadline) {
		c.wd = d
	}
	for _, v := range []any{r, w} {
		if cl, ok := v.(io.Closer); ok {
			c.closers = append(c.closers, cl)
		}
	}
	return c
}

// Stdio frames over the process's stdin and stdout. Inherited pipes are
// blocking descriptors; they are switched to non-blocking mode first so the
// runtime poller can enforce deadlines on them.
func Stdio(opts Options) *Conn {
	return New(pollable(os.Stdin), pollable(os.Stdout), opts)
}

// Deadlines reports whether the read side supports native deadlines.
func (c *Conn) Deadlines() bool { return c.rd != nil }

func supportsDeadline(set func(time.Time) error) bool {
	return set(time.Time{}) == nil
}

func (c *Conn) ReadFrame(ctx context.Context) (string, error) {
	if c.broken != nil {
		return "", c.broken
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.rd == nil {
		return c.readDetached(ctx)
	}
	if c.opts.ReadTimeout > 0 {
		_ = c.rd.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
	} else {
		_ = c.rd.SetReadDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() { _ = c.rd.SetReadDeadline(time.Now()) })
	defer stop()

	payload, err := c.fr.ReadFrame()
	if err != nil {
		return "", c.mapErr(ctx, "read", err)
	}
	return payload, nil
}

// readDetached runs the read on its own goroutine and gives up on it when the
// timeout fires or ctx is done. The goroutine stays blocked until the peer
// writes or closes.
func (c *Conn) readDetached(ctx context.Context) (string, error) {
	done := make(chan readResult, 1)
	go func() {
		payload, err := c.fr.ReadFrame()
		done <- readResult{payload: payload, err: err}
	}()

	var timeout <-chan time.Time
	if c.opts.ReadTimeout > 0 {
		t := time.NewTimer(c.opts.ReadTimeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case r := <-done:
		return r.payload, r.err
	case <-timeout:
		c.broken = protocol.Timeout("read", fmt.Errorf("no frame within %s", c.opts.ReadTimeout))
		return "", c.broken
	case <-ctx.Done():
		c.broken = ctx.Err()
		return "", c.broken
	}
}

func (c *Conn) WriteFrame(ctx context.Context, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.wd != nil {
		if c.opts.WriteTimeout > 0 {
			_ = c.wd.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
		} else {
			_ = c.wd.SetWriteDeadline(time.Time{})
		}
	}
	if err := c.fw.WriteFrame(payload); err != nil {
		return c.mapErr(ctx, "write", err)
	}
	return nil
}

func (c *Conn) mapErr(ctx context.Context, op string, err error) error {
	if isTimeout(err) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return protocol.Timeout(op, err)
	}
	return err
}

func (c *Conn) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
