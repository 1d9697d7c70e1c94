// Package client runs the bot side of the match protocol: one snapshot in,
// one command batch out, strictly alternating on a single goroutine.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"asteroids.ai/internal/game/model"
	"asteroids.ai/internal/protocol"
)

// Conn is a frame transport. stream.Conn and ws.Conn implement it.
type Conn interface {
	ReadFrame(ctx context.Context) (string, error)
	WriteFrame(ctx context.Context, payload string) error
	Close() error
}

// Decider chooses the commands for one round. The world is owned by the
// client and must not be retained past the call.
type Decider interface {
	Decide(w *model.World, viewer int) []protocol.Command
}

type DeciderFunc func(w *model.World, viewer int) []protocol.Command

func (f DeciderFunc) Decide(w *model.World, viewer int) []protocol.Command { return f(w, viewer) }

type State int

const (
	AwaitingSnapshot State = iota
	Decoding
	Deciding
	Encoding
)

func (s State) String() string {
	switch s {
	case AwaitingSnapshot:
		return "awaiting_snapshot"
	case Decoding:
		return "decoding"
	case Deciding:
		return "deciding"
	case Encoding:
		return "encoding"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Report describes one completed round. View is a detached copy; observers
// may keep it.
type Report struct {
	Round    int
	Viewer   int
	Digest   string
	State    []byte
	Commands []byte
	Count    int
	Diff     model.Diff
	View     model.View
}

type Observer interface {
	ObserveRound(r Report)
}

type Options struct {
	Logger *log.Logger
	// Verbose logs a one-line summary per round.
	Verbose bool

	// Validator, when set, checks the payloads selected below against the
	// embedded schemas.
	Validator        *protocol.Validator
	ValidateState    bool
	ValidateCommands bool

	Observers []Observer
}

type Client struct {
	conn    Conn
	decider Decider
	opts    Options

	world *model.World
	state State

	// OnState, when set, is called on every state transition. Tests use it.
	OnState func(State)
}

func New(conn Conn, decider Decider, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		conn:    conn,
		decider: decider,
		opts:    opts,
		world:   model.NewWorld(),
		state:   AwaitingSnapshot,
	}
}

func (c *Client) State() State { return c.state }

// World returns the client's world. It is only safe to read between rounds
// on the goroutine driving the client.
func (c *Client) World() *model.World { return c.world }

func (c *Client) setState(s State) {
	c.state = s
	if c.OnState != nil {
		c.OnState(s)
	}
}

// Round runs one read, decide, write cycle. It returns io.EOF when the
// stream ends cleanly before a snapshot arrives.
func (c *Client) Round(ctx context.Context) error {
	c.setState(AwaitingSnapshot)
	payload, err := c.conn.ReadFrame(ctx)
	if err != nil {
		return err
	}

	c.setState(Decoding)
	raw := []byte(payload)
	if c.opts.Validator != nil && c.opts.ValidateState {
		if err := c.opts.Validator.ValidateState(raw); err != nil {
			return err
		}
	}
	st, err := protocol.DecodeState(raw)
	if err != nil {
		return err
	}
	prevRound, wasReady := c.world.Round, c.world.Ready()
	diff, err := c.world.Apply(st)
	if err != nil {
		return err
	}
	if wasReady && c.world.Round <= prevRound {
		c.opts.Logger.Printf("warn: round went from %d to %d", prevRound, c.world.Round)
	}

	c.setState(Deciding)
	cmds := c.decider.Decide(c.world, c.world.ViewerID)

	c.setState(Encoding)
	out, err := protocol.EncodeCommands(cmds)
	if err != nil {
		return err
	}
	if c.opts.Validator != nil && c.opts.ValidateCommands {
		if err := c.opts.Validator.ValidateCommands(out); err != nil {
			return err
		}
	}
	if err := c.conn.WriteFrame(ctx, string(out)); err != nil {
		return err
	}
	c.setState(AwaitingSnapshot)

	if c.opts.Verbose {
		c.opts.Logger.Printf("round=%d ships=%d asteroids=%d commands=%d created=%d dropped=%d",
			c.world.Round, len(c.world.Ships.Live()), len(c.world.Asteroids.Live()), len(cmds),
			diff.Ships.Created+diff.Asteroids.Created, diff.Ships.Dropped+diff.Asteroids.Dropped)
	}
	if len(c.opts.Observers) > 0 {
		return c.report(raw, out, len(cmds), diff)
	}
	return nil
}

func (c *Client) report(state, cmds []byte, n int, diff model.Diff) error {
	view := c.world.View()
	digest, err := view.Digest()
	if err != nil {
		return fmt.Errorf("digest round %d: %w", c.world.Round, err)
	}
	r := Report{
		Round:    c.world.Round,
		Viewer:   c.world.ViewerID,
		Digest:   digest,
		State:    state,
		Commands: cmds,
		Count:    n,
		Diff:     diff,
		View:     view,
	}
	for _, o := range c.opts.Observers {
		o.ObserveRound(r)
	}
	return nil
}

// Run drives rounds until the stream ends, an error occurs, or ctx is
// canceled. A clean end of stream returns nil.
func (c *Client) Run(ctx context.Context) error {
	rounds := 0
	for {
		if err := c.Round(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				c.opts.Logger.Printf("stream closed after %d rounds", rounds)
				return nil
			}
			if code := protocol.CodeOf(err); code != "" {
				c.opts.Logger.Printf("fatal %s in state %s: %v", code, c.state, err)
			}
			return err
		}
		rounds++
	}
}
