package model

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/vmihailenco/msgpack/v5"
)

// View is a detached deep copy of a World, safe to hand to another goroutine.
type View struct {
	Round     int         `msgpack:"round"`
	Radius    float64     `msgpack:"radius"`
	ViewerID  int         `msgpack:"viewer"`
	Ships     []*Ship     `msgpack:"ships"`
	Asteroids []*Asteroid `msgpack:"asteroids"`
	Wormholes []*Wormhole `msgpack:"wormholes"`
	Players   []*Player   `msgpack:"players"`
}

func (w *World) View() View {
	return View{
		Round:     w.Round,
		Radius:    w.Radius,
		ViewerID:  w.ViewerID,
		Ships:     cloneSlots(w.Ships.slots),
		Asteroids: cloneSlots(w.Asteroids.slots),
		Wormholes: cloneSlots(w.Wormholes.slots),
		Players:   cloneSlots(w.Players.slots),
	}
}

func cloneSlots[T any](slots []*T) []*T {
	out := make([]*T, len(slots))
	for i, e := range slots {
		if e != nil {
			c := *e
			out[i] = &c
		}
	}
	return out
}

// Encode renders the view as msgpack. Struct fields encode in declaration
// order and empty slots as nil, so equal views encode to equal bytes.
func (v View) Encode() ([]byte, error) {
	return msgpack.Marshal(&v)
}

func DecodeView(b []byte) (View, error) {
	var v View
	err := msgpack.Unmarshal(b, &v)
	return v, err
}

// Digest is the hex sha256 of the view's msgpack encoding.
func (v View) Digest() (string, error) {
	b, err := v.Encode()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
