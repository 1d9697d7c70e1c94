package model

import (
	"asteroids.ai/internal/game/geom"
	"asteroids.ai/internal/protocol"
)

type Wormhole struct {
	ID       int      `msgpack:"id"`
	TargetID int      `msgpack:"target_id"`
	Position geom.Vec `msgpack:"position"`
}

func decodeWormhole(rec protocol.Record) (Wormhole, error) {
	var w Wormhole
	var err error
	if w.ID, err = rec.Int("id"); err != nil {
		return Wormhole{}, err
	}
	if w.TargetID, err = rec.Int("target_id"); err != nil {
		return Wormhole{}, err
	}
	if w.Position, err = rec.Vec("position"); err != nil {
		return Wormhole{}, err
	}
	return w, nil
}

func NewWormhole(rec protocol.Record) (*Wormhole, error) {
	w := &Wormhole{}
	if err := w.Merge(rec); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Wormhole) Merge(rec protocol.Record) error {
	next, err := decodeWormhole(rec)
	if err != nil {
		return err
	}
	*w = next
	return nil
}
