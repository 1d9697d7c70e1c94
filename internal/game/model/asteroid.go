package model

import (
	"asteroids.ai/internal/game/geom"
	"asteroids.ai/internal/protocol"
)

// NoOwner is the owner id of an unclaimed asteroid.
const NoOwner = -1

type Asteroid struct {
	ID       int                   `msgpack:"id"`
	Position geom.Vec              `msgpack:"position"`
	Type     protocol.AsteroidType `msgpack:"type"`
	Size     float64               `msgpack:"size"`
	OwnerID  int                   `msgpack:"owner_id"`
	Surface  float64               `msgpack:"surface"`
}

func decodeAsteroid(rec protocol.Record) (Asteroid, error) {
	var a Asteroid
	var err error
	if a.ID, err = rec.Int("id"); err != nil {
		return Asteroid{}, err
	}
	if a.Position, err = rec.Vec("position"); err != nil {
		return Asteroid{}, err
	}
	d, err := rec.Int("type")
	if err != nil {
		return Asteroid{}, err
	}
	if a.Type, err = protocol.ParseAsteroidType("type", d); err != nil {
		return Asteroid{}, err
	}
	if a.Size, err = rec.Float("size"); err != nil {
		return Asteroid{}, err
	}
	if a.OwnerID, err = rec.Int("owner_id"); err != nil {
		return Asteroid{}, err
	}
	if a.Surface, err = rec.Float("surface"); err != nil {
		return Asteroid{}, err
	}
	return a, nil
}

func NewAsteroid(rec protocol.Record) (*Asteroid, error) {
	a := &Asteroid{}
	if err := a.Merge(rec); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Asteroid) Merge(rec protocol.Record) error {
	next, err := decodeAsteroid(rec)
	if err != nil {
		return err
	}
	*a = next
	return nil
}

func (a *Asteroid) Claimed() bool { return a.OwnerID != NoOwner }
