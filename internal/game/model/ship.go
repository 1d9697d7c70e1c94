package model

import (
	"asteroids.ai/internal/game/geom"
	"asteroids.ai/internal/protocol"
)

type Ship struct {
	ID          int               `msgpack:"id"`
	PlayerID    int               `msgpack:"player"`
	Position    geom.Vec          `msgpack:"position"`
	Vector      geom.Vec          `msgpack:"vector"`
	Health      int               `msgpack:"health"`
	Fuel        float64           `msgpack:"fuel"`
	Rock        int               `msgpack:"rock"`
	Type        protocol.ShipType `msgpack:"type"`
	IsDestroyed bool              `msgpack:"is_destroyed"`
}

func decodeShip(rec protocol.Record) (Ship, error) {
	var s Ship
	var err error
	if s.ID, err = rec.Int("id"); err != nil {
		return Ship{}, err
	}
	if s.PlayerID, err = rec.Int("player"); err != nil {
		return Ship{}, err
	}
	if s.Position, err = rec.Vec("position"); err != nil {
		return Ship{}, err
	}
	if s.Vector, err = rec.Vec("vector"); err != nil {
		return Ship{}, err
	}
	if s.Health, err = rec.Int("health"); err != nil {
		return Ship{}, err
	}
	if s.Fuel, err = rec.Float("fuel"); err != nil {
		return Ship{}, err
	}
	if s.Rock, err = rec.Int("rock"); err != nil {
		return Ship{}, err
	}
	d, err := rec.Int("type")
	if err != nil {
		return Ship{}, err
	}
	if s.Type, err = protocol.ParseShipType("type", d); err != nil {
		return Ship{}, err
	}
	if s.IsDestroyed, err = rec.BoolOr("is_destroyed", false); err != nil {
		return Ship{}, err
	}
	return s, nil
}

// NewShip builds a ship from its first snapshot record.
func NewShip(rec protocol.Record) (*Ship, error) {
	s := &Ship{}
	if err := s.Merge(rec); err != nil {
		return nil, err
	}
	return s, nil
}

// Merge overwrites s with rec. Nothing is written unless the whole record
// decodes.
func (s *Ship) Merge(rec protocol.Record) error {
	next, err := decodeShip(rec)
	if err != nil {
		return err
	}
	*s = next
	return nil
}

func (s *Ship) IsAlive() bool { return s.Health > 0 && !s.IsDestroyed }

func (s *Ship) IsOperable() bool { return !s.IsDestroyed }

func (s *Ship) CanShoot() bool { return s.Type == protocol.BattleShip && !s.IsDestroyed }

func (s *Ship) CanMine() bool {
	return (s.Type == protocol.DrillShip || s.Type == protocol.SuckerShip) && !s.IsDestroyed
}

func (s *Ship) CanCarryCargo() bool {
	return (s.Type == protocol.TankerShip || s.Type == protocol.TruckShip) && !s.IsDestroyed
}
