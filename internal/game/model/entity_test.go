package model

import (
	"errors"
	"testing"

	"asteroids.ai/internal/game/geom"
	"asteroids.ai/internal/protocol"
)

func TestNewShip_Fields(t *testing.T) {
	s, err := NewShip(shipRec(7, 80))
	if err != nil {
		t.Fatalf("NewShip: %v", err)
	}
	want := Ship{
		ID:       7,
		PlayerID: 0,
		Position: geom.Vec{X: 1, Y: 2},
		Health:   80,
		Fuel:     50.5,
		Rock:     3,
		Type:     protocol.DrillShip,
	}
	if *s != want {
		t.Fatalf("ship mismatch:\n got %+v\nwant %+v", *s, want)
	}
	if !s.IsAlive() || !s.CanMine() || s.CanShoot() || s.CanCarryCargo() {
		t.Fatalf("predicates wrong for %+v", *s)
	}
}

func TestShipMerge_IsDestroyedDefaultsFalse(t *testing.T) {
	rec := shipRec(1, 10)
	rec["is_destroyed"] = true
	s, err := NewShip(rec)
	if err != nil {
		t.Fatalf("NewShip: %v", err)
	}
	if !s.IsDestroyed || s.IsAlive() || s.IsOperable() {
		t.Fatalf("expected destroyed ship: %+v", *s)
	}

	if err := s.Merge(shipRec(1, 10)); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if s.IsDestroyed {
		t.Fatalf("absent is_destroyed must reset to false")
	}
}

func TestShipMerge_AllOrNothing(t *testing.T) {
	s, err := NewShip(shipRec(1, 90))
	if err != nil {
		t.Fatalf("NewShip: %v", err)
	}
	before := *s

	bad := shipRec(1, 10)
	delete(bad, "rock")
	if err := s.Merge(bad); !errors.Is(err, protocol.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if *s != before {
		t.Fatalf("failed merge modified ship: %+v", *s)
	}

	bad = shipRec(1, 10)
	bad["type"] = num("6")
	if err := s.Merge(bad); !errors.Is(err, protocol.ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
	if *s != before {
		t.Fatalf("failed merge modified ship: %+v", *s)
	}

	bad = shipRec(1, 10)
	bad["health"] = num("9.5")
	if err := s.Merge(bad); !errors.Is(err, protocol.ErrDecode) {
		t.Fatalf("expected ErrDecode for fractional health, got %v", err)
	}
}

func TestAsteroid_Decode(t *testing.T) {
	a, err := NewAsteroid(asteroidRec(4))
	if err != nil {
		t.Fatalf("NewAsteroid: %v", err)
	}
	if a.ID != 4 || a.Type != protocol.FuelAsteroid || a.Size != 42.5 || a.Claimed() {
		t.Fatalf("asteroid mismatch: %+v", *a)
	}

	bad := asteroidRec(4)
	bad["type"] = num("2")
	if err := a.Merge(bad); !errors.Is(err, protocol.ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestWormholeAndPlayer_Decode(t *testing.T) {
	w, err := NewWormhole(wormholeRec(3, 4))
	if err != nil {
		t.Fatalf("NewWormhole: %v", err)
	}
	if w.ID != 3 || w.TargetID != 4 || w.Position != (geom.Vec{X: 5, Y: 5}) {
		t.Fatalf("wormhole mismatch: %+v", *w)
	}

	p, err := NewPlayer(playerRec(1, 250))
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	if p.ID != 1 || p.Name != "p1" || p.Rock != 250 || p.Fuel != 100.5 || !p.Alive {
		t.Fatalf("player mismatch: %+v", *p)
	}

	bad := playerRec(1, 250)
	bad["mothership"] = map[string]any{"rock": num("1")}
	err = p.Merge(bad)
	var pe *protocol.Error
	if !errors.As(err, &pe) || pe.Op != "mothership.fuel" {
		t.Fatalf("expected decode error at mothership.fuel, got %v", err)
	}
	if p.Rock != 250 {
		t.Fatalf("failed merge modified player: %+v", *p)
	}
}
