package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRecord_Accessors(t *testing.T) {
	r := Record{
		"i":    json.Number("42"),
		"f":    json.Number("2.5"),
		"fi":   json.Number("3"),
		"lit":  7,
		"s":    "red",
		"b":    true,
		"null": nil,
		"pos":  map[string]any{"x": json.Number("1"), "y": json.Number("-2.5")},
	}

	if v, err := r.Int("i"); err != nil || v != 42 {
		t.Fatalf("Int: %v %v", v, err)
	}
	if v, err := r.Int("lit"); err != nil || v != 7 {
		t.Fatalf("Int literal: %v %v", v, err)
	}
	if v, err := r.Float("f"); err != nil || v != 2.5 {
		t.Fatalf("Float: %v %v", v, err)
	}
	if v, err := r.Float("fi"); err != nil || v != 3 {
		t.Fatalf("Float from integer: %v %v", v, err)
	}
	if v, err := r.String("s"); err != nil || v != "red" {
		t.Fatalf("String: %v %v", v, err)
	}
	if v, err := r.Bool("b"); err != nil || !v {
		t.Fatalf("Bool: %v %v", v, err)
	}
	if v, err := r.BoolOr("absent", false); err != nil || v {
		t.Fatalf("BoolOr absent: %v %v", v, err)
	}
	if v, err := r.BoolOr("null", true); err != nil || !v {
		t.Fatalf("BoolOr null: %v %v", v, err)
	}
	if v, err := r.Vec("pos"); err != nil || v.X != 1 || v.Y != -2.5 {
		t.Fatalf("Vec: %v %v", v, err)
	}
}

func TestRecord_Errors(t *testing.T) {
	r := Record{
		"f":   json.Number("2.5"),
		"s":   "x",
		"pos": map[string]any{"x": json.Number("1")},
	}
	checks := []struct {
		name string
		err  error
		op   string
	}{
		{"missing", func() error { _, err := r.Int("nope"); return err }(), "nope"},
		{"fraction as int", func() error { _, err := r.Int("f"); return err }(), "f"},
		{"string as float", func() error { _, err := r.Float("s"); return err }(), "s"},
		{"float as bool", func() error { _, err := r.Bool("f"); return err }(), "f"},
		{"partial vec", func() error { _, err := r.Vec("pos"); return err }(), "pos.y"},
		{"scalar as record", func() error { _, err := r.Record("s"); return err }(), "s"},
	}
	for _, c := range checks {
		if !errors.Is(c.err, ErrDecode) {
			t.Fatalf("%s: expected ErrDecode, got %v", c.name, c.err)
		}
		var pe *Error
		if !errors.As(c.err, &pe) || pe.Op != c.op {
			t.Fatalf("%s: op mismatch: %v", c.name, c.err)
		}
	}
}

func TestParseEnums(t *testing.T) {
	if st, err := ParseShipType("type", 5); err != nil || st != BattleShip {
		t.Fatalf("ParseShipType(5): %v %v", st, err)
	}
	if _, err := ParseShipType("type", 6); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
	if _, err := ParseShipType("type", -1); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
	if at, err := ParseAsteroidType("type", 1); err != nil || at != FuelAsteroid {
		t.Fatalf("ParseAsteroidType(1): %v %v", at, err)
	}
	if _, err := ParseAsteroidType("type", 2); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}
