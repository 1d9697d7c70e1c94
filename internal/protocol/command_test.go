package protocol

import (
	"errors"
	"reflect"
	"testing"

	"asteroids.ai/internal/game/geom"
)

func allCommands() []Command {
	return []Command{
		Buy{ShipType: BattleShip},
		Move{ShipID: 3, Vector: geom.Vec{X: -1.5, Y: 2}},
		Load{SourceID: 1, DestinationID: 2, Amount: 40},
		Siphon{SourceID: 2, DestinationID: 1, Amount: 7},
		Shoot{SourceID: 4, DestinationID: 9},
		Repair{ShipID: 5},
	}
}

func TestCommands_RoundTrip(t *testing.T) {
	in := allCommands()
	b, err := EncodeCommands(in)
	if err != nil {
		t.Fatalf("EncodeCommands: %v", err)
	}
	out, err := DecodeCommands(b)
	if err != nil {
		t.Fatalf("DecodeCommands(%s): %v", b, err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in=%#v\nout=%#v", in, out)
	}
	for i, c := range out {
		if c.Type() != CommandType(i) {
			t.Fatalf("commands[%d]: type %v", i, c.Type())
		}
	}
}

func TestCommands_WireShape(t *testing.T) {
	b, err := EncodeCommands(allCommands())
	if err != nil {
		t.Fatalf("EncodeCommands: %v", err)
	}
	want := `[{"type":0,"data":{"type":5}},` +
		`{"type":1,"data":{"ship_id":3,"vector":{"x":-1.5,"y":2.0}}},` +
		`{"type":2,"data":{"source_id":1,"destination_id":2,"amount":40}},` +
		`{"type":3,"data":{"source_id":2,"destination_id":1,"amount":7}},` +
		`{"type":4,"data":{"source_id":4,"destination_id":9}},` +
		`{"type":5,"data":{"ship_id":5}}]`
	if string(b) != want {
		t.Fatalf("wire mismatch:\n got %s\nwant %s", b, want)
	}
}

func TestEncodeCommands_Empty(t *testing.T) {
	for _, in := range [][]Command{nil, {}} {
		b, err := EncodeCommands(in)
		if err != nil {
			t.Fatalf("EncodeCommands: %v", err)
		}
		if string(b) != "[]" {
			t.Fatalf("got %s want []", b)
		}
	}
}

func TestEncodeCommands_MoveExample(t *testing.T) {
	b, err := EncodeCommands([]Command{Move{ShipID: 1, Vector: geom.Vec{X: 10, Y: 5}}})
	if err != nil {
		t.Fatalf("EncodeCommands: %v", err)
	}
	if string(b) != `[{"type":1,"data":{"ship_id":1,"vector":{"x":10.0,"y":5.0}}}]` {
		t.Fatalf("got %s", b)
	}
}

func TestEncodeCommands_Rejects(t *testing.T) {
	if _, err := EncodeCommands([]Command{Buy{ShipType: 9}}); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
	if _, err := EncodeCommands([]Command{nil}); err == nil {
		t.Fatalf("expected error for nil command")
	}
}

func TestDecodeCommands_Errors(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{`[{"type":6,"data":{}}]`, ErrUnknownVariant},
		{`[{"type":0,"data":{"type":17}}]`, ErrUnknownVariant},
		{`[{"data":{}}]`, ErrDecode},
		{`[{"type":5}]`, ErrDecode},
		{`[{"type":5,"data":{"ship_id":1,"bogus":2}}]`, ErrDecode},
		{`{"type":5}`, ErrDecode},
	}
	for _, tc := range cases {
		if _, err := DecodeCommands([]byte(tc.in)); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.in, tc.want, err)
		}
	}
}

func TestWireFloat(t *testing.T) {
	cases := map[float64]string{
		0:      "0.0",
		-3:     "-3.0",
		0.25:   "0.25",
		1e21:   "1e+21",
		123456: "123456.0",
	}
	for in, want := range cases {
		b, err := wireFloat(in).MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON(%v): %v", in, err)
		}
		if string(b) != want {
			t.Fatalf("MarshalJSON(%v) = %s want %s", in, b, want)
		}
	}
}
