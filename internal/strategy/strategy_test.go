package strategy

import (
	"strings"
	"testing"

	"asteroids.ai/internal/config"
	"asteroids.ai/internal/game/model"
	"asteroids.ai/internal/protocol"
)

func ship(id, player, typ int, x string) string {
	return `{"id":` + itoa(id) + `,"player":` + itoa(player) + `,"position":{"x":` + x + `,"y":0},"vector":{"x":0,"y":0},"health":100,"fuel":50,"type":` + itoa(typ) + `,"rock":0}`
}

func player(id, rock int) string {
	return `{"id":` + itoa(id) + `,"name":"p","color":"red","mothership":{"rock":` + itoa(rock) + `,"fuel":50},"alive":true}`
}

func itoa(i int) string {
	if i < 0 {
		return "-" + itoa(-i)
	}
	if i < 10 {
		return string(rune('0' + i))
	}
	return itoa(i/10) + itoa(i%10)
}

func world(t *testing.T, ships []string, rock int) *model.World {
	t.Helper()
	payload := `{"player_id":0,"map":{"radius":1000,"round":1,"ships":[` + strings.Join(ships, ",") +
		`],"asteroids":[],"wormholes":[],"players":[` + player(0, rock) + `,` + player(1, 0) + `]}}`
	st, err := protocol.DecodeState([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	w := model.NewWorld()
	if _, err := w.Apply(st); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return w
}

func encode(t *testing.T, cmds []protocol.Command) string {
	t.Helper()
	b, err := protocol.EncodeCommands(cmds)
	if err != nil {
		t.Fatalf("EncodeCommands: %v", err)
	}
	return string(b)
}

func TestSample_MoveBuyShoot(t *testing.T) {
	w := world(t, []string{
		ship(1, 0, 0, "0"),
		ship(2, 0, 5, "0"),
		"null",
		ship(3, 1, 2, "50"),
		ship(4, 1, 2, "500"),
	}, 150)

	got := encode(t, NewSample(config.Defaults().Rules).Decide(w, w.ViewerID))
	want := `[{"type":1,"data":{"ship_id":1,"vector":{"x":10.0,"y":5.0}}},` +
		`{"type":0,"data":{"type":5}},` +
		`{"type":4,"data":{"source_id":2,"destination_id":3}}]`
	if got != want {
		t.Fatalf("commands:\n got %s\nwant %s", got, want)
	}
}

func TestSample_OutOfRangeAndPoor(t *testing.T) {
	w := world(t, []string{
		ship(1, 0, 5, "0"),
		ship(3, 1, 2, "101"),
	}, 99)

	got := encode(t, NewSample(config.Defaults().Rules).Decide(w, w.ViewerID))
	want := `[{"type":1,"data":{"ship_id":1,"vector":{"x":10.0,"y":5.0}}}]`
	if got != want {
		t.Fatalf("commands:\n got %s\nwant %s", got, want)
	}
}

func TestSample_NoShips(t *testing.T) {
	w := world(t, []string{ship(3, 1, 0, "0")}, 500)
	if cmds := NewSample(config.Defaults().Rules).Decide(w, w.ViewerID); len(cmds) != 0 {
		t.Fatalf("expected no commands, got %v", cmds)
	}
}

func TestByName(t *testing.T) {
	rules := config.Defaults().Rules
	if d, err := ByName("idle", rules); err != nil || d.Decide(model.NewWorld(), 0) != nil {
		t.Fatalf("idle: %v", err)
	}
	if _, err := ByName("sample", rules); err != nil {
		t.Fatalf("sample: %v", err)
	}
	if _, err := ByName("nope", rules); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
