package model

import (
	"encoding/json"
	"testing"

	"asteroids.ai/internal/protocol"
)

func num(v string) json.Number { return json.Number(v) }

func vec(x, y string) map[string]any {
	return map[string]any{"x": num(x), "y": num(y)}
}

func shipRec(id, health int) protocol.Record {
	return protocol.Record{
		"id":       json.Number(itoa(id)),
		"player":   num("0"),
		"position": vec("1", "2"),
		"vector":   vec("0", "0"),
		"health":   json.Number(itoa(health)),
		"fuel":     num("50.5"),
		"type":     num("2"),
		"rock":     num("3"),
	}
}

func asteroidRec(id int) protocol.Record {
	return protocol.Record{
		"id":       json.Number(itoa(id)),
		"position": vec("10", "-10"),
		"type":     num("1"),
		"size":     num("42.5"),
		"owner_id": num("-1"),
		"surface":  num("0"),
	}
}

func wormholeRec(id, target int) protocol.Record {
	return protocol.Record{
		"id":        json.Number(itoa(id)),
		"target_id": json.Number(itoa(target)),
		"position":  vec("5", "5"),
	}
}

func playerRec(id, rock int) protocol.Record {
	return protocol.Record{
		"id":         json.Number(itoa(id)),
		"name":       "p" + itoa(id),
		"color":      "red",
		"mothership": map[string]any{"rock": json.Number(itoa(rock)), "fuel": num("100.5")},
		"alive":      true,
	}
}

func itoa(i int) string {
	b, _ := json.Marshal(i)
	return string(b)
}

func mustApplyShips(t *testing.T, tbl *Sparse[Ship], in []protocol.Record) TableDiff {
	t.Helper()
	d, err := tbl.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return d
}
