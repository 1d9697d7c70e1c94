package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Sentinel terminates every frame, in both directions.
const Sentinel = "."

// State is one inbound snapshot: the whole map as seen by PlayerID.
type State struct {
	PlayerID int
	Map      MapState
}

// MapState carries the entity tables as raw records. A nil Record in Ships or
// Asteroids is an empty slot.
type MapState struct {
	Radius    float64
	Round     int
	Ships     []Record
	Asteroids []Record
	Wormholes []Record
	Players   []Record
}

type stateWire struct {
	PlayerID *json.Number `json:"player_id"`
	Map      *mapWire     `json:"map"`
}

type mapWire struct {
	Radius    *json.Number `json:"radius"`
	Round     *json.Number `json:"round"`
	Ships     *[]Record    `json:"ships"`
	Asteroids *[]Record    `json:"asteroids"`
	Wormholes *[]Record    `json:"wormholes"`
	Players   *[]Record    `json:"players"`
}

// DecodeState parses one snapshot payload. Numbers inside entity records are
// kept as json.Number so integer fields can be told apart from floats.
func DecodeState(payload []byte) (State, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var w stateWire
	if err := dec.Decode(&w); err != nil {
		return State{}, Decodef("state", "malformed json: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return State{}, Decodef("state", "trailing data after snapshot")
	}
	if w.PlayerID == nil {
		return State{}, Decodef("player_id", "missing field")
	}
	if w.Map == nil {
		return State{}, Decodef("map", "missing field")
	}

	var st State
	var err error
	if st.PlayerID, err = intOf(*w.PlayerID); err != nil {
		return State{}, Decodef("player_id", "%v", err)
	}

	m := w.Map
	switch {
	case m.Radius == nil:
		return State{}, Decodef("map.radius", "missing field")
	case m.Round == nil:
		return State{}, Decodef("map.round", "missing field")
	case m.Ships == nil:
		return State{}, Decodef("map.ships", "missing field")
	case m.Asteroids == nil:
		return State{}, Decodef("map.asteroids", "missing field")
	case m.Wormholes == nil:
		return State{}, Decodef("map.wormholes", "missing field")
	case m.Players == nil:
		return State{}, Decodef("map.players", "missing field")
	}
	if st.Map.Radius, err = m.Radius.Float64(); err != nil {
		return State{}, Decodef("map.radius", "%v", err)
	}
	if st.Map.Round, err = intOf(*m.Round); err != nil {
		return State{}, Decodef("map.round", "%v", err)
	}
	st.Map.Ships = *m.Ships
	st.Map.Asteroids = *m.Asteroids
	st.Map.Wormholes = *m.Wormholes
	st.Map.Players = *m.Players
	return st, nil
}

func intOf(n json.Number) (int, error) {
	i, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("not an integer: %s", n)
	}
	return int(i), nil
}
