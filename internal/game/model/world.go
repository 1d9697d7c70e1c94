package model

import (
	"math"

	"asteroids.ai/internal/game/geom"
	"asteroids.ai/internal/protocol"
)

// World is the client's model of the map. It owns every entity; pointers
// handed out by its tables stay valid for as long as the entity's slot stays
// occupied, and see each round's data after Apply.
type World struct {
	Radius   float64
	Round    int
	ViewerID int

	Ships     Sparse[Ship]
	Asteroids Sparse[Asteroid]
	Wormholes Dense[Wormhole]
	Players   Dense[Player]

	applied bool
}

func NewWorld() *World {
	return &World{
		Ships:     newSparse("ships", decodeShip),
		Asteroids: newSparse("asteroids", decodeAsteroid),
		Wormholes: newDense("wormholes", decodeWormhole),
		Players:   newDense("players", decodePlayer),
	}
}

// Diff summarizes what Apply changed.
type Diff struct {
	Round     int       `json:"round"`
	Ships     TableDiff `json:"ships"`
	Asteroids TableDiff `json:"asteroids"`
	Wormholes TableDiff `json:"wormholes"`
	Players   TableDiff `json:"players"`
}

// Apply merges one snapshot into the world. Every table is decoded before any
// of them is written, so a failed Apply leaves the world exactly as it was.
func (w *World) Apply(st protocol.State) (Diff, error) {
	ships, err := w.Ships.stage(st.Map.Ships)
	if err != nil {
		return Diff{}, err
	}
	asteroids, err := w.Asteroids.stage(st.Map.Asteroids)
	if err != nil {
		return Diff{}, err
	}
	wormholes, err := w.Wormholes.stage(st.Map.Wormholes)
	if err != nil {
		return Diff{}, err
	}
	players, err := w.Players.stage(st.Map.Players)
	if err != nil {
		return Diff{}, err
	}

	w.Radius = st.Map.Radius
	w.Round = st.Map.Round
	w.ViewerID = st.PlayerID
	w.applied = true
	return Diff{
		Round:     st.Map.Round,
		Ships:     w.Ships.commit(ships),
		Asteroids: w.Asteroids.commit(asteroids),
		Wormholes: w.Wormholes.commit(wormholes),
		Players:   w.Players.commit(players),
	}, nil
}

// Ready reports whether at least one snapshot has been applied.
func (w *World) Ready() bool { return w.applied }

// MyPlayer returns the viewer's player entry. Player ids index the players
// table.
func (w *World) MyPlayer() *Player {
	return w.Players.At(w.ViewerID)
}

func (w *World) MyShips() []*Ship {
	var out []*Ship
	for _, s := range w.Ships.Live() {
		if s.PlayerID == w.ViewerID {
			out = append(out, s)
		}
	}
	return out
}

func (w *World) MyMothership() *Ship {
	for _, s := range w.Ships.Live() {
		if s.PlayerID == w.ViewerID && s.Type == protocol.MotherShip {
			return s
		}
	}
	return nil
}

func (w *World) EnemyShips() []*Ship {
	var out []*Ship
	for _, s := range w.Ships.Live() {
		if s.PlayerID != w.ViewerID {
			out = append(out, s)
		}
	}
	return out
}

// ShipByID scans for a ship by its declared id.
func (w *World) ShipByID(id int) *Ship {
	for _, s := range w.Ships.Live() {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// NearestAsteroid returns the closest asteroid to pos accepted by keep
// (nil keeps all), or nil.
func (w *World) NearestAsteroid(pos geom.Vec, keep func(*Asteroid) bool) *Asteroid {
	var best *Asteroid
	bestDist := math.Inf(1)
	for _, a := range w.Asteroids.Live() {
		if keep != nil && !keep(a) {
			continue
		}
		if d := pos.Distance(a.Position); d < bestDist {
			best, bestDist = a, d
		}
	}
	return best
}

// NearestShip returns the ship in ships closest to pos, with its distance.
func NearestShip(pos geom.Vec, ships []*Ship) (*Ship, float64) {
	var best *Ship
	bestDist := math.Inf(1)
	for _, s := range ships {
		if d := pos.Distance(s.Position); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, bestDist
}
