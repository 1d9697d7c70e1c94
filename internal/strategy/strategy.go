// Package strategy holds the bundled deciders.
package strategy

import (
	"fmt"

	"asteroids.ai/internal/client"
	"asteroids.ai/internal/config"
	"asteroids.ai/internal/game/geom"
	"asteroids.ai/internal/game/model"
	"asteroids.ai/internal/protocol"
)

// ByName returns the decider registered under name.
func ByName(name string, rules config.Rules) (client.Decider, error) {
	switch name {
	case "idle":
		return Idle{}, nil
	case "sample":
		return NewSample(rules), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// Idle never issues a command.
type Idle struct{}

func (Idle) Decide(*model.World, int) []protocol.Command { return nil }

// Sample is the reference starter bot: nudge the first ship, buy a battleship
// whenever the mothership can afford one, and let every battleship fire at
// the nearest enemy in range.
type Sample struct {
	Rules config.Rules
	Nudge geom.Vec
}

func NewSample(rules config.Rules) *Sample {
	return &Sample{Rules: rules, Nudge: geom.Vec{X: 10, Y: 5}}
}

func (s *Sample) Decide(w *model.World, viewer int) []protocol.Command {
	mine := w.MyShips()
	if len(mine) == 0 {
		return nil
	}

	cmds := []protocol.Command{protocol.Move{ShipID: mine[0].ID, Vector: s.Nudge}}

	if p := w.MyPlayer(); p != nil && p.Rock >= s.Rules.ShipRockPrice {
		cmds = append(cmds, protocol.Buy{ShipType: protocol.BattleShip})
	}

	var enemies []*model.Ship
	for _, e := range w.EnemyShips() {
		if e.IsAlive() {
			enemies = append(enemies, e)
		}
	}
	if len(enemies) == 0 {
		return cmds
	}
	for _, ship := range mine {
		if !ship.CanShoot() {
			continue
		}
		target, dist := model.NearestShip(ship.Position, enemies)
		if target != nil && dist <= s.Rules.ShipShootDistance {
			cmds = append(cmds, protocol.Shoot{SourceID: ship.ID, DestinationID: target.ID})
		}
	}
	return cmds
}
