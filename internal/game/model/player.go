package model

import "asteroids.ai/internal/protocol"

// Player resources are the contents of the player's mothership.
type Player struct {
	ID    int     `msgpack:"id"`
	Name  string  `msgpack:"name"`
	Color string  `msgpack:"color"`
	Rock  int     `msgpack:"rock"`
	Fuel  float64 `msgpack:"fuel"`
	Alive bool    `msgpack:"alive"`
}

func decodePlayer(rec protocol.Record) (Player, error) {
	var p Player
	var err error
	if p.ID, err = rec.Int("id"); err != nil {
		return Player{}, err
	}
	if p.Name, err = rec.String("name"); err != nil {
		return Player{}, err
	}
	if p.Color, err = rec.String("color"); err != nil {
		return Player{}, err
	}
	ms, err := rec.Record("mothership")
	if err != nil {
		return Player{}, err
	}
	if p.Rock, err = ms.Int("rock"); err != nil {
		return Player{}, protocol.Within("mothership", err)
	}
	if p.Fuel, err = ms.Float("fuel"); err != nil {
		return Player{}, protocol.Within("mothership", err)
	}
	if p.Alive, err = rec.Bool("alive"); err != nil {
		return Player{}, err
	}
	return p, nil
}

func NewPlayer(rec protocol.Record) (*Player, error) {
	p := &Player{}
	if err := p.Merge(rec); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Player) Merge(rec protocol.Record) error {
	next, err := decodePlayer(rec)
	if err != nil {
		return err
	}
	*p = next
	return nil
}
