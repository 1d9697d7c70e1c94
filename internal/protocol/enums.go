package protocol

type ShipType int

const (
	MotherShip ShipType = iota
	SuckerShip
	DrillShip
	TankerShip
	TruckShip
	BattleShip
)

var shipTypeNames = [...]string{"MotherShip", "SuckerShip", "DrillShip", "TankerShip", "TruckShip", "BattleShip"}

func (t ShipType) Valid() bool { return t >= MotherShip && t <= BattleShip }

func (t ShipType) String() string {
	if !t.Valid() {
		return "ShipType(?)"
	}
	return shipTypeNames[t]
}

// ParseShipType maps a wire discriminant to a ShipType.
func ParseShipType(op string, d int) (ShipType, error) {
	t := ShipType(d)
	if !t.Valid() {
		return 0, UnknownVariantf(op, "ship type %d", d)
	}
	return t, nil
}

type AsteroidType int

const (
	RockAsteroid AsteroidType = iota
	FuelAsteroid
)

func (t AsteroidType) Valid() bool { return t == RockAsteroid || t == FuelAsteroid }

func (t AsteroidType) String() string {
	switch t {
	case RockAsteroid:
		return "Rock"
	case FuelAsteroid:
		return "Fuel"
	}
	return "AsteroidType(?)"
}

func ParseAsteroidType(op string, d int) (AsteroidType, error) {
	t := AsteroidType(d)
	if !t.Valid() {
		return 0, UnknownVariantf(op, "asteroid type %d", d)
	}
	return t, nil
}
