package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"asteroids.ai/internal/game/geom"
)

// CommandType is the wire discriminant of a command.
type CommandType int

const (
	BuyCommand CommandType = iota
	MoveCommand
	LoadCommand
	SiphonCommand
	ShootCommand
	RepairCommand
)

func (t CommandType) String() string {
	switch t {
	case BuyCommand:
		return "Buy"
	case MoveCommand:
		return "Move"
	case LoadCommand:
		return "Load"
	case SiphonCommand:
		return "Siphon"
	case ShootCommand:
		return "Shoot"
	case RepairCommand:
		return "Repair"
	}
	return fmt.Sprintf("CommandType(%d)", int(t))
}

// Command is one outbound action. The set of implementations is closed.
type Command interface {
	Type() CommandType
	command()
}

// Buy orders a new ship at the mothership. On the wire the payload key is
// "type", matching the server's decoder.
type Buy struct {
	ShipType ShipType
}

// Move adds Vector to the ship's velocity.
type Move struct {
	ShipID int
	Vector geom.Vec
}

// Load transfers rock between two of the player's ships.
type Load struct {
	SourceID      int
	DestinationID int
	Amount        int
}

// Siphon transfers fuel between two of the player's ships.
type Siphon struct {
	SourceID      int
	DestinationID int
	Amount        int
}

type Shoot struct {
	SourceID      int
	DestinationID int
}

type Repair struct {
	ShipID int
}

func (Buy) Type() CommandType    { return BuyCommand }
func (Move) Type() CommandType   { return MoveCommand }
func (Load) Type() CommandType   { return LoadCommand }
func (Siphon) Type() CommandType { return SiphonCommand }
func (Shoot) Type() CommandType  { return ShootCommand }
func (Repair) Type() CommandType { return RepairCommand }

func (Buy) command()    {}
func (Move) command()   {}
func (Load) command()   {}
func (Siphon) command() {}
func (Shoot) command()  {}
func (Repair) command() {}

// Wire payloads.

type commandWire struct {
	Type CommandType `json:"type"`
	Data any         `json:"data"`
}

type buyData struct {
	Type ShipType `json:"type"`
}

type vecData struct {
	X wireFloat `json:"x"`
	Y wireFloat `json:"y"`
}

type moveData struct {
	ShipID int     `json:"ship_id"`
	Vector vecData `json:"vector"`
}

type transferData struct {
	SourceID      int `json:"source_id"`
	DestinationID int `json:"destination_id"`
	Amount        int `json:"amount"`
}

type shootData struct {
	SourceID      int `json:"source_id"`
	DestinationID int `json:"destination_id"`
}

type repairData struct {
	ShipID int `json:"ship_id"`
}

// wireFloat always renders with a fractional part or exponent ("10.0", not
// "10"), the way the reference clients print floats.
type wireFloat float64

func (f wireFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("unsupported float value: %v", v)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if !bytes.ContainsAny(b, ".eE") {
		b = append(b, '.', '0')
	}
	return b, nil
}

func wireOf(c Command) (commandWire, error) {
	switch c := c.(type) {
	case Buy:
		if !c.ShipType.Valid() {
			return commandWire{}, UnknownVariantf("buy.type", "ship type %d", int(c.ShipType))
		}
		return commandWire{BuyCommand, buyData{c.ShipType}}, nil
	case Move:
		return commandWire{MoveCommand, moveData{c.ShipID, vecData{wireFloat(c.Vector.X), wireFloat(c.Vector.Y)}}}, nil
	case Load:
		return commandWire{LoadCommand, transferData{c.SourceID, c.DestinationID, c.Amount}}, nil
	case Siphon:
		return commandWire{SiphonCommand, transferData{c.SourceID, c.DestinationID, c.Amount}}, nil
	case Shoot:
		return commandWire{ShootCommand, shootData{c.SourceID, c.DestinationID}}, nil
	case Repair:
		return commandWire{RepairCommand, repairData{c.ShipID}}, nil
	case nil:
		return commandWire{}, fmt.Errorf("nil command")
	}
	return commandWire{}, fmt.Errorf("unsupported command %T", c)
}

// EncodeCommands renders a round's batch as one JSON array line, preserving
// order. A nil or empty batch encodes as "[]".
func EncodeCommands(cmds []Command) ([]byte, error) {
	out := make([]commandWire, 0, len(cmds))
	for i, c := range cmds {
		w, err := wireOf(c)
		if err != nil {
			return nil, Within(fmt.Sprintf("commands[%d]", i), err)
		}
		out = append(out, w)
	}
	return json.Marshal(out)
}

type commandContainer struct {
	Type *CommandType     `json:"type"`
	Data *json.RawMessage `json:"data"`
}

// DecodeCommands is the inverse of EncodeCommands.
func DecodeCommands(payload []byte) ([]Command, error) {
	var raw []commandContainer
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, Decodef("commands", "malformed json: %v", err)
	}
	out := make([]Command, 0, len(raw))
	for i, rc := range raw {
		op := fmt.Sprintf("commands[%d]", i)
		if rc.Type == nil {
			return nil, Decodef(op+".type", "missing field")
		}
		if rc.Data == nil {
			return nil, Decodef(op+".data", "missing field")
		}
		c, err := decodeCommand(*rc.Type, *rc.Data)
		if err != nil {
			return nil, Within(op, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeCommand(t CommandType, data json.RawMessage) (Command, error) {
	switch t {
	case BuyCommand:
		var d buyData
		if err := strictUnmarshal(data, &d); err != nil {
			return nil, err
		}
		if _, err := ParseShipType("data.type", int(d.Type)); err != nil {
			return nil, err
		}
		return Buy{ShipType: d.Type}, nil
	case MoveCommand:
		var d struct {
			ShipID int      `json:"ship_id"`
			Vector geom.Vec `json:"vector"`
		}
		if err := strictUnmarshal(data, &d); err != nil {
			return nil, err
		}
		return Move{ShipID: d.ShipID, Vector: d.Vector}, nil
	case LoadCommand:
		var d transferData
		if err := strictUnmarshal(data, &d); err != nil {
			return nil, err
		}
		return Load(d), nil
	case SiphonCommand:
		var d transferData
		if err := strictUnmarshal(data, &d); err != nil {
			return nil, err
		}
		return Siphon(d), nil
	case ShootCommand:
		var d shootData
		if err := strictUnmarshal(data, &d); err != nil {
			return nil, err
		}
		return Shoot(d), nil
	case RepairCommand:
		var d repairData
		if err := strictUnmarshal(data, &d); err != nil {
			return nil, err
		}
		return Repair(d), nil
	}
	return nil, UnknownVariantf("type", "command type %d", int(t))
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return Decodef("data", "%s", strings.TrimPrefix(err.Error(), "json: "))
	}
	return nil
}
