package protocol

import (
	"encoding/json"
	"math"

	"asteroids.ai/internal/game/geom"
)

// Record is one entity object from a snapshot, as decoded from JSON.
// Accessors fail with E_DECODE when a key is missing or has the wrong shape.
type Record map[string]any

func (r Record) field(key string) (any, error) {
	v, ok := r[key]
	if !ok {
		return nil, Decodef(key, "missing field")
	}
	if v == nil {
		return nil, Decodef(key, "null value")
	}
	return v, nil
}

func (r Record) Int(key string) (int, error) {
	v, err := r.field(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, Decodef(key, "not an integer: %s", n)
		}
		return int(i), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, Decodef(key, "not an integer: %v", n)
		}
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	}
	return 0, Decodef(key, "expected integer, got %T", v)
}

func (r Record) Float(key string) (float64, error) {
	v, err := r.field(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, Decodef(key, "not a number: %s", n)
		}
		return f, nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, Decodef(key, "expected number, got %T", v)
}

func (r Record) String(key string) (string, error) {
	v, err := r.field(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", Decodef(key, "expected string, got %T", v)
	}
	return s, nil
}

func (r Record) Bool(key string) (bool, error) {
	v, err := r.field(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, Decodef(key, "expected bool, got %T", v)
	}
	return b, nil
}

// BoolOr is Bool with a default for an absent or null key.
func (r Record) BoolOr(key string, def bool) (bool, error) {
	if v, ok := r[key]; !ok || v == nil {
		return def, nil
	}
	return r.Bool(key)
}

func (r Record) Record(key string) (Record, error) {
	v, err := r.field(key)
	if err != nil {
		return nil, err
	}
	switch m := v.(type) {
	case map[string]any:
		return Record(m), nil
	case Record:
		return m, nil
	}
	return nil, Decodef(key, "expected object, got %T", v)
}

func (r Record) Vec(key string) (geom.Vec, error) {
	sub, err := r.Record(key)
	if err != nil {
		return geom.Vec{}, err
	}
	x, err := sub.Float("x")
	if err != nil {
		return geom.Vec{}, Within(key, err)
	}
	y, err := sub.Float("y")
	if err != nil {
		return geom.Vec{}, Within(key, err)
	}
	return geom.Vec{X: x, Y: y}, nil
}
