package geom

import "math"

// Vec is a 2D point or displacement on the play field.
type Vec struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func Zero() Vec { return Vec{} }

func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y}
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y}
}

func (v Vec) Scale(f float64) Vec {
	return Vec{v.X * f, v.Y * f}
}

func (v Vec) Distance(o Vec) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func (v Vec) Size() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns the unit vector in the direction of v.
// The zero vector normalizes to itself.
func (v Vec) Normalize() Vec {
	size := v.Size()
	if size == 0 {
		return Vec{}
	}
	return Vec{v.X / size, v.Y / size}
}

// Rotate turns v counter-clockwise by rad radians.
func (v Vec) Rotate(rad float64) Vec {
	sin, cos := math.Sincos(rad)
	return Vec{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
}

// ClampMagnitude shortens v to max if it is longer, keeping its direction.
func (v Vec) ClampMagnitude(max float64) Vec {
	if v.Size() <= max {
		return v
	}
	return v.Normalize().Scale(max)
}
