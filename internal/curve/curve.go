// Package curve converts between TotalMix fader positions and decibels.
package curve

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrTooFewPoints = errors.New("curve: at least two points are required")
	ErrNotMonotonic = errors.New("curve: points must be strictly increasing")
	ErrBadEndpoints = errors.New("curve: fader axis must start at 0 and end at 1")
)

// Point is a single calibration entry.
type Point struct {
	DB    float64 // DB - уровень в децибелах.
	Fader float64 // Fader - положение фейдера 0..1.
}

// Curve is a piecewise-linear mapping backed by a calibration table.
// It is immutable after New.
type Curve struct {
	points []Point
}

// New validates the table and returns a Curve.
func New(points []Point) (*Curve, error) {
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}
	for i := 1; i < len(points); i++ {
		if points[i].DB <= points[i-1].DB || points[i].Fader <= points[i-1].Fader {
			return nil, fmt.Errorf("%w: entry %d (%.2f dB, %.4f)", ErrNotMonotonic, i, points[i].DB, points[i].Fader)
		}
	}
	if points[0].Fader != 0 || points[len(points)-1].Fader != 1 {
		return nil, ErrBadEndpoints
	}

	p := make([]Point, len(points))
	copy(p, points)
	return &Curve{points: p}, nil
}

// MinDB returns the floor of the table ("-oo" on the console).
func (c *Curve) MinDB() float64 { return c.points[0].DB }

// MaxDB returns the top of the table.
func (c *Curve) MaxDB() float64 { return c.points[len(c.points)-1].DB }

// Points returns a copy of the calibration table.
func (c *Curve) Points() []Point {
	p := make([]Point, len(c.points))
	copy(p, c.points)
	return p
}

// DecibelToFader maps a decibel value to a fader position in [0,1]. NaN maps
// to the floor.
func (c *Curve) DecibelToFader(db float64) float64 {
	return c.interpolate(db, dbAxis, faderAxis)
}

// FaderToDecibel maps a fader position to a decibel value in [MinDB,MaxDB].
func (c *Curve) FaderToDecibel(f float64) float64 {
	return c.interpolate(f, faderAxis, dbAxis)
}

type axis func(Point) float64

func dbAxis(p Point) float64    { return p.DB }
func faderAxis(p Point) float64 { return p.Fader }

func (c *Curve) interpolate(x float64, in, out axis) float64 {
	first, last := c.points[0], c.points[len(c.points)-1]
	if math.IsNaN(x) {
		return out(first)
	}
	x = clamp(x, in(first), in(last))

	lower, upper := first, last
	for _, p := range c.points {
		v := in(p)
		switch {
		case v == x:
			return out(p)
		case v < x:
			lower = p
		case v > x:
			upper = p
			return lerp(factor(x, in(lower), in(upper)), out(lower), out(upper), out(first), out(last))
		}
	}
	return out(last)
}

// factor is how far x has travelled from lower (0) to upper (1).
func factor(x, lower, upper float64) float64 {
	return 1 - (x-upper)/(lower-upper)
}

func lerp(f, start, end, minimum, maximum float64) float64 {
	return clamp((1-f)*start+f*end, minimum, maximum)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
