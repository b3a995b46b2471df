package overlay

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Quadratic is a lane line fit x = A*y² + B*y + C
type Quadratic struct {
	A, B, C float64
}

// Eval returns the polynomial value at y
func (q Quadratic) Eval(y float64) float64 {
	return q.A*y*y + q.B*y + q.C
}

// FuncSpace evaluates the polynomial over a range of y values
func (q Quadratic) FuncSpace(ys []float64) []float64 {
	out := make([]float64, len(ys))
	for i, y := range ys {
		out[i] = q.Eval(y)
	}
	return out
}

// Curvature returns the radius of curvature at y. scale is units per pixel.
// A straight line (A == 0) has infinite radius.
func (q Quadratic) Curvature(y, scale float64) float64 {
	d := 2*q.A*y*scale + q.B
	return math.Pow(1+d*d, 1.5) / math.Abs(2*q.A)
}

// Linspace returns n evenly spaced values from start to end inclusive
func Linspace(start, end float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, end)
}
