package overlay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuadraticEval(t *testing.T) {
	q := Quadratic{A: 2, B: -3, C: 1}

	assert.Equal(t, 1.0, q.Eval(0))
	assert.Equal(t, 0.0, q.Eval(1))
	assert.Equal(t, []float64{1, 0, 3, 10}, q.FuncSpace([]float64{0, 1, 2, 3}))
	assert.Empty(t, q.FuncSpace(nil))
}

func TestCurvature(t *testing.T) {
	// unit circle osculating at the vertex
	assert.InDelta(t, 1.0, Quadratic{A: 0.5}.Curvature(0, 1), 1e-12)

	q := Quadratic{A: 1e-4, B: 0.01, C: 300}
	y := 720.0
	d := 2*q.A*y + q.B
	want := math.Pow(1+d*d, 1.5) / (2 * q.A)
	assert.InDelta(t, want, q.Curvature(y, 1), 1e-9)

	// the sign of A does not change the radius
	neg := Quadratic{A: -q.A, B: -q.B}
	assert.InDelta(t, q.Curvature(y, 1), neg.Curvature(y, 1), 1e-9)

	// scaling the evaluation point
	assert.InDelta(t, q.Curvature(720*0.5, 1), q.Curvature(720, 0.5), 1e-9)

	assert.True(t, math.IsInf(Quadratic{B: 1}.Curvature(10, 1), 1))
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, Linspace(0, 1, 5))
	assert.Equal(t, []float64{3}, Linspace(3, 9, 1))
	assert.Nil(t, Linspace(0, 1, 0))
}
