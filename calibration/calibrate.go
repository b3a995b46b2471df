package calibration

import (
	"github.com/pkg/errors"
)

// Solver estimates camera intrinsics and per-view poses from point correspondences.
// ok=false with a nil error means the solver ran but did not succeed.
type Solver interface {
	Solve(objectPoints []ObjectPointSet, imagePoints []ImagePointSet, shape ImageShape) (result *Result, ok bool, err error)
}

// CheckCollection verifies the collection can be handed to a solver
func CheckCollection(c *PointCollection, grid GridSize) error {
	if c == nil || c.Views() == 0 {
		return ErrNoInput
	}
	if len(c.ObjectPoints) != len(c.ImagePoints) {
		return errors.Wrapf(ErrPointMismatch, "%d object point sets, %d image point sets",
			len(c.ObjectPoints), len(c.ImagePoints))
	}
	for i := range c.ObjectPoints {
		if len(c.ObjectPoints[i]) != grid.Count() || len(c.ImagePoints[i]) != grid.Count() {
			return errors.Wrapf(ErrPointMismatch, "view %d has %d object and %d image points, want %d",
				i, len(c.ObjectPoints[i]), len(c.ImagePoints[i]), grid.Count())
		}
	}
	if c.Shape.Empty() {
		return errors.Wrapf(ErrInvalidShape, "%s", c.Shape)
	}
	return nil
}

// Calibrate runs the solver once on a checked collection
func Calibrate(solver Solver, c *PointCollection, grid GridSize) (*Result, error) {
	if err := CheckCollection(c, grid); err != nil {
		return nil, err
	}

	result, ok, err := solver.Solve(c.ObjectPoints, c.ImagePoints, c.Shape)
	if err != nil {
		return nil, &SolverError{Grid: grid, Err: err}
	}
	if !ok || result == nil {
		return nil, ErrNotConverged
	}
	if result.Views() != c.Views() {
		return nil, errors.Wrapf(ErrPointMismatch, "solver returned %d poses for %d views", result.Views(), c.Views())
	}

	result.Shape = c.Shape
	result.Grid = grid
	result.Sources = append([]string(nil), c.Sources...)
	return result, nil
}
