package calibration

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoInput is returned when no image produced usable corners
	ErrNoInput = errors.New("no calibration images with detected corners")

	// ErrPointMismatch is returned when object and image points do not pair up
	ErrPointMismatch = errors.New("object and image points do not match")

	// ErrInvalidShape is returned when the canonical image shape was never set
	ErrInvalidShape = errors.New("invalid image shape")

	// ErrSolverRejected is matched by every *SolverError
	ErrSolverRejected = errors.New("solver rejected calibration data")

	// ErrNotConverged is returned when the solver ran but reported no success
	ErrNotConverged = errors.New("camera calibration failed")

	// ErrWriteFailed wraps output file errors
	ErrWriteFailed = errors.New("saving calibration data failed")

	// ErrBadFile is returned when a calibration file does not hold the expected mapping
	ErrBadFile = errors.New("malformed calibration file")
)

// SolverError is returned when the solver raised an error for the collected points
type SolverError struct {
	Grid GridSize
	Err  error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("calibration failed, most likely not all images contain %s corners: %v", e.Grid, e.Err)
}

func (e *SolverError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrSolverRejected) match any SolverError
func (e *SolverError) Is(target error) bool {
	return target == ErrSolverRejected
}
