package calibration

import (
	"fmt"

	"github.com/pkg/errors"
)

// GridSize is the number of inner chessboard corners per row (Cols) and per column (Rows)
type GridSize struct {
	Cols int
	Rows int
}

// Count returns the number of corners in the grid
func (g GridSize) Count() int {
	return g.Cols * g.Rows
}

// Validate rejects grids the corner detector cannot work with
func (g GridSize) Validate() error {
	if g.Cols < 2 || g.Rows < 2 {
		return errors.Errorf("invalid grid %s: need at least 2 corners in each direction", g)
	}
	return nil
}

func (g GridSize) String() string {
	return fmt.Sprintf("%dx%d", g.Cols, g.Rows)
}

// ImageShape is the pixel size of a calibration image
type ImageShape struct {
	Width  int
	Height int
}

// Empty reports whether no image has defined the shape yet
func (s ImageShape) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

func (s ImageShape) String() string {
	return fmt.Sprintf("%d×%d", s.Width, s.Height)
}

// Point3 is a corner position on the pattern plane
type Point3 struct {
	X, Y, Z float32
}

// Point2 is a detected corner position in pixels
type Point2 struct {
	X, Y float32
}

// ObjectPointSet holds one pattern-space coordinate per corner
type ObjectPointSet []Point3

// ImagePointSet holds one detected pixel coordinate per corner
type ImagePointSet []Point2

// ObjectTemplate builds the synthetic pattern coordinates for a grid, ordered
// row by row: index row*Cols+col holds (col*squareSize, row*squareSize, 0).
// A non-positive squareSize is treated as 1.
func ObjectTemplate(grid GridSize, squareSize float32) ObjectPointSet {
	if squareSize <= 0 {
		squareSize = 1
	}
	points := make(ObjectPointSet, 0, grid.Count())
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			points = append(points, Point3{
				X: float32(col) * squareSize,
				Y: float32(row) * squareSize,
			})
		}
	}
	return points
}

// SkipReason explains why an image contributed no points
type SkipReason string

const (
	SkipUnreadable    SkipReason = "unreadable"
	SkipNoCorners     SkipReason = "no corners"
	SkipShapeMismatch SkipReason = "shape mismatch"
)

// SkippedImage records an image that was left out of the calibration set
type SkippedImage struct {
	Path   string
	Reason SkipReason
	Err    error
}

// PointCollection is the output of a Collector run. Index i of ObjectPoints,
// ImagePoints and Sources always refers to the same image.
type PointCollection struct {
	ObjectPoints []ObjectPointSet
	ImagePoints  []ImagePointSet
	Sources      []string
	Shape        ImageShape
	Skipped      []SkippedImage
}

// Views returns the number of accepted images
func (c *PointCollection) Views() int {
	return len(c.ImagePoints)
}

func (c *PointCollection) add(path string, object ObjectPointSet, corners ImagePointSet) {
	c.ObjectPoints = append(c.ObjectPoints, object)
	c.ImagePoints = append(c.ImagePoints, corners)
	c.Sources = append(c.Sources, path)
}

func (c *PointCollection) skip(path string, reason SkipReason, err error) {
	c.Skipped = append(c.Skipped, SkippedImage{Path: path, Reason: reason, Err: err})
}
