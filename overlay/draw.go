package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"camcal/calibration"
)

// Colors for drawing on BGR frames. gocv converts color.RGBA to a BGR scalar,
// so each shows as named on images loaded with IMRead.
var (
	Red   = color.RGBA{R: 0xff, A: 0xff}
	Green = color.RGBA{G: 0xff, A: 0xff}
	Blue  = color.RGBA{B: 0xff, A: 0xff}
)

// DefaultOrigin is where text goes when no position is given
var DefaultOrigin = image.Pt(100, 100)

// PutText draws text with the Hershey simplex font
func PutText(img *gocv.Mat, text string, origin image.Point, scale float64, c color.RGBA, thickness int) {
	gocv.PutText(img, text, origin, gocv.FontHersheySimplex, scale, c, thickness)
}

// PutThresholds prints the binarization thresholds being tuned in blue
func PutThresholds(img *gocv.Mat, low, high float64) {
	text := fmt.Sprintf("low threshold: %g, high threshold: %g", low, high)
	PutText(img, text, DefaultOrigin, 1, Blue, 3)
}

// DrawRect draws a rectangle outline between two corners
func DrawRect(img *gocv.Mat, lx, ly, rx, ry int, c color.RGBA, thickness int) {
	gocv.Rectangle(img, image.Rect(lx, ly, rx, ry), c, thickness)
}

// DrawCorners renders a detected chessboard grid; corners is the detector output Mat
func DrawCorners(img *gocv.Mat, grid calibration.GridSize, corners gocv.Mat, found bool) {
	if corners.Empty() {
		return
	}
	gocv.DrawChessboardCorners(img, image.Pt(grid.Cols, grid.Rows), corners, found)
}
