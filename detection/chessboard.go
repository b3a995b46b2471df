package detection

import (
	"image"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"camcal/calibration"
	"camcal/overlay"
)

// ChessboardDetector finds chessboard corners with OpenCV
type ChessboardDetector struct {
	Flags gocv.CalibCBFlag
	// SubPixel refines detected corners with CornerSubPix
	SubPixel bool
	// DebugDir receives a copy of every image with the detected grid drawn on it
	DebugDir string
	Logger   logrus.FieldLogger
}

// NewChessboardDetector uses the OpenCV default detection flags
func NewChessboardDetector(logger logrus.FieldLogger) *ChessboardDetector {
	return &ChessboardDetector{
		Flags:  gocv.CalibCBAdaptiveThresh | gocv.CalibCBNormalizeImage,
		Logger: logger,
	}
}

// DetectCorners reads path as grayscale and looks for a grid of inner corners
func (d *ChessboardDetector) DetectCorners(path string, grid calibration.GridSize) (calibration.Detection, error) {
	gray := gocv.IMRead(path, gocv.IMReadGrayScale)
	defer gray.Close()
	if gray.Empty() {
		return calibration.Detection{}, errors.Errorf("failed to read image %s", path)
	}

	det := calibration.Detection{
		Shape: calibration.ImageShape{Width: gray.Cols(), Height: gray.Rows()},
	}

	corners := gocv.NewMat()
	defer corners.Close()

	patternSize := image.Pt(grid.Cols, grid.Rows)
	det.Found = gocv.FindChessboardCorners(gray, patternSize, &corners, d.Flags)
	if det.Found && d.SubPixel {
		criteria := gocv.NewTermCriteria(gocv.Count|gocv.EPS, 30, 0.001)
		gocv.CornerSubPix(gray, &corners, image.Pt(11, 11), image.Pt(-1, -1), criteria)
	}
	if det.Found {
		det.Corners = matToPoints(corners)
	}

	if d.DebugDir != "" {
		if err := d.saveDebug(gray, path, grid, corners, det.Found); err != nil {
			d.logger().WithError(err).Warn("failed to save debug image")
		}
	}
	return det, nil
}

// matToPoints reads an Nx1 two-channel float corner Mat
func matToPoints(m gocv.Mat) calibration.ImagePointSet {
	pts := make(calibration.ImagePointSet, 0, m.Rows())
	for i := 0; i < m.Rows(); i++ {
		v := m.GetVecfAt(i, 0)
		if len(v) < 2 {
			continue
		}
		pts = append(pts, calibration.Point2{X: v[0], Y: v[1]})
	}
	return pts
}

func (d *ChessboardDetector) saveDebug(gray gocv.Mat, path string, grid calibration.GridSize, corners gocv.Mat, found bool) error {
	if err := os.MkdirAll(d.DebugDir, 0755); err != nil {
		return errors.Wrap(err, "failed to create debug directory")
	}

	img := gocv.NewMat()
	defer img.Close()
	gocv.CvtColor(gray, &img, gocv.ColorGrayToBGR)

	overlay.DrawCorners(&img, grid, corners, found)
	status := "corners found"
	c := overlay.Green
	if !found {
		status = "no corners"
		c = overlay.Red
		overlay.DrawRect(&img, 0, 0, img.Cols()-1, img.Rows()-1, c, 4)
	}
	overlay.PutText(&img, filepath.Base(path)+": "+status, image.Pt(30, 50), 1.2, c, 2)

	out := filepath.Join(d.DebugDir, filepath.Base(path))
	if !gocv.IMWrite(out, img) {
		return errors.Errorf("failed to write %s", out)
	}
	return nil
}

func (d *ChessboardDetector) logger() logrus.FieldLogger {
	if d.Logger == nil {
		return logrus.StandardLogger()
	}
	return d.Logger
}
