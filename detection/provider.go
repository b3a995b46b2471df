package detection

import (
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// CalibRationalModel enables the k4..k6 distortion terms (cv::CALIB_RATIONAL_MODEL).
// gocv does not export it.
const CalibRationalModel gocv.CalibFlag = 1 << 14

// Options configures a Provider
type Options struct {
	SubPixel bool
	DebugDir string
	Flags    gocv.CalibFlag
}

// Provider bundles the OpenCV corner detector and calibration solver
type Provider struct {
	Detector *ChessboardDetector
	Solver   *CVSolver
}

// NewProvider sets up the OpenCV backend
func NewProvider(opts Options, logger logrus.FieldLogger) *Provider {
	detector := NewChessboardDetector(logger)
	detector.SubPixel = opts.SubPixel
	detector.DebugDir = opts.DebugDir

	solver := NewCVSolver(logger)
	solver.Flags = opts.Flags

	logger.WithFields(logrus.Fields{
		"opencv":   gocv.OpenCVVersion(),
		"gocv":     gocv.Version(),
		"subpixel": opts.SubPixel,
		"flags":    int(opts.Flags),
	}).Info("using OpenCV backend")
	return &Provider{Detector: detector, Solver: solver}
}
