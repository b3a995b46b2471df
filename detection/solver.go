package detection

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"camcal/calibration"
)

// CVSolver calibrates with cv::calibrateCamera
type CVSolver struct {
	Flags  gocv.CalibFlag
	Logger logrus.FieldLogger
}

// NewCVSolver returns a solver with no extra calibration flags
func NewCVSolver(logger logrus.FieldLogger) *CVSolver {
	return &CVSolver{Logger: logger}
}

// Solve checks the inputs before handing them to OpenCV, since a native
// exception inside calibrateCamera cannot be recovered from Go.
func (s *CVSolver) Solve(objectPoints []calibration.ObjectPointSet, imagePoints []calibration.ImagePointSet, shape calibration.ImageShape) (result *calibration.Result, ok bool, err error) {
	if err := checkSolverInput(objectPoints, imagePoints, shape); err != nil {
		return nil, false, err
	}

	objects := gocv.NewPoints3fVectorFromPoints(toCVPoints3(objectPoints))
	defer objects.Close()
	images := gocv.NewPoints2fVectorFromPoints(toCVPoints2(imagePoints))
	defer images.Close()

	camera := gocv.NewMat()
	dist := gocv.NewMat()
	rvecs := gocv.NewMat()
	tvecs := gocv.NewMat()
	defer func() {
		if cerr := multierr.Combine(camera.Close(), dist.Close(), rvecs.Close(), tvecs.Close()); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to release calibration matrices")
		}
	}()

	rms := gocv.CalibrateCamera(objects, images, image.Pt(shape.Width, shape.Height),
		&camera, &dist, &rvecs, &tvecs, s.Flags)

	log := s.logger().WithFields(logrus.Fields{"views": len(imagePoints), "rms": rms})
	if math.IsNaN(rms) || math.IsInf(rms, 0) {
		log.Warn("calibration did not produce a finite reprojection error")
		return nil, false, nil
	}

	result, err = readResult(camera, dist, rvecs, tvecs, len(imagePoints))
	if err != nil {
		return nil, false, err
	}
	result.RMS = rms
	log.Debug("calibrateCamera finished")
	return result, true, nil
}

func checkSolverInput(objectPoints []calibration.ObjectPointSet, imagePoints []calibration.ImagePointSet, shape calibration.ImageShape) error {
	if len(objectPoints) == 0 || len(objectPoints) != len(imagePoints) {
		return errors.Errorf("need matching non-empty point sets, got %d object and %d image", len(objectPoints), len(imagePoints))
	}
	for i := range objectPoints {
		if len(objectPoints[i]) < 4 || len(objectPoints[i]) != len(imagePoints[i]) {
			return errors.Errorf("view %d has %d object and %d image points", i, len(objectPoints[i]), len(imagePoints[i]))
		}
	}
	if shape.Empty() {
		return errors.Errorf("invalid image size %s", shape)
	}
	return nil
}

func toCVPoints3(sets []calibration.ObjectPointSet) [][]gocv.Point3f {
	out := make([][]gocv.Point3f, len(sets))
	for i, set := range sets {
		out[i] = make([]gocv.Point3f, len(set))
		for j, p := range set {
			out[i][j] = gocv.Point3f{X: p.X, Y: p.Y, Z: p.Z}
		}
	}
	return out
}

func toCVPoints2(sets []calibration.ImagePointSet) [][]gocv.Point2f {
	out := make([][]gocv.Point2f, len(sets))
	for i, set := range sets {
		out[i] = make([]gocv.Point2f, len(set))
		for j, p := range set {
			out[i][j] = gocv.Point2f{X: p.X, Y: p.Y}
		}
	}
	return out
}

func readResult(camera, dist, rvecs, tvecs gocv.Mat, views int) (*calibration.Result, error) {
	k, err := matValues(camera, "camera matrix")
	if err != nil {
		return nil, err
	}
	if len(k) != 9 {
		return nil, errors.Errorf("camera matrix has %d values", len(k))
	}
	d, err := matValues(dist, "distortion coefficients")
	if err != nil {
		return nil, err
	}
	r, err := poseVectors(rvecs, views, "rotation vectors")
	if err != nil {
		return nil, err
	}
	t, err := poseVectors(tvecs, views, "translation vectors")
	if err != nil {
		return nil, err
	}
	return calibration.NewResult(k, d, r, t), nil
}

// matValues copies the values of a double-precision Mat
func matValues(m gocv.Mat, what string) ([]float64, error) {
	if m.Empty() {
		return nil, errors.Errorf("%s missing from calibration output", what)
	}
	data, err := m.DataPtrFloat64()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", what)
	}
	return append([]float64(nil), data...), nil
}

func poseVectors(m gocv.Mat, views int, what string) ([][3]float64, error) {
	data, err := matValues(m, what)
	if err != nil {
		return nil, err
	}
	if len(data) != 3*views {
		return nil, errors.Errorf("%s have %d values for %d views", what, len(data), views)
	}
	out := make([][3]float64, views)
	for i := range out {
		copy(out[i][:], data[3*i:3*i+3])
	}
	return out, nil
}

func (s *CVSolver) logger() logrus.FieldLogger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
