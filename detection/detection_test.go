package detection

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"camcal/calibration"
)

const (
	squarePx = 40
	marginPx = 40
)

// writeBoard renders a chessboard with squares.X × squares.Y squares
func writeBoard(t *testing.T, path string, squares image.Point) calibration.ImageShape {
	t.Helper()
	w := squares.X*squarePx + 2*marginPx
	h := squares.Y*squarePx + 2*marginPx
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), h, w, gocv.MatTypeCV8UC3)
	defer img.Close()

	black := color.RGBA{A: 0xff}
	for r := 0; r < squares.Y; r++ {
		for c := 0; c < squares.X; c++ {
			if (r+c)%2 != 0 {
				continue
			}
			x, y := marginPx+c*squarePx, marginPx+r*squarePx
			gocv.Rectangle(&img, image.Rect(x, y, x+squarePx, y+squarePx), black, -1)
		}
	}
	require.True(t, gocv.IMWrite(path, img))
	return calibration.ImageShape{Width: w, Height: h}
}

func TestDetectCornersOnRenderedBoard(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()
	path := filepath.Join(dir, "calibration1.png")
	shape := writeBoard(t, path, image.Pt(10, 7))
	grid := calibration.GridSize{Cols: 9, Rows: 6}

	d := NewChessboardDetector(logger)
	d.SubPixel = true
	d.DebugDir = filepath.Join(dir, "debug")

	det, err := d.DetectCorners(path, grid)
	require.NoError(t, err)
	assert.Equal(t, shape, det.Shape)
	require.True(t, det.Found)
	require.Len(t, det.Corners, grid.Count())

	// every corner sits on a square intersection
	for _, p := range det.Corners {
		gx := (float64(p.X) - marginPx) / squarePx
		gy := (float64(p.Y) - marginPx) / squarePx
		assert.InDelta(t, math.Round(gx), gx, 0.05)
		assert.InDelta(t, math.Round(gy), gy, 0.05)
	}

	debug := gocv.IMRead(filepath.Join(d.DebugDir, "calibration1.png"), gocv.IMReadColor)
	defer debug.Close()
	assert.False(t, debug.Empty())
}

func TestDetectCornersWrongGrid(t *testing.T) {
	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "calibration1.png")
	shape := writeBoard(t, path, image.Pt(10, 7))

	det, err := NewChessboardDetector(logger).DetectCorners(path, calibration.GridSize{Cols: 5, Rows: 12})
	require.NoError(t, err)
	assert.False(t, det.Found)
	assert.Empty(t, det.Corners)
	assert.Equal(t, shape, det.Shape)
}

func TestDetectCornersUnreadable(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, err := NewChessboardDetector(logger).DetectCorners(filepath.Join(t.TempDir(), "missing.jpg"), calibration.GridSize{Cols: 9, Rows: 6})
	assert.Error(t, err)
}

// rodrigues turns a rotation vector into a row-major 3×3 matrix
func rodrigues(r [3]float64) [9]float64 {
	theta := math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2])
	if theta == 0 {
		return [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	}
	x, y, z := r[0]/theta, r[1]/theta, r[2]/theta
	c, s := math.Cos(theta), math.Sin(theta)
	v := 1 - c
	return [9]float64{
		c + x*x*v, x*y*v - z*s, x*z*v + y*s,
		y*x*v + z*s, c + y*y*v, y*z*v - x*s,
		z*x*v - y*s, z*y*v + x*s, c + z*z*v,
	}
}

func project(obj calibration.ObjectPointSet, rvec, tvec [3]float64, fx, fy, cx, cy float64) calibration.ImagePointSet {
	rot := rodrigues(rvec)
	out := make(calibration.ImagePointSet, len(obj))
	for i, p := range obj {
		X, Y, Z := float64(p.X), float64(p.Y), float64(p.Z)
		xc := rot[0]*X + rot[1]*Y + rot[2]*Z + tvec[0]
		yc := rot[3]*X + rot[4]*Y + rot[5]*Z + tvec[1]
		zc := rot[6]*X + rot[7]*Y + rot[8]*Z + tvec[2]
		out[i] = calibration.Point2{X: float32(fx*xc/zc + cx), Y: float32(fy*yc/zc + cy)}
	}
	return out
}

func TestCVSolverRecoversIntrinsics(t *testing.T) {
	logger, _ := test.NewNullLogger()
	grid := calibration.GridSize{Cols: 9, Rows: 6}
	template := calibration.ObjectTemplate(grid, 1)
	const fx, fy, cx, cy = 800.0, 800.0, 640.0, 360.0

	rvecs := [][3]float64{
		{0.3, 0.1, 0.05}, {-0.25, 0.2, 0.0}, {0.1, -0.35, 0.1},
		{-0.2, -0.2, -0.05}, {0.4, 0.3, 0.2}, {0.0, 0.45, -0.1},
	}
	var objects []calibration.ObjectPointSet
	var images []calibration.ImagePointSet
	for i, r := range rvecs {
		tvec := [3]float64{-4 + float64(i)*0.3, -2.5, 14 + float64(i)}
		objects = append(objects, template)
		images = append(images, project(template, r, tvec, fx, fy, cx, cy))
	}

	res, ok, err := NewCVSolver(logger).Solve(objects, images, calibration.ImageShape{Width: 1280, Height: 720})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, len(rvecs), res.Views())
	assert.Less(t, res.RMS, 0.1)

	gotFx, gotFy := res.FocalLength()
	assert.InDelta(t, fx, gotFx, 8)
	assert.InDelta(t, fy, gotFy, 8)
	gotCx, gotCy := res.PrincipalPoint()
	assert.InDelta(t, cx, gotCx, 8)
	assert.InDelta(t, cy, gotCy, 8)
	assert.NotEmpty(t, res.Distortion())
}

func TestCheckSolverInput(t *testing.T) {
	grid := calibration.GridSize{Cols: 3, Rows: 3}
	obj := []calibration.ObjectPointSet{calibration.ObjectTemplate(grid, 1)}
	img := []calibration.ImagePointSet{make(calibration.ImagePointSet, grid.Count())}
	shape := calibration.ImageShape{Width: 640, Height: 480}

	assert.NoError(t, checkSolverInput(obj, img, shape))
	assert.Error(t, checkSolverInput(nil, nil, shape))
	assert.Error(t, checkSolverInput(obj, nil, shape))
	assert.Error(t, checkSolverInput(obj, []calibration.ImagePointSet{img[0][:4]}, shape))
	assert.Error(t, checkSolverInput(obj, img, calibration.ImageShape{}))
}
