package detection

import (
	"image"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"

	"camcal/calibration"
)

// Undistorter removes lens distortion using a saved calibration
type Undistorter struct {
	camera gocv.Mat
	dist   gocv.Mat
	// Alpha is the free scaling parameter of getOptimalNewCameraMatrix;
	// a negative value keeps the original camera matrix.
	Alpha float64
}

// NewUndistorter copies the calibration matrices into OpenCV memory. Close releases them.
func NewUndistorter(r *calibration.Result) *Undistorter {
	return &Undistorter{
		camera: denseToMat(r.CameraMatrix),
		dist:   denseToMat(r.DistCoeffs),
		Alpha:  -1,
	}
}

func denseToMat(d *mat.Dense) gocv.Mat {
	rows, cols := d.Dims()
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV64F)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.SetDoubleAt(i, j, d.At(i, j))
		}
	}
	return m
}

// Undistort writes the corrected version of src into dst
func (u *Undistorter) Undistort(src gocv.Mat, dst *gocv.Mat) {
	if u.Alpha < 0 {
		gocv.Undistort(src, dst, u.camera, u.dist, u.camera)
		return
	}
	size := image.Pt(src.Cols(), src.Rows())
	newCamera, _ := gocv.GetOptimalNewCameraMatrixWithParams(u.camera, u.dist, size, u.Alpha, size, false)
	defer newCamera.Close()
	gocv.Undistort(src, dst, u.camera, u.dist, newCamera)
}

// UndistortFile reads src, corrects it and writes the result to dst
func (u *Undistorter) UndistortFile(src, dst string) error {
	img := gocv.IMRead(src, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return errors.Errorf("failed to read image %s", src)
	}

	out := gocv.NewMat()
	defer out.Close()
	u.Undistort(img, &out)

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	if !gocv.IMWrite(dst, out) {
		return errors.Errorf("failed to write %s", dst)
	}
	return nil
}

// Close releases the OpenCV matrices
func (u *Undistorter) Close() error {
	return multierr.Combine(u.camera.Close(), u.dist.Close())
}
