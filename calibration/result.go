package calibration

import (
	"gonum.org/v1/gonum/mat"
)

// Result holds the camera intrinsics and the per-view extrinsics.
// Only the four matrices are persisted; the rest describes the run.
type Result struct {
	CameraMatrix *mat.Dense // 3×3
	DistCoeffs   *mat.Dense // 1×N
	RVecs        *mat.Dense // views×3
	TVecs        *mat.Dense // views×3

	RMS     float64
	Shape   ImageShape
	Grid    GridSize
	Sources []string
}

// Views returns the number of pose vector pairs
func (r *Result) Views() int {
	if r.RVecs == nil {
		return 0
	}
	rows, _ := r.RVecs.Dims()
	return rows
}

// RotationVector returns the rotation vector of view i
func (r *Result) RotationVector(i int) []float64 {
	return mat.Row(nil, i, r.RVecs)
}

// TranslationVector returns the translation vector of view i
func (r *Result) TranslationVector(i int) []float64 {
	return mat.Row(nil, i, r.TVecs)
}

// Distortion returns the distortion coefficients as a flat slice
func (r *Result) Distortion() []float64 {
	if r.DistCoeffs == nil {
		return nil
	}
	return mat.Row(nil, 0, r.DistCoeffs)
}

// FocalLength returns fx and fy
func (r *Result) FocalLength() (float64, float64) {
	return r.CameraMatrix.At(0, 0), r.CameraMatrix.At(1, 1)
}

// PrincipalPoint returns cx and cy
func (r *Result) PrincipalPoint() (float64, float64) {
	return r.CameraMatrix.At(0, 2), r.CameraMatrix.At(1, 2)
}

// NewResult builds a result from flat row-major data as returned by the solver
func NewResult(camera []float64, dist []float64, rvecs, tvecs [][3]float64) *Result {
	return &Result{
		CameraMatrix: mat.NewDense(3, 3, append([]float64(nil), camera...)),
		DistCoeffs:   denseOrNil(1, len(dist), append([]float64(nil), dist...)),
		RVecs:        vectorRows(rvecs),
		TVecs:        vectorRows(tvecs),
	}
}

func vectorRows(vecs [][3]float64) *mat.Dense {
	data := make([]float64, 0, 3*len(vecs))
	for _, v := range vecs {
		data = append(data, v[:]...)
	}
	return denseOrNil(len(vecs), 3, data)
}

// mat.NewDense panics on zero dimensions
func denseOrNil(rows, cols int, data []float64) *mat.Dense {
	if rows == 0 || cols == 0 {
		return nil
	}
	return mat.NewDense(rows, cols, data)
}
