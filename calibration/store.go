package calibration

import (
	"encoding/gob"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultOutput is the file the calibrate command writes to
const DefaultOutput = "calibration_data.p"

// Keys of the persisted mapping
const (
	KeyCameraMatrix = "cameraMatrix"
	KeyDistCoeffs   = "distCoeffs"
	KeyRVecs        = "rvecs"
	KeyTVecs        = "tvecs"
)

// StoredMatrix is the on-disk form of a matrix, row-major
type StoredMatrix struct {
	Rows int
	Cols int
	Data []float64
}

func storeDense(m *mat.Dense) StoredMatrix {
	if m == nil {
		return StoredMatrix{}
	}
	rows, cols := m.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, m.RawRowView(i)...)
	}
	return StoredMatrix{Rows: rows, Cols: cols, Data: data}
}

func (s StoredMatrix) dense() (*mat.Dense, error) {
	if s.Rows <= 0 || s.Cols <= 0 || len(s.Data) != s.Rows*s.Cols {
		return nil, errors.Errorf("bad matrix %dx%d with %d values", s.Rows, s.Cols, len(s.Data))
	}
	return mat.NewDense(s.Rows, s.Cols, append([]float64(nil), s.Data...)), nil
}

// Mapping returns the four persisted matrices keyed by name
func (r *Result) Mapping() map[string]StoredMatrix {
	return map[string]StoredMatrix{
		KeyCameraMatrix: storeDense(r.CameraMatrix),
		KeyDistCoeffs:   storeDense(r.DistCoeffs),
		KeyRVecs:        storeDense(r.RVecs),
		KeyTVecs:        storeDense(r.TVecs),
	}
}

// Encode writes the result mapping in gob form. A result that Decode would
// reject is not written.
func Encode(w io.Writer, r *Result) error {
	m := r.Mapping()
	if _, err := FromMapping(m); err != nil {
		return err
	}
	return gob.NewEncoder(w).Encode(m)
}

// Decode reads a mapping written by Encode
func Decode(rd io.Reader) (*Result, error) {
	var m map[string]StoredMatrix
	if err := gob.NewDecoder(rd).Decode(&m); err != nil {
		return nil, errors.Wrap(ErrBadFile, err.Error())
	}
	return FromMapping(m)
}

// FromMapping validates a decoded mapping and rebuilds the result
func FromMapping(m map[string]StoredMatrix) (*Result, error) {
	keys := []string{KeyCameraMatrix, KeyDistCoeffs, KeyRVecs, KeyTVecs}
	if len(m) != len(keys) {
		return nil, errors.Wrapf(ErrBadFile, "expected %d keys, got %d", len(keys), len(m))
	}

	dense := make(map[string]*mat.Dense, len(keys))
	for _, k := range keys {
		s, ok := m[k]
		if !ok {
			return nil, errors.Wrapf(ErrBadFile, "missing key %q", k)
		}
		d, err := s.dense()
		if err != nil {
			return nil, errors.Wrapf(ErrBadFile, "%s: %v", k, err)
		}
		dense[k] = d
	}

	r := &Result{
		CameraMatrix: dense[KeyCameraMatrix],
		DistCoeffs:   dense[KeyDistCoeffs],
		RVecs:        dense[KeyRVecs],
		TVecs:        dense[KeyTVecs],
	}
	if rows, cols := r.CameraMatrix.Dims(); rows != 3 || cols != 3 {
		return nil, errors.Wrapf(ErrBadFile, "camera matrix is %dx%d", rows, cols)
	}
	if rows, _ := r.DistCoeffs.Dims(); rows != 1 {
		return nil, errors.Wrapf(ErrBadFile, "distortion coefficients have %d rows", rows)
	}
	rr, rc := r.RVecs.Dims()
	tr, tc := r.TVecs.Dims()
	if rc != 3 || tc != 3 || rr != tr {
		return nil, errors.Wrapf(ErrBadFile, "pose vectors are %dx%d and %dx%d", rr, rc, tr, tc)
	}
	return r, nil
}

// WriteFile persists the result mapping at path. A failed write is not cleaned up.
func WriteFile(path string, r *Result) error {
	if _, err := FromMapping(r.Mapping()); err != nil {
		return errors.Wrap(ErrWriteFailed, err.Error())
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(ErrWriteFailed, err.Error())
	}
	if err := Encode(f, r); err != nil {
		f.Close()
		return errors.Wrap(ErrWriteFailed, err.Error())
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(ErrWriteFailed, err.Error())
	}
	return nil
}

// ReadFile loads a result written by WriteFile
func ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return Decode(f)
}

type jsonResult struct {
	CameraMatrix [][]float64 `json:"cameraMatrix"`
	DistCoeffs   []float64   `json:"distCoeffs"`
	RVecs        [][]float64 `json:"rvecs"`
	TVecs        [][]float64 `json:"tvecs"`
}

func denseRows(m *mat.Dense) [][]float64 {
	if m == nil {
		return nil
	}
	n, _ := m.Dims()
	out := make([][]float64, n)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}

// WriteJSON exports the same four matrices as indented JSON
func WriteJSON(w io.Writer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonResult{
		CameraMatrix: denseRows(r.CameraMatrix),
		DistCoeffs:   r.Distortion(),
		RVecs:        denseRows(r.RVecs),
		TVecs:        denseRows(r.TVecs),
	})
}
