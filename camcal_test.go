package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camcal/calibration"
	"camcal/prompt"
)

func TestGridSizeFromFlags(t *testing.T) {
	o := newCalibrateOptions()
	o.cols, o.rows = 9, 6

	grid, err := o.gridSize(prompt.New(strings.NewReader(""), &bytes.Buffer{}))
	require.NoError(t, err)
	assert.Equal(t, calibration.GridSize{Cols: 9, Rows: 6}, grid)
}

func TestGridSizePrompted(t *testing.T) {
	var out bytes.Buffer
	o := newCalibrateOptions()
	o.rows = 6

	grid, err := o.gridSize(prompt.New(strings.NewReader("nine\n1\n9\n"), &out))
	require.NoError(t, err)
	assert.Equal(t, calibration.GridSize{Cols: 9, Rows: 6}, grid)
	assert.Contains(t, out.String(), "corners horizontally")
	assert.NotContains(t, out.String(), "corners vertically")
}

func TestGridSizeNoInput(t *testing.T) {
	_, err := newCalibrateOptions().gridSize(prompt.New(strings.NewReader(""), &bytes.Buffer{}))
	assert.ErrorIs(t, err, prompt.ErrNoInput)
}

func TestRenderResult(t *testing.T) {
	r := calibration.NewResult(
		[]float64{1150, 0, 640, 0, 1145, 360, 0, 0, 1},
		[]float64{-0.24, -0.05, 0, 0, 0.02},
		[][3]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}},
		[][3]float64{{1, 2, 3}, {4, 5, 6}},
	)
	r.Sources = []string{filepath.Join("camera_cal", "calibration1.jpg"), filepath.Join("camera_cal", "calibration2.jpg")}

	var out bytes.Buffer
	renderResult(&out, r)
	s := out.String()
	assert.Contains(t, s, "1150.0000")
	assert.Contains(t, s, "fx=1150.00 fy=1145.00")
	assert.Contains(t, s, "[4.0000 5.0000 6.0000]")
	assert.Contains(t, s, "calibration2.jpg")
	assert.Contains(t, strings.ToLower(s), "2 views")
}

func TestPrintSkipped(t *testing.T) {
	var out bytes.Buffer
	printSkipped(&out, nil)
	assert.Empty(t, out.String())

	printSkipped(&out, []calibration.SkippedImage{{Path: "camera_cal/calibration1.jpg", Reason: calibration.SkipNoCorners}})
	assert.Contains(t, out.String(), "calibration1.jpg: no corners")
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, calibration.DefaultOutput)
	r := calibration.NewResult(
		[]float64{1, 0, 2, 0, 1, 3, 0, 0, 1},
		[]float64{0, 0, 0, 0, 0},
		[][3]float64{{0, 0, 0}},
		[][3]float64{{0, 0, 1}},
	)
	require.NoError(t, calibration.WriteFile(path, r))

	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"export", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"cameraMatrix"`)
	assert.Contains(t, out.String(), `"tvecs"`)
}
