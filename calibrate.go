package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"camcal/calibration"
	"camcal/detection"
	"camcal/prompt"
)

type calibrateOptions struct {
	dir        string
	pattern    string
	output     string
	jsonOutput string
	cols       int
	rows       int
	squareSize float32
	subPixel   bool
	debugDir   string
	mixedSizes bool
	rational   bool
}

// backend is the corner detector and solver used by one calibration run
type backend struct {
	detector calibration.CornerDetector
	solver   calibration.Solver
}

var newBackend = func(opts detection.Options, logger logrus.FieldLogger) backend {
	p := detection.NewProvider(opts, logger)
	return backend{detector: p.Detector, solver: p.Solver}
}

func newCalibrateOptions() *calibrateOptions {
	return &calibrateOptions{
		dir:     calibration.DefaultDir,
		pattern: calibration.DefaultPattern,
		output:  calibration.DefaultOutput,
	}
}

func bindCalibrateFlags(cmd *cobra.Command, o *calibrateOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.dir, "dir", "d", o.dir, "directory with calibration images")
	f.StringVar(&o.pattern, "pattern", o.pattern, "file name pattern of calibration images")
	f.StringVarP(&o.output, "output", "o", o.output, "calibration data output file")
	f.StringVar(&o.jsonOutput, "json", "", "also export the calibration data as JSON to this file")
	f.IntVar(&o.cols, "cols", 0, "number of inner corners horizontally (prompted when 0)")
	f.IntVar(&o.rows, "rows", 0, "number of inner corners vertically (prompted when 0)")
	f.Float32Var(&o.squareSize, "square-size", 1, "chessboard square size in your unit of choice")
	f.BoolVar(&o.subPixel, "subpixel", false, "refine detected corners to sub-pixel accuracy")
	f.StringVar(&o.debugDir, "debug-dir", "", "write every image with the detected corners drawn to this directory")
	f.BoolVar(&o.mixedSizes, "allow-mixed-sizes", false, "keep images whose size differs from the first image")
	f.BoolVar(&o.rational, "rational-model", false, "fit the 8-coefficient rational distortion model")
}

// NewCalibrateCommand is the explicit form of running camcal without a subcommand
func NewCalibrateCommand() *cobra.Command {
	opts := newCalibrateOptions()
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Calibrate the camera from chessboard photographs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalibrate(cmd, opts)
		},
	}
	bindCalibrateFlags(cmd, opts)
	return cmd
}

// gridSize takes the grid from flags and prompts for what is missing
func (o *calibrateOptions) gridSize(p *prompt.Prompter) (calibration.GridSize, error) {
	grid := calibration.GridSize{Cols: o.cols, Rows: o.rows}
	var err error
	if grid.Cols <= 0 {
		grid.Cols, err = p.Int("Please specify number of corners horizontally: ", prompt.AtLeast(2))
		if err != nil {
			return grid, err
		}
	}
	if grid.Rows <= 0 {
		grid.Rows, err = p.Int("Please specify number of corners vertically:   ", prompt.AtLeast(2))
		if err != nil {
			return grid, err
		}
	}
	return grid, grid.Validate()
}

func (o *calibrateOptions) detectionOptions() detection.Options {
	opts := detection.Options{SubPixel: o.subPixel, DebugDir: o.debugDir}
	if o.rational {
		opts.Flags |= detection.CalibRationalModel
	}
	return opts
}

func runCalibrate(cmd *cobra.Command, o *calibrateOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	grid, err := o.gridSize(prompt.New(cmd.InOrStdin(), out).WithContext(ctx))
	if err != nil {
		return err
	}

	log := logrus.WithField("grid", grid.String())
	b := newBackend(o.detectionOptions(), log)

	collector := calibration.NewCollector(b.detector, log)
	collector.Pattern = o.pattern
	collector.SquareSize = o.squareSize
	collector.AllowMixedShapes = o.mixedSizes
	collector.Progress = newProgressBar("Finding corners")

	points, err := collector.Collect(ctx, o.dir, grid)
	if err != nil {
		return err
	}
	printSkipped(out, points.Skipped)

	result, err := calibration.Calibrate(b.solver, points, grid)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(out, "Calibration succeeded.")
	renderResult(out, result)

	if err := calibration.WriteFile(o.output, result); err != nil {
		return err
	}
	fmt.Fprintf(out, "calibration data saved to file %s\n", o.output)

	if o.jsonOutput != "" {
		if err := writeJSONFile(o.jsonOutput, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "calibration data exported to %s\n", o.jsonOutput)
	}
	return nil
}

func writeJSONFile(path string, r *calibration.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(calibration.ErrWriteFailed, err.Error())
	}
	defer f.Close()
	if err := calibration.WriteJSON(f, r); err != nil {
		return errors.Wrap(calibration.ErrWriteFailed, err.Error())
	}
	return nil
}
