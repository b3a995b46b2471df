package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"camcal/calibration"
)

// NewShowCommand prints a saved calibration
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Print the contents of a calibration data file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := calibration.DefaultOutput
			if len(args) == 1 {
				path = args[0]
			}
			result, err := calibration.ReadFile(path)
			if err != nil {
				return err
			}
			renderResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func renderResult(w io.Writer, r *calibration.Result) {
	fx, fy := r.FocalLength()
	cx, cy := r.PrincipalPoint()

	k := table.NewWriter()
	k.SetOutputMirror(w)
	k.SetTitle("Camera matrix")
	for i := 0; i < 3; i++ {
		k.AppendRow(table.Row{
			fmt.Sprintf("%.4f", r.CameraMatrix.At(i, 0)),
			fmt.Sprintf("%.4f", r.CameraMatrix.At(i, 1)),
			fmt.Sprintf("%.4f", r.CameraMatrix.At(i, 2)),
		})
	}
	k.Render()

	fmt.Fprintf(w, "focal length: fx=%.2f fy=%.2f  principal point: cx=%.2f cy=%.2f\n", fx, fy, cx, cy)
	fmt.Fprintf(w, "distortion: %v\n", formatValues(r.Distortion()))
	if r.RMS > 0 {
		fmt.Fprintf(w, "reprojection error (RMS): %.4f px\n", r.RMS)
	}

	poses := table.NewWriter()
	poses.SetOutputMirror(w)
	poses.SetTitle("Pose vectors")
	header := table.Row{"#", "Rotation", "Translation"}
	if len(r.Sources) > 0 {
		header = append(header, "Image")
	}
	poses.AppendHeader(header)
	for i := 0; i < r.Views(); i++ {
		row := table.Row{i + 1, formatValues(r.RotationVector(i)), formatValues(r.TranslationVector(i))}
		if i < len(r.Sources) {
			row = append(row, filepath.Base(r.Sources[i]))
		}
		poses.AppendRow(row)
	}
	poses.AppendFooter(table.Row{"", fmt.Sprintf("%d views", r.Views())})
	poses.Render()
}

func formatValues(v []float64) string {
	s := "["
	for i, x := range v {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%.4f", x)
	}
	return s + "]"
}

func printSkipped(w io.Writer, skipped []calibration.SkippedImage) {
	if len(skipped) == 0 {
		return
	}
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(w, "%d image(s) not used:\n", len(skipped))
	for _, s := range skipped {
		fmt.Fprintf(w, "  %s: %s\n", filepath.Base(s.Path), s.Reason)
	}
}
