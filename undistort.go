package main

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"camcal/calibration"
	"camcal/detection"
)

// NewUndistortCommand applies a saved calibration to images
func NewUndistortCommand() *cobra.Command {
	var (
		calibFile string
		outDir    string
		alpha     float64
	)
	cmd := &cobra.Command{
		Use:   "undistort <image or pattern>...",
		Short: "Remove lens distortion from images using a calibration data file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := calibration.ReadFile(calibFile)
			if err != nil {
				return err
			}

			files, err := expandPatterns(args)
			if err != nil {
				return err
			}

			u := detection.NewUndistorter(result)
			defer u.Close()
			u.Alpha = alpha

			progress := newProgressBar("Undistorting")
			progress.Start(len(files))
			defer progress.Stop()

			failed := 0
			for _, f := range files {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				dst := filepath.Join(outDir, filepath.Base(f))
				if err := u.UndistortFile(f, dst); err != nil {
					logrus.WithField("file", f).WithError(err).Error("undistort failed")
					failed++
				}
				progress.Increment(f)
			}
			if failed > 0 {
				return errors.Errorf("%d of %d images could not be undistorted", failed, len(files))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d image(s) written to %s\n", len(files), outDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&calibFile, "calibration", "c", calibration.DefaultOutput, "calibration data file")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "output_images", "directory for undistorted images")
	cmd.Flags().Float64Var(&alpha, "alpha", -1, "free scaling 0..1 for a new camera matrix, negative keeps the calibrated one")
	return cmd
}

func expandPatterns(args []string) ([]string, error) {
	var files []string
	for _, a := range args {
		matches, err := doublestar.FilepathGlob(a, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrapf(err, "bad pattern %q", a)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("no files match %q", a)
		}
		files = append(files, matches...)
	}
	return files, nil
}
