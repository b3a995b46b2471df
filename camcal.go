package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"camcal/calibration"
	"camcal/prompt"
)

var logLevel = "info"

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return errors.Wrap(err, "failed to parse log level")
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}
	return nil
}

// handleCmdError prints the operator-facing message for each failure kind
func handleCmdError(w io.Writer, err error) {
	red := color.New(color.FgRed).FprintlnFunc()
	var solverErr *calibration.SolverError

	switch {
	case errors.Is(err, context.Canceled):
		red(w, "Interrupted.")
	case errors.Is(err, calibration.ErrNoInput):
		red(w, "Calibration failed: no image contained the requested chessboard corners.")
		fmt.Fprintln(w, "  - Check the calibration directory and file pattern")
		fmt.Fprintln(w, "  - Check the number of inner corners per row and column")
	case errors.As(err, &solverErr):
		red(w, fmt.Sprintf("Calibration failed. Most likely not all images contain %s corners.", solverErr.Grid))
		fmt.Fprintln(w, "  -", solverErr.Err)
	case errors.Is(err, calibration.ErrNotConverged):
		red(w, "Camera calibration failed.")
	case errors.Is(err, calibration.ErrWriteFailed):
		red(w, "Saving calibration data might have failed.")
		fmt.Fprintln(w, "  -", err)
	case errors.Is(err, prompt.ErrNoInput):
		red(w, "No grid size given.")
	default:
		red(w, "Error:", err)
	}
}

// execute runs cmd and returns the process exit status
func execute(ctx context.Context, cmd *cobra.Command, stderr io.Writer) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		handleCmdError(stderr, err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	// after the first signal the default handler is back, so a second one
	// terminates even while OpenCV or a prompt is blocking
	go func() {
		<-ctx.Done()
		stop()
	}()

	code := execute(ctx, NewCommand(), os.Stderr)
	stop()
	os.Exit(code)
}

// NewCommand builds the root command. Without a subcommand it runs calibrate.
func NewCommand() *cobra.Command {
	opts := newCalibrateOptions()

	cmd := &cobra.Command{
		Use:   "camcal",
		Short: "camcal computes camera intrinsics from chessboard photographs",
		Long: `camcal finds chessboard corners in a folder of calibration photographs,
runs the OpenCV camera calibration and saves the camera matrix, distortion
coefficients and per-image pose vectors.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalibrate(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	bindCalibrateFlags(cmd, opts)

	cmd.AddCommand(
		NewCalibrateCommand(),
		NewShowCommand(),
		NewExportCommand(),
		NewUndistortCommand(),
	)

	return cmd
}
