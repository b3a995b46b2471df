package main

import (
	"github.com/spf13/cobra"

	"camcal/calibration"
)

// NewExportCommand converts a calibration data file to JSON
func NewExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export a calibration data file as JSON",
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
			if output == "" || output == "-" {
				return calibration.WriteJSON(cmd.OutOrStdout(), result)
			}
			return writeJSONFile(output, result)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "JSON output file, - for stdout")
	return cmd
}
