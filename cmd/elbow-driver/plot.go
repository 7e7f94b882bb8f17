package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	gonumplot "gonum.org/v1/plot"

	"github.com/PCIGITI/elbow-driver/config"
	"github.com/PCIGITI/elbow-driver/geometry"
	"github.com/PCIGITI/elbow-driver/plot"
)

func plotCmd() *cobra.Command {
	var outDir, constantsFile string

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Write PNG plots of the cable path models and calibration fits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("error creating logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			consts, err := config.Load(constantsFile)
			if err != nil {
				return err
			}

			err = os.MkdirAll(outDir, 0o755)
			if err != nil {
				return fmt.Errorf("error creating output directory: %w", err)
			}

			plots := map[string]func() (*gonumplot.Plot, error){
				"wrist-pitch-routing": func() (*gonumplot.Plot, error) {
					return plot.PathLengths("Wrist pitch cables across elbow pitch", geometry.New(geometry.Q3Routing), -90, 90, plot.DefaultSamples)
				},
				"jaw-routing": func() (*gonumplot.Plot, error) {
					return plot.PathLengths("Jaw cables across elbow yaw", geometry.New(geometry.Q4Routing), -90, 90, plot.DefaultSamples)
				},
				"jaw-path": func() (*gonumplot.Plot, error) {
					return plot.PathLengths("Jaw cables across wrist pitch", geometry.NewJawPath(geometry.WristJaw), 0, 180, plot.DefaultSamples)
				},
			}

			registry, err := consts.Registry(logger)
			if err != nil {
				return err
			}
			for _, m := range registry.Models() {
				if !m.Available() {
					logger.Warn("skipping unavailable calibration", zap.String("model", m.Name()), zap.Error(m.Err()))
					continue
				}
				plots["calibration-"+m.Name()] = func() (*gonumplot.Plot, error) {
					return plot.CalibrationFit(m)
				}
			}

			for name, create := range plots {
				p, err := create()
				if err != nil {
					return fmt.Errorf("error creating plot %q: %w", name, err)
				}

				filename := filepath.Join(outDir, name+".png")
				err = plot.SavePNG(p, filename)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), filename)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "plots", "directory to write PNG files to")
	cmd.Flags().StringVarP(&constantsFile, "constants", "c", os.Getenv("CONSTANTS_FILE"), "YAML constants file")

	return cmd
}
