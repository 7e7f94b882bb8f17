package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PCIGITI/elbow-driver/controller"
	"github.com/PCIGITI/elbow-driver/feed"
	"github.com/PCIGITI/elbow-driver/motion"
	"github.com/PCIGITI/elbow-driver/ui"
)

var verbose bool

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd().ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "elbow-driver",
		Short: "Drive the cable-actuated elbow and wrist by joint angle",
		Long: `Converts joint angle deltas into motor steps and sends them to the motor board.

The connection is configured with SERIAL_PORT, BAUD_RATE, TWCHART_ADDR, SESSION_NAME and
CONSTANTS_FILE. Use SERIAL_PORT=None to run without hardware.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		consoleCmd(),
		moveCmd(),
		uiCmd(),
		feedCmd(),
		plotCmd(),
		portsCmd(),
	)
	return root
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// withController runs fn with a controller configured from the environment and closes it after
func withController(cmd *cobra.Command, fn func(context.Context, *controller.Controller, *zap.Logger) error) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("error creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	c, err := controller.NewFromEnv(ctx, logger)
	if err != nil {
		return fmt.Errorf("error creating controller: %w", err)
	}
	defer func() {
		closeErr := c.Close()
		if closeErr != nil {
			logger.Warn("error closing controller", zap.Error(closeErr))
		}
	}()

	return fn(ctx, c, logger)
}

func consoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Read commands and joint moves from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withController(cmd, func(ctx context.Context, c *controller.Controller, _ *zap.Logger) error {
				return c.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "move MOVES...",
		Short:   "Run a single combined move, e.g. EP+10 WP-5",
		Example: "  elbow-driver move EP+10 WP-5\n  elbow-driver move LJ=2.5,RJ=-2.5",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deltas, err := motion.ParseDeltas(strings.Join(args, " "))
			if err != nil {
				return err
			}

			return withController(cmd, func(ctx context.Context, c *controller.Controller, _ *zap.Logger) error {
				steps, err := c.Move(ctx, deltas)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "steps: %s\n", steps)
				return nil
			})
		},
	}
}

func uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the jog panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("error creating logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			return ui.Run(cmd.Context(), logger)
		},
	}
}

func feedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "Run joint moves received over MQTT",
		Long:  "Subscribes to MQTT_TOPIC on MQTT_BROKER and publishes each move's result to the topic with a /result suffix.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withController(cmd, func(ctx context.Context, c *controller.Controller, logger *zap.Logger) error {
				return feed.New(feed.ConfigFromEnv(), c, logger).Run(ctx)
			})
		},
	}
}

func portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List USB serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ports, err := controller.GetSerialPorts()
			if err != nil {
				return err
			}
			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}
