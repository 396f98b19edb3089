// Package app builds the vhub-server command.
package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vehiclehub-io/vehiclehub/cmd/vhub-server/app/options"
	"github.com/vehiclehub-io/vehiclehub/pkg/log"
)

const (
	commandName = "vhub-server"
	commandDesc = `The VehicleHub server simulates a single remote vehicle and exposes it to
operator clients over a TCP control protocol: clients authenticate, receive
periodic telemetry, and admins steer the vehicle. An HTTP endpoint serves
health probes, Prometheus metrics and a read-only JSON view; telemetry can
additionally be bridged to an MQTT broker.`
)

// NewCommand creates the vhub-server root command.
func NewCommand() *cobra.Command {
	opts := options.NewServerOptions()
	var configFile string

	cmd := &cobra.Command{
		Use:          commandName,
		Short:        "Launch the VehicleHub server",
		Long:         commandDesc,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configFile != "" {
				if err := loadConfig(configFile, opts); err != nil {
					return err
				}
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			log.Init(opts.Log)
			defer log.Sync()

			return run(opts)
		},
	}

	opts.AddFlags(cmd.Flags())
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a configuration file. File values override flags.")
	return cmd
}

func run(opts *options.ServerOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := opts.Config()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	server, err := cfg.NewHubServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to create hub server: %w", err)
	}

	return server.Run(ctx)
}

// loadConfig unmarshals the given file over the current option values.
func loadConfig(path string, opts *options.ServerOptions) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := v.Unmarshal(opts); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}
