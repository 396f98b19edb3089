// Package app builds the vhub-client command.
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vehiclehub-io/vehiclehub/cmd/vhub-client/app/options"
	"github.com/vehiclehub-io/vehiclehub/internal/client"
	"github.com/vehiclehub-io/vehiclehub/pkg/log"
)

const (
	commandName = "vhub-client"
	commandDesc = `Interactive console client for a VehicleHub server. It authenticates with
the given credentials, prints incoming telemetry, and turns console commands
(speedup, slowdown, left, right, stop, users) into protocol requests.`
)

// NewCommand creates the vhub-client root command.
func NewCommand() *cobra.Command {
	opts := options.NewClientOptions()

	cmd := &cobra.Command{
		Use:          commandName,
		Short:        "Connect to a VehicleHub server",
		Long:         commandDesc,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}

			log.Init(opts.Log)
			defer log.Sync()

			return run(opts)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

func run(opts *options.ClientOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := client.Dial(ctx, opts.Addr, opts.Username, opts.Password, os.Stdout)
	if err != nil {
		return err
	}
	defer c.Close()

	return client.Run(c, os.Stdin, os.Stdout)
}
