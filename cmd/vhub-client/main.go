package main

import (
	"os"

	"github.com/vehiclehub-io/vehiclehub/cmd/vhub-client/app"
)

func main() {
	if err := app.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
