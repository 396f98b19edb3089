package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/vehiclehub-io/vehiclehub/cmd/vhub-server/app"
)

func main() {
	if err := app.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
