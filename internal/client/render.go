package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/protocol"
)

// renderTelemetry prints one telemetry frame as a table. Frames that do not
// carry the six expected fields are dropped silently.
func (c *Client) renderTelemetry(frame *protocol.Frame) {
	fields := strings.Split(frame.Data, ":")
	if len(fields) != 6 {
		return
	}

	table := uitable.New()
	table.AddRow("SPEED", "BATTERY", "TEMP", "HEADING", "LATITUDE", "LONGITUDE")
	table.AddRow(fields[0], fields[1], fields[2], fields[3], fields[4], fields[5])
	fmt.Fprintf(c.out, "\n%s\n", table)
}

func renderUsers(out io.Writer, users []string) {
	table := uitable.New()
	table.AddRow("#", "USERNAME")
	for i, u := range users {
		table.AddRow(i+1, u)
	}
	fmt.Fprintf(out, "%s\n", table)
}
