package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
)

var verbs = map[string]model.CommandType{
	"speedup":  model.CommandSpeedUp,
	"slowdown": model.CommandSlowDown,
	"left":     model.CommandTurnLeft,
	"right":    model.CommandTurnRight,
	"stop":     model.CommandStop,
}

// Run drives the interactive console until EOF or an explicit quit. Input is
// read line by line; telemetry arrives asynchronously between prompts.
func Run(c *Client, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Connected as %s. Type 'help' for commands.\n", c.Role())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		verb := strings.ToLower(fields[0])
		var arg string
		if len(fields) > 1 {
			arg = fields[1]
		}

		switch verb {
		case "quit", "exit":
			return nil
		case "help":
			printHelp(out)
		case "users":
			users, err := c.ListUsers()
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			renderUsers(out, users)
		default:
			command, ok := verbs[verb]
			if !ok {
				fmt.Fprintf(out, "unknown command %q, try 'help'\n", verb)
				continue
			}
			status, err := c.SendCommand(command, arg)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, status)
		}
	}
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, `Commands:
  speedup [km/h]   accelerate (default step 5)
  slowdown [km/h]  decelerate (default step 5)
  left             turn left
  right            turn right
  stop             full stop
  users            list connected users (admin only)
  help             show this help
  quit             disconnect and exit
`)
}
