package model

// CommandType defines the type of a vehicle control command.
type CommandType string

const (
	CommandSpeedUp   CommandType = "SPEED_UP"
	CommandSlowDown  CommandType = "SLOW_DOWN"
	CommandTurnLeft  CommandType = "TURN_LEFT"
	CommandTurnRight CommandType = "TURN_RIGHT"
	CommandStop      CommandType = "STOP"
)

// DefaultSpeedStep is the speed delta applied by SPEED_UP/SLOW_DOWN when the
// parameter is missing or unparseable.
const DefaultSpeedStep = 5.0
