package model

// Direction is the heading reported in telemetry.
type Direction string

const (
	DirectionNorth Direction = "NORTH"
	DirectionSouth Direction = "SOUTH"
	DirectionEast  Direction = "EAST"
	DirectionWest  Direction = "WEST"
)

// Speed and battery bounds enforced by every mutation of the vehicle state.
const (
	MinSpeed = 0.0
	MaxSpeed = 120.0

	MinBattery = 0.0
	MaxBattery = 100.0
)

// VehicleState is the telemetry snapshot of the single simulated vehicle.
// Latitude and Longitude are fixed at startup and never mutated by commands.
type VehicleState struct {
	// Speed in km/h, kept within [MinSpeed, MaxSpeed].
	Speed float64 `json:"speed"`

	// Battery in percent, kept within [MinBattery, MaxBattery].
	Battery float64 `json:"battery"`

	// Temperature in °C, unbounded.
	Temperature float64 `json:"temperature"`

	Direction Direction `json:"direction"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Running indicates the simulation is active.
	Running bool `json:"running"`
}
