// Package vehicle owns the shared state of the simulated vehicle.
package vehicle

import (
	"math/rand"
	"strconv"
	"sync"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
	"github.com/vehiclehub-io/vehiclehub/pkg/log"
)

// Store guards the single VehicleState instance. Every read and mutation
// happens under one exclusive lock; callers never see partial updates.
type Store struct {
	mu    sync.Mutex
	state model.VehicleState
}

// NewStore creates a Store with the vehicle stopped at the given position.
func NewStore(latitude, longitude, temperature float64) *Store {
	return &Store{
		state: model.VehicleState{
			Speed:       0,
			Battery:     model.MaxBattery,
			Temperature: temperature,
			Direction:   model.DirectionNorth,
			Latitude:    latitude,
			Longitude:   longitude,
			Running:     true,
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() model.VehicleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Apply executes a control command against the vehicle state. Unknown
// commands are a no-op: the caller has already authorized the request, and
// the deployed protocol treats them as accepted. A missing or unparseable
// parameter falls back to the default step.
func (s *Store) Apply(command model.CommandType, params string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch command {
	case model.CommandSpeedUp:
		s.state.Speed = clamp(s.state.Speed+parseStep(params), model.MinSpeed, model.MaxSpeed)
		log.Debug("vehicle accelerating", "speed", s.state.Speed)
	case model.CommandSlowDown:
		s.state.Speed = clamp(s.state.Speed-parseStep(params), model.MinSpeed, model.MaxSpeed)
		log.Debug("vehicle decelerating", "speed", s.state.Speed)
	case model.CommandTurnLeft:
		s.state.Direction = model.DirectionWest
	case model.CommandTurnRight:
		s.state.Direction = model.DirectionEast
	case model.CommandStop:
		s.state.Speed = 0
	default:
		log.Debug("ignoring unknown command", "command", string(command))
	}
}

// Perturb applies one tick of the simulated drive and returns the resulting
// snapshot: speed takes a ±1.0 km/h random step clamped to its bounds,
// battery drains by 0.1% clamped at zero, temperature drifts by ±0.3 °C.
func (s *Store) Perturb() model.VehicleState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Speed = clamp(s.state.Speed+float64(rand.Intn(21)-10)*0.1, model.MinSpeed, model.MaxSpeed)
	s.state.Battery = clamp(s.state.Battery-0.1, model.MinBattery, model.MaxBattery)
	s.state.Temperature += float64(rand.Intn(7)-3) * 0.1

	return s.state
}

func parseStep(params string) float64 {
	if params == "" {
		return model.DefaultSpeedStep
	}
	v, err := strconv.ParseFloat(params, 64)
	if err != nil {
		return model.DefaultSpeedStep
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
