package vehicle

import (
	"sync"
	"testing"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
)

func newTestStore() *Store {
	return NewStore(6.2442, -75.5812, 22.5)
}

func TestInitialState(t *testing.T) {
	s := newTestStore().Snapshot()

	if s.Speed != 0 {
		t.Errorf("initial speed = %v, want 0", s.Speed)
	}
	if s.Battery != model.MaxBattery {
		t.Errorf("initial battery = %v, want %v", s.Battery, model.MaxBattery)
	}
	if s.Direction != model.DirectionNorth {
		t.Errorf("initial direction = %v, want NORTH", s.Direction)
	}
	if !s.Running {
		t.Error("initial state not running")
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		commands []struct {
			cmd    model.CommandType
			params string
		}
		wantSpeed     float64
		wantDirection model.Direction
	}{
		{
			name: "speed up with explicit param",
			commands: []struct {
				cmd    model.CommandType
				params string
			}{{model.CommandSpeedUp, "10"}},
			wantSpeed:     10,
			wantDirection: model.DirectionNorth,
		},
		{
			name: "speed up default step",
			commands: []struct {
				cmd    model.CommandType
				params string
			}{{model.CommandSpeedUp, ""}},
			wantSpeed:     5,
			wantDirection: model.DirectionNorth,
		},
		{
			name: "unparseable param falls back to default",
			commands: []struct {
				cmd    model.CommandType
				params string
			}{{model.CommandSpeedUp, "fast"}},
			wantSpeed:     5,
			wantDirection: model.DirectionNorth,
		},
		{
			name: "speed clamps at maximum",
			commands: []struct {
				cmd    model.CommandType
				params string
			}{{model.CommandSpeedUp, "500"}},
			wantSpeed:     model.MaxSpeed,
			wantDirection: model.DirectionNorth,
		},
		{
			name: "slow down clamps at zero",
			commands: []struct {
				cmd    model.CommandType
				params string
			}{{model.CommandSpeedUp, "10"}, {model.CommandSlowDown, "50"}},
			wantSpeed:     0,
			wantDirection: model.DirectionNorth,
		},
		{
			name: "stop zeroes the speed",
			commands: []struct {
				cmd    model.CommandType
				params string
			}{{model.CommandSpeedUp, "60"}, {model.CommandStop, ""}},
			wantSpeed:     0,
			wantDirection: model.DirectionNorth,
		},
		{
			name: "turn left heads west",
			commands: []struct {
				cmd    model.CommandType
				params string
			}{{model.CommandTurnLeft, ""}},
			wantSpeed:     0,
			wantDirection: model.DirectionWest,
		},
		{
			name: "turn right heads east",
			commands: []struct {
				cmd    model.CommandType
				params string
			}{{model.CommandTurnRight, ""}},
			wantSpeed:     0,
			wantDirection: model.DirectionEast,
		},
		{
			name: "unknown command is a no-op",
			commands: []struct {
				cmd    model.CommandType
				params string
			}{{model.CommandType("FLY"), "9000"}},
			wantSpeed:     0,
			wantDirection: model.DirectionNorth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			for _, c := range tt.commands {
				store.Apply(c.cmd, c.params)
			}
			got := store.Snapshot()
			if got.Speed != tt.wantSpeed {
				t.Errorf("speed = %v, want %v", got.Speed, tt.wantSpeed)
			}
			if got.Direction != tt.wantDirection {
				t.Errorf("direction = %v, want %v", got.Direction, tt.wantDirection)
			}
		})
	}
}

func TestCommandsNeverMovePosition(t *testing.T) {
	store := newTestStore()
	store.Apply(model.CommandSpeedUp, "50")
	store.Apply(model.CommandTurnLeft, "")

	got := store.Snapshot()
	if got.Latitude != 6.2442 || got.Longitude != -75.5812 {
		t.Errorf("position moved: %v, %v", got.Latitude, got.Longitude)
	}
}

func TestPerturbBounds(t *testing.T) {
	store := newTestStore()

	prev := store.Snapshot()
	for i := 0; i < 500; i++ {
		got := store.Perturb()

		if got.Speed < model.MinSpeed || got.Speed > model.MaxSpeed {
			t.Fatalf("speed out of bounds after perturb: %v", got.Speed)
		}
		if diff := got.Speed - prev.Speed; diff < -1.0-1e-9 || diff > 1.0+1e-9 {
			t.Fatalf("speed step too large: %v", diff)
		}
		if got.Battery < model.MinBattery || got.Battery > model.MaxBattery {
			t.Fatalf("battery out of bounds after perturb: %v", got.Battery)
		}
		if got.Battery > prev.Battery {
			t.Fatalf("battery increased: %v -> %v", prev.Battery, got.Battery)
		}
		prev = got
	}
}

func TestBatteryClampsAtZero(t *testing.T) {
	store := newTestStore()
	// 100% at 0.1% per tick drains in 1000 ticks.
	for i := 0; i < 1100; i++ {
		store.Perturb()
	}
	if got := store.Snapshot().Battery; got != model.MinBattery {
		t.Errorf("battery = %v, want clamp at %v", got, model.MinBattery)
	}
}

func TestConcurrentApplyKeepsInvariants(t *testing.T) {
	store := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				store.Apply(model.CommandSpeedUp, "3")
				store.Apply(model.CommandSlowDown, "2")
				store.Perturb()
			}
		}()
	}
	wg.Wait()

	got := store.Snapshot()
	if got.Speed < model.MinSpeed || got.Speed > model.MaxSpeed {
		t.Errorf("speed out of bounds after concurrent mutation: %v", got.Speed)
	}
}
