package registry

import (
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
)

// pipeConn returns the server half of an in-memory connection.
func pipeConn(t *testing.T) net.Conn {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return server
}

func TestReserveUntilFull(t *testing.T) {
	r := New(3)

	for i := 0; i < 3; i++ {
		slot, err := r.Reserve(pipeConn(t), "peer")
		if err != nil {
			t.Fatalf("Reserve #%d error: %v", i, err)
		}
		if slot != i {
			t.Errorf("Reserve #%d = slot %d, want %d", i, slot, i)
		}
	}

	if _, err := r.Reserve(pipeConn(t), "peer"); !errors.Is(err, ErrFull) {
		t.Fatalf("Reserve on full registry error = %v, want ErrFull", err)
	}
	if got := r.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
}

func TestRemoveFreesSlotForReuse(t *testing.T) {
	r := New(2)

	s0, _ := r.Reserve(pipeConn(t), "a")
	if _, err := r.Reserve(pipeConn(t), "b"); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}

	r.Remove(s0)
	if got := r.Count(); got != 1 {
		t.Fatalf("Count() after remove = %d, want 1", got)
	}

	slot, err := r.Reserve(pipeConn(t), "c")
	if err != nil {
		t.Fatalf("Reserve after remove error: %v", err)
	}
	if slot != s0 {
		t.Errorf("freed slot not reused: got %d, want %d", slot, s0)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := New(1)
	slot, _ := r.Reserve(pipeConn(t), "a")

	r.Remove(slot)
	r.Remove(slot)
	r.Remove(99)
	r.Remove(-1)

	if got := r.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}

func TestAuthorizedExcludesUnauthenticated(t *testing.T) {
	r := New(4)

	sAdmin, _ := r.Reserve(pipeConn(t), "a")
	sObs, _ := r.Reserve(pipeConn(t), "b")
	if _, err := r.Reserve(pipeConn(t), "c"); err != nil { // stays unauthenticated
		t.Fatalf("Reserve error: %v", err)
	}

	if err := r.Authorize(sAdmin, "admin", "TOK1", model.RoleAdmin); err != nil {
		t.Fatalf("Authorize error: %v", err)
	}
	if err := r.Authorize(sObs, "observer", "TOK2", model.RoleObserver); err != nil {
		t.Fatalf("Authorize error: %v", err)
	}

	names := r.Usernames()
	if len(names) != 2 || names[0] != "admin" || names[1] != "observer" {
		t.Errorf("Usernames() = %v, want [admin observer]", names)
	}

	infos := r.Authorized()
	for _, info := range infos {
		if !info.Role.Authorized() {
			t.Errorf("unauthenticated session in Authorized(): %+v", info)
		}
	}
}

func TestAuthorizeOnEmptySlotFails(t *testing.T) {
	r := New(1)
	if err := r.Authorize(0, "x", "T", model.RoleAdmin); err == nil {
		t.Fatal("Authorize on empty slot succeeded")
	}
}

func TestForEachAuthorizedVisitsConnections(t *testing.T) {
	r := New(3)

	s0, _ := r.Reserve(pipeConn(t), "a")
	if _, err := r.Reserve(pipeConn(t), "b"); err != nil { // unauthenticated
		t.Fatalf("Reserve error: %v", err)
	}
	if err := r.Authorize(s0, "admin", "T", model.RoleAdmin); err != nil {
		t.Fatalf("Authorize error: %v", err)
	}

	visited := 0
	r.ForEachAuthorized(func(conn net.Conn, info model.SessionInfo) {
		visited++
		if conn == nil {
			t.Error("nil conn passed to fan-out")
		}
		if info.Username != "admin" {
			t.Errorf("unexpected session in fan-out: %+v", info)
		}
	})
	if visited != 1 {
		t.Errorf("fan-out visited %d sessions, want 1", visited)
	}
}

func TestConcurrentReserveNeverExceedsCapacity(t *testing.T) {
	const capacity = 50
	r := New(capacity)

	var wg sync.WaitGroup
	admitted := make(chan int, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			server, client := net.Pipe()
			defer client.Close()
			slot, err := r.Reserve(server, "peer")
			if err != nil {
				server.Close()
				return
			}
			admitted <- slot
		}()
	}
	wg.Wait()
	close(admitted)

	seen := make(map[int]bool)
	for slot := range admitted {
		if seen[slot] {
			t.Fatalf("slot %d handed out twice", slot)
		}
		seen[slot] = true
	}
	if len(seen) != capacity {
		t.Errorf("admitted %d sessions, want %d", len(seen), capacity)
	}
	if got := r.Count(); got != capacity {
		t.Errorf("Count() = %d, want %d", got, capacity)
	}
}
