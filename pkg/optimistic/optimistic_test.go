// pkg/optimistic/optimistic_test.go
package optimistic

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func appendItem(s string) Transform[[]string] {
	return func(cur []string) []string {
		out := make([]string, len(cur), len(cur)+1)
		copy(out, cur)
		return append(out, s)
	}
}

func TestBeginAppliesImmediately(t *testing.T) {
	c := New([]string{"a"}, zap.NewNop())

	m := c.Begin(appendItem("b"))

	if got := c.Visible(); len(got) != 2 || got[1] != "b" {
		t.Fatalf("Visible() = %v, want [a b]", got)
	}
	if got := c.Base(); len(got) != 1 {
		t.Errorf("Base() = %v, base must not change before confirm", got)
	}
	if m.State() != Optimistic {
		t.Errorf("State() = %v, want Optimistic", m.State())
	}
}

func TestConfirmFoldsIntoBase(t *testing.T) {
	c := New([]string{"a"}, zap.NewNop())

	m := c.Begin(appendItem("b"))
	m.Resolve(nil)

	if m.State() != Confirmed {
		t.Fatalf("State() = %v, want Confirmed", m.State())
	}
	if m.Err() != nil {
		t.Errorf("Err() = %v, want nil", m.Err())
	}
	if got := c.Base(); len(got) != 2 || got[1] != "b" {
		t.Errorf("Base() = %v, want [a b]", got)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
}

func TestRollbackRestoresVisible(t *testing.T) {
	c := New([]string{"a"}, zap.NewNop())

	m := c.Begin(appendItem("b"))
	failure := errors.New("server said no")
	m.Resolve(failure)

	if m.State() != RolledBack {
		t.Fatalf("State() = %v, want RolledBack", m.State())
	}
	if !errors.Is(m.Err(), failure) {
		t.Errorf("Err() = %v, want %v", m.Err(), failure)
	}
	if got := c.Visible(); len(got) != 1 || got[0] != "a" {
		t.Errorf("Visible() = %v, want [a]", got)
	}
}

func TestRollbackKeepsLaterPending(t *testing.T) {
	c := New([]string{}, zap.NewNop())

	first := c.Begin(appendItem("first"))
	second := c.Begin(appendItem("second"))

	first.Resolve(errors.New("boom"))

	// Only the failed transform is removed; the later one is replayed.
	if got := c.Visible(); len(got) != 1 || got[0] != "second" {
		t.Fatalf("Visible() = %v, want [second]", got)
	}

	second.Resolve(nil)
	if got := c.Base(); len(got) != 1 || got[0] != "second" {
		t.Errorf("Base() = %v, want [second]", got)
	}
}

func TestOutOfOrderSettling(t *testing.T) {
	c := New(0, zap.NewNop())

	add := func(n int) Transform[int] {
		return func(cur int) int { return cur + n }
	}
	first := c.Begin(add(1))
	second := c.Begin(add(10))
	third := c.Begin(add(100))

	// Settle newest first.
	third.Resolve(nil)
	second.Resolve(errors.New("rejected"))
	first.Resolve(nil)

	if got := c.Visible(); got != 101 {
		t.Errorf("Visible() = %d, want 101", got)
	}
	if got := c.Base(); got != 101 {
		t.Errorf("Base() = %d, want 101", got)
	}
}

func TestResolveIdempotent(t *testing.T) {
	c := New(0, zap.NewNop())
	m := c.Begin(func(cur int) int { return cur + 1 })

	m.Resolve(nil)
	m.Resolve(errors.New("late failure")) // ignored: first settle wins

	if m.State() != Confirmed {
		t.Errorf("State() = %v, want Confirmed", m.State())
	}
	if m.Err() != nil {
		t.Errorf("Err() = %v, want nil after confirm", m.Err())
	}
	if got := c.Base(); got != 1 {
		t.Errorf("Base() = %d, want 1 (no double apply)", got)
	}
}

func TestSetBaseRebasesPending(t *testing.T) {
	c := New([]string{"a"}, zap.NewNop())
	m := c.Begin(appendItem("mine"))

	// Server refresh arrives while the mutation is still pending.
	c.SetBase([]string{"a", "b", "c"})

	got := c.Visible()
	if len(got) != 4 || got[3] != "mine" {
		t.Fatalf("Visible() = %v, want refreshed base plus pending", got)
	}

	m.Resolve(nil)
	if base := c.Base(); len(base) != 4 {
		t.Errorf("Base() = %v, want confirm applied to new base", base)
	}
}

func TestTimeoutRollsBack(t *testing.T) {
	c := New(0, zap.NewNop())
	m := c.BeginWithTimeout(func(cur int) int { return cur + 1 }, 10*time.Millisecond)

	select {
	case <-m.Done():
	case <-time.After(time.Second):
		t.Fatal("mutation never settled")
	}

	if m.State() != RolledBack {
		t.Fatalf("State() = %v, want RolledBack", m.State())
	}
	if !errors.Is(m.Err(), ErrTimeout) {
		t.Errorf("Err() = %v, want ErrTimeout", m.Err())
	}
	if got := c.Visible(); got != 0 {
		t.Errorf("Visible() = %d, want 0", got)
	}
}

func TestResolveBeatsTimeout(t *testing.T) {
	c := New(0, zap.NewNop())
	m := c.BeginWithTimeout(func(cur int) int { return cur + 1 }, 50*time.Millisecond)

	m.Resolve(nil)

	// Give the timer a chance to fire anyway.
	time.Sleep(80 * time.Millisecond)

	if m.State() != Confirmed {
		t.Errorf("State() = %v, want Confirmed (timeout must not override)", m.State())
	}
	if got := c.Base(); got != 1 {
		t.Errorf("Base() = %d, want 1", got)
	}
}

func TestConcurrentMutations(t *testing.T) {
	c := New(0, zap.NewNop())

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := c.Begin(func(cur int) int { return cur + 1 })
			m.Resolve(nil)
		}()
	}
	wg.Wait()

	if got := c.Base(); got != n {
		t.Errorf("Base() = %d, want %d", got, n)
	}
	if got := c.Visible(); got != n {
		t.Errorf("Visible() = %d, want %d", got, n)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
}

func TestMutationIDsUnique(t *testing.T) {
	c := New(0, zap.NewNop())
	a := c.Begin(func(cur int) int { return cur })
	b := c.Begin(func(cur int) int { return cur })
	if a.ID() == b.ID() {
		t.Error("mutation IDs must be unique")
	}
	a.Resolve(nil)
	b.Resolve(nil)
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Idle, "idle"},
		{Optimistic, "optimistic"},
		{Confirmed, "confirmed"},
		{RolledBack, "rolled_back"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
