package hxview

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestState(t *testing.T) {
	s := NewState("a")
	var got []any
	sub := s.Subscribe(func(v any) { got = append(got, v) })

	s.Set("b")
	s.Set("b")
	s.Update(func(v string) string { return v + "!" })
	sub.Dispose()
	s.Set("c")

	want := []any{"a", "b", "b!"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("emissions mismatch (-want +got):\n%s", diff)
	}
	if s.Get() != "c" {
		t.Errorf("Get() = %q, want %q", s.Get(), "c")
	}
	if s.Observers() != 0 {
		t.Errorf("Observers() = %d, want 0", s.Observers())
	}
}

func TestStateUnsubscribeDuringSet(t *testing.T) {
	s := NewState(0)
	calls := 0
	var first Disposable
	first = s.Subscribe(func(v any) {
		if v.(int) == 1 {
			first.Dispose()
		}
	})
	s.Subscribe(func(any) { calls++ })

	s.Set(1)
	s.Set(2)

	if calls != 3 {
		t.Errorf("second observer calls = %d, want 3", calls)
	}
	if s.Observers() != 1 {
		t.Errorf("Observers() = %d, want 1", s.Observers())
	}
}
