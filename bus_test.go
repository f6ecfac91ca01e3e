package hxview

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recorder struct {
	name string
	log  *[]string
}

func (r recorder) Next(m string) {
	*r.log = append(*r.log, r.name+":"+m)
}

func TestBusSnapshotFirst(t *testing.T) {
	var got []string
	b := NewBus(func() string { return "snap" })

	b.Subscribe(recorder{"a", &got})
	b.Publish("1")
	b.Subscribe(recorder{"b", &got})
	b.Publish("2")

	want := []string{"a:snap", "a:1", "b:snap", "a:2", "b:2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("delivery mismatch (-want +got):\n%s", diff)
	}
}

func TestBusReentrantPublish(t *testing.T) {
	var got []string
	b := NewBus[string](nil)

	b.Subscribe(ObserverFunc[string](func(m string) {
		got = append(got, "a:"+m)
		if m == "1" {
			b.Publish("2")
		}
	}))
	b.Subscribe(recorder{"b", &got})
	b.Publish("1")

	// "2" waits until "1" reached every subscriber.
	want := []string{"a:1", "b:1", "a:2", "b:2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("delivery mismatch (-want +got):\n%s", diff)
	}
}

func TestBusSubscribeDuringDrain(t *testing.T) {
	var got []string
	b := NewBus(func() string { return "snap" })

	b.Subscribe(ObserverFunc[string](func(m string) {
		if m == "1" {
			b.Publish("2")
			b.Subscribe(recorder{"late", &got})
		}
	}))
	b.Publish("1")
	b.Publish("3")

	want := []string{"late:snap", "late:3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("delivery mismatch (-want +got):\n%s", diff)
	}
}

func TestUnsubscribeInsideCallback(t *testing.T) {
	var got []string
	b := NewBus[string](nil)

	var sub *Subscription
	sub = b.Subscribe(ObserverFunc[string](func(m string) {
		got = append(got, "a:"+m)
		sub.Unsubscribe()
		sub.Unsubscribe()
	}))
	b.Subscribe(recorder{"b", &got})

	b.Publish("1")
	b.Publish("2")

	want := []string{"a:1", "b:1", "b:2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("delivery mismatch (-want +got):\n%s", diff)
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
}

func TestSubscriptionNil(t *testing.T) {
	var s *Subscription
	s.Unsubscribe()
}
