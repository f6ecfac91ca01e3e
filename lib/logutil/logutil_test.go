package logutil

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "[hxview] ")
	l.Printf("disposed %d", 3)

	if !strings.Contains(buf.String(), "[hxview] disposed 3") {
		t.Errorf("log output = %q, want prefix and message", buf.String())
	}
}

func TestNewNilWriter(t *testing.T) {
	if l := New(nil, "x"); l != Discard {
		t.Errorf("New(nil) = %p, want Discard", l)
	}
}
