package x11

import (
	"context"
	"errors"
	"testing"

	"syskit/internal/sysexec"
)

func TestLookupRequiresDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	_, err := Lookup(context.Background(), &sysexec.Runner{}, Query{Title: "term"})
	if !errors.Is(err, ErrNoDisplay) {
		t.Errorf("err = %v, want ErrNoDisplay", err)
	}
}

func TestLookupRejectsAmbiguousQuery(t *testing.T) {
	t.Setenv("DISPLAY", ":0")
	if _, err := Lookup(context.Background(), &sysexec.Runner{}, Query{}); err == nil {
		t.Error("expected error for empty query")
	}
	if _, err := Lookup(context.Background(), &sysexec.Runner{}, Query{Title: "a", Class: "b"}); err == nil {
		t.Error("expected error for both title and class")
	}
}

func TestFormat(t *testing.T) {
	if got := Format(0x3c00007, true); got != "0x03c00007" {
		t.Errorf("hex = %q", got)
	}
	if got := Format(62914567, false); got != "62914567" {
		t.Errorf("decimal = %q", got)
	}
}
