package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("kept %d of %d", 25, 100)
	if got != "kept 25 of 100" {
		t.Errorf("custom logger received %q", got)
	}

	got = ""
	SetLogger(nil)
	Logf("muted")
	if got != "" {
		t.Errorf("nil logger should be a no-op, custom logger received %q", got)
	}
}

func TestQuiet(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	calls := 0
	SetLogger(func(string, ...interface{}) { calls++ })

	restore := Quiet()
	Logf("hidden")
	if calls != 0 {
		t.Errorf("expected muted logger, got %d calls", calls)
	}

	restore()
	Logf("visible")
	if calls != 1 {
		t.Errorf("expected restored logger to be called once, got %d", calls)
	}
}
