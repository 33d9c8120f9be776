package profile

import "testing"

func TestProfilerStartStop(t *testing.T) {
	t.Parallel()

	for _, p := range []Profiler{
		{},
		{Mode: "no-such-mode", Path: t.TempDir()},
	} {
		p.Start().Stop()
	}
}

func TestModes(t *testing.T) {
	t.Parallel()

	modes := Modes()
	if Enabled != (len(modes) > 0) {
		t.Errorf("Enabled = %v with modes %v", Enabled, modes)
	}
}
