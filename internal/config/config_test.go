package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultKeybinds(t *testing.T) {
	binds := Default()
	want := map[string]string{
		"d": "detach",
		"%": "split",
		"o": "next-pane",
		"[": "scroll-up",
		"]": "scroll-down",
	}
	for key, name := range want {
		act, ok := binds[key]
		if !ok || act.Name != name {
			t.Fatalf("binds[%q] = %+v, want Name=%q", key, act, name)
		}
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	binds, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(binds) != len(Default()) {
		t.Fatalf("expected defaults, got %+v", binds)
	}
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keybinds.yaml")
	data := []byte("keybinds:\n  d: next-pane\n  r: { exec: \"echo hi\" }\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	binds, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if binds["d"].Name != "next-pane" {
		t.Fatalf("override of 'd' failed: %+v", binds["d"])
	}
	if binds["%"].Name != "split" {
		t.Fatalf("untouched default 'percent' was overwritten: %+v", binds["%"])
	}
	r, ok := binds["r"]
	if !ok || r.Name != "exec" || len(r.Args) != 2 || r.Args[0] != "echo" || r.Args[1] != "hi" {
		t.Fatalf("exec action not tokenized correctly: %+v", r)
	}
}
