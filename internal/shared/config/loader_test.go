package config

import (
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Game struct {
		TickMs int  `mapstructure:"tick_ms"`
		Reset  bool `mapstructure:"reset_on_start"`
	} `mapstructure:"game"`
}

func TestLoadFile_DecodesMapstructureTags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yml")
	raw := "game:\n  tick_ms: 250\n  reset_on_start: true\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var s sample
	if err := LoadFile(path, &s); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Game.TickMs != 250 || !s.Game.Reset {
		t.Fatalf("unexpected decode: %+v", s)
	}
}

func TestFindConfigUpward(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "configs"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := filepath.Join(root, "configs", "conf.yml")
	if err := os.WriteFile(want, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if got := findConfigUpward(nested); got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}
}
