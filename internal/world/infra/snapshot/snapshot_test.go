package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type body struct {
	Settlements []string           `json:"settlements"`
	Resources   map[string]float64 `json:"resources"`
}

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	path := filepath.Join(dir, "archives", FileName(at, 42))

	in := body{Settlements: []string{"a", "b"}, Resources: map[string]float64{"gold": 500.5}}
	if err := Write(path, Header{CreatedAt: at, Tick: 42}, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}

	var out body
	h, err := Read(path, &out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if h.Version != Version || h.Tick != 42 || !h.CreatedAt.Equal(at) {
		t.Fatalf("header=%+v", h)
	}
	if len(out.Settlements) != 2 || out.Resources["gold"] != 500.5 {
		t.Fatalf("body=%+v", out)
	}
}

func TestRead_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.json.zst")
	if err := Write(path, Header{Tick: 7}, body{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	h, err := Read(path, nil)
	if err != nil || h.Tick != 7 {
		t.Fatalf("header=%+v err=%v", h, err)
	}
}

func TestRead_NotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.json")
	if err := os.WriteFile(path, []byte(`{"version":1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path, nil); err == nil {
		t.Fatalf("expected an error for an uncompressed file")
	}
	if _, err := Read(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 5, 0, time.UTC)
	if got := FileName(at, 9); got != "world-20260301T123005-9.json.zst" {
		t.Fatalf("name=%s", got)
	}
}
