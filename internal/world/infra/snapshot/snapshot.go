package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Chinaskijl/stttg/internal/world/errs"

	"github.com/klauspost/compress/zstd"
)

const (
	Version = 1

	OpWrite = "archive.world.Write"
	OpRead  = "archive.world.Read"
)

// Header is the first line of an archive, readable without decoding the body.
type Header struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Tick      uint64    `json:"tick"`
}

// FileName is the archive name for a tick taken at t.
func FileName(t time.Time, tick uint64) string {
	return fmt.Sprintf("world-%s-%d.json.zst", t.UTC().Format("20060102T150405"), tick)
}

// Write stores a zstd stream holding the JSON header line followed by body
// as JSON. The file is renamed into place once complete.
func Write(path string, h Header, body any) (err error) {
	meta := map[string]any{"path": path, "tick": h.Tick}
	if h.Version == 0 {
		h.Version = Version
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(OpWrite, errs.KindInfra, err, meta)
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errs.Wrap(OpWrite, errs.KindInfra, err, meta)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return errs.Wrap(OpWrite, errs.KindInfra, err, meta)
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, err := json.Marshal(h)
	if err != nil {
		return errs.Wrap(OpWrite, errs.KindInfra, err, meta)
	}
	if _, err = bw.Write(append(hb, '\n')); err != nil {
		return errs.Wrap(OpWrite, errs.KindInfra, err, meta)
	}
	if err = json.NewEncoder(bw).Encode(body); err != nil {
		return errs.Wrap(OpWrite, errs.KindInfra, fmt.Errorf("json encode: %w", err), meta)
	}
	if err = bw.Flush(); err != nil {
		return errs.Wrap(OpWrite, errs.KindInfra, err, meta)
	}
	if err = enc.Close(); err != nil {
		return errs.Wrap(OpWrite, errs.KindInfra, err, meta)
	}
	if err = f.Close(); err != nil {
		return errs.Wrap(OpWrite, errs.KindInfra, err, meta)
	}
	if err = os.Rename(tmp, path); err != nil {
		return errs.Wrap(OpWrite, errs.KindInfra, err, meta)
	}
	return nil
}

// Read decodes the archive at path into body and returns its header.
func Read(path string, body any) (Header, error) {
	var h Header
	meta := map[string]any{"path": path}
	f, err := os.Open(path)
	if err != nil {
		return h, errs.Wrap(OpRead, errs.KindInfra, err, meta)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, errs.Wrap(OpRead, errs.KindInfra, err, meta)
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, errs.Wrap(OpRead, errs.KindInfra, fmt.Errorf("header: %w", err), meta)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, errs.Wrap(OpRead, errs.KindInfra, fmt.Errorf("header: %w", err), meta)
	}
	if h.Version != Version {
		return h, errs.Wrap(OpRead, errs.KindInfra, fmt.Errorf("unsupported archive version %d", h.Version), meta)
	}
	if body == nil {
		return h, nil
	}
	if err := json.NewDecoder(br).Decode(body); err != nil {
		return h, errs.Wrap(OpRead, errs.KindInfra, fmt.Errorf("json decode: %w", err), meta)
	}
	return h, nil
}
