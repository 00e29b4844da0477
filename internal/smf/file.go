package smf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
)

// WriteSingleTrack writes one track as a format 0 file. The control track's
// tempo and time signature are merged in so the stem plays back at the same speed.
func (w *Writer) WriteSingleTrack(id int, path string) error {
	if err := checkRange("track", id, 0, len(w.tracks)-1); err != nil {
		return err
	}
	var buf bytes.Buffer
	writeHeader(&buf, 0, 1, w.ticksPerQuarter)
	writeChunk(&buf, "MTrk", w.encodeTrack(w.tracks[id], true))
	return writeFileAtomic(path, buf.Bytes())
}

// WriteStems writes every track that carries channel events to its own format 0
// file in dir and returns the written paths keyed by track name.
func (w *Writer) WriteStems(dir string) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.SerializationIO("create stem directory", dir, err)
	}
	paths := make(map[string]string)
	for i, t := range w.tracks {
		if len(t.events) == 0 {
			continue
		}
		name := t.name
		if name == "" {
			name = fmt.Sprintf("track%d", i)
		}
		path := filepath.Join(dir, fmt.Sprintf("%02d_%s.mid", i, stemFileName(name)))
		if err := w.WriteSingleTrack(i, path); err != nil {
			return paths, err
		}
		paths[name] = path
	}
	return paths, nil
}

func stemFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, name)
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// into place, so readers never observe a partially written file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errs.SerializationIO("create temp file in", dir, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errs.SerializationIO("write", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return errs.SerializationIO("sync", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return errs.SerializationIO("close", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errs.SerializationIO("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errs.SerializationIO("rename to", path, err)
	}
	committed = true
	return nil
}
