// Package fs stores the crawl output as a JSON file on disk.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/ragdoc"
)

// Ensure CorpusFile implements ragdoc.CorpusWriter at compile time.
var _ ragdoc.CorpusWriter = (*CorpusFile)(nil)

// CorpusFile writes page results to a JSON array file with atomic update
// semantics. Each saved result is also appended to a JSON-lines checkpoint
// at path+".partial", so an interrupted crawl can be resumed. Commit
// writes the array and removes the checkpoint.
type CorpusFile struct {
	path string

	mu      sync.Mutex
	partial *os.File
	results []ragdoc.PageResult
}

// NewCorpusFile creates a CorpusFile for path.
func NewCorpusFile(path string) *CorpusFile {
	return &CorpusFile{path: path}
}

// CheckpointPath returns the path of the checkpoint file.
func (f *CorpusFile) CheckpointPath() string {
	return f.path + ".partial"
}

// Resume loads results from an existing checkpoint and keeps them for the
// next Commit. A missing checkpoint yields no results. A truncated last
// line, left by an interrupted write, is ignored and cut from the file so
// that later saves start on a fresh line.
func (f *CorpusFile) Resume() ([]ragdoc.PageResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.CheckpointPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var results []ragdoc.PageResult
	good := 0 // end of the last complete record
	for rest := data; len(rest) > 0; {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimSpace(rest[:i])
		rest = rest[i+1:]
		if len(line) > 0 {
			var r ragdoc.PageResult
			if err := json.Unmarshal(line, &r); err != nil {
				break
			}
			results = append(results, r)
		}
		good = len(data) - len(rest)
	}

	if good < len(data) {
		if err := os.Truncate(f.CheckpointPath(), int64(good)); err != nil {
			return nil, err
		}
	}

	f.results = append(f.results, results...)
	return results, nil
}

// Save appends result to the checkpoint.
func (f *CorpusFile) Save(_ context.Context, result ragdoc.PageResult) error {
	line, err := json.Marshal(result)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.partial == nil {
		if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
			return err
		}
		file, err := os.OpenFile(f.CheckpointPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		f.partial = file
	}
	if _, err := f.partial.Write(append(line, '\n')); err != nil {
		return err
	}

	f.results = append(f.results, result)
	return nil
}

// Commit writes every resumed and saved result to the JSON file and
// removes the checkpoint.
func (f *CorpusFile) Commit() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := WriteCorpus(f.path, f.results); err != nil {
		return err
	}
	return f.removeCheckpoint()
}

// Abort discards the checkpoint and any results held in memory.
func (f *CorpusFile) Abort() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.results = nil
	return f.removeCheckpoint()
}

// removeCheckpoint must be called with mu held.
func (f *CorpusFile) removeCheckpoint() error {
	if f.partial != nil {
		_ = f.partial.Close()
		f.partial = nil
	}
	if err := os.Remove(f.CheckpointPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// WriteCorpus atomically replaces path with results encoded as an indented
// JSON array. Non-ASCII text and HTML characters are written unescaped.
func WriteCorpus(path string, results []ragdoc.PageResult) error {
	if results == nil {
		results = []ragdoc.PageResult{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadCorpus reads a JSON array written by WriteCorpus.
// Returns ENOTFOUND if the file does not exist and EPARSE if it is not a
// valid corpus.
func ReadCorpus(path string) ([]ragdoc.PageResult, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ragdoc.Errorf(ragdoc.ENOTFOUND, "corpus file %s not found", path)
	} else if err != nil {
		return nil, err
	}

	var results []ragdoc.PageResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, ragdoc.Errorf(ragdoc.EPARSE, "corpus file %s: %v", path, err)
	}
	return results, nil
}
