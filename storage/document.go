package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mmoralesp95/Proyecto-IA/domain/backlog"
)

// document is a JSON array of entities stored in a single file.
type document[E identified] struct {
	path string
}

// load reads the document. A missing or zero-length file is an empty
// collection; anything that does not parse as an array of entities with
// unique positive ids is reported as backlog.ErrStorageCorrupt.
func (d document[E]) load() ([]E, error) {
	data, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []E{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", d.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []E{}, nil
	}

	var items []E
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", backlog.ErrStorageCorrupt, d.path, err)
	}
	if items == nil {
		return []E{}, nil
	}

	if reason := idProblem(items); reason != "" {
		return nil, fmt.Errorf("%w: %s: %s", backlog.ErrStorageCorrupt, d.path, reason)
	}
	return items, nil
}

// save replaces the document atomically: the new content is written and
// synced to a temporary file in the same directory, then renamed over the
// old one.
func (d document[E]) save(items []E) (err error) {
	if items == nil {
		items = []E{}
	}
	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", d.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", d.path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", d.path, err)
	}
	return nil
}

func maxIdentity[E identified](items []E) int64 {
	return NextID(items) - 1
}
