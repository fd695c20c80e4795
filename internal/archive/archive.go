// Package archive persists the set of already-downloaded track ids so
// repeated runs skip work. The on-disk format is UTF-8 text, one track
// id per line, append-only; entries are never removed.
package archive

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Archive is the download archive: an in-memory id set backed by an
// append-only file. The in-memory set is the source of truth for
// membership checks; it is updated under the same lock as the on-disk
// append, so an Add is visible to every later Contains in the session.
//
// A nil *Archive is valid and behaves as a disabled archive: Contains
// always reports false and Add is a no-op.
type Archive struct {
	path string

	mu  sync.Mutex
	ids map[string]struct{}
}

// Open loads the archive at path, creating a fresh one if the file does
// not exist yet.
func Open(path string) (*Archive, error) {
	a := &Archive{path: path, ids: make(map[string]struct{})}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return a, nil
		}
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			a.ids[id] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", path, err)
	}
	return a, nil
}

// Contains reports whether the track id has been downloaded before.
func (a *Archive) Contains(id string) bool {
	if a == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.ids[id]
	return ok
}

// Add records a track id, appending it to the archive file. Adding an
// id that is already present is a no-op.
func (a *Archive) Add(id string) error {
	if a == nil || id == "" {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.ids[id]; ok {
		return nil
	}

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("archive: append %s: %w", a.path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, id); err != nil {
		return fmt.Errorf("archive: append %s: %w", a.path, err)
	}
	a.ids[id] = struct{}{}
	return nil
}

// Len returns the number of archived track ids.
func (a *Archive) Len() int {
	if a == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ids)
}
