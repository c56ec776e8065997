package directory

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// ErrEmpty is the degraded-mode signal: no usable directory is loaded, so
// trade and price intents cannot be resolved until a reload succeeds.
var ErrEmpty = errors.New("security directory is empty")

// Entry maps one tradable security to its fixed six-digit code. Entries
// are immutable once loaded.
type Entry struct {
	Code    string   `yaml:"code"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// Snapshot is one immutable, versioned view of the directory. Readers hold
// a snapshot for the duration of a resolution so a concurrent reload can
// never show them a half-updated list.
type Snapshot struct {
	entries  []Entry
	names    [][]string // lowercased canonical name + aliases, per entry
	version  int64
	loadedAt time.Time
}

func (s *Snapshot) Len() int          { return len(s.entries) }
func (s *Snapshot) Entry(i int) Entry { return s.entries[i] }

// Names returns the lowercased match names (canonical first, then aliases)
// for entry i.
func (s *Snapshot) Names(i int) []string { return s.names[i] }

func (s *Snapshot) Version() int64     { return s.version }
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Directory holds the current snapshot behind an atomic pointer. Lookups
// never lock; Load replaces the whole snapshot or nothing.
type Directory struct {
	snap    atomic.Pointer[Snapshot]
	version atomic.Int64
}

func New() *Directory {
	return &Directory{}
}

// Load validates and installs a full replacement entry list. An empty or
// invalid list is rejected and the previous snapshot, if any, stays live.
func (d *Directory) Load(entries []Entry) error {
	if len(entries) == 0 {
		return ErrEmpty
	}
	seen := make(map[string]bool, len(entries))
	names := make([][]string, len(entries))
	for i, e := range entries {
		if e.Code == "" || e.Name == "" {
			return fmt.Errorf("directory entry %d: code and name are required", i)
		}
		if seen[e.Code] {
			return fmt.Errorf("directory entry %d: duplicate code %s", i, e.Code)
		}
		seen[e.Code] = true

		ns := make([]string, 0, 1+len(e.Aliases))
		ns = append(ns, strings.ToLower(e.Name))
		for _, a := range e.Aliases {
			ns = append(ns, strings.ToLower(a))
		}
		names[i] = ns
	}

	snap := &Snapshot{
		entries:  entries,
		names:    names,
		version:  d.version.Add(1),
		loadedAt: time.Now(),
	}
	d.snap.Store(snap)
	return nil
}

// Current returns the live snapshot, or nil if nothing has loaded yet.
func (d *Directory) Current() *Snapshot {
	return d.snap.Load()
}

// Ready reports whether a non-empty snapshot is loaded.
func (d *Directory) Ready() bool {
	s := d.snap.Load()
	return s != nil && len(s.entries) > 0
}
