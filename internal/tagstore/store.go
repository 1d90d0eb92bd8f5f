package tagstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"tagsmith/internal/logging"
	"tagsmith/internal/tagsheet"
)

// Store owns the settings cache and persistence for one CSV source.
// Readers share immutable snapshots; writers serialize through the store
// and a cross-process file lock.
type Store struct {
	path   string
	logger *slog.Logger
	lock   *flock.Flock

	mu   sync.Mutex // serializes loads and the read-modify-write cycle
	snap atomic.Pointer[snapshot]
}

// Defaults echoes the sentinel row's raw cell values so editors can show
// what blank fields inherit. MarkersEnabled follows the sheet convention
// of defaulting true.
type Defaults struct {
	RequiredSceneTagDuration string
	MinMarkerDuration        string
	MaxGap                   string
	MarkersEnabled           bool
}

type snapshot struct {
	sheet      *tagsheet.Sheet
	rows       map[string]*tagsheet.TagRow
	order      []string
	def        *tagsheet.DefaultRow
	rawDefault tagsheet.Record
	statuses   map[string]bool
}

// New constructs a store for the sheet at path. Nothing is read until
// the first query.
func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "tagstore"),
		lock:   flock.New(path + ".lock"),
	}
}

// Path returns the backing sheet location.
func (s *Store) Path() string {
	return s.path
}

// Invalidate drops the cached snapshot; the next read reloads from disk.
func (s *Store) Invalidate() {
	s.snap.Store(nil)
}

// Loaded reports whether a snapshot is currently cached.
func (s *Store) Loaded() bool {
	return s.snap.Load() != nil
}

// AllStatuses returns the enabled flag for every tag, keyed by normalized
// name. A missing or headerless source degrades to an empty map with a
// structured warning.
func (s *Store) AllStatuses() map[string]bool {
	snap, err := s.current()
	if err != nil {
		s.warnDegraded("tag statuses unavailable", err)
		return map[string]bool{}
	}
	statuses := make(map[string]bool, len(snap.statuses))
	for key, enabled := range snap.statuses {
		statuses[key] = enabled
	}
	return statuses
}

// EnabledTags returns the sorted normalized names of all enabled tags.
func (s *Store) EnabledTags() []string {
	snap, err := s.current()
	if err != nil {
		s.warnDegraded("enabled tags unavailable", err)
		return nil
	}
	enabled := make([]string, 0, len(snap.statuses))
	for key, on := range snap.statuses {
		if on {
			enabled = append(enabled, key)
		}
	}
	sort.Strings(enabled)
	return enabled
}

// TagEnabled reports whether a tag is enabled. Unknown tags inherit the
// default row's enabled flag, or true when no default row exists.
func (s *Store) TagEnabled(name string) bool {
	snap, err := s.current()
	if err != nil {
		s.warnDegraded("tag status unavailable", err)
		return true
	}
	key := tagsheet.NormalizeName(name)
	if enabled, ok := snap.statuses[key]; ok {
		return enabled
	}
	if snap.def != nil && snap.def.Enabled != nil {
		return *snap.def.Enabled
	}
	return true
}

// Resolve produces the effective settings for a tag. Unknown tags resolve
// purely from the default row; an unreadable source resolves to built-in
// defaults.
func (s *Store) Resolve(name string) EffectiveSettings {
	snap, err := s.current()
	if err != nil {
		s.warnDegraded("settings resolution degraded", err)
		return Resolve(nil, nil, name)
	}
	key := tagsheet.NormalizeName(name)
	return Resolve(snap.rows[key], snap.def, name)
}

// List returns effective settings for every tag in sheet order. Disabled
// tags are omitted unless includeDisabled is set.
func (s *Store) List(includeDisabled bool) []EffectiveSettings {
	snap, err := s.current()
	if err != nil {
		s.warnDegraded("tag listing unavailable", err)
		return nil
	}
	out := make([]EffectiveSettings, 0, len(snap.order))
	for _, key := range snap.order {
		resolved := Resolve(snap.rows[key], snap.def, key)
		if !includeDisabled && !resolved.Enabled {
			continue
		}
		out = append(out, resolved)
	}
	return out
}

// DisplayName returns the case-preserved name for a normalized key, or
// the key itself when unknown.
func (s *Store) DisplayName(key string) string {
	snap, err := s.current()
	if err != nil {
		return key
	}
	if row, ok := snap.rows[tagsheet.NormalizeName(key)]; ok {
		return row.Name
	}
	return key
}

// DefaultValues echoes the sentinel row's raw cells.
func (s *Store) DefaultValues() Defaults {
	snap, err := s.current()
	if err != nil {
		s.warnDegraded("default values unavailable", err)
		return Defaults{MarkersEnabled: true}
	}
	return snap.defaults()
}

// Count returns the number of tag rows and the number currently enabled.
func (s *Store) Count() (total, enabled int) {
	snap, err := s.current()
	if err != nil {
		return 0, 0
	}
	for _, on := range snap.statuses {
		total++
		if on {
			enabled++
		}
	}
	return total, enabled
}

func (s *Store) current() (*snapshot, error) {
	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}
	sheet, err := s.readSheet()
	if err != nil {
		return nil, err
	}
	snap := newSnapshot(sheet)
	s.snap.Store(snap)
	s.logger.Debug("settings loaded",
		logging.Int("tag_count", len(snap.order)),
		logging.String("path", s.path))
	return snap, nil
}

func (s *Store) readSheet() (*tagsheet.Sheet, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, s.path)
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrSourceUnavailable, s.path, err)
	}
	defer file.Close()

	sheet, err := tagsheet.Parse(file)
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

func (s *Store) warnDegraded(msg string, err error) {
	s.logger.Warn(msg,
		logging.String(logging.FieldEventType, "settings_source_degraded"),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the tag settings file at "+s.path),
		logging.String(logging.FieldImpact, "serving empty tag settings until the source is readable"))
}

func newSnapshot(sheet *tagsheet.Sheet) *snapshot {
	def := sheet.Default()
	tagRows := sheet.TagRows()

	snap := &snapshot{
		sheet:      sheet,
		rows:       make(map[string]*tagsheet.TagRow, len(tagRows)),
		order:      make([]string, 0, len(tagRows)),
		def:        def,
		rawDefault: sheet.DefaultRecord(),
		statuses:   make(map[string]bool, len(tagRows)),
	}
	for i := range tagRows {
		row := &tagRows[i]
		snap.rows[row.Key] = row
		snap.order = append(snap.order, row.Key)
		snap.statuses[row.Key] = Resolve(row, def, row.Key).Enabled
	}
	return snap
}

func (snap *snapshot) defaults() Defaults {
	d := Defaults{MarkersEnabled: true}
	if snap.rawDefault == nil {
		return d
	}
	d.RequiredSceneTagDuration = snap.rawDefault.Get(tagsheet.ColRequiredSceneTagDuration)
	d.MinMarkerDuration = snap.rawDefault.Get(tagsheet.ColMinMarkerDuration)
	d.MaxGap = snap.rawDefault.Get(tagsheet.ColMaxGap)
	d.MarkersEnabled = tagsheet.BoolOrDefault(snap.rawDefault.Get(tagsheet.ColMarkersEnabled), true)
	return d
}
