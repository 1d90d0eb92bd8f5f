package tagstore

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"tagsmith/internal/logging"
	"tagsmith/internal/tagsheet"
)

const lockRetryDelay = 100 * time.Millisecond

// UpdateEnabledStatus flips the enabled flag for the given tags. Keys are
// applied in sorted order so repeated calls with the same map produce the
// same sheet bytes.
func (s *Store) UpdateEnabledStatus(ctx context.Context, statuses map[string]bool) ([]Change, error) {
	patches := make(map[string]Patch, len(statuses))
	for name, enabled := range statuses {
		patches[name] = Patch{Enabled: SetBool(enabled)}
	}
	return s.UpdateSettings(ctx, patches)
}

// UpdateSettings applies per-tag partial updates in one atomic rewrite.
// Tags absent from the sheet are appended as new rows. Rows, columns, and
// cells the patches do not touch are preserved byte for byte, including
// unknown columns and placeholder rows. Returns the list of cell changes
// actually applied; a no-op update returns an empty list without
// rewriting the file.
func (s *Store) UpdateSettings(ctx context.Context, patches map[string]Patch) ([]Change, error) {
	if len(patches) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire sheet lock: %v", ErrPersist, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: sheet lock held elsewhere", ErrPersist)
	}
	defer s.lock.Unlock()

	// Re-read under the lock so another process's writes are never lost.
	sheet, err := s.readSheet()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	changes, err := applyPatches(sheet, patches)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		s.snap.Store(newSnapshot(sheet))
		return nil, nil
	}

	if err := s.writeSheet(sheet); err != nil {
		// Disk still holds the previous intact version; drop the cache so
		// readers reload it instead of serving unpersisted state.
		s.snap.Store(nil)
		return nil, err
	}
	s.snap.Store(newSnapshot(sheet))

	for _, change := range changes {
		s.logger.Info("tag setting updated",
			logging.String("tag", change.Tag),
			logging.String("field", change.Field),
			logging.String("old", change.Old),
			logging.String("new", change.New),
			logging.Bool("created", change.Created))
	}
	return changes, nil
}

func applyPatches(sheet *tagsheet.Sheet, patches map[string]Patch) ([]Change, error) {
	names := make([]string, 0, len(patches))
	for name := range patches {
		names = append(names, name)
	}
	sort.Strings(names)

	var changes []Change
	for _, name := range names {
		key := tagsheet.NormalizeName(name)
		if key == "" || tagsheet.IsDefaultKey(key) || tagsheet.IsPlaceholder(key) {
			continue
		}
		patch := patches[name]
		if patch.IsZero() {
			continue
		}

		record, created := findOrCreate(sheet, key)
		if created {
			// Record the appended row itself so a patch of blank values
			// still counts as a change and gets persisted.
			changes = append(changes, Change{
				Tag:     key,
				Field:   sheet.NameColumn(),
				New:     key,
				Created: true,
			})
		}
		for _, pf := range patch.fields() {
			if !pf.field.Touched() {
				continue
			}
			sheet.EnsureColumns(pf.column)
			old := record.Get(pf.column)
			next := pf.field.Value()
			if old == next {
				continue
			}
			record[pf.column] = next
			changes = append(changes, Change{
				Tag:     key,
				Field:   pf.column,
				Old:     old,
				New:     next,
				Created: created,
			})
		}
	}
	return changes, nil
}

// findOrCreate returns the record to mutate for key. With duplicate rows
// the last occurrence wins, matching read-side resolution; a missing tag
// gets a fresh row appended at the end.
func findOrCreate(sheet *tagsheet.Sheet, key string) (tagsheet.Record, bool) {
	if record, ok := sheet.FindTag(key); ok {
		return record, false
	}
	record := tagsheet.Record{sheet.NameColumn(): key}
	sheet.AppendRow(record)
	return record, true
}

func (s *Store) writeSheet(sheet *tagsheet.Sheet) error {
	tmp := s.path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: create temp sheet: %v", ErrPersist, err)
	}
	if err := sheet.Encode(file); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: encode sheet: %v", ErrPersist, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: flush temp sheet: %v", ErrPersist, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: replace sheet: %v", ErrPersist, err)
	}
	return nil
}
