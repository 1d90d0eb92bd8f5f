package tagsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record holds one data row's cells keyed by header column name. Cells
// for columns this engine does not interpret are carried verbatim.
type Record map[string]string

// Get returns the trimmed cell value for a column.
func (r Record) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Name returns the raw tag name, honouring the legacy "tag" column.
func (r Record) Name() string {
	if name := r.Get(ColTagName); name != "" {
		return name
	}
	return r.Get(ColTagLegacy)
}

// Key returns the normalized lookup key for the record's tag name.
func (r Record) Key() string {
	return NormalizeName(r.Name())
}

// Sheet is the in-memory form of the tag settings CSV. Every data row is
// retained, including the sentinel and placeholder rows, so a rewrite
// preserves content this engine never touched.
type Sheet struct {
	Columns []string
	Records []Record
}

// Parse reads the tabular source. It fails only when the header is
// missing; malformed cells in data rows degrade to absent fields later,
// at typed-view time.
func Parse(r io.Reader) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingHeader
		}
		return nil, fmt.Errorf("%w: %v", ErrMissingHeader, err)
	}

	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.TrimSpace(col)
	}
	if len(columns) == 0 || (len(columns) == 1 && columns[0] == "") {
		return nil, ErrMissingHeader
	}

	sheet := &Sheet{Columns: columns}
	for {
		fields, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// Ragged quoting or stray bytes in one row should not
			// take down the whole table.
			continue
		}
		record := make(Record, len(columns))
		for i, col := range columns {
			if i < len(fields) {
				record[col] = fields[i]
			}
		}
		sheet.Records = append(sheet.Records, record)
	}
	return sheet, nil
}

// Encode writes the sheet back out in header order. Unknown columns and
// untouched rows round-trip byte-for-byte at cell granularity.
func (s *Sheet) Encode(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(s.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(s.Columns))
	for _, record := range s.Records {
		for i, col := range s.Columns {
			row[i] = record[col]
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// TagRows returns the typed tag entries in sheet order, excluding the
// sentinel and placeholder rows. Duplicate normalized names merge
// last-wins: the entry keeps its first position but carries the values
// of the last row with that key.
func (s *Sheet) TagRows() []TagRow {
	index := make(map[string]int)
	rows := make([]TagRow, 0, len(s.Records))
	for _, record := range s.Records {
		key := record.Key()
		if key == "" || IsDefaultKey(key) || IsPlaceholder(key) {
			continue
		}
		row := typedTagRow(record, key)
		if at, seen := index[key]; seen {
			rows[at] = row
			continue
		}
		index[key] = len(rows)
		rows = append(rows, row)
	}
	return rows
}

// Default extracts the sentinel row's typed fallback values, or nil when
// no sentinel row exists. With duplicates the last sentinel wins.
func (s *Sheet) Default() *DefaultRow {
	var def *DefaultRow
	for _, record := range s.Records {
		if !IsDefaultKey(record.Key()) {
			continue
		}
		def = &DefaultRow{
			Enabled:                  ParseBool(record.Get(ColEnabled)),
			MarkersEnabled:           ParseBool(record.Get(ColMarkersEnabled)),
			RequiredSceneTagDuration: parseDurationCell(record.Get(ColRequiredSceneTagDuration)),
			MinMarkerDuration:        parseFloatCell(record.Get(ColMinMarkerDuration)),
			MaxGap:                   parseFloatCell(record.Get(ColMaxGap)),
		}
	}
	return def
}

// DefaultRecord returns the raw sentinel row, or nil. Editors use the raw
// cells to display inherited values exactly as stored.
func (s *Sheet) DefaultRecord() Record {
	var found Record
	for _, record := range s.Records {
		if IsDefaultKey(record.Key()) {
			found = record
		}
	}
	return found
}

// FindTag locates the winning record for a normalized key. With duplicate
// names the last record wins, matching TagRows resolution.
func (s *Sheet) FindTag(key string) (Record, bool) {
	var found Record
	for _, record := range s.Records {
		if record.Key() == key {
			found = record
		}
	}
	return found, found != nil
}

// EnsureColumns appends any missing columns to the header. Existing rows
// simply render empty cells for the new columns.
func (s *Sheet) EnsureColumns(columns ...string) {
	present := make(map[string]struct{}, len(s.Columns))
	for _, col := range s.Columns {
		present[col] = struct{}{}
	}
	for _, col := range columns {
		if _, ok := present[col]; ok {
			continue
		}
		s.Columns = append(s.Columns, col)
		present[col] = struct{}{}
	}
}

// NameColumn reports which column carries tag names in this sheet,
// preferring the canonical name over the legacy alias. The canonical
// column is appended when neither exists.
func (s *Sheet) NameColumn() string {
	for _, col := range s.Columns {
		if col == ColTagName {
			return ColTagName
		}
	}
	for _, col := range s.Columns {
		if col == ColTagLegacy {
			return ColTagLegacy
		}
	}
	s.EnsureColumns(ColTagName)
	return ColTagName
}

// AppendRow adds a new record at the end of the sheet.
func (s *Sheet) AppendRow(record Record) {
	s.Records = append(s.Records, record)
}

func typedTagRow(record Record, key string) TagRow {
	return TagRow{
		Name:                     record.Name(),
		Key:                      key,
		Category:                 record.Get(ColCategory),
		Enabled:                  ParseBool(record.Get(ColEnabled)),
		MarkersEnabled:           ParseBool(record.Get(ColMarkersEnabled)),
		RequiredSceneTagDuration: parseDurationCell(record.Get(ColRequiredSceneTagDuration)),
		MinMarkerDuration:        parseFloatCell(record.Get(ColMinMarkerDuration)),
		MaxGap:                   parseFloatCell(record.Get(ColMaxGap)),
	}
}
