package tagsheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const sampleCSV = `tag_name,category,enabled,markers_enabled,RequiredSceneTagDuration,min_marker_duration,max_gap,notes
__default__,,TRUE,TRUE,35%,2.0,5,keep
Outdoor,Scenery,TRUE,,,,,sunny
Portrait,People,FALSE,TRUE,12,1.5,,studio
unused1,,,,,,,
*,,,,,,,
`

func parseSample(t *testing.T, content string) *Sheet {
	t.Helper()
	sheet, err := Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return sheet
}

func TestParseMissingHeader(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("empty source should yield ErrMissingHeader, got %v", err)
	}
}

func TestParseSkipsPlaceholdersAndSentinel(t *testing.T) {
	sheet := parseSample(t, sampleCSV)

	rows := sheet.TagRows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 tag rows, got %d", len(rows))
	}
	if rows[0].Key != "outdoor" || rows[1].Key != "portrait" {
		t.Errorf("unexpected keys: %q, %q", rows[0].Key, rows[1].Key)
	}
	// Raw casing survives for display.
	if rows[0].Name != "Outdoor" {
		t.Errorf("raw name should be preserved, got %q", rows[0].Name)
	}
	// All five records (sentinel + placeholders included) remain for rewrite.
	if len(sheet.Records) != 5 {
		t.Errorf("expected 5 records retained, got %d", len(sheet.Records))
	}
}

func TestParseDefaultRow(t *testing.T) {
	sheet := parseSample(t, sampleCSV)

	def := sheet.Default()
	if def == nil {
		t.Fatal("expected a default row")
	}
	if def.RequiredSceneTagDuration == nil || !def.RequiredSceneTagDuration.IsPercent() || def.RequiredSceneTagDuration.Value != 35 {
		t.Errorf("default duration mismatch: %+v", def.RequiredSceneTagDuration)
	}
	if def.MinMarkerDuration == nil || *def.MinMarkerDuration != 2.0 {
		t.Errorf("default min marker duration mismatch: %+v", def.MinMarkerDuration)
	}
	if def.Enabled == nil || !*def.Enabled {
		t.Errorf("default enabled mismatch: %+v", def.Enabled)
	}
}

func TestParseLegacyTagColumn(t *testing.T) {
	sheet := parseSample(t, "tag,enabled\nOutdoor,TRUE\n")

	rows := sheet.TagRows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Key != "outdoor" {
		t.Errorf("legacy tag column not honoured: %q", rows[0].Key)
	}
	if sheet.NameColumn() != ColTagLegacy {
		t.Errorf("NameColumn should report legacy column, got %q", sheet.NameColumn())
	}
}

func TestParseDuplicateLastWins(t *testing.T) {
	sheet := parseSample(t, "tag_name,category,enabled\nOutdoor,First,TRUE\noutdoor,Second,FALSE\n")

	rows := sheet.TagRows()
	if len(rows) != 1 {
		t.Fatalf("duplicates should merge, got %d rows", len(rows))
	}
	if rows[0].Category != "Second" {
		t.Errorf("last row should win, got category %q", rows[0].Category)
	}
	if rows[0].Enabled == nil || *rows[0].Enabled {
		t.Errorf("last row enabled=FALSE should win: %+v", rows[0].Enabled)
	}
}

func TestParseMalformedCellDegrades(t *testing.T) {
	sheet := parseSample(t, "tag_name,RequiredSceneTagDuration,min_marker_duration\nOutdoor,notaduration,alsobad\n")

	rows := sheet.TagRows()
	if len(rows) != 1 {
		t.Fatalf("malformed cells must not drop the row, got %d rows", len(rows))
	}
	if rows[0].RequiredSceneTagDuration != nil {
		t.Errorf("malformed duration should resolve absent: %+v", rows[0].RequiredSceneTagDuration)
	}
	if rows[0].MinMarkerDuration != nil {
		t.Errorf("malformed float should resolve absent: %+v", rows[0].MinMarkerDuration)
	}
}

func TestEncodePreservesUnknownColumns(t *testing.T) {
	sheet := parseSample(t, sampleCSV)

	var buf bytes.Buffer
	if err := sheet.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	reparsed, err := Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if len(reparsed.Columns) != len(sheet.Columns) {
		t.Fatalf("column count changed: %d != %d", len(reparsed.Columns), len(sheet.Columns))
	}
	rec, ok := reparsed.FindTag("outdoor")
	if !ok {
		t.Fatal("outdoor row missing after round trip")
	}
	if rec.Get("notes") != "sunny" {
		t.Errorf("unknown column cell lost: %q", rec.Get("notes"))
	}
	def := reparsed.DefaultRecord()
	if def == nil || def.Get("notes") != "keep" {
		t.Error("sentinel row's unknown column cell lost")
	}
}

func TestEnsureColumns(t *testing.T) {
	sheet := parseSample(t, "tag_name,enabled\nOutdoor,TRUE\n")

	sheet.EnsureColumns(ColMarkersEnabled, ColEnabled)
	want := []string{ColTagName, ColEnabled, ColMarkersEnabled}
	if len(sheet.Columns) != len(want) {
		t.Fatalf("columns: got %v, want %v", sheet.Columns, want)
	}
	for i, col := range want {
		if sheet.Columns[i] != col {
			t.Errorf("column %d: got %q, want %q", i, sheet.Columns[i], col)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"  Outdoor ": "outdoor",
		"HARD-Light": "hard-light",
		"":           "",
		"  ":         "",
	}
	for input, want := range cases {
		if got := NormalizeName(input); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseBoolTokens(t *testing.T) {
	trues := []string{"1", "true", "TRUE", "Yes", "on"}
	falses := []string{"0", "false", "FALSE", "No", "off"}
	for _, token := range trues {
		if v := ParseBool(token); v == nil || !*v {
			t.Errorf("token %q should parse true", token)
		}
	}
	for _, token := range falses {
		if v := ParseBool(token); v == nil || *v {
			t.Errorf("token %q should parse false", token)
		}
	}
	for _, token := range []string{"", "maybe", "2"} {
		if v := ParseBool(token); v != nil {
			t.Errorf("token %q should be unrecognized", token)
		}
	}
}
