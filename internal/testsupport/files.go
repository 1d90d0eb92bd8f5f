package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleSheet is a small settings sheet with a default row, two tags, a
// placeholder row, and an unknown column.
const SampleSheet = `tag_name,category,enabled,markers_enabled,RequiredSceneTagDuration,min_marker_duration,max_gap,notes
__default__,,TRUE,TRUE,35%,2,5,keep-me
Outdoor,Scene,,FALSE,15,,,sunny
Portrait,People,no,,,1.5,,
unused1,,,,,,,
`

// WriteSettingsSheet writes content to path, creating parent directories.
// Empty content writes SampleSheet.
func WriteSettingsSheet(t testing.TB, path, content string) {
	t.Helper()

	if content == "" {
		content = SampleSheet
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
