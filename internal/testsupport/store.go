package testsupport

import (
	"testing"

	"tagsmith/internal/config"
	"tagsmith/internal/logging"
	"tagsmith/internal/tagstore"
)

// NewStore writes the sample sheet to the config's settings path and
// opens a store over it.
func NewStore(t testing.TB, cfg *config.Config) *tagstore.Store {
	t.Helper()

	WriteSettingsSheet(t, cfg.Paths.SettingsFile, "")
	return tagstore.New(cfg.Paths.SettingsFile, logging.NewNop())
}
