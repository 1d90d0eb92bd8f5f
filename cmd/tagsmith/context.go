package main

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tagsmith/internal/config"
	"tagsmith/internal/history"
	"tagsmith/internal/logging"
	"tagsmith/internal/tagstore"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	storeOnce sync.Once
	store     *tagstore.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// tagStore opens the settings store lazily. CLI commands operate on the
// sheet directly; the file lock keeps them safe next to a running daemon.
func (c *commandContext) tagStore() (*tagstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.storeOnce.Do(func() {
		c.store = tagstore.New(cfg.Paths.SettingsFile, logging.NewNop())
	})
	return c.store, nil
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	return history.Open(cfg.History.Path)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// newOperationID groups the cell changes of one command invocation in the
// audit history, matching what the daemon records for API writes.
func newOperationID() uuid.UUID {
	return uuid.New()
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
