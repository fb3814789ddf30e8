// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Statistics Norway

package nudbconfig

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"

	"github.com/ssb-nudb/nudb-config-go/internal/logger"
)

// envPrefix is the prefix shared by all environment overrides.
const envPrefix = "NUDB_"

// envOverrides are the environment variables honored during load.
type envOverrides struct {
	// DaplaTeam overrides settings.yaml's dapla_team.
	// Env: NUDB_DAPLA_TEAM
	DaplaTeam string `env:"DAPLA_TEAM"`

	// ShortName overrides settings.yaml's short_name.
	// Env: NUDB_SHORT_NAME
	ShortName string `env:"SHORT_NAME"`

	// OverridesDir names an extra override directory, applied after any
	// directories passed programmatically.
	// Env: NUDB_OVERRIDES_DIR
	OverridesDir string `env:"OVERRIDES_DIR"`
}

// settingsBuilder assembles a Config from its sources. The with* methods
// record sources; build applies them in fixed order (embedded files,
// override directories, environment) and decodes the typed surface.
type settingsBuilder struct {
	log    *logger.Logger
	dirs   []string
	useEnv bool
}

func newSettingsBuilder() *settingsBuilder {
	return &settingsBuilder{log: logger.NewStderrLogger("nudb-config")}
}

func (b *settingsBuilder) withLogger(log *logger.Logger) *settingsBuilder {
	if log != nil {
		b.log = log
	}
	return b
}

func (b *settingsBuilder) withOverrideDirs(dirs ...string) *settingsBuilder {
	b.dirs = append(b.dirs, dirs...)
	return b
}

func (b *settingsBuilder) withEnv() *settingsBuilder {
	b.useEnv = true
	return b
}

func (b *settingsBuilder) build() (*Config, error) {
	tree := newMapping()
	for _, name := range overrideFileNames {
		src, err := loadEmbeddedYAML(name)
		if err != nil {
			return nil, err
		}
		mergeTree(tree, src)
	}

	dirs := b.dirs
	var envCfg envOverrides
	if b.useEnv {
		if err := env.ParseWithOptions(&envCfg, env.Options{Prefix: envPrefix}); err != nil {
			return nil, fmt.Errorf("error getting env overrides: %w", err)
		}
		if envCfg.OverridesDir != "" {
			dirs = append(dirs, envCfg.OverridesDir)
		}
	}

	for _, dir := range dirs {
		if err := applyOverrideDir(tree, dir, b.log); err != nil {
			return nil, fmt.Errorf("error applying overrides: %w", err)
		}
	}

	// Environment scalars go into the tree itself so the typed fields and
	// the generic view keep reading the same data.
	if envCfg.DaplaTeam != "" {
		tree.set("dapla_team", newLeaf(envCfg.DaplaTeam))
	}
	if envCfg.ShortName != "" {
		tree.set("short_name", newLeaf(envCfg.ShortName))
	}

	finalizeTree(tree)

	cfg, err := buildConfig(tree)
	if err != nil {
		return nil, err
	}
	if err := applyFallbacks(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFallbacks merges the compiled-in defaults layer into cfg, filling
// only fields the file and env layers left empty (an override tombstone can
// remove even the identity scalars). Filled values are mirrored into the
// tree to keep both access surfaces aligned.
func applyFallbacks(cfg *Config) error {
	if err := mergo.Merge(cfg, fallbackConfig()); err != nil {
		return fmt.Errorf("error merging fallback settings: %w", err)
	}
	if !cfg.tree.has("dapla_team") {
		cfg.tree.set("dapla_team", newLeaf(cfg.DaplaTeam))
	}
	if !cfg.tree.has("short_name") {
		cfg.tree.set("short_name", newLeaf(cfg.ShortName))
	}
	return nil
}

// fallbackConfig is the lowest-priority settings layer.
func fallbackConfig() Config {
	return Config{
		DaplaTeam: "nudb-team",
		ShortName: "nudb",
	}
}

func loadEmbeddedYAML(name string) (*node, error) {
	data, err := embeddedConfig.ReadFile("config/" + name)
	if err != nil {
		return nil, fmt.Errorf("error reading embedded config %s: %w", name, err)
	}
	return parseYAML(name, data)
}

// MergeDir returns a new Config with the override files from dir merged on
// top of the receiver. The receiver is not modified.
func (c *Config) MergeDir(dir string) (*Config, error) {
	return c.MergeDirLogging(dir, logger.NewStderrLogger("nudb-config"))
}

// MergeDirLogging is [Config.MergeDir] with an explicit logger for the
// unknown-key warnings.
func (c *Config) MergeDirLogging(dir string, log *logger.Logger) (*Config, error) {
	tree := c.tree.clone()
	if err := applyOverrideDir(tree, dir, log); err != nil {
		return nil, err
	}
	finalizeTree(tree)
	merged, err := buildConfig(tree)
	if err != nil {
		return nil, err
	}
	if err := applyFallbacks(merged); err != nil {
		return nil, err
	}
	return merged, nil
}
