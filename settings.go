package nudbconfig

import (
	"sync"

	"github.com/ssb-nudb/nudb-config-go/internal/logger"
)

var (
	settingsOnce sync.Once
	settings     *Config
	settingsErr  error
)

// Option customizes a [Load] call.
type Option func(*settingsBuilder)

// WithOverrideDirs merges the recognized YAML files from each directory on
// top of the packaged defaults, in the order given. Directories named here
// are applied before any directory from NUDB_OVERRIDES_DIR.
func WithOverrideDirs(dirs ...string) Option {
	return func(b *settingsBuilder) {
		b.withOverrideDirs(dirs...)
	}
}

// WithLogger routes load-time warnings (unknown override keys and the like)
// to log instead of the default stderr logger.
func WithLogger(log *logger.Logger) Option {
	return func(b *settingsBuilder) {
		b.withLogger(log)
	}
}

// WithoutEnv disables the NUDB_* environment overrides. Mostly useful in
// tests that need a load unaffected by the surrounding process environment.
func WithoutEnv() Option {
	return func(b *settingsBuilder) {
		b.useEnv = false
	}
}

// Load builds an independent settings instance from the packaged defaults,
// any override directories, and the environment. Each call returns a fresh,
// immutable Config.
func Load(opts ...Option) (*Config, error) {
	b := newSettingsBuilder().withEnv()
	for _, opt := range opts {
		opt(b)
	}
	return b.build()
}

// Settings returns the process-wide settings singleton, loading it on first
// use. Initialization runs exactly once even under concurrent first access;
// both the instance and any load error are cached, so every call returns
// the same result. The instance is immutable and safe for concurrent reads.
func Settings() (*Config, error) {
	settingsOnce.Do(func() {
		settings, settingsErr = Load()
	})
	return settings, settingsErr
}
