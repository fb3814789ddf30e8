// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Statistics Norway

package nudbconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssb-nudb/nudb-config-go/internal/logger"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeOverrideFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// captureLogger returns a logger whose output is collected in the returned
// buffer, for asserting on warnings.
func captureLogger() (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &logger.Logger{Logger: zerolog.New(&buf)}, &buf
}

// ── override directories ──────────────────────────────────────────────────────

// TestApplyOverrideDir_MissingDirectory verifies a nonexistent directory is
// an error rather than a silent no-op.
func TestApplyOverrideDir_MissingDirectory(t *testing.T) {
	_, err := Load(WithoutEnv(), WithLogger(logger.Nop()),
		WithOverrideDirs(filepath.Join(t.TempDir(), "nope")))
	require.Error(t, err)
}

// TestOverrides_ApplyAndWarnUnknownKeys verifies that override values land
// in both access surfaces and that every unknown key is warned about and
// dropped.
func TestOverrides_ApplyAndWarnUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	writeOverrideFile(t, dir, "settings.yaml", `
short_name: overridden-name
unknown_key: not-allowed
`)
	writeOverrideFile(t, dir, "variables.yaml", `
variables_sort_unit: [custom]
top_unknown: true
variables:
  fnr:
    unit: person
    dtype: STRING
    length: [10]
    nonsense: 123
`)
	writeOverrideFile(t, dir, "datasets.yaml", `
datasets:
  testset:
    variables: [fnr]
    extra_field: 1
`)
	writeOverrideFile(t, dir, "paths.yaml", `
paths:
  local_daplalab:
    katalog: /override/catalog/
    extra: ignored
`)

	log, buf := captureLogger()
	cfg, err := Load(WithoutEnv(), WithLogger(log), WithOverrideDirs(dir))
	require.NoError(t, err)

	// overrides applied
	assert.Equal(t, "overridden-name", cfg.ShortName)
	assert.Equal(t, []string{"custom"}, cfg.VariablesSortUnit)
	assert.Equal(t, "STRING", cfg.Variables["fnr"].Dtype)
	assert.Equal(t, []int{10}, cfg.Variables["fnr"].Length)
	require.Contains(t, cfg.Datasets, "testset")
	assert.Equal(t, []string{"fnr"}, cfg.Datasets["testset"].Variables)
	assert.Equal(t, "/override/catalog/", cfg.Paths["local_daplalab"].Katalog)

	// untouched base values survive
	assert.Equal(t, "nudb-team", cfg.DaplaTeam)
	assert.Equal(t, "/buckets/delt-utdanning/nudb-data/klargjorte-data/",
		cfg.Paths["local_daplalab"].DeltUtdanning)

	// the generic surface agrees
	name, err := cfg.Tree().String("short_name")
	require.NoError(t, err)
	assert.Equal(t, "overridden-name", name)

	// unknown keys warned
	warnings := buf.String()
	for _, key := range []string{"unknown_key", "top_unknown", "nonsense", "extra_field", "extra"} {
		assert.Contains(t, warnings, key)
	}

	// unknown keys dropped from the tree
	assert.False(t, cfg.Tree().Has("top_unknown"))
	vars, err := cfg.Lookup("variables.fnr")
	require.NoError(t, err)
	assert.False(t, vars.Has("nonsense"))
}

// TestOverrides_TombstoneDeletesEntry verifies that a "None" payload removes
// an existing entry from both surfaces.
func TestOverrides_TombstoneDeletesEntry(t *testing.T) {
	dir := t.TempDir()
	writeOverrideFile(t, dir, "variables.yaml", `
variables:
  snr: "None"
`)

	cfg, err := Load(WithoutEnv(), WithLogger(logger.Nop()), WithOverrideDirs(dir))
	require.NoError(t, err)

	assert.NotContains(t, cfg.Variables, "snr")
	_, err = cfg.Lookup("variables.snr")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// other variables unaffected
	assert.Contains(t, cfg.Variables, "fnr")
}

// TestOverrides_NewVariableIsEnriched verifies that a variable added by an
// override gets its name injected and, for known codelists, the extra codes.
func TestOverrides_NewVariableIsEnriched(t *testing.T) {
	dir := t.TempDir()
	writeOverrideFile(t, dir, "variables.yaml", `
variables:
  fullfort_gk:
    unit: vgogjen
    dtype: STRING
    length: [2]
    klass_codelist: 131
`)

	cfg, err := Load(WithoutEnv(), WithLogger(logger.Nop()), WithOverrideDirs(dir))
	require.NoError(t, err)

	v, ok := cfg.Variables["fullfort_gk"]
	require.True(t, ok)
	assert.Equal(t, "fullfort_gk", v.Name)
	assert.Equal(t, []int{2}, v.Length)
	assert.Equal(t, "360s definerte Utland", v.CodelistExtras["2580"])
	assert.Equal(t, "Longyearbyen arealplanområde", v.CodelistExtras["2111"])
}

// TestOverrides_PartialFieldUpdate verifies that overriding one field keeps
// the other fields of the same entry intact.
func TestOverrides_PartialFieldUpdate(t *testing.T) {
	dir := t.TempDir()
	writeOverrideFile(t, dir, "variables.yaml", `
variables:
  fnr:
    unit: enhet
`)

	cfg, err := Load(WithoutEnv(), WithLogger(logger.Nop()), WithOverrideDirs(dir))
	require.NoError(t, err)

	assert.Equal(t, "enhet", cfg.Variables["fnr"].Unit)
	assert.Equal(t, "STRING", cfg.Variables["fnr"].Dtype, "untouched field must survive")
	assert.Equal(t, []int{11}, cfg.Variables["fnr"].Length)
}

// TestOverrides_Options verifies options.yaml overrides reach the typed
// field and the tree.
func TestOverrides_Options(t *testing.T) {
	dir := t.TempDir()
	writeOverrideFile(t, dir, "options.yaml", `
options:
  warn_unsafe_derive: false
`)

	cfg, err := Load(WithoutEnv(), WithLogger(logger.Nop()), WithOverrideDirs(dir))
	require.NoError(t, err)

	assert.False(t, cfg.Options.WarnUnsafeDerive)
	b, err := cfg.Tree().Bool("options.warn_unsafe_derive")
	require.NoError(t, err)
	assert.False(t, b)
}

// TestOverrides_FallbackAfterTombstone verifies that removing an identity
// scalar via tombstone falls back to the compiled-in default on both
// surfaces.
func TestOverrides_FallbackAfterTombstone(t *testing.T) {
	dir := t.TempDir()
	writeOverrideFile(t, dir, "settings.yaml", `
short_name: "None"
`)

	cfg, err := Load(WithoutEnv(), WithLogger(logger.Nop()), WithOverrideDirs(dir))
	require.NoError(t, err)

	assert.Equal(t, "nudb", cfg.ShortName)
	name, err := cfg.Tree().String("short_name")
	require.NoError(t, err)
	assert.Equal(t, "nudb", name)
}

// ── MergeDir ──────────────────────────────────────────────────────────────────

// TestMergeDir_DoesNotMutateReceiver verifies the non-mutating contract:
// merging produces a new Config and the original keeps its values.
func TestMergeDir_DoesNotMutateReceiver(t *testing.T) {
	dir := t.TempDir()
	writeOverrideFile(t, dir, "settings.yaml", `
short_name: merged-name
`)
	writeOverrideFile(t, dir, "variables.yaml", `
variables:
  snr: "None"
`)

	base, err := Load(WithoutEnv(), WithLogger(logger.Nop()))
	require.NoError(t, err)

	merged, err := base.MergeDirLogging(dir, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, "merged-name", merged.ShortName)
	assert.NotContains(t, merged.Variables, "snr")

	assert.Equal(t, "nudb", base.ShortName, "receiver must not change")
	assert.Contains(t, base.Variables, "snr")
	assert.False(t, base.Tree().Equal(merged.Tree()))
}

// TestMergeDir_MissingDirectory verifies the directory must exist.
func TestMergeDir_MissingDirectory(t *testing.T) {
	base, err := Load(WithoutEnv(), WithLogger(logger.Nop()))
	require.NoError(t, err)

	_, err = base.MergeDirLogging(filepath.Join(t.TempDir(), "absent"), logger.Nop())
	require.Error(t, err)
}

// ── low-level merge ───────────────────────────────────────────────────────────

// TestMergeTree_OrderOfNewKeys verifies merged-in keys append after existing
// ones, keeping declaration order stable.
func TestMergeTree_OrderOfNewKeys(t *testing.T) {
	dst, err := parseYAML("dst", []byte("b: 1\na: 2\n"))
	require.NoError(t, err)
	src, err := parseYAML("src", []byte("z: 3\na: 9\n"))
	require.NoError(t, err)

	mergeTree(dst, src)

	v := &View{n: dst}
	assert.Equal(t, []string{"b", "a", "z"}, v.Keys())
	got, err := v.Int("a")
	require.NoError(t, err)
	assert.Equal(t, 9, got)
}
