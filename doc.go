// Package nudbconfig exposes the NUDB metadata configuration (variable
// renames, data types, code lists, catalog paths) as a process-wide,
// read-only settings object.
//
// Configuration is assembled from the following sources in priority order
// (later sources override earlier values):
//  1. YAML files embedded in the package (config/*.yaml)
//  2. Override directories passed via [WithOverrideDirs]
//  3. NUDB_-prefixed environment variables
//
// The main entry points are [Settings] for the lazily initialized singleton
// and [Load] for building an independent instance. Every value is reachable
// two equivalent ways: through the typed fields of [Config] and through the
// generic [View] accessors (Get, GetDefault and dotted-path Lookup), which
// always agree.
package nudbconfig
