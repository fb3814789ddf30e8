// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Statistics Norway

package nudbconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the unified settings object. Its exported fields mirror the
// packaged YAML files and give typed, attribute-style access; the same
// values are reachable through the generic accessors Get, GetDefault and
// Lookup, which always agree with the fields.
//
// A Config is immutable after load. Methods that combine it with further
// sources, such as [Config.MergeDir], return a new instance.
type Config struct {
	// DaplaTeam is the team identifier from settings.yaml.
	DaplaTeam string `yaml:"dapla_team"`

	// ShortName is the short project name from settings.yaml.
	ShortName string `yaml:"short_name"`

	// UtdNacekoder lists the NACE industry codes relevant for education
	// data, from settings.yaml.
	UtdNacekoder []string `yaml:"utd_nacekoder"`

	// VariablesSortUnit is the preferred ordering of variable units, from
	// variables.yaml.
	VariablesSortUnit []string `yaml:"variables_sort_unit"`

	// Variables maps variable name to its definition.
	Variables map[string]Variable `yaml:"variables"`

	// Datasets maps dataset name to its configuration.
	Datasets map[string]Dataset `yaml:"datasets"`

	// Paths maps environment name (on_prem, dapla, ...) to its paths.
	Paths map[string]PathEntry `yaml:"paths"`

	// Options holds behavioral toggles from options.yaml.
	Options Options `yaml:"options"`

	tree *node
}

// Variable is the definition of a single statistical variable from
// variables.yaml.
type Variable struct {
	// Name is the variable's own key in the variables mapping, injected
	// during load.
	Name string `yaml:"name,omitempty"`

	// Unit is the logical grouping the variable belongs to.
	Unit string `yaml:"unit"`

	// Dtype is the storage or semantic type of the variable.
	Dtype string `yaml:"dtype"`

	// Length lists the allowed lengths for string fields, if constrained.
	Length []int `yaml:"length,omitempty"`

	// KlassCodelist is the KLASS codelist identifier, if applicable.
	KlassCodelist int `yaml:"klass_codelist,omitempty"`

	// KlassVariant is the KLASS variant identifier, if applicable.
	KlassVariant int `yaml:"klass_variant,omitempty"`

	// RenamedFrom records the previous column name(s) that map to this
	// variable. A single name or a list is accepted in the source file.
	RenamedFrom StringList `yaml:"renamed_from,omitempty"`

	// CodelistExtras holds additional code mappings injected at load time
	// for known codelists.
	CodelistExtras map[string]string `yaml:"codelist_extras,omitempty"`
}

// Dataset is a dataset configuration entry from datasets.yaml.
type Dataset struct {
	// Variables is the ordered list of variable names in the dataset.
	Variables []string `yaml:"variables"`

	// ThresholdsEmpty gives the allowable proportion of empty values per
	// variable.
	ThresholdsEmpty map[string]float64 `yaml:"thresholds_empty,omitempty"`

	// MinValues and MaxValues give inclusive filter bounds per variable.
	MinValues map[string]string `yaml:"min_values,omitempty"`
	MaxValues map[string]string `yaml:"max_values,omitempty"`

	// DatasetSpecificRenames maps source column names to variable names
	// that apply only within this dataset.
	DatasetSpecificRenames map[string]string `yaml:"dataset_specific_renames,omitempty"`
}

// PathEntry holds the catalog paths for one named environment.
type PathEntry struct {
	Katalog       string `yaml:"katalog"`
	DeltUtdanning string `yaml:"delt_utdanning"`
}

// Options holds behavioral toggles from options.yaml.
type Options struct {
	// WarnUnsafeDerive controls whether downstream derivation helpers warn
	// about unsafe variable derivations.
	WarnUnsafeDerive bool `yaml:"warn_unsafe_derive"`
}

// StringList is a []string that unmarshals from either a single YAML scalar
// or a sequence, since renamed_from entries appear in both forms.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var ss []string
		if err := value.Decode(&ss); err != nil {
			return err
		}
		*l = StringList(ss)
		return nil
	default:
		return fmt.Errorf("expected a string or a list of strings at line %d", value.Line)
	}
}

// Tree returns the generic read-only view over the whole configuration.
func (c *Config) Tree() *View {
	return &View{n: c.tree}
}

// Get returns a sub-view for a top-level key. See [View.Get].
func (c *Config) Get(key string) (*View, error) {
	return c.Tree().Get(key)
}

// GetDefault returns the value for a top-level key, or def when absent.
// See [View.GetDefault].
func (c *Config) GetDefault(key string, def any) any {
	return c.Tree().GetDefault(key, def)
}

// Lookup resolves a dotted path against the whole configuration.
// See [View.Lookup].
func (c *Config) Lookup(path string) (*View, error) {
	return c.Tree().Lookup(path)
}

// buildConfig decodes the typed surface from the tree, so both access
// styles are guaranteed to come from the same data.
func buildConfig(tree *node) (*Config, error) {
	data, err := yaml.Marshal(tree.toValue())
	if err != nil {
		return nil, fmt.Errorf("error rendering configuration tree: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error decoding typed configuration: %w", err)
	}

	cfg.tree = tree
	return cfg, nil
}
