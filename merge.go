package nudbconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ssb-nudb/nudb-config-go/internal/logger"
)

// tombstone is the sentinel string value that deletes an existing mapping
// entry when it appears in an override file.
const tombstone = "None"

// mergeTree merges src into dst in source order: mappings merge recursively,
// everything else replaces. Used for trusted sources (the packaged files),
// which carry no unknown keys to warn about.
func mergeTree(dst, src *node) {
	for _, key := range src.keys {
		sc := src.children[key]
		if dc, ok := dst.children[key]; ok && dc.kind == mappingNode && sc.kind == mappingNode {
			mergeTree(dc, sc)
			continue
		}
		dst.set(key, sc.clone())
	}
}

// yamlFieldSet collects the yaml tag names of a struct type. The allowed-key
// sets for override validation are derived from the typed configuration
// structs so the two surfaces cannot drift apart.
func yamlFieldSet(t reflect.Type) map[string]bool {
	set := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		name, _, _ := strings.Cut(tag, ",")
		if name != "" && name != "-" {
			set[name] = true
		}
	}
	return set
}

var (
	settingsKeys = map[string]bool{"dapla_team": true, "short_name": true, "utd_nacekoder": true}
	variableKeys = yamlFieldSet(reflect.TypeOf(Variable{}))
	datasetKeys  = yamlFieldSet(reflect.TypeOf(Dataset{}))
	pathKeys     = yamlFieldSet(reflect.TypeOf(PathEntry{}))
	optionKeys   = yamlFieldSet(reflect.TypeOf(Options{}))
)

// overrideFileNames lists the file names recognized inside an override
// directory, in application order.
var overrideFileNames = []string{
	"settings.yaml",
	"variables.yaml",
	"datasets.yaml",
	"paths.yaml",
	"options.yaml",
}

// applyOverrideDir merges every recognized file found in dir into tree.
// Unknown keys are logged and ignored; a value of "None" deletes the entry
// it targets. The directory itself must exist.
func applyOverrideDir(tree *node, dir string, log *logger.Logger) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error reading override directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("override path %q is not a directory", dir)
	}

	for _, name := range overrideFileNames {
		path := filepath.Join(dir, name)
		src, err := parseYAMLFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}
		applyOverrideFile(tree, name, src, log)
	}
	return nil
}

func parseYAMLFile(path string) (*node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseYAML(path, data)
}

func parseYAML(label string, data []byte) (*node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return newMapping(), nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", label, err)
	}
	n, err := nodeFromYAML(&doc)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", label, err)
	}
	if n.kind != mappingNode {
		return nil, fmt.Errorf("error parsing %s: top level must be a mapping", label)
	}
	return n, nil
}

func applyOverrideFile(tree *node, name string, src *node, log *logger.Logger) {
	switch name {
	case "settings.yaml":
		applyScalarOverrides(tree, src, settingsKeys, name, log)
	case "variables.yaml":
		for _, key := range src.keys {
			switch key {
			case "variables_sort_unit":
				tree.set(key, src.children[key].clone())
			case "variables":
				mergeNamedSection(tree, "variables", src.children[key], variableKeys, name, log)
			default:
				warnUnknownKey(log, name, key)
			}
		}
	case "datasets.yaml":
		applySectionFile(tree, src, "datasets", datasetKeys, name, log)
	case "paths.yaml":
		applySectionFile(tree, src, "paths", pathKeys, name, log)
	case "options.yaml":
		for _, key := range src.keys {
			if key != "options" {
				warnUnknownKey(log, name, key)
				continue
			}
			opts := src.children[key]
			if opts.kind != mappingNode {
				log.Warn().Str("file", name).Msg("options must be a mapping; ignored")
				continue
			}
			dst := ensureMapping(tree, "options")
			applyScalarOverrides(dst, opts, optionKeys, name+".options", log)
		}
	}
}

// applyScalarOverrides copies the allowed keys of src into dst, warning
// about and dropping anything else. Tombstones delete.
func applyScalarOverrides(dst, src *node, allowed map[string]bool, label string, log *logger.Logger) {
	for _, key := range src.keys {
		if !allowed[key] {
			warnUnknownKey(log, label, key)
			continue
		}
		child := src.children[key]
		if isTombstone(child) {
			dst.delete(key)
			continue
		}
		dst.set(key, child.clone())
	}
}

// applySectionFile handles a file whose entire content lives under a single
// named section holding a mapping of named entries (datasets, paths).
func applySectionFile(tree, src *node, section string, allowed map[string]bool, name string, log *logger.Logger) {
	for _, key := range src.keys {
		if key != section {
			warnUnknownKey(log, name, key)
			continue
		}
		mergeNamedSection(tree, section, src.children[key], allowed, name, log)
	}
}

// mergeNamedSection merges a mapping of named entries (variables, datasets,
// paths) into the section of the same name in tree. Existing entries are
// updated field by field; new entries are appended; a "None" payload deletes
// the entry. Unknown fields inside an entry are warned about and dropped.
func mergeNamedSection(tree *node, section string, src *node, allowed map[string]bool, fileLabel string, log *logger.Logger) {
	if src.kind != mappingNode {
		log.Warn().Str("file", fileLabel).Msgf("%s must be a mapping; ignored", section)
		return
	}

	dst := ensureMapping(tree, section)
	for _, name := range src.keys {
		payload := src.children[name]
		if isTombstone(payload) {
			dst.delete(name)
			continue
		}
		if payload.kind != mappingNode {
			log.Warn().Str("file", fileLabel).Msgf("entry %s.%s has non-mapping payload; ignored", section, name)
			continue
		}

		entry, ok := dst.child(name)
		if !ok || entry.kind != mappingNode {
			entry = newMapping()
			dst.set(name, entry)
		}
		for _, field := range payload.keys {
			if !allowed[field] {
				warnUnknownKey(log, fileLabel, section+"."+name+"."+field)
				continue
			}
			fieldValue := payload.children[field]
			if isTombstone(fieldValue) {
				entry.delete(field)
				continue
			}
			entry.set(field, fieldValue.clone())
		}
	}
}

func ensureMapping(tree *node, key string) *node {
	if c, ok := tree.child(key); ok && c.kind == mappingNode {
		return c
	}
	m := newMapping()
	tree.set(key, m)
	return m
}

func isTombstone(n *node) bool {
	s, ok := n.value.(string)
	return n.kind == leafNode && ok && s == tombstone
}

func warnUnknownKey(log *logger.Logger, file, key string) {
	log.Warn().Str("file", file).Str("key", key).Msg("unknown key in override; ignored")
}

// finalizeTree applies the load-time enrichment the settings always carry:
// every variable gets a name field matching its key, and known KLASS
// codelists get their extra code mappings.
func finalizeTree(tree *node) {
	vars, ok := tree.child("variables")
	if !ok || vars.kind != mappingNode {
		return
	}
	for _, name := range vars.keys {
		v := vars.children[name]
		if v.kind != mappingNode {
			continue
		}
		if _, ok := v.child("name"); !ok {
			v.set("name", newLeaf(name))
		}
		expandCodelistExtras(v)
	}
}

// expandCodelistExtras mirrors the code additions SSB applies on top of the
// KLASS codelists for historic country codes (91) and municipality
// numbers (131).
func expandCodelistExtras(v *node) {
	kc, ok := v.child("klass_codelist")
	if !ok || kc.kind != leafNode {
		return
	}
	id, ok := kc.value.(int)
	if !ok {
		return
	}

	var extras [][2]string
	switch id {
	case 91:
		extras = [][2]string{
			{"151", "DDR / Øst-Tyskland"},
			{"135", "SSSR / Sovjetunionen"},
		}
	case 131:
		extras = [][2]string{
			{"2580", "360s definerte Utland"},
			{"2111", "Longyearbyen arealplanområde"},
		}
	default:
		return
	}

	m := newMapping()
	for _, e := range extras {
		m.set(e[0], newLeaf(e[1]))
	}
	v.set("codelist_extras", m)
}
