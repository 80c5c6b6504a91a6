// Package config loads the per-project triage policy file.
//
// The policy lives in the repository at .bots/labels.json (YAML is accepted
// too) and declares the valid issue-type prefixes with their labels, and the
// required priority-label category with its default. It is loaded fresh on
// every invocation and treated as read-only.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/steveyegge/issuebot/internal/types"
)

// DefaultPath is where the policy file is expected relative to the working
// directory of the invocation.
const DefaultPath = ".bots/labels.json"

// Config is the parsed triage policy.
type Config struct {
	// TypeLabels maps a title prefix token (e.g. "fix") to its label.
	TypeLabels map[string]types.Label

	// ValidTypes lists the valid tokens in declaration order. The order is
	// user-facing: failure comments enumerate the tokens in this order.
	ValidTypes []string

	// PriorityLabels is the required-label category, in configured order.
	// Empty means the priority check is not configured.
	PriorityLabels []types.Label

	// DefaultPriorityLabel is applied when no category label is present.
	// Always a member of PriorityLabels.
	DefaultPriorityLabel types.Label
}

// HasTypeCheck reports whether the issue-type check is configured.
func (c *Config) HasTypeCheck() bool {
	return len(c.TypeLabels) > 0
}

// HasPriorityCheck reports whether the required-priority check is configured.
// An explicitly empty priorityLabels list counts as not configured.
func (c *Config) HasPriorityCheck() bool {
	return len(c.PriorityLabels) > 0
}

// Validate checks if the configuration has valid values
func (c *Config) Validate() error {
	for _, token := range c.ValidTypes {
		label, ok := c.TypeLabels[token]
		if !ok {
			return fmt.Errorf("type token %q has no label", token)
		}
		if label.Name == "" {
			return fmt.Errorf("type token %q maps to an empty label name", token)
		}
	}
	if len(c.ValidTypes) != len(c.TypeLabels) {
		return fmt.Errorf("type token list and label map disagree (%d vs %d)",
			len(c.ValidTypes), len(c.TypeLabels))
	}
	if c.HasPriorityCheck() {
		found := false
		for _, l := range c.PriorityLabels {
			if l.Name == "" {
				return fmt.Errorf("priority labels must not be empty")
			}
			if l.Name == c.DefaultPriorityLabel.Name {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("default priority label %q is not in the configured category",
				c.DefaultPriorityLabel.Name)
		}
	}
	return nil
}

// fileConfig mirrors the on-disk policy file.
type fileConfig struct {
	TypeLabels           *typeLabelList `json:"typeLabels" yaml:"typeLabels"`
	PriorityLabels       []string       `json:"priorityLabels" yaml:"priorityLabels"`
	DefaultPriorityLabel string         `json:"defaultPriorityLabel" yaml:"defaultPriorityLabel"`
}

// typeLabelList is an insertion-ordered token→label mapping. encoding/json
// drops object key order, so JSON is walked token-by-token to keep the
// declared order; yaml.Node already preserves it.
type typeLabelList struct {
	tokens []string
	labels map[string]string
}

func (m *typeLabelList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("typeLabels must be an object")
	}

	m.labels = make(map[string]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("typeLabels has a non-string key: %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("typeLabels[%q]: %w", key, err)
		}
		if _, dup := m.labels[key]; !dup {
			m.tokens = append(m.tokens, key)
		}
		m.labels[key] = value
	}
	return nil
}

func (m *typeLabelList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("typeLabels must be a mapping")
	}
	m.labels = make(map[string]string)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var value string
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("typeLabels[%q]: %w", key, err)
		}
		if _, dup := m.labels[key]; !dup {
			m.tokens = append(m.tokens, key)
		}
		m.labels[key] = value
	}
	return nil
}

// Load reads and parses the policy file at path. A missing or malformed file
// is an error; the orchestrator treats it as terminal.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	var raw fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if raw.TypeLabels != nil {
		cfg.TypeLabels = make(map[string]types.Label, len(raw.TypeLabels.tokens))
		cfg.ValidTypes = raw.TypeLabels.tokens
		for token, name := range raw.TypeLabels.labels {
			cfg.TypeLabels[token] = types.Label{Name: name}
		}
	}
	if len(raw.PriorityLabels) > 0 {
		cfg.PriorityLabels = make([]types.Label, len(raw.PriorityLabels))
		for i, name := range raw.PriorityLabels {
			cfg.PriorityLabels[i] = types.Label{Name: name}
		}
		cfg.DefaultPriorityLabel = resolveDefault(cfg.PriorityLabels, raw.DefaultPriorityLabel)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	return cfg, nil
}

// resolveDefault picks the configured default when it names a member of the
// category, and falls back to the first category label otherwise. The
// reconciler must never propose a default outside the category.
func resolveDefault(category []types.Label, name string) types.Label {
	for _, l := range category {
		if l.Name == name {
			return l
		}
	}
	return category[0]
}
