package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSettingsFile reads a flat YAML mapping of setting names to values and applies it over the
// defaults. A missing file yields the defaults.
func LoadSettingsFile(path string) (Settings, error) {
	defaults := DefaultSettings()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return Settings{}, fmt.Errorf("reading settings file: %w", err)
	}
	return ParseSettings(data, defaults)
}

// ParseSettings applies a YAML document over base.
func ParseSettings(data []byte, base Settings) (Settings, error) {
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return Settings{}, fmt.Errorf("%w: parsing settings: %v", ErrInvalidSettings, err)
	}
	return Apply(base, values)
}

// MarshalSettings renders settings as the YAML document ParseSettings accepts.
func MarshalSettings(s Settings) ([]byte, error) {
	node := yaml.Node{Kind: yaml.MappingNode}
	for _, opt := range options {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: opt.Name, HeadComment: opt.Description},
			&yaml.Node{Kind: yaml.ScalarNode, Value: opt.get(s)},
		)
	}
	return yaml.Marshal(&node)
}
