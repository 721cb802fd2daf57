package aspects

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk form of a grammar.
//
// YAML:
//
//	aspects:
//	  - separator: "="
//	    aspect: Functional
//	  - separator: "+"
//	    aspect: Location
//
// The legacy JSON form uses capitalized keys:
//
//	{"aspects": [{"Separator": "=", "Aspect": "Functional"}]}
type fileConfig struct {
	Aspects []Level `yaml:"aspects" json:"aspects"`
}

// Load reads a grammar from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("aspects: read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("aspects: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a grammar from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("aspects: unmarshal yaml: %w", err)
	}
	return New(fc.Aspects...)
}

// ParseJSON decodes a grammar from the legacy JSON form.
func ParseJSON(data []byte) (*Config, error) {
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("aspects: unmarshal json: %w", err)
	}
	return New(fc.Aspects...)
}

// MarshalYAML implements yaml.Marshaler so a grammar round-trips through its
// file form.
func (c *Config) MarshalYAML() (any, error) {
	return fileConfig{Aspects: c.Levels()}, nil
}

// MarshalJSON implements json.Marshaler using the legacy JSON form.
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileConfig{Aspects: c.Levels()})
}
