package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// LoadOverrides reads an override record from a YAML, TOML or JSON file,
// chosen by extension.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides: %w", err)
	}
	o, err := DecodeOverrides(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return o, nil
}

// DecodeOverrides decodes data in the format named by ext (".yaml", ".yml",
// ".toml" or ".json"). Alias keys come back renamed as by Canonical.
func DecodeOverrides(ext string, data []byte) (Overrides, error) {
	out := Overrides{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &out); err != nil {
			return nil, err
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&out); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported override format %q", ext)
	}
	return Canonical(out), nil
}
