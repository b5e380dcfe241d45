package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// $(NAME) or $(NAME:-fallback)
var placeholder = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)(?::-([^)]*))?\)`)

// expandEnvVars substitutes placeholders from the environment. Unset
// variables expand to their fallback, or to nothing.
func expandEnvVars(s string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		sub := placeholder.FindStringSubmatch(m)
		if v, ok := os.LookupEnv(mapEnvKey(sub[1])); ok {
			return v
		}
		return sub[2]
	})
}

// Load reads, defaults and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse is Load for an in-memory document. Unknown keys are rejected so a
// misspelt option does not silently fall back to its default.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expandEnvVars(string(data)))))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
