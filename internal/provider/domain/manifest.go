package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
)

// manifestEntry is one provider in a catalog file.
type manifestEntry struct {
	Name       string         `yaml:"name"`
	Category   string         `yaml:"category"`
	BaseURL    string         `yaml:"base_url"`
	Operations map[string]any `yaml:"operations"`
}

type manifest struct {
	Providers []manifestEntry `yaml:"providers"`
}

// ParseManifest reads a catalog file in YAML or JSON. Each provider's operations are
// converted to the JSON document stored in the providers table; the catalog itself is
// not validated here.
func ParseManifest(data []byte) ([]*Provider, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(m.Providers) == 0 {
		return nil, fmt.Errorf("catalog file lists no providers")
	}

	seen := make(map[string]struct{}, len(m.Providers))
	providers := make([]*Provider, 0, len(m.Providers))
	for i, entry := range m.Providers {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("providers[%d]: name is required", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("providers[%d]: duplicate provider %q", i, name)
		}
		seen[name] = struct{}{}

		category, err := credentialDomain.ParseCategory(entry.Category)
		if err != nil {
			return nil, fmt.Errorf("providers[%d] %s: %w", i, name, err)
		}

		ops := entry.Operations
		if ops == nil {
			ops = map[string]any{}
		}
		doc, err := json.Marshal(ops)
		if err != nil {
			return nil, fmt.Errorf("providers[%d] %s: failed to encode operations: %w", i, name, err)
		}

		providers = append(providers, &Provider{
			Name:       name,
			Category:   category,
			BaseURL:    strings.TrimSpace(entry.BaseURL),
			Operations: doc,
		})
	}

	return providers, nil
}
