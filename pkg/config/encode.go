package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

const redacted = "********"

// Encode renders the effective config as TOML or YAML with the DSN
// redacted.
func (c *Config) Encode(format string) ([]byte, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(c, "koanf"), nil); err != nil {
		return nil, err
	}
	if c.Warehouse.DSN != "" {
		if err := k.Set("warehouse.dsn", redacted); err != nil {
			return nil, err
		}
	}
	raw := k.Raw()

	switch strings.ToLower(format) {
	case "", "toml":
		tree, err := toml.TreeFromMap(raw)
		if err != nil {
			return nil, fmt.Errorf("encoding toml: %w", err)
		}
		return tree.Marshal()
	case "yaml", "yml":
		return yaml.Marshal(raw)
	default:
		return nil, fmt.Errorf("unsupported config format %q (want toml or yaml)", format)
	}
}
