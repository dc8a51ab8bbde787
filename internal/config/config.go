package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
)

// DefaultPath is where Load looks when no explicit path is given.
const DefaultPath = "leqo.toml"

// Config is the `leqo.toml` configuration.
type Config struct {
	Compile CompileConfig `toml:"compile"`
	Cache   CacheConfig   `toml:"cache"`
}

// CompileConfig tunes the merger core.
type CompileConfig struct {
	// Register names the shared qubit register. Fragment-local names must
	// not collide with it.
	Register string `toml:"register"`
	// Strategy selects the scheduler's node-selection heuristic
	// ("weighted" or "stack").
	Strategy string `toml:"strategy"`
	// Schedule toggles the ancilla scheduler.
	Schedule bool `toml:"schedule"`
	// MaxNodes and MaxQubits bound request size; zero disables the bound.
	MaxNodes  int `toml:"max-nodes"`
	MaxQubits int `toml:"max-qubits"`
	// Includes lists include files emitted in the merged program header.
	Includes []string `toml:"includes"`
}

// CacheConfig tunes the enrichment disk cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the configuration used when no leqo.toml exists.
func Default() *Config {
	return &Config{
		Compile: CompileConfig{
			Register:  "leqo_reg",
			Strategy:  "weighted",
			Schedule:  true,
			MaxNodes:  10000,
			MaxQubits: 100000,
			Includes:  []string{"stdgates.inc"},
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     ".leqo-cache",
		},
	}
}

// Load reads a leqo.toml, layering it over the defaults. A missing file is
// not an error; unknown keys are.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}
