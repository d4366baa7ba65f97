// Package manifest handles ribbon.toml configuration.
package manifest

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/ribbon/settle"
	"github.com/chazu/ribbon/vm"
)

// Manifest represents a ribbon.toml configuration.
type Manifest struct {
	Engine EngineConfig `toml:"engine"`
	Server ServerConfig `toml:"server"`
	Stash  StashConfig  `toml:"stash"`
	Settle SettleConfig `toml:"settle"`

	// Dir is the directory containing the ribbon.toml file (set at load time).
	Dir string `toml:"-"`
}

// EngineConfig bounds program execution.
type EngineConfig struct {
	Fuel int `toml:"fuel"`
}

// ServerConfig configures the RPC server.
type ServerConfig struct {
	Port int `toml:"port"`
}

// StashConfig locates the instruction stash database.
type StashConfig struct {
	Path string `toml:"path"`
}

// SettleConfig configures the acceptance check. Target is a
// hex-encoded SHA-256 hash; empty means the built-in default.
type SettleConfig struct {
	Target string `toml:"target"`
}

// Default returns a manifest with the built-in defaults.
func Default() *Manifest {
	return &Manifest{
		Engine: EngineConfig{Fuel: vm.DefaultFuel},
		Server: ServerConfig{Port: 4567},
		Stash:  StashConfig{Path: "ribbon.db"},
	}
}

// Load parses a ribbon.toml file from the given directory. Missing
// fields fall back to the defaults.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "ribbon.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Default()
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults for fields an explicit zero would break
	if m.Engine.Fuel <= 0 {
		m.Engine.Fuel = vm.DefaultFuel
	}
	if m.Stash.Path == "" {
		m.Stash.Path = "ribbon.db"
	}

	return m, nil
}

// FindAndLoad walks up from startDir to find a ribbon.toml file, then
// loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "ribbon.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// StashPath returns the stash database path resolved against the
// manifest directory.
func (m *Manifest) StashPath() string {
	if m.Dir == "" || filepath.IsAbs(m.Stash.Path) {
		return m.Stash.Path
	}
	return filepath.Join(m.Dir, m.Stash.Path)
}

// TargetHash returns the configured settlement target hash, or the
// built-in default when none is set.
func (m *Manifest) TargetHash() ([32]byte, error) {
	if m.Settle.Target == "" {
		return settle.DefaultTarget, nil
	}
	raw, err := hex.DecodeString(m.Settle.Target)
	if err != nil {
		return [32]byte{}, fmt.Errorf("settle.target is not hex: %w", err)
	}
	if len(raw) != 32 {
		return [32]byte{}, fmt.Errorf("settle.target is %d bytes, want 32", len(raw))
	}
	var h [32]byte
	copy(h[:], raw)
	return h, nil
}
