package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the persisted settings for scumgenics.
type Config struct {
	// SaveFolder overrides the directory holding the main save and the
	// game's backups. Empty means the canonical per-user location.
	SaveFolder string `toml:"save_folder"`
	// GameExecutable is remembered for the user; scumgenics never launches it.
	GameExecutable string         `toml:"game_executable"`
	UsersRoot      string         `toml:"users_root,omitempty"`
	BaseDir        string         `toml:"base_dir"`
	LogDir         string         `toml:"log_dir"`
	Database       DatabaseConfig `toml:"database"`
}

// DatabaseConfig represents configuration for the operation history database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a Config rooted at baseDir with default sub-paths.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "logs"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path, or returns NewConfig(baseDir) when no file
// exists there. Empty fields in a file are filled from the defaults.
func Load(path, baseDir string) (*Config, error) {
	defaults := NewConfig(baseDir)

	cfg, err := ReadFromFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaults, nil
	}
	if err != nil {
		return nil, err
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir = defaults.BaseDir
	}
	if cfg.LogDir == "" {
		cfg.LogDir = defaults.LogDir
	}
	if cfg.Database.Type == "" {
		cfg.Database = defaults.Database
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// The new content is written to a temp file beside path and renamed over it.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	m := &Manager{}
	if err := m.Write(tmp, cfg); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing config %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// Update loads the config at path (or the defaults), applies fn, and writes
// the result back.
func Update(path, baseDir string, fn func(*Config)) (*Config, error) {
	cfg, err := Load(path, baseDir)
	if err != nil {
		return nil, err
	}
	fn(cfg)
	if err := writeToFile(path, cfg); err != nil {
		return nil, fmt.Errorf("updating config: %w", err)
	}
	return cfg, nil
}

// SetSaveFolder persists a custom save folder. The folder must exist.
func SetSaveFolder(path, baseDir, folder string) (*Config, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("resolving save folder: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("checking save folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("save folder %s is not a directory", abs)
	}
	return Update(path, baseDir, func(c *Config) { c.SaveFolder = abs })
}

// ClearSaveFolder removes the custom save folder so the canonical location is used.
func ClearSaveFolder(path, baseDir string) (*Config, error) {
	return Update(path, baseDir, func(c *Config) { c.SaveFolder = "" })
}

// SetGameExecutable persists the game executable path. The file must exist.
func SetGameExecutable(path, baseDir, exe string) (*Config, error) {
	abs, err := filepath.Abs(exe)
	if err != nil {
		return nil, fmt.Errorf("resolving game executable: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("checking game executable: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("game executable %s is not a regular file", abs)
	}
	return Update(path, baseDir, func(c *Config) { c.GameExecutable = abs })
}

// ClearGameExecutable forgets the game executable path.
func ClearGameExecutable(path, baseDir string) (*Config, error) {
	return Update(path, baseDir, func(c *Config) { c.GameExecutable = "" })
}
