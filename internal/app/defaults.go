package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultUsersRoot is the parent of every Windows profile directory.
const DefaultUsersRoot = `C:\Users`

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - SCUMGENICS_CONFIG_PATH: config file location (default: <home>/scumgenics.toml)
//   - SCUMGENICS_HOME: base directory for scumgenics data (default: the executable's directory)
//
// The defaults keep everything beside the program so a copied folder carries
// its settings, backups and logs with it.
func GetDefaults() (map[string]string, error) {
	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	configPath := os.Getenv("SCUMGENICS_CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join(baseDir, "scumgenics.toml")
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "logs"),
	}, nil
}

// getBaseDir returns the base directory for scumgenics data, checking
// SCUMGENICS_HOME first, then falling back to the executable's directory.
func getBaseDir() (string, error) {
	if path := os.Getenv("SCUMGENICS_HOME"); path != "" {
		return path, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cannot determine executable location: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
