package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "GASMAP_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "gasmap.yaml"
	// ConfigDirName is the directory under the XDG and system config roots
	ConfigDirName = "gasmap"

	userConfigFile = "config.yaml"
)

// SearchPaths lists the config file candidates, highest priority first.
// Unset environment variables contribute no candidate.
func SearchPaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths, ConfigFileName)
	paths = append(paths, userConfigPaths()...)
	return append(paths, filepath.Join("/etc", ConfigDirName, userConfigFile))
}

func userConfigPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, ConfigDirName, userConfigFile))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, userConfigFile))
	}
	return paths
}

// FindConfigPath returns the first existing file in SearchPaths, made
// absolute when it is relative. It returns "" when there is none.
func FindConfigPath() string {
	for _, p := range SearchPaths() {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}

// DefaultConfigPath is where `gasmap config init` writes: the XDG location
// if one can be derived, else the working directory.
func DefaultConfigPath() string {
	if paths := userConfigPaths(); len(paths) > 0 {
		return paths[0]
	}
	return ConfigFileName
}
