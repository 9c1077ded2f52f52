package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath resolves SAKHI_RUNTIME_PATH, relative paths are taken from the home directory.
func GetRuntimePath() string {
	path := os.Getenv("SAKHI_RUNTIME_PATH")
	if path == "" {
		path = ".sakhi"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}

func GetEnvPath() string {
	return filepath.Join(GetRuntimePath(), ".env")
}
