package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appDirName = "legal-buddy"

// StoragePaths holds the locations of the client's local files
type StoragePaths struct {
	DataDir      string // base application data directory
	ConfigPath   string // config.yaml
	DatabasePath string // durable key/value store
	LogPath      string // rotating log file
	TracePath    string // span export file when tracing is enabled
}

// DetectStoragePaths detects the application data directory based on the operating system
func DetectStoragePaths() (StoragePaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return StoragePaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var dataDir string
	switch runtime.GOOS {
	case "darwin":
		dataDir = filepath.Join(home, "Library/Application Support", appDirName)
	case "linux":
		// Priority: $XDG_CONFIG_HOME then ~/.config
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dataDir = filepath.Join(xdg, appDirName)
		} else {
			dataDir = filepath.Join(home, ".config", appDirName)
		}
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			dataDir = filepath.Join(appData, appDirName)
		} else {
			dataDir = filepath.Join(home, "AppData", "Roaming", appDirName)
		}
	default:
		return StoragePaths{}, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	return pathsFor(dataDir), nil
}

// GetStoragePaths returns the storage paths, honoring a custom location.
// A custom path ending in .db names the database file itself; anything else
// is taken as the data directory.
func GetStoragePaths(customPath string) (StoragePaths, error) {
	if customPath == "" {
		return DetectStoragePaths()
	}

	abs, err := filepath.Abs(customPath)
	if err != nil {
		return StoragePaths{}, fmt.Errorf("failed to resolve storage path: %w", err)
	}

	if strings.HasSuffix(abs, ".db") {
		paths := pathsFor(filepath.Dir(abs))
		paths.DatabasePath = abs
		return paths, nil
	}
	return pathsFor(abs), nil
}

func pathsFor(dataDir string) StoragePaths {
	return StoragePaths{
		DataDir:      dataDir,
		ConfigPath:   filepath.Join(dataDir, "config.yaml"),
		DatabasePath: filepath.Join(dataDir, "legal-buddy.db"),
		LogPath:      filepath.Join(dataDir, "logs", "legal-buddy.log"),
		TracePath:    filepath.Join(dataDir, "logs", "traces.log"),
	}
}

// DatabaseExists checks if the durable store was created already
func (sp StoragePaths) DatabaseExists() bool {
	_, err := os.Stat(sp.DatabasePath)
	return err == nil
}

// ConfigExists checks if a config file is present
func (sp StoragePaths) ConfigExists() bool {
	_, err := os.Stat(sp.ConfigPath)
	return err == nil
}
