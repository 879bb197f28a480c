// Package config manages autonkit configuration and filesystem paths.
//
// The default root is ~/.autonkit/ containing the simulated SD card (sd/),
// the tuning file (config.yaml), the run history database (runs.db) and log
// files (logs/). Locations can be customized via environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the filesystem paths used by autonkit.
type Paths struct {
	// Root is the base directory for all autonkit data (default: ~/.autonkit)
	Root string

	// SD is the storage root holding plan slot files and drive logs
	SD string

	// Config is the path to the tuning file
	Config string

	// RunsDB is the path to the run history database
	RunsDB string

	// Logs is the directory for log files
	Logs string
}

// DefaultPaths returns the default paths for autonkit.
// Paths can be overridden with environment variables:
// - AUTONKIT_ROOT: Override the root directory
// - AUTONKIT_SD: Point storage at a mounted SD card instead of Root/sd
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("AUTONKIT_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".autonkit")
	}

	p := PathsAt(root)
	if sd := os.Getenv("AUTONKIT_SD"); sd != "" {
		p.SD = sd
	}
	return p, nil
}

// PathsAt returns the layout under root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:   root,
		SD:     filepath.Join(root, "sd"),
		Config: filepath.Join(root, "config.yaml"),
		RunsDB: filepath.Join(root, "runs.db"),
		Logs:   filepath.Join(root, "logs"),
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.Root,
		p.SD,
		p.Logs,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// LogFile returns the path of the log file for the named command.
func (p *Paths) LogFile(name string) string {
	return filepath.Join(p.Logs, name+".log")
}
