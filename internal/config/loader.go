package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "ipmgraph.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/ipmgraph"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger   *slog.Logger
	userPath string
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithUserConfigPath replaces the user config location
func WithUserConfigPath(path string) LoaderOption {
	return func(l *Loader) {
		l.userPath = path
	}
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{logger: logger}
	if home, err := os.UserHomeDir(); err == nil {
		l.userPath = filepath.Join(home, UserConfigDir, UserConfigFile)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/ipmgraph/config.yaml)
// 3. Project config (ipmgraph.yaml in startDir or its parents)
// 4. IPMGRAPH_* environment variables
//
// Command-line flags are applied by the caller on top of the result.
func (l *Loader) Load(startDir string) (*Config, error) {
	config := DefaultConfig()

	if l.userPath != "" {
		if userConfig, err := LoadFromFile(l.userPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", l.userPath))
			config.Merge(userConfig)
		} else if !os.IsNotExist(err) {
			l.logger.Warn("Failed to load user config", slog.String("path", l.userPath), slog.String("error", err.Error()))
		}
	}

	if projectConfigPath := FindProjectConfig(startDir); projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// FindProjectConfig searches for ipmgraph.yaml in dir and its parents
func FindProjectConfig(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
