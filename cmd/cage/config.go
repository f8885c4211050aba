package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/faradayio/cage-sub000/internal/engine"
	"github.com/faradayio/cage-sub000/internal/shell/store"
)

// =============================================================================
// Settings
// =============================================================================

// Settings is everything cage reads from cage.yml and the CAGE_* environment.
type Settings struct {
	Project ProjectSettings   `mapstructure:"project"`
	Compose ComposeSettings   `mapstructure:"compose"`
	Docker  DockerSettings    `mapstructure:"docker"`
	Log     LogSettings       `mapstructure:"log"`
	Tokens  map[string]string `mapstructure:"tokens"`
}

// ProjectSettings names the project and its directories.
type ProjectSettings struct {
	// Name is the compose project name. Defaults to the project directory name.
	Name string `mapstructure:"name"`

	// DefaultTarget applies when --target is not given.
	DefaultTarget string `mapstructure:"default_target"`

	// PodsDir, SourceDir and OutputDir are relative to the project root.
	PodsDir   string `mapstructure:"pods_dir"`
	SourceDir string `mapstructure:"source_dir"`
	OutputDir string `mapstructure:"output_dir"`
}

// ComposeSettings controls how cage drives docker-compose.
type ComposeSettings struct {
	Bin         string        `mapstructure:"bin"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`
}

// DockerSettings points cage at the container engine.
type DockerSettings struct {
	Host string `mapstructure:"host"`
}

// LogSettings holds logging configuration.
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Loading
// =============================================================================

// LoadSettings reads cage.yml from the project root, if present, and applies
// CAGE_* environment overrides on top of the defaults.
func LoadSettings(root string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("project.name", filepath.Base(root))
	v.SetDefault("project.default_target", "development")
	v.SetDefault("project.pods_dir", "pods")
	v.SetDefault("project.source_dir", "src")
	v.SetDefault("project.output_dir", ".cage")
	v.SetDefault("compose.bin", engine.DefaultComposeBin)
	v.SetDefault("compose.wait_timeout", 2*time.Minute)
	v.SetDefault("docker.host", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	file := filepath.Join(root, "cage.yml")
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigParseError); ok {
			return nil, fmt.Errorf("could not parse %s: %w", file, err)
		}
		// No cage.yml is fine, defaults plus environment apply.
	}

	v.SetEnvPrefix("CAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("could not unmarshal settings: %w", err)
	}

	return &settings, nil
}

// Layout maps the settings onto the on-disk project layout. The targets
// directory always lives inside the pods directory.
func (s *Settings) Layout(root string) store.Layout {
	l := store.DefaultLayout(root)
	if s.Project.PodsDir != "" {
		l.Pods = filepath.Join(root, s.Project.PodsDir)
		l.Targets = filepath.Join(l.Pods, "targets")
	}
	if s.Project.SourceDir != "" {
		l.Source = filepath.Join(root, s.Project.SourceDir)
	}
	if s.Project.OutputDir != "" {
		l.Output = filepath.Join(root, s.Project.OutputDir)
	}
	return l
}

// FindProjectRoot walks upward from start until it finds a directory holding
// a pods/ subdirectory. Returns start unchanged when nothing matches.
func FindProjectRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, "pods")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger from the settings. Command output goes to
// stdout, so logs go to stderr.
func SetupLogger(settings *Settings) *slog.Logger {
	var level slog.Level
	switch settings.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if settings.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
