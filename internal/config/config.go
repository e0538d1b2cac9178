package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Parser kinds understood by the scanner. Adding an archive convention means
// adding a constant here plus one parser implementation in internal/naming.
const (
	ParserSlides        = "slides"
	ParserPortableDrive = "portable_drive"
)

// Paths contains directory configuration.
type Paths struct {
	OrganizedDir string `toml:"organized_dir"`
	VideosDir    string `toml:"videos_dir"`
	StateDir     string `toml:"state_dir"`
	LogDir       string `toml:"log_dir"`
}

// Archive describes one source tree and the naming convention it follows.
type Archive struct {
	Name              string `toml:"name"`
	Parser            string `toml:"parser"`
	SourcePath        string `toml:"source_path"`
	AlbumPrefix       string `toml:"album_prefix"`
	LookupTable       string `toml:"lookup_table"`
	FolderPrefixLabel string `toml:"folder_prefix_label"`
}

// Photos contains configuration for the remote photo-library service.
type Photos struct {
	BaseURL        string `toml:"base_url"`
	APIToken       string `toml:"api_token"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Upload contains pacing and resume configuration for the upload stage.
type Upload struct {
	CallDelayMS          int      `toml:"call_delay_ms"`
	MaxRetries           int      `toml:"max_retries"`
	RetryDelayMS         int      `toml:"retry_delay_ms"`
	BatchSize            int      `toml:"batch_size"`
	RateLimitUploadsOnly bool     `toml:"rate_limit_uploads_only"`
	IgnoredFolders       []string `toml:"ignored_folders"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for shoebox.
//
// Configuration sections by subsystem:
//   - Paths: organized/video output trees plus durable state and log dirs
//   - Archives: one entry per source tree with its parser and options
//   - Photos: remote photo-library endpoint and credentials
//   - Upload: rate limiting, retries, batch cap, ignored folders
//   - Logging: log format and level
type Config struct {
	Paths    Paths     `toml:"paths"`
	Archives []Archive `toml:"archive"`
	Photos   Photos    `toml:"photos"`
	Upload   Upload    `toml:"upload"`
	Logging  Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shoebox/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shoebox.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories every stage depends on. Source
// archive trees are read-only collaborators and are never created here.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OrganizedDir, c.Paths.VideosDir, c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ArchiveByName returns the archive configuration matching name.
func (c *Config) ArchiveByName(name string) (Archive, bool) {
	for _, archive := range c.Archives {
		if archive.Name == name {
			return archive, true
		}
	}
	return Archive{}, false
}

// DatabasePath returns the location of the album cache / upload ledger database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "shoebox.db")
}

// LockPath returns the location of the exclusive run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "shoebox.lock")
}

// ClientIDPath returns the location of the persisted remote client identifier.
func (c *Config) ClientIDPath() string {
	return filepath.Join(c.Paths.StateDir, "client_id")
}

// IgnoredFolderSet returns the configured ignored folder names as a set.
// Matching is exact and case-sensitive.
func (c *Config) IgnoredFolderSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Upload.IgnoredFolders))
	for _, name := range c.Upload.IgnoredFolders {
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
