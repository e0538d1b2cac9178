package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeArchives(); err != nil {
		return err
	}
	c.normalizePhotos()
	c.normalizeUpload()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OrganizedDir, err = expandPath(c.Paths.OrganizedDir); err != nil {
		return fmt.Errorf("paths.organized_dir: %w", err)
	}
	if c.Paths.VideosDir, err = expandPath(c.Paths.VideosDir); err != nil {
		return fmt.Errorf("paths.videos_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeArchives() error {
	for i := range c.Archives {
		archive := &c.Archives[i]
		archive.Name = strings.TrimSpace(archive.Name)
		archive.Parser = strings.ToLower(strings.TrimSpace(archive.Parser))
		archive.AlbumPrefix = strings.TrimSpace(archive.AlbumPrefix)

		var err error
		if archive.SourcePath, err = expandPath(archive.SourcePath); err != nil {
			return fmt.Errorf("archive[%d].source_path: %w", i, err)
		}
		if strings.TrimSpace(archive.LookupTable) != "" {
			if archive.LookupTable, err = expandPath(archive.LookupTable); err != nil {
				return fmt.Errorf("archive[%d].lookup_table: %w", i, err)
			}
		}
		if strings.TrimSpace(archive.FolderPrefixLabel) == "" {
			archive.FolderPrefixLabel = defaultPrefixLabel
		}
	}
	return nil
}

func (c *Config) normalizePhotos() {
	c.Photos.BaseURL = strings.TrimRight(strings.TrimSpace(c.Photos.BaseURL), "/")
	if c.Photos.BaseURL == "" {
		c.Photos.BaseURL = defaultPhotosBaseURL
	}
	c.Photos.APIToken = strings.TrimSpace(c.Photos.APIToken)
	if c.Photos.APIToken == "" {
		if value, ok := os.LookupEnv("SHOEBOX_API_TOKEN"); ok {
			c.Photos.APIToken = strings.TrimSpace(value)
		}
	}
	if c.Photos.RequestTimeout <= 0 {
		c.Photos.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeUpload() {
	if c.Upload.CallDelayMS < 0 {
		c.Upload.CallDelayMS = 0
	}
	if c.Upload.MaxRetries <= 0 {
		c.Upload.MaxRetries = defaultMaxRetries
	}
	if c.Upload.RetryDelayMS < 0 {
		c.Upload.RetryDelayMS = 0
	}
	if c.Upload.BatchSize < 0 {
		c.Upload.BatchSize = 0
	}
	folders := make([]string, 0, len(c.Upload.IgnoredFolders))
	seen := make(map[string]struct{}, len(c.Upload.IgnoredFolders))
	for _, name := range c.Upload.IgnoredFolders {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		folders = append(folders, trimmed)
	}
	c.Upload.IgnoredFolders = folders
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
