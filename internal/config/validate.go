package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Remote credentials are
// deliberately not required here; scan and organize never touch the network,
// so the upload stage checks for a token itself.
func (c *Config) Validate() error {
	if err := c.validateArchives(); err != nil {
		return err
	}
	if err := c.validatePhotos(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateArchives() error {
	seen := make(map[string]struct{}, len(c.Archives))
	for i, archive := range c.Archives {
		if archive.Name == "" {
			return fmt.Errorf("archive[%d].name must be set", i)
		}
		if strings.ContainsAny(archive.Name, "/\\") {
			return fmt.Errorf("archive[%d].name must not contain path separators", i)
		}
		if _, dup := seen[archive.Name]; dup {
			return fmt.Errorf("archive name %q appears more than once", archive.Name)
		}
		seen[archive.Name] = struct{}{}

		switch archive.Parser {
		case ParserSlides:
			if strings.TrimSpace(archive.LookupTable) == "" {
				return fmt.Errorf("archive %q: lookup_table must be set for the slides parser", archive.Name)
			}
		case ParserPortableDrive:
		default:
			return fmt.Errorf("archive %q: unknown parser %q (expected %q or %q)",
				archive.Name, archive.Parser, ParserSlides, ParserPortableDrive)
		}

		if strings.TrimSpace(archive.SourcePath) == "" {
			return fmt.Errorf("archive %q: source_path must be set", archive.Name)
		}
	}
	return nil
}

func (c *Config) validatePhotos() error {
	if strings.TrimSpace(c.Photos.BaseURL) == "" {
		return errors.New("photos.base_url must be set")
	}
	if c.Photos.RequestTimeout <= 0 {
		return errors.New("photos.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.MaxRetries <= 0 {
		return errors.New("upload.max_retries must be positive")
	}
	return nil
}
