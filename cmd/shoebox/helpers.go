package main

import (
	"fmt"
	"strconv"

	"shoebox/internal/config"
)

// formatBytes renders a byte count in human units for summaries.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	value := float64(n)
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB"}
	for _, suffix := range suffixes {
		value /= unit
		if value < unit {
			return fmt.Sprintf("%.1f %s", value, suffix)
		}
	}
	return fmt.Sprintf("%.1f EiB", value/unit)
}

// selectArchives narrows the configured archives to the named one, or
// returns all of them when name is empty.
func selectArchives(cfg *config.Config, name string) ([]config.Archive, error) {
	if name == "" {
		if len(cfg.Archives) == 0 {
			return nil, fmt.Errorf("no archives configured; add an [[archive]] block to the config")
		}
		return cfg.Archives, nil
	}
	archive, ok := cfg.ArchiveByName(name)
	if !ok {
		return nil, fmt.Errorf("archive %q is not configured", name)
	}
	return []config.Archive{archive}, nil
}
