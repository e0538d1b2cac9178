package naming

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"shoebox/internal/services"
)

// AlbumEntry is one row of the slides album lookup table.
type AlbumEntry struct {
	Group int
	Name  string
	Title string
}

// LookupTable maps slide album numbers to album names and titles.
type LookupTable struct {
	entries map[int]AlbumEntry
}

// LoadLookupTable reads a CSV album mapping with header columns
// group,name,title (case-insensitive). Duplicate group numbers and
// malformed rows are fatal: a broken table silently misfiles photos.
func LoadLookupTable(path string) (*LookupTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "naming", "load lookup table", "open album mapping", err)
	}
	defer file.Close()

	table, err := parseLookupTable(file)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "naming", "load lookup table", fmt.Sprintf("parse %s", path), err)
	}
	return table, nil
}

func parseLookupTable(r io.Reader) (*LookupTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"group", "name", "title"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	entries := map[int]AlbumEntry{}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		group, err := strconv.Atoi(strings.TrimSpace(row[cols["group"]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: group is not a number: %q", line, row[cols["group"]])
		}
		name := strings.TrimSpace(row[cols["name"]])
		title := strings.TrimSpace(row[cols["title"]])
		if name == "" || title == "" {
			return nil, fmt.Errorf("row %d: empty name or title for group %d", line, group)
		}
		if _, exists := entries[group]; exists {
			return nil, fmt.Errorf("row %d: duplicate group %d", line, group)
		}
		entries[group] = AlbumEntry{Group: group, Name: name, Title: title}
	}

	return &LookupTable{entries: entries}, nil
}

// Resolve returns the entry for an album number.
func (t *LookupTable) Resolve(group int) (AlbumEntry, bool) {
	entry, ok := t.entries[group]
	return entry, ok
}

// Len reports the number of mapped album numbers.
func (t *LookupTable) Len() int {
	return len(t.entries)
}
