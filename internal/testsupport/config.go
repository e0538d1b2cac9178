package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"shoebox/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OrganizedDir = filepath.Join(base, "organized")
	cfgVal.Paths.VideosDir = filepath.Join(base, "videos")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Photos.APIToken = "test-token"
	cfgVal.Upload.CallDelayMS = 0
	cfgVal.Upload.RetryDelayMS = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithArchive appends an archive definition whose source path lives
// under the test's temp directory.
func WithArchive(name, parser string, opts ...func(*config.Archive)) ConfigOption {
	return func(b *configBuilder) {
		source := filepath.Join(b.baseDir, "source", name)
		if err := os.MkdirAll(source, 0o755); err != nil {
			b.t.Fatalf("mkdir archive source: %v", err)
		}
		archive := config.Archive{
			Name:              name,
			Parser:            parser,
			SourcePath:        source,
			FolderPrefixLabel: "Photo album",
		}
		for _, opt := range opts {
			opt(&archive)
		}
		b.cfg.Archives = append(b.cfg.Archives, archive)
	}
}

// WithLookupTable writes a slides album mapping CSV and points the named
// archive at it.
func WithLookupTable(archiveName, body string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "lookups", archiveName+".csv")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			b.t.Fatalf("mkdir lookups: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			b.t.Fatalf("write lookup table: %v", err)
		}
		for i := range b.cfg.Archives {
			if b.cfg.Archives[i].Name == archiveName {
				b.cfg.Archives[i].LookupTable = path
				return
			}
		}
		b.t.Fatalf("archive %q not defined before lookup table", archiveName)
	}
}

// WithAPIToken overrides the remote API token on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Photos.APIToken = token
	}
}
