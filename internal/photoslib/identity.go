package photoslib

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"shoebox/internal/services"
)

// LoadOrCreateClientID reads the persisted client identifier, creating
// and durably writing a fresh UUID on first use. The identifier is what
// ties remote albums to this installation, so it must survive restarts.
func LoadOrCreateClientID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if _, parseErr := uuid.Parse(id); parseErr == nil {
			return id, nil
		}
		return "", services.Wrap(services.ErrConfiguration, "photoslib", "load client id",
			path+" does not contain a valid identifier", nil)
	}
	if !os.IsNotExist(err) {
		return "", services.Wrap(services.ErrConfiguration, "photoslib", "load client id", "read "+path, err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "photoslib", "create client id", "create state directory", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "photoslib", "create client id", "write "+path, err)
	}
	return id, nil
}
