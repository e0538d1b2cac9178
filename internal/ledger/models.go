package ledger

import "time"

// State records the terminal outcome of one upload attempt.
type State string

const (
	// StateDone means bytes uploaded and linked into the album.
	StateDone State = "done"
	// StateFailedTransient means the upload itself exhausted retries.
	StateFailedTransient State = "failed_transient"
	// StateFailedLink means bytes are stored remotely but the album
	// association failed; a later run repairs the link without
	// re-uploading.
	StateFailedLink State = "failed_link"
)

// Album is one cached album name to remote ID mapping.
type Album struct {
	Name      string
	RemoteID  string
	CreatedAt time.Time
}

// Upload is one ledger row keyed by file identity.
type Upload struct {
	Identity      string
	SourcePath    string
	SizeBytes     int64
	AlbumName     string
	RemoteMediaID string
	State         State
	ErrorMessage  string
	UploadedAt    time.Time
}

// Stats aggregates ledger rows for operator reporting.
type Stats struct {
	Done            int
	FailedTransient int
	FailedLink      int
	Albums          int
	DoneBytes       int64
}
