package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const uploadColumns = "identity, source_path, size_bytes, album_name, remote_media_id, state, error_message, uploaded_at"

// GetUpload fetches the ledger row for a file identity, or nil when the
// file has never been attempted.
func (s *Store) GetUpload(ctx context.Context, identity string) (*Upload, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+uploadColumns+" FROM upload_ledger WHERE identity = ?", identity)
	upload, err := scanUpload(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query upload ledger: %w", err)
	}
	return upload, nil
}

// PutUpload durably records the outcome for one file, replacing any
// previous row for the same identity.
func (s *Store) PutUpload(ctx context.Context, upload Upload) error {
	timestamp := upload.UploadedAt
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO upload_ledger (`+uploadColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(identity) DO UPDATE SET
             source_path = excluded.source_path,
             size_bytes = excluded.size_bytes,
             album_name = excluded.album_name,
             remote_media_id = excluded.remote_media_id,
             state = excluded.state,
             error_message = excluded.error_message,
             uploaded_at = excluded.uploaded_at`,
		upload.Identity,
		nullableString(upload.SourcePath),
		upload.SizeBytes,
		upload.AlbumName,
		nullableString(upload.RemoteMediaID),
		string(upload.State),
		nullableString(upload.ErrorMessage),
		timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put upload %q: %w", upload.Identity, err)
	}
	return nil
}

// ListFailed returns rows in either failed state, ordered by identity.
func (s *Store) ListFailed(ctx context.Context) ([]Upload, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+uploadColumns+" FROM upload_ledger WHERE state IN (?, ?) ORDER BY identity",
		string(StateFailedTransient), string(StateFailedLink))
	if err != nil {
		return nil, fmt.Errorf("list failed uploads: %w", err)
	}
	defer rows.Close()

	var uploads []Upload
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload row: %w", err)
		}
		uploads = append(uploads, *upload)
	}
	return uploads, rows.Err()
}

// Stats aggregates ledger counters for the run-end summary and the
// ledger stats command.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	rows, err := s.db.QueryContext(ctx,
		"SELECT state, COUNT(1), COALESCE(SUM(size_bytes), 0) FROM upload_ledger GROUP BY state")
	if err != nil {
		return stats, fmt.Errorf("aggregate upload ledger: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			state string
			count int
			bytes int64
		)
		if err := rows.Scan(&state, &count, &bytes); err != nil {
			return stats, fmt.Errorf("scan ledger aggregate: %w", err)
		}
		switch State(state) {
		case StateDone:
			stats.Done = count
			stats.DoneBytes = bytes
		case StateFailedTransient:
			stats.FailedTransient = count
		case StateFailedLink:
			stats.FailedLink = count
		}
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	row := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM album_cache")
	if err := row.Scan(&stats.Albums); err != nil {
		return stats, fmt.Errorf("count albums: %w", err)
	}
	return stats, nil
}

func scanUpload(scanner interface{ Scan(dest ...any) error }) (*Upload, error) {
	var (
		upload      Upload
		sourcePath  sql.NullString
		mediaID     sql.NullString
		errMessage  sql.NullString
		uploadedRaw string
		stateRaw    string
	)
	if err := scanner.Scan(
		&upload.Identity,
		&sourcePath,
		&upload.SizeBytes,
		&upload.AlbumName,
		&mediaID,
		&stateRaw,
		&errMessage,
		&uploadedRaw,
	); err != nil {
		return nil, err
	}
	upload.SourcePath = sourcePath.String
	upload.RemoteMediaID = mediaID.String
	upload.ErrorMessage = errMessage.String
	upload.State = State(stateRaw)
	upload.UploadedAt = parseTimestamp(uploadedRaw)
	return &upload, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
