package ledger

import (
	"context"
	"fmt"
	"time"
)

// AlbumID looks up the cached remote ID for an album name. The second
// return reports whether the name is cached at all.
func (s *Store) AlbumID(ctx context.Context, name string) (string, bool, error) {
	var id string
	row := s.db.QueryRowContext(ctx, "SELECT remote_album_id FROM album_cache WHERE album_name = ?", name)
	switch err := row.Scan(&id); {
	case err == nil:
		return id, true, nil
	case isNoRows(err):
		return "", false, nil
	default:
		return "", false, fmt.Errorf("query album cache: %w", err)
	}
}

// PutAlbum durably records an album name to remote ID mapping. Upsert:
// seeding an existing name overwrites its ID.
func (s *Store) PutAlbum(ctx context.Context, name, remoteID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO album_cache (album_name, remote_album_id, created_at)
         VALUES (?, ?, ?)
         ON CONFLICT(album_name) DO UPDATE SET remote_album_id = excluded.remote_album_id`,
		name, remoteID, now)
	if err != nil {
		return fmt.Errorf("put album %q: %w", name, err)
	}
	return nil
}

// ListAlbums returns every cached album, ordered by name.
func (s *Store) ListAlbums(ctx context.Context) ([]Album, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT album_name, remote_album_id, created_at FROM album_cache ORDER BY album_name")
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var albums []Album
	for rows.Next() {
		var (
			album      Album
			createdRaw string
		)
		if err := rows.Scan(&album.Name, &album.RemoteID, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan album row: %w", err)
		}
		album.CreatedAt = parseTimestamp(createdRaw)
		albums = append(albums, album)
	}
	return albums, rows.Err()
}
