package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FileBinding maps one (stem, extension) pair of a user to a blob key.
// Extension is empty for names without a dot.
type FileBinding struct {
	ID        uuid.UUID
	Username  string
	Stem      string
	Extension string
	BlobKey   string
	SizeBytes int64
	UpdatedAt time.Time
}

// UpsertFileBinding points (username, stem, extension) at blobKey,
// replacing any previous binding for the same pair.
func (s *Store) UpsertFileBinding(ctx context.Context, username, stem, extension, blobKey string, sizeBytes int64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_files (id, username, stem, extension, blob_key, size_bytes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (username, stem, extension)
		DO UPDATE SET blob_key = EXCLUDED.blob_key, size_bytes = EXCLUDED.size_bytes, updated_at = now()
	`, uuid.New(), username, stem, extension, blobKey, sizeBytes)
	return err
}

func (s *Store) GetFileBinding(ctx context.Context, username, stem, extension string) (FileBinding, error) {
	var f FileBinding
	err := s.db.QueryRow(ctx, `
		SELECT id, username, stem, extension, blob_key, size_bytes, updated_at
		FROM user_files
		WHERE username = $1 AND stem = $2 AND extension = $3
	`, username, stem, extension).Scan(
		&f.ID, &f.Username, &f.Stem, &f.Extension, &f.BlobKey, &f.SizeBytes, &f.UpdatedAt,
	)
	if err != nil {
		return FileBinding{}, err
	}
	return f, nil
}

func (s *Store) ListFileBindings(ctx context.Context, username string) ([]FileBinding, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, username, stem, extension, blob_key, size_bytes, updated_at
		FROM user_files
		WHERE username = $1
		ORDER BY stem, extension
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var files []FileBinding
	for rows.Next() {
		var f FileBinding
		if err := rows.Scan(&f.ID, &f.Username, &f.Stem, &f.Extension, &f.BlobKey, &f.SizeBytes, &f.UpdatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
