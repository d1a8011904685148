package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hashfs/internal/models"
)

const objectColumns = "hash, size, time_create, time_expire, content_type, pubkey_addr"

// ErrDuplicateHash is returned by InsertObject when a row for the hash
// already exists. Callers rely on it to resolve same-key write races.
var ErrDuplicateHash = errors.New("object hash already exists")

// ExpiredObject is one eviction candidate from an expiry-ordered scan.
type ExpiredObject struct {
	Hash string
	Size int64
}

// GetObject returns the record for hash, or nil when absent.
func (s *Store) GetObject(ctx context.Context, hash string) (*models.ObjectRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+objectColumns+" FROM objects WHERE hash = ?", hash)

	var rec models.ObjectRecord
	var owner sql.NullString
	err := row.Scan(&rec.Hash, &rec.Size, &rec.CreatedAt, &rec.ExpiresAt, &rec.ContentType, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.OwnerIdentity = owner.String
	return &rec, nil
}

// InsertObject inserts one object record. A second insert for the same
// hash fails with ErrDuplicateHash and leaves the existing row intact.
func (s *Store) InsertObject(ctx context.Context, rec *models.ObjectRecord) error {
	if rec == nil {
		return fmt.Errorf("object record is required")
	}

	var owner any
	if rec.OwnerIdentity != "" {
		owner = rec.OwnerIdentity
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO objects("+objectColumns+") VALUES(?, ?, ?, ?, ?, ?)",
		rec.Hash, rec.Size, rec.CreatedAt, rec.ExpiresAt, rec.ContentType, owner)
	if err != nil {
		if isUniqueConstraint(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateHash, rec.Hash)
		}
		return err
	}
	return nil
}

// TotalSize returns the sum of size across all records, zero when the
// catalog is empty.
func (s *Store) TotalSize(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(size), 0) FROM objects").Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// CountObjects returns the number of records in the catalog.
func (s *Store) CountObjects(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM objects").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ObjectSize returns the stored size for hash and whether a record exists.
func (s *Store) ObjectSize(ctx context.Context, hash string) (int64, bool, error) {
	var size int64
	err := s.db.QueryRowContext(ctx, "SELECT size FROM objects WHERE hash = ?", hash).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return size, true, nil
}

// ExpiredBefore returns all records with time_expire below ts, ordered
// ascending by time_expire. Each call issues a fresh query and reflects
// current state.
func (s *Store) ExpiredBefore(ctx context.Context, ts int64) ([]ExpiredObject, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT hash, size FROM objects WHERE time_expire < ? ORDER BY time_expire ASC", ts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []ExpiredObject
	for rows.Next() {
		var e ExpiredObject
		if err := rows.Scan(&e.Hash, &e.Size); err != nil {
			return nil, err
		}
		expired = append(expired, e)
	}
	return expired, rows.Err()
}

// DeleteObjects deletes all listed hashes in one parameterized
// statement and returns the number of rows removed.
func (s *Store) DeleteObjects(ctx context.Context, hashes []string) (int64, error) {
	if len(hashes) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(hashes))
	for _, h := range hashes {
		args = append(args, h)
	}
	query := fmt.Sprintf("DELETE FROM objects WHERE hash IN (%s)", placeholders(len(hashes)))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// HasObject reports whether a record exists for hash.
func (s *Store) HasObject(ctx context.Context, hash string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM objects WHERE hash = ? LIMIT 1", hash).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AllHashes returns every catalog hash. Used by the reconcile sweep to
// cross-check the shard tree against the catalog.
func (s *Store) AllHashes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT hash FROM objects")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func isUniqueConstraint(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
