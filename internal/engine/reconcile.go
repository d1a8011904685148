package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"hashfs/internal/digest"
)

// ReconcileReport summarizes one orphan sweep over the shard tree.
type ReconcileReport struct {
	// OrphanFiles are files with no catalog row (removed unless dry-run).
	OrphanFiles int64 `json:"orphan_files"`
	// OrphanBytes is the total size of orphan files found.
	OrphanBytes int64 `json:"orphan_bytes"`
	// MissingFiles are catalog rows whose backing file is gone. They
	// are reported, never deleted: the catalog stays authoritative and
	// divergence here points at a bug or external tampering.
	MissingFiles int64 `json:"missing_files"`
	// DryRun reports whether deletions were suppressed.
	DryRun bool `json:"dry_run"`
}

// Reconcile walks the shard tree and removes files that have no catalog
// row, then cross-checks every catalog row for a backing file. Orphan
// files are the accepted residue of crashes between file write and
// metadata insert; this sweep is the operator-facing cleanup for them.
func (e *Engine) Reconcile(ctx context.Context, dryRun bool) (*ReconcileReport, error) {
	report := &ReconcileReport{DryRun: dryRun}

	err := filepath.WalkDir(e.shards.Root(), func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			return nil
		}

		name := entry.Name()
		if digest.ValidateKey(name) != nil || e.shards.Path(name) != path {
			// Not an object file; leave foreign files alone.
			return nil
		}

		known, err := e.store.HasObject(ctx, name)
		if err != nil {
			return fmt.Errorf("catalog check for %s: %w", name, err)
		}
		if known {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}
		report.OrphanFiles++
		report.OrphanBytes += info.Size()
		e.logger.Warn("orphan object file", "hash", name, "size", info.Size(), "dry_run", dryRun)

		if dryRun {
			return nil
		}
		return os.Remove(path)
	})
	if err != nil {
		return nil, storageFailure(fmt.Errorf("reconcile walk: %w", err))
	}

	hashes, err := e.store.AllHashes(ctx)
	if err != nil {
		return nil, storageFailure(fmt.Errorf("reconcile catalog scan: %w", err))
	}
	for _, hash := range hashes {
		if _, err := os.Stat(e.shards.Path(hash)); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return nil, storageFailure(fmt.Errorf("stat %s: %w", hash, err))
		}
		report.MissingFiles++
		e.logger.Error("catalog record has no backing file", "hash", hash)
	}

	return report, nil
}
