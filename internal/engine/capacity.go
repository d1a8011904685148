package engine

import (
	"context"
	"fmt"
)

// FreeSpace returns the capacity budget minus the catalog's total size.
func (e *Engine) FreeSpace(ctx context.Context) (int64, error) {
	total, err := e.store.TotalSize(ctx)
	if err != nil {
		return 0, storageFailure(fmt.Errorf("total size: %w", err))
	}
	return e.cfg.CapacityBytes - total, nil
}

// Stats reports store occupancy for the status surface.
type Stats struct {
	Objects       int64
	TotalBytes    int64
	FreeBytes     int64
	CapacityBytes int64
}

// Stats returns current occupancy against the capacity budget.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	total, err := e.store.TotalSize(ctx)
	if err != nil {
		return nil, storageFailure(fmt.Errorf("total size: %w", err))
	}
	count, err := e.store.CountObjects(ctx)
	if err != nil {
		return nil, storageFailure(fmt.Errorf("count objects: %w", err))
	}
	return &Stats{
		Objects:       count,
		TotalBytes:    total,
		FreeBytes:     e.cfg.CapacityBytes - total,
		CapacityBytes: e.cfg.CapacityBytes,
	}, nil
}

// ensureRoom makes room for required bytes, evicting the
// soonest-expired records when needed. Records that have not expired
// are never evicted, no matter the pressure.
func (e *Engine) ensureRoom(ctx context.Context, required int64) error {
	free, err := e.FreeSpace(ctx)
	if err != nil {
		return err
	}
	if free >= required {
		return nil
	}
	shortfall := required - free

	expired, err := e.store.ExpiredBefore(ctx, e.now().Unix())
	if err != nil {
		return storageFailure(fmt.Errorf("expired scan: %w", err))
	}

	var available int64
	for _, candidate := range expired {
		available += candidate.Size
	}
	if available < shortfall {
		// Eviction cannot reach the goal; do not evict anything.
		return capacityExceededf("need %d bytes but only %d expired bytes are reclaimable", shortfall, available)
	}

	// Greedy soonest-expiry-first prefix: the smallest batch that
	// covers the shortfall.
	var batch []string
	var reclaimed int64
	for _, candidate := range expired {
		batch = append(batch, candidate.Hash)
		reclaimed += candidate.Size
		if reclaimed >= shortfall {
			break
		}
	}

	// Metadata first: the catalog is authoritative. A file that
	// outlives its row is leaked bytes, not a served object.
	deleted, err := e.store.DeleteObjects(ctx, batch)
	if err != nil {
		return storageFailure(fmt.Errorf("evict %d records: %w", len(batch), err))
	}
	e.logger.Info("evicted expired objects", "records", deleted, "bytes", reclaimed)

	for _, hash := range batch {
		if err := e.shards.Remove(hash); err != nil {
			e.logger.Error("failed to remove evicted object file", "hash", hash, "error", err)
		}
	}

	// A concurrent write may have consumed the freed space already.
	free, err = e.FreeSpace(ctx)
	if err != nil {
		return err
	}
	if free < required {
		return capacityExceededf("still short %d bytes after eviction", required-free)
	}
	return nil
}
