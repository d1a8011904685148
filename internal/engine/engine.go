// Package engine orchestrates object reads and writes: content
// verification, sharded file placement, catalog bookkeeping, and
// capacity-driven eviction.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"hashfs/internal/digest"
	"hashfs/internal/identity"
	"hashfs/internal/models"
	"hashfs/internal/shard"
	"hashfs/internal/store"
)

const defaultContentType = "application/octet-stream"

// Config carries the process-wide storage policy, fixed at startup.
type Config struct {
	// CapacityBytes is the budget for the sum of all stored object sizes.
	CapacityBytes int64
	// MaxObjectBytes bounds a single object payload.
	MaxObjectBytes int64
	// TTL is the fixed offset from creation to expiry.
	TTL time.Duration
	// Pricing oracle parameters, in the payment collaborator's unit.
	PriceBase     int64
	PricePerMB    int64
	PriceFallback int64
}

// Engine is one storage-engine instance: a catalog handle plus a shard
// root, constructed at process start and shared by all request handlers.
type Engine struct {
	store  *store.Store
	shards *shard.Resolver
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates an engine over an opened catalog and shard resolver.
func New(st *store.Store, shards *shard.Resolver, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  st,
		shards: shards,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// PutRequest is one validated-at-the-boundary write request.
type PutRequest struct {
	Key            string
	Data           []byte
	DeclaredLength int64
	ContentType    string
	OwnerIdentity  string
}

// GetResult is a successful read: the bytes plus the catalog record
// they were stored under.
type GetResult struct {
	Data   []byte
	Record *models.ObjectRecord
}

// Put stores one object under its content hash. Validation failures
// leave no state behind; a duplicate key is reported as a conflict
// without touching the existing object.
func (e *Engine) Put(ctx context.Context, req PutRequest) (*models.ObjectRecord, error) {
	if err := digest.ValidateKey(req.Key); err != nil {
		return nil, badRequestf("invalid key: %v", err)
	}
	if req.DeclaredLength <= 0 || req.DeclaredLength > e.cfg.MaxObjectBytes {
		return nil, badRequestf("declared length %d outside (0, %d]", req.DeclaredLength, e.cfg.MaxObjectBytes)
	}

	if err := e.ensureRoom(ctx, req.DeclaredLength); err != nil {
		return nil, err
	}

	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	if req.OwnerIdentity != "" {
		if err := identity.ValidatePKH(req.OwnerIdentity); err != nil {
			return nil, badRequestf("invalid owner identity: %v", err)
		}
	}

	path, err := e.shards.EnsurePath(req.Key)
	if err != nil {
		return nil, storageFailure(err)
	}

	// O_EXCL create doubles as the conflict detector: exactly one of
	// two concurrent same-key writers can create the file.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, conflictf("object %s already stored", req.Key)
		}
		return nil, storageFailure(fmt.Errorf("create %s: %w", path, err))
	}

	discard := func() {
		_ = f.Close()
		_ = os.Remove(path)
	}

	if int64(len(req.Data)) != req.DeclaredLength {
		discard()
		return nil, badRequestf("body length %d does not match declared length %d", len(req.Data), req.DeclaredLength)
	}
	if err := digest.Verify(req.Data, req.Key); err != nil {
		discard()
		return nil, badRequestf("%v", err)
	}

	if _, err := f.Write(req.Data); err != nil {
		discard()
		return nil, storageFailure(fmt.Errorf("write %s: %w", path, err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, storageFailure(fmt.Errorf("close %s: %w", path, err))
	}

	now := e.now().Unix()
	rec := &models.ObjectRecord{
		Hash:          req.Key,
		Size:          req.DeclaredLength,
		CreatedAt:     now,
		ExpiresAt:     now + int64(e.cfg.TTL/time.Second),
		ContentType:   contentType,
		OwnerIdentity: req.OwnerIdentity,
	}

	if err := e.store.InsertObject(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicateHash) {
			// Lost the catalog race to a concurrent identical-key
			// write. The other writer's bytes are identical by hash,
			// so the file just written stays.
			return nil, conflictf("object %s already stored", req.Key)
		}
		// Keep file and metadata in step: no record, no file.
		_ = os.Remove(path)
		return nil, storageFailure(fmt.Errorf("insert metadata for %s: %w", req.Key, err))
	}

	return rec, nil
}

// Get reads one object by key. A record whose backing file is missing
// or mis-sized is a storage failure, never silently served.
func (e *Engine) Get(ctx context.Context, key string) (*GetResult, error) {
	if err := digest.ValidateKey(key); err != nil {
		return nil, badRequestf("invalid key: %v", err)
	}

	rec, err := e.store.GetObject(ctx, key)
	if err != nil {
		return nil, storageFailure(fmt.Errorf("catalog lookup for %s: %w", key, err))
	}
	if rec == nil {
		return nil, notFoundf("object %s not found", key)
	}

	path := e.shards.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Error("catalog record has no readable file", "hash", key, "path", path, "error", err)
		return nil, storageFailure(fmt.Errorf("read %s: %w", path, err))
	}
	if int64(len(data)) != rec.Size {
		e.logger.Error("stored file size diverges from catalog", "hash", key, "file_size", len(data), "catalog_size", rec.Size)
		return nil, storageFailuref("object %s: file size %d does not match recorded size %d", key, len(data), rec.Size)
	}

	return &GetResult{Data: data, Record: rec}, nil
}
