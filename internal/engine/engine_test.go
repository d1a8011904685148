package engine

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"hashfs/internal/digest"
	"hashfs/internal/models"
	"hashfs/internal/shard"
	"hashfs/internal/store"
)

func testConfig() Config {
	return Config{
		CapacityBytes:  1 << 20,
		MaxObjectBytes: 100_000_000,
		TTL:            24 * time.Hour,
		PriceBase:      1,
		PricePerMB:     2,
		PriceFallback:  0,
	}
}

func testEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "hashfs.sqlite3"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	shards, err := shard.NewResolver(filepath.Join(dir, "hashroot"))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	return New(st, shards, cfg, slog.Default())
}

func putBytes(t *testing.T, e *Engine, body []byte) string {
	t.Helper()
	key := digest.Compute(body)
	_, err := e.Put(context.Background(), PutRequest{
		Key:            key,
		Data:           body,
		DeclaredLength: int64(len(body)),
	})
	if err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
	return key
}

func TestPutGetRoundTrip(t *testing.T) {
	e := testEngine(t, testConfig())
	ctx := context.Background()

	body := []byte("round trip payload")
	key := digest.Compute(body)

	rec, err := e.Put(ctx, PutRequest{
		Key:            key,
		Data:           body,
		DeclaredLength: int64(len(body)),
		ContentType:    "  ",
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if rec.Hash != key || rec.Size != int64(len(body)) {
		t.Fatalf("unexpected record: %#v", rec)
	}
	if rec.ContentType != "application/octet-stream" {
		t.Fatalf("blank content type not normalized: %q", rec.ContentType)
	}
	if rec.ExpiresAt <= rec.CreatedAt {
		t.Fatalf("expiry %d not after creation %d", rec.ExpiresAt, rec.CreatedAt)
	}

	got, err := e.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got.Data, body) {
		t.Fatalf("body mismatch: got %q", got.Data)
	}
	if got.Record.Size != int64(len(body)) {
		t.Fatalf("size = %d, want %d", got.Record.Size, len(body))
	}
}

func TestPutRejectsMalformedKey(t *testing.T) {
	e := testEngine(t, testConfig())
	ctx := context.Background()

	keys := []string{
		"",
		strings.Repeat("a", 63),
		strings.Repeat("a", 63) + "g",
		strings.ToUpper(strings.Repeat("ab", 32)),
	}
	for _, key := range keys {
		_, err := e.Put(ctx, PutRequest{Key: key, Data: []byte("x"), DeclaredLength: 1})
		if !IsKind(err, KindBadRequest) {
			t.Fatalf("key %q: expected bad request, got %v", key, err)
		}
	}
}

func TestPutRejectsBadDeclaredLength(t *testing.T) {
	cfg := testConfig()
	cfg.MaxObjectBytes = 100
	e := testEngine(t, cfg)
	ctx := context.Background()

	body := []byte("x")
	key := digest.Compute(body)
	for _, length := range []int64{0, -1, 101} {
		_, err := e.Put(ctx, PutRequest{Key: key, Data: body, DeclaredLength: length})
		if !IsKind(err, KindBadRequest) {
			t.Fatalf("length %d: expected bad request, got %v", length, err)
		}
	}
}

func TestPutDigestMismatchLeavesNoState(t *testing.T) {
	e := testEngine(t, testConfig())
	ctx := context.Background()

	body := []byte("actual content")
	wrongKey := digest.Compute([]byte("different content"))

	_, err := e.Put(ctx, PutRequest{Key: wrongKey, Data: body, DeclaredLength: int64(len(body))})
	if !IsKind(err, KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}

	if _, err := os.Stat(e.shards.Path(wrongKey)); !os.IsNotExist(err) {
		t.Fatalf("expected no file left behind, stat err = %v", err)
	}
	rec, err := e.store.GetObject(ctx, wrongKey)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected no metadata record, got %#v", rec)
	}
}

func TestPutLengthMismatchLeavesNoState(t *testing.T) {
	e := testEngine(t, testConfig())
	ctx := context.Background()

	body := make([]byte, 40)
	key := digest.Compute(body)

	_, err := e.Put(ctx, PutRequest{Key: key, Data: body, DeclaredLength: 50})
	if !IsKind(err, KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}

	if _, err := os.Stat(e.shards.Path(key)); !os.IsNotExist(err) {
		t.Fatalf("expected no file left behind, stat err = %v", err)
	}
	rec, err := e.store.GetObject(ctx, key)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected no metadata record, got %#v", rec)
	}
}

func TestPutExistingKeyConflicts(t *testing.T) {
	e := testEngine(t, testConfig())
	ctx := context.Background()

	body := []byte("stored once")
	key := putBytes(t, e, body)

	_, err := e.Put(ctx, PutRequest{Key: key, Data: body, DeclaredLength: int64(len(body))})
	if !IsKind(err, KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Stored object unchanged.
	got, err := e.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got.Data, body) {
		t.Fatalf("object corrupted by rejected put: %q", got.Data)
	}
}

func TestConcurrentSameKeyPuts(t *testing.T) {
	e := testEngine(t, testConfig())
	body := []byte("contended object")
	key := digest.Compute(body)

	const writers = 8
	results := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Put(context.Background(), PutRequest{
				Key:            key,
				Data:           body,
				DeclaredLength: int64(len(body)),
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case IsKind(err, KindConflict):
			conflicts++
		default:
			t.Fatalf("unexpected outcome: %v", err)
		}
	}
	if ok != 1 || conflicts != writers-1 {
		t.Fatalf("ok=%d conflicts=%d, want 1 and %d", ok, conflicts, writers-1)
	}

	got, err := e.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get after race: %v", err)
	}
	if !bytes.Equal(got.Data, body) {
		t.Fatalf("object corrupted by concurrent puts: %q", got.Data)
	}
}

func TestGetUnknownAndMalformed(t *testing.T) {
	e := testEngine(t, testConfig())
	ctx := context.Background()

	_, err := e.Get(ctx, digest.Compute([]byte("never stored")))
	if !IsKind(err, KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = e.Get(ctx, strings.Repeat("a", 63))
	if !IsKind(err, KindBadRequest) {
		t.Fatalf("expected bad request for short key, got %v", err)
	}
	_, err = e.Get(ctx, strings.Repeat("a", 63)+"g")
	if !IsKind(err, KindBadRequest) {
		t.Fatalf("expected bad request for non-hex key, got %v", err)
	}
}

func TestEvictionFreesExpiredObjects(t *testing.T) {
	cfg := testConfig()
	cfg.CapacityBytes = 10
	cfg.TTL = time.Second
	e := testEngine(t, cfg)
	ctx := context.Background()

	t0 := time.Now()
	e.now = func() time.Time { return t0 }

	bodyA := []byte("aaaaaa")
	keyA := putBytes(t, e, bodyA)

	// Two seconds later object A has expired; B's write must evict it.
	e.now = func() time.Time { return t0.Add(2 * time.Second) }

	bodyB := []byte("bbbbbb")
	keyB := digest.Compute(bodyB)
	if _, err := e.Put(ctx, PutRequest{Key: keyB, Data: bodyB, DeclaredLength: 6}); err != nil {
		t.Fatalf("put B: %v", err)
	}

	if _, err := e.Get(ctx, keyA); !IsKind(err, KindNotFound) {
		t.Fatalf("expected A evicted, got %v", err)
	}
	if _, err := os.Stat(e.shards.Path(keyA)); !os.IsNotExist(err) {
		t.Fatalf("expected A's file removed, stat err = %v", err)
	}
	got, err := e.Get(ctx, keyB)
	if err != nil {
		t.Fatalf("get B: %v", err)
	}
	if !bytes.Equal(got.Data, bodyB) {
		t.Fatalf("B corrupted: %q", got.Data)
	}

	total, err := e.store.TotalSize(ctx)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total > cfg.CapacityBytes {
		t.Fatalf("total %d exceeds budget %d", total, cfg.CapacityBytes)
	}
}

func TestEvictionNeverTouchesUnexpired(t *testing.T) {
	cfg := testConfig()
	cfg.CapacityBytes = 10
	e := testEngine(t, cfg)
	ctx := context.Background()

	bodyA := []byte("aaaaaa")
	keyA := putBytes(t, e, bodyA)

	bodyB := []byte("bbbbbb")
	keyB := digest.Compute(bodyB)
	_, err := e.Put(ctx, PutRequest{Key: keyB, Data: bodyB, DeclaredLength: 6})
	if !IsKind(err, KindCapacityExceeded) {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}

	// A survives untouched: a full store with no expired data rejects
	// writes rather than evicting live objects.
	got, err := e.Get(ctx, keyA)
	if err != nil {
		t.Fatalf("get A: %v", err)
	}
	if !bytes.Equal(got.Data, bodyA) {
		t.Fatalf("A corrupted: %q", got.Data)
	}
	if _, err := os.Stat(e.shards.Path(keyB)); !os.IsNotExist(err) {
		t.Fatalf("rejected put left a file behind, stat err = %v", err)
	}
}

func TestPutOwnerIdentity(t *testing.T) {
	e := testEngine(t, testConfig())
	ctx := context.Background()

	body := []byte("owned object")
	key := digest.Compute(body)

	_, err := e.Put(ctx, PutRequest{
		Key:            key,
		Data:           body,
		DeclaredLength: int64(len(body)),
		OwnerIdentity:  "not-base58check!",
	})
	if !IsKind(err, KindBadRequest) {
		t.Fatalf("expected bad request for malformed owner identity, got %v", err)
	}

	rec, err := e.Put(ctx, PutRequest{
		Key:            key,
		Data:           body,
		DeclaredLength: int64(len(body)),
		OwnerIdentity:  "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
	})
	if err != nil {
		t.Fatalf("put with valid owner identity: %v", err)
	}
	if rec.OwnerIdentity != "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa" {
		t.Fatalf("owner identity not recorded: %#v", rec)
	}
}

func TestGetDetectsSizeDivergence(t *testing.T) {
	e := testEngine(t, testConfig())
	ctx := context.Background()

	body := []byte("soon to be truncated")
	key := putBytes(t, e, body)

	if err := os.WriteFile(e.shards.Path(key), body[:4], 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if _, err := e.Get(ctx, key); !IsKind(err, KindStorageFailure) {
		t.Fatalf("expected storage failure for truncated file, got %v", err)
	}

	if err := os.Remove(e.shards.Path(key)); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := e.Get(ctx, key); !IsKind(err, KindStorageFailure) {
		t.Fatalf("expected storage failure for missing file, got %v", err)
	}
}

func TestPriceFor(t *testing.T) {
	e := testEngine(t, testConfig())
	ctx := context.Background()

	rec := &models.ObjectRecord{
		Hash:        strings.Repeat("d", 64),
		Size:        3_000_000,
		CreatedAt:   100,
		ExpiresAt:   200,
		ContentType: "application/octet-stream",
	}
	if err := e.store.InsertObject(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	price, err := e.PriceFor(ctx, rec.Hash)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if price != 7 {
		t.Fatalf("price = %d, want 7 (base 1 + 3 MB * 2)", price)
	}

	small := putBytes(t, e, []byte("tiny"))
	price, err = e.PriceFor(ctx, small)
	if err != nil {
		t.Fatalf("price small: %v", err)
	}
	if price != 3 {
		t.Fatalf("price = %d, want 3 (minimum one megabyte charged)", price)
	}

	price, err = e.PriceFor(ctx, strings.Repeat("e", 64))
	if err != nil {
		t.Fatalf("price unknown: %v", err)
	}
	if price != 0 {
		t.Fatalf("price = %d, want fallback 0", price)
	}
}

func TestReconcileSweepsOrphans(t *testing.T) {
	e := testEngine(t, testConfig())
	ctx := context.Background()

	kept := putBytes(t, e, []byte("catalogued"))

	orphanBody := []byte("orphaned bytes")
	orphanKey := digest.Compute(orphanBody)
	path, err := e.shards.EnsurePath(orphanKey)
	if err != nil {
		t.Fatalf("ensure orphan path: %v", err)
	}
	if err := os.WriteFile(path, orphanBody, 0o644); err != nil {
		t.Fatalf("write orphan: %v", err)
	}

	report, err := e.Reconcile(ctx, true)
	if err != nil {
		t.Fatalf("dry-run reconcile: %v", err)
	}
	if report.OrphanFiles != 1 || report.OrphanBytes != int64(len(orphanBody)) {
		t.Fatalf("dry-run report: %#v", report)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("dry run must not delete, stat err = %v", err)
	}

	report, err = e.Reconcile(ctx, false)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.OrphanFiles != 1 {
		t.Fatalf("report: %#v", report)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("orphan not removed, stat err = %v", err)
	}

	// The catalogued object survives the sweep.
	if _, err := e.Get(ctx, kept); err != nil {
		t.Fatalf("get kept: %v", err)
	}

	// A record without a file is reported, not deleted.
	if err := os.Remove(e.shards.Path(kept)); err != nil {
		t.Fatalf("remove kept file: %v", err)
	}
	report, err = e.Reconcile(ctx, false)
	if err != nil {
		t.Fatalf("reconcile missing: %v", err)
	}
	if report.MissingFiles != 1 {
		t.Fatalf("missing files = %d, want 1", report.MissingFiles)
	}
	if ok, err := e.store.HasObject(ctx, kept); err != nil || !ok {
		t.Fatalf("catalog row must survive reconcile: ok=%v err=%v", ok, err)
	}
}
