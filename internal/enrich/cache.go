package enrich

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"leqo/internal/model"
	"leqo/internal/qasm"
)

// Current schema version - increment when cachePayload format changes.
const cacheSchemaVersion uint16 = 1

// Digest is a sha256 content key over a node's type, params and inline
// fragment.
type Digest [sha256.Size]byte

// Cache wraps an Enricher with a msgpack disk cache so repeated lookups of
// the same abstract node skip the backend. Thread-safe for concurrent
// enrichment fan-out.
type Cache struct {
	mu    sync.RWMutex
	dir   string
	inner Enricher
}

// cachePayload is the on-disk record for one enriched node.
type cachePayload struct {
	Schema       uint16
	FragmentJSON []byte
	Meta         Meta
}

// OpenCache initializes a disk cache at dir wrapping inner.
func OpenCache(dir string, inner Enricher) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, inner: inner}, nil
}

// Enrich serves from the cache when possible, falling back to the wrapped
// enricher and recording its answer. Cache read failures fall through to the
// backend instead of failing the compile.
func (c *Cache) Enrich(ctx context.Context, node model.Node) (*qasm.Fragment, Meta, error) {
	key, err := nodeDigest(node)
	if err != nil {
		return nil, Meta{}, err
	}
	if frag, meta, ok := c.get(key); ok {
		return frag, meta, nil
	}
	frag, meta, err := c.inner.Enrich(ctx, node)
	if err != nil {
		return nil, Meta{}, err
	}
	c.put(key, frag, meta)
	return frag, meta, nil
}

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "nodes", hex.EncodeToString(key[:])+".mp")
}

func (c *Cache) get(key Digest) (*qasm.Fragment, Meta, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		return nil, Meta{}, false
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, Meta{}, false
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, Meta{}, false
	}
	var stmts []qasm.Stmt
	if err := json.Unmarshal(payload.FragmentJSON, &stmts); err != nil {
		return nil, Meta{}, false
	}
	return &qasm.Fragment{Stmts: stmts}, payload.Meta, true
}

func (c *Cache) put(key Digest, frag *qasm.Fragment, meta Meta) {
	fragJSON, err := json.Marshal(frag.Stmts)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return
	}
	defer os.Remove(f.Name())

	payload := cachePayload{
		Schema:       cacheSchemaVersion,
		FragmentJSON: fragJSON,
		Meta:         meta,
	}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		f.Close()
		return
	}
	if err := f.Close(); err != nil {
		return
	}
	// Atomic swap-in.
	_ = os.Rename(f.Name(), p)
}

// DropAll invalidates the whole cache, useful after format changes.
func (c *Cache) DropAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := os.RemoveAll(filepath.Join(c.dir, "nodes"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// nodeDigest produces the sha256 content key of one node.
func nodeDigest(node model.Node) (Digest, error) {
	h := sha256.New()
	h.Write([]byte(node.Type))
	h.Write([]byte{0})
	h.Write(node.Params)
	h.Write([]byte{0})
	if len(node.Fragment) > 0 {
		fragJSON, err := json.Marshal(node.Fragment)
		if err != nil {
			return Digest{}, err
		}
		h.Write(fragJSON)
	}
	var key Digest
	copy(key[:], h.Sum(nil))
	return key, nil
}
