// Package store provides a thin bbolt wrapper for dex's local archive.
//
// The archive is written only when the user asks for it (dex store put,
// dex list --store, dex store import) and read only by the commands that
// inspect it. The live catalog never consults it: it is not a cache.
//
// Buckets:
//
//	entries   — archived entries keyed by zero-padded id
//	names     — name → id index over entries
//	species   — archived species metadata keyed by zero-padded id
//	snapshots — saved command lines for reproducible workflows
//	_meta     — internal: schema version, created_at
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/derickschaefer/dex/internal/model"
)

// Current schema version. Bump when bucket layout or key format changes.
const schemaVersion = 1

// Bucket name constants.
var (
	bucketEntries   = []byte("entries")
	bucketNames     = []byte("names")
	bucketSpecies   = []byte("species")
	bucketSnapshots = []byte("snapshots")
	bucketInternal  = []byte("_meta")
)

// AllBuckets lists every user-facing bucket for stats and clear operations.
var AllBuckets = []string{"entries", "names", "species", "snapshots"}

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
// Runs schema migrations on every open.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

func openDB(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}
	return db, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string {
	return s.db.Path()
}

// ─── Migrations ───────────────────────────────────────────────────────────────

// migrate ensures all buckets exist and schema is current.
func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketEntries, bucketNames, bucketSpecies, bucketSnapshots, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(strconv.Itoa(schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// ─── Entries ──────────────────────────────────────────────────────────────────

// idKey zero-pads ids so that bbolt's byte ordering is numeric ordering.
func idKey(id int) []byte {
	return []byte(fmt.Sprintf("%06d", id))
}

// PutEntries archives entries in a single transaction, stamping FetchedAt
// where it is unset. An entry that fails validation aborts the whole batch.
func (s *Store) PutEntries(entries []model.Entry) error {
	now := time.Now().UTC()
	return s.db.Update(func(tx *bolt.Tx) error {
		eb := tx.Bucket(bucketEntries)
		nb := tx.Bucket(bucketNames)
		for _, e := range entries {
			if err := e.Validate(); err != nil {
				return err
			}
			if e.FetchedAt.IsZero() {
				e.FetchedAt = now
			}
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("encoding entry %d: %w", e.ID, err)
			}
			if err := eb.Put(idKey(e.ID), data); err != nil {
				return err
			}
			if err := nb.Put([]byte(e.Name), idKey(e.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutEntry archives a single entry.
func (s *Store) PutEntry(e model.Entry) error {
	return s.PutEntries([]model.Entry{e})
}

// GetEntry retrieves an archived entry by numeric id or exact name.
// Returns (entry, true, nil) if found, (zero, false, nil) if not found.
func (s *Store) GetEntry(idOrName string) (model.Entry, bool, error) {
	var e model.Entry
	found := false
	ident := strings.ToLower(strings.TrimSpace(idOrName))
	err := s.db.View(func(tx *bolt.Tx) error {
		var key []byte
		if id, err := strconv.Atoi(ident); err == nil {
			key = idKey(id)
		} else {
			key = tx.Bucket(bucketNames).Get([]byte(ident))
		}
		if key == nil {
			return nil
		}
		v := tx.Bucket(bucketEntries).Get(key)
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &e)
	})
	if err != nil {
		return model.Entry{}, false, err
	}
	return e, found, nil
}

// ListEntries returns every archived entry in id order. When category is
// non-empty only entries carrying it are returned.
func (s *Store) ListEntries(category model.Category) ([]model.Entry, error) {
	var entries []model.Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEntries).ForEach(func(k, v []byte) error {
			var e model.Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decoding entry %s: %w", k, err)
			}
			if category == "" || e.HasCategory(category) {
				entries = append(entries, e)
			}
			return nil
		})
	})
	return entries, err
}

// DeleteEntry removes an archived entry and its name index row.
func (s *Store) DeleteEntry(idOrName string) (bool, error) {
	e, ok, err := s.GetEntry(idOrName)
	if err != nil || !ok {
		return false, err
	}
	return true, s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketEntries).Delete(idKey(e.ID)); err != nil {
			return err
		}
		return tx.Bucket(bucketNames).Delete([]byte(e.Name))
	})
}

// ─── Species ──────────────────────────────────────────────────────────────────

// PutSpecies archives species metadata.
func (s *Store) PutSpecies(sp model.Species) error {
	data, err := json.Marshal(sp)
	if err != nil {
		return fmt.Errorf("encoding species: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSpecies).Put(idKey(sp.ID), data)
	})
}

// GetSpecies retrieves archived species metadata by id.
func (s *Store) GetSpecies(id int) (model.Species, bool, error) {
	var sp model.Species
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSpecies).Get(idKey(id))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &sp)
	})
	if err != nil {
		return sp, false, err
	}
	return sp, sp.ID != 0, nil
}

// ─── Snapshots ────────────────────────────────────────────────────────────────

// Snapshot represents a saved command for reproducible workflows.
type Snapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CommandLine string    `json:"command_line"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewSnapshot builds a snapshot with a fresh random ID.
func NewSnapshot(name, commandLine string) Snapshot {
	return Snapshot{
		ID:          uuid.NewString(),
		Name:        name,
		CommandLine: commandLine,
		CreatedAt:   time.Now().UTC(),
	}
}

// ShortID is the first block of the snapshot's UUID, used in listings.
func (s Snapshot) ShortID() string {
	if i := strings.IndexByte(s.ID, '-'); i > 0 {
		return s.ID[:i]
	}
	return s.ID
}

// PutSnapshot saves a snapshot. The key is snap:<ID>.
func (s *Store) PutSnapshot(snap Snapshot) error {
	if _, err := uuid.Parse(snap.ID); err != nil {
		return fmt.Errorf("snapshot id %q: %w", snap.ID, err)
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Put([]byte("snap:"+snap.ID), b)
	})
}

// GetSnapshot retrieves a snapshot by full ID, unique ID prefix, or name.
func (s *Store) GetSnapshot(ref string) (Snapshot, bool, error) {
	snaps, err := s.ListSnapshots()
	if err != nil {
		return Snapshot{}, false, err
	}
	var matches []Snapshot
	for _, snap := range snaps {
		if snap.ID == ref {
			return snap, true, nil
		}
		if snap.Name == ref || strings.HasPrefix(snap.ID, ref) {
			matches = append(matches, snap)
		}
	}
	switch len(matches) {
	case 0:
		return Snapshot{}, false, nil
	case 1:
		return matches[0], true, nil
	default:
		return Snapshot{}, false, fmt.Errorf("snapshot reference %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// ListSnapshots returns all snapshots in creation order.
func (s *Store) ListSnapshots() ([]Snapshot, error) {
	var snaps []Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).ForEach(func(k, v []byte) error {
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return err
			}
			snaps = append(snaps, snap)
			return nil
		})
	})
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].CreatedAt.Before(snaps[j].CreatedAt) })
	return snaps, err
}

// DeleteSnapshot removes a snapshot by ID.
func (s *Store) DeleteSnapshot(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Delete([]byte("snap:" + id))
	})
}

// ─── Stats & Maintenance ──────────────────────────────────────────────────────

// BucketStats holds row count and byte size for a single bucket.
type BucketStats struct {
	Name  string
	Count int
	Bytes int64
}

// Stats returns row counts and approximate sizes for all buckets, sorted
// by bucket name.
func (s *Store) Stats() ([]BucketStats, error) {
	var stats []BucketStats
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, name := range AllBuckets {
			b := tx.Bucket([]byte(name))
			if b == nil {
				continue
			}
			var count int
			var bytes int64
			if err := b.ForEach(func(k, v []byte) error {
				count++
				bytes += int64(len(k) + len(v))
				return nil
			}); err != nil {
				return err
			}
			stats = append(stats, BucketStats{Name: name, Count: count, Bytes: bytes})
		}
		return nil
	})
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats, err
}

// ClearBucket deletes all rows in the named bucket. Clearing entries also
// clears the name index.
func (s *Store) ClearBucket(name string) error {
	known := false
	for _, b := range AllBuckets {
		known = known || b == name
	}
	if !known {
		return fmt.Errorf("unknown bucket %q (valid: %s)", name, strings.Join(AllBuckets, ", "))
	}
	names := []string{name}
	if name == "entries" {
		names = append(names, "names")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, n := range names {
			bname := []byte(n)
			if err := tx.DeleteBucket(bname); err != nil {
				return fmt.Errorf("clearing bucket %s: %w", n, err)
			}
			if _, err := tx.CreateBucket(bname); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearAll deletes all rows from every user-facing bucket.
func (s *Store) ClearAll() error {
	for _, name := range AllBuckets {
		if err := s.ClearBucket(name); err != nil {
			return err
		}
	}
	return nil
}

// Compact rewrites the database into a fresh file and swaps it in place,
// returning the file size before and after. The Store stays usable.
func (s *Store) Compact() (before, after int64, err error) {
	path := s.db.Path()
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	before = info.Size()

	tmp := path + ".compact"
	_ = os.Remove(tmp)
	dst, err := openDB(tmp)
	if err != nil {
		return before, 0, err
	}
	if err := bolt.Compact(dst, s.db, 0); err != nil {
		dst.Close()
		os.Remove(tmp)
		return before, 0, fmt.Errorf("compacting: %w", err)
	}
	if err := dst.Close(); err != nil {
		return before, 0, err
	}
	if err := s.db.Close(); err != nil {
		return before, 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		// Reopen the original so the handle stays valid.
		if db, oerr := openDB(path); oerr == nil {
			s.db = db
		}
		return before, 0, fmt.Errorf("replacing database: %w", err)
	}
	db, err := openDB(path)
	if err != nil {
		return before, 0, err
	}
	s.db = db

	info, err = os.Stat(path)
	if err != nil {
		return before, 0, err
	}
	return before, info.Size(), nil
}
