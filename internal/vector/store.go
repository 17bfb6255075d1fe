package vector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// Store holds vector records in memory and snapshots them to a single
// JSON file. Search is an exact linear scan; corpora are expected to be
// small enough that a scan-per-query is the right trade-off.
type Store struct {
	path string

	mu      sync.Mutex
	records []Record
	index   map[string]int // id -> position in records
	dim     int            // 0 until the first record fixes it
}

// Open creates a store backed by the given snapshot path and loads any
// existing snapshot. A missing snapshot yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		index: make(map[string]int),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Size returns the number of stored records.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Dimension returns the learned embedding dimension, or 0 if the store
// is empty and no dimension has been fixed yet.
func (s *Store) Dimension() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dim
}

// Clear removes all records and resets the learned dimension so a
// differently-dimensioned embedding model can be adopted.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.index = make(map[string]int)
	s.dim = 0
}

// UpsertMany inserts or replaces records by id. The store's dimension is
// fixed by the first record ever inserted; any record in the batch whose
// embedding does not match refuses the entire batch, leaving the store
// untouched. Replacing an id keeps its original insertion position.
func (s *Store) UpsertMany(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dim
	if dim == 0 {
		dim = len(records[0].Embedding)
	}

	// Validate the whole batch before applying any of it.
	for _, rec := range records {
		if len(rec.Embedding) != dim {
			return fmt.Errorf("%w: record %s has dimension %d, store has %d",
				ErrDimensionMismatch, rec.ID, len(rec.Embedding), dim)
		}
	}

	s.dim = dim
	for _, rec := range records {
		if pos, ok := s.index[rec.ID]; ok {
			s.records[pos] = rec
		} else {
			s.index[rec.ID] = len(s.records)
			s.records = append(s.records, rec)
		}
	}
	return nil
}

// Search scores every stored vector against the query by cosine
// similarity and returns at most max(1, topK) results, sorted descending
// by score with ties kept in insertion order. The lock is held only to
// snapshot the record list; scoring and sorting run outside it.
func (s *Store) Search(query []float32, topK int) []Result {
	s.mu.Lock()
	snapshot := make([]Record, len(s.records))
	copy(snapshot, s.records)
	s.mu.Unlock()

	scored := make([]Result, 0, len(snapshot))
	for _, rec := range snapshot {
		scored = append(scored, Result{
			ID:       rec.ID,
			Text:     rec.Text,
			Score:    Cosine(query, rec.Embedding),
			Metadata: copyMetadata(rec.Metadata),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < 1 {
		topK = 1
	}
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// Save writes the dimension and all records to the snapshot path as a
// single JSON blob.
func (s *Store) Save() error {
	s.mu.Lock()
	payload := snapshot{
		Dimension: s.dim,
		Records:   make([]Record, len(s.records)),
	}
	copy(payload.Records, s.records)
	s.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize vector store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write vector store: %w", err)
	}

	log.Debug("Saved vector store", "path", s.path, "records", len(payload.Records))
	return nil
}

// Load replaces the store contents with the snapshot on disk. A missing
// snapshot is a no-op. A corrupt snapshot fails closed: the store starts
// empty rather than propagating a parse error.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read vector store: %w", err)
	}

	var payload snapshot
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Warn("Corrupt vector store snapshot, starting empty", "path", s.path, "error", err)
		s.Clear()
		return nil
	}

	records := make([]Record, 0, len(payload.Records))
	index := make(map[string]int)
	for _, rec := range payload.Records {
		// Required fields; anything malformed is treated as absent.
		if rec.ID == "" || len(rec.Embedding) == 0 {
			log.Warn("Dropping malformed vector record", "id", rec.ID)
			continue
		}
		if payload.Dimension > 0 && len(rec.Embedding) != payload.Dimension {
			log.Warn("Dropping vector record with mismatched dimension", "id", rec.ID)
			continue
		}
		if _, ok := index[rec.ID]; ok {
			continue
		}
		index[rec.ID] = len(records)
		records = append(records, rec)
	}

	dim := payload.Dimension
	if dim <= 0 && len(records) > 0 {
		dim = len(records[0].Embedding)
	}
	if len(records) == 0 {
		dim = 0
	}

	s.mu.Lock()
	s.records = records
	s.index = index
	s.dim = dim
	s.mu.Unlock()

	log.Debug("Loaded vector store", "path", s.path, "records", len(records), "dimension", dim)
	return nil
}

// copyMetadata returns a copy of the metadata map so callers never share
// mutable state with the store.
func copyMetadata(meta map[string]string) map[string]string {
	if meta == nil {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
