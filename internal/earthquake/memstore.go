package earthquake

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store with the same predicate and ordering
// semantics as the Postgres repository.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryStore creates an empty store stamped with the wall clock
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an empty store stamped with now
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		now:     now,
	}
}

func (s *MemoryStore) List(ctx context.Context, q ListQuery) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if q.Filter.Matches(rec) {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return less(matched[i], matched[j], q.Sort)
	})

	if q.Skip >= len(matched) {
		return []Record{}, nil
	}
	end := len(matched)
	if q.Take > 0 && q.Skip+q.Take < end {
		end = q.Skip + q.Take
	}
	return matched[q.Skip:end], nil
}

func (s *MemoryStore) Count(ctx context.Context, f Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rec := range s.records {
		if f.Matches(rec) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Create(ctx context.Context, in NewRecord) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertLocked(in), nil
}

func (s *MemoryStore) CreateMany(ctx context.Context, recs []NewRecord) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, in := range recs {
		s.insertLocked(in)
	}
	return len(recs), nil
}

func (s *MemoryStore) insertLocked(in NewRecord) Record {
	now := s.now().UTC()
	rec := Record{
		ID:        uuid.NewString(),
		Location:  in.Location,
		Magnitude: in.Magnitude,
		Date:      in.Date.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.records[rec.ID] = rec
	return rec
}

func (s *MemoryStore) Update(ctx context.Context, id string, patch Patch) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	if patch.Location != nil {
		rec.Location = *patch.Location
	}
	if patch.Magnitude != nil {
		rec.Magnitude = *patch.Magnitude
	}
	if patch.Date != nil {
		rec.Date = patch.Date.UTC()
	}
	rec.UpdatedAt = s.now().UTC()
	s.records[id] = rec
	return rec, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// less orders by the sort key in the requested direction, then by id
// ascending regardless of direction.
func less(a, b Record, s Sort) bool {
	c := compareField(a, b, s.Field)
	if c != 0 {
		if s.Direction == Asc {
			return c < 0
		}
		return c > 0
	}
	return a.ID < b.ID
}

func compareField(a, b Record, field SortField) int {
	switch field {
	case SortByMagnitude:
		switch {
		case a.Magnitude < b.Magnitude:
			return -1
		case a.Magnitude > b.Magnitude:
			return 1
		}
		return 0
	case SortByLocation:
		return strings.Compare(a.Location, b.Location)
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.Date.Compare(b.Date)
	}
}
