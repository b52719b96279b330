package earthquake

import "context"

// ListQuery selects one ordered window of records.
type ListQuery struct {
	Filter Filter
	Sort   Sort
	Skip   int
	Take   int
}

// Store is the persistent record repository. Implementations must order by
// the requested sort key and then by id ascending, and must report a missing
// id as ErrNotFound.
type Store interface {
	List(ctx context.Context, q ListQuery) ([]Record, error)
	Count(ctx context.Context, f Filter) (int, error)
	Get(ctx context.Context, id string) (Record, error)
	Create(ctx context.Context, rec NewRecord) (Record, error)
	Update(ctx context.Context, id string, patch Patch) (Record, error)
	Delete(ctx context.Context, id string) error
}

// BulkStore inserts many pre-validated records at once.
type BulkStore interface {
	CreateMany(ctx context.Context, recs []NewRecord) (int, error)
}
