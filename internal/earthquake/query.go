package earthquake

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// QueryResolver resolves paginated, filtered, sorted collection reads. It
// holds no mutable state and is safe for concurrent use.
type QueryResolver struct {
	store Store
}

// NewQueryResolver creates a resolver reading from store
func NewQueryResolver(store Store) *QueryResolver {
	return &QueryResolver{store: store}
}

// Query fetches one window and the unwindowed count for the same filter.
// The two reads run concurrently and are not isolated from each other.
func (r *QueryResolver) Query(ctx context.Context, req QueryRequest) (PagedResult, error) {
	q, err := req.Normalize()
	if err != nil {
		return PagedResult{}, err
	}

	var (
		data  []Record
		count int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = r.store.List(gctx, ListQuery{
			Filter: q.Filter,
			Sort:   q.Sort,
			Skip:   q.Skip,
			Take:   q.Limit,
		})
		return err
	})
	g.Go(func() error {
		var err error
		count, err = r.store.Count(gctx, q.Filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return PagedResult{}, storeError("query earthquakes", err)
	}

	if data == nil {
		data = []Record{}
	}
	return PagedResult{
		Data:    data,
		Count:   count,
		HasMore: q.Skip+len(data) < count,
	}, nil
}

// Get fetches a single record by id.
func (r *QueryResolver) Get(ctx context.Context, id string) (Record, error) {
	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return Record{}, storeError("get earthquake", err)
	}
	return rec, nil
}
