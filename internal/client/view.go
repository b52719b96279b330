package client

import (
	"context"
	"sync"

	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/urlstate"
	"go.uber.org/zap"
)

// API is the remote catalogue a View reads and writes.
type API interface {
	Query(ctx context.Context, req earthquake.QueryRequest) (earthquake.PagedResult, error)
	Create(ctx context.Context, in earthquake.CreateInput) (earthquake.Record, error)
	Update(ctx context.Context, id string, in earthquake.UpdateInput) (earthquake.Record, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// View binds the request on screen to its cached page. Mutations patch the
// page that was active when they were issued.
type View struct {
	api    API
	sync   *Synchronizer
	logger *zap.Logger

	mu  sync.Mutex
	req earthquake.QueryRequest
}

// NewView creates a view starting at req
func NewView(api API, s *Synchronizer, req earthquake.QueryRequest, logger *zap.Logger) *View {
	return &View{api: api, sync: s, req: req, logger: logger}
}

// Request returns the request on screen.
func (v *View) Request() earthquake.QueryRequest {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.req
}

// Load activates the current request and fetches its page.
func (v *View) Load(ctx context.Context) (earthquake.PagedResult, error) {
	return v.navigate(ctx, func(req earthquake.QueryRequest) earthquake.QueryRequest { return req })
}

// SetFilter replaces the filter and returns to the first page.
func (v *View) SetFilter(ctx context.Context, f earthquake.Filter) (earthquake.PagedResult, error) {
	return v.navigate(ctx, func(req earthquake.QueryRequest) earthquake.QueryRequest {
		return urlstate.WithFilter(req, f)
	})
}

// SetPage moves to page.
func (v *View) SetPage(ctx context.Context, page int) (earthquake.PagedResult, error) {
	return v.navigate(ctx, func(req earthquake.QueryRequest) earthquake.QueryRequest {
		return urlstate.WithPage(req, page)
	})
}

// SetSort changes the order.
func (v *View) SetSort(ctx context.Context, s earthquake.Sort) (earthquake.PagedResult, error) {
	return v.navigate(ctx, func(req earthquake.QueryRequest) earthquake.QueryRequest {
		return urlstate.WithSort(req, s)
	})
}

// Current returns the page on screen, if it has been loaded.
func (v *View) Current() (earthquake.PagedResult, bool) {
	return v.sync.Snapshot(v.sync.Active())
}

// Create adds a record and surfaces it at the top of the page it was
// issued from.
func (v *View) Create(ctx context.Context, in earthquake.CreateInput) (earthquake.Record, error) {
	signature := v.sync.Active()
	rec, err := v.api.Create(ctx, in)
	if err != nil {
		return earthquake.Record{}, err
	}
	v.sync.ApplyCreate(signature, rec)
	return rec, nil
}

// Update changes a record in place. When the record is not on the page it
// was issued from, the page is refetched if it is still on screen.
func (v *View) Update(ctx context.Context, id string, in earthquake.UpdateInput) (earthquake.Record, error) {
	signature := v.sync.Active()
	rec, err := v.api.Update(ctx, id, in)
	if err != nil {
		return earthquake.Record{}, err
	}
	if !v.sync.ApplyUpdate(signature, rec) && v.sync.Active() == signature {
		if _, err := v.Load(ctx); err != nil {
			v.logger.Warn("refetch after update failed", zap.String("id", id), zap.Error(err))
		}
	}
	return rec, nil
}

// Delete removes a record from the page it was issued from.
func (v *View) Delete(ctx context.Context, id string) (bool, error) {
	signature := v.sync.Active()
	deleted, err := v.api.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	v.sync.ApplyDelete(signature, id)
	return deleted, nil
}

func (v *View) navigate(ctx context.Context, change func(earthquake.QueryRequest) earthquake.QueryRequest) (earthquake.PagedResult, error) {
	v.mu.Lock()
	v.req = change(v.req)
	req := v.req
	signature := urlstate.Signature(req)
	v.sync.Activate(signature)
	v.mu.Unlock()

	result, err := v.api.Query(ctx, req)
	if err != nil {
		return earthquake.PagedResult{}, err
	}
	v.sync.Store(signature, result)
	return result.Clone(), nil
}
