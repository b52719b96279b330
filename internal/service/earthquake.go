package service

import (
	"context"
	"time"

	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/mq"
	"github.com/septivank/earthquake-catalog/internal/urlstate"
	"go.uber.org/zap"
)

// ResultCache is a shared cache of collection reads keyed by query signature.
type ResultCache interface {
	// Get also returns the generation the lookup saw; Put stores under it.
	Get(ctx context.Context, signature string) (earthquake.PagedResult, string, bool)
	Put(ctx context.Context, generation, signature string, result earthquake.PagedResult)
	Invalidate(ctx context.Context) error
}

// EventPublisher announces committed mutations.
type EventPublisher interface {
	PublishMutation(ctx context.Context, event mq.MutationEvent) error
}

// EarthquakeService fronts the resolvers for the HTTP API and the ingest
// worker. Cache and events are optional and may be nil.
type EarthquakeService struct {
	queries   *earthquake.QueryResolver
	mutations *earthquake.MutationResolver
	cache     ResultCache
	events    EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewEarthquakeService creates a new earthquake service
func NewEarthquakeService(
	queries *earthquake.QueryResolver,
	mutations *earthquake.MutationResolver,
	cache ResultCache,
	events EventPublisher,
	logger *zap.Logger,
) *EarthquakeService {
	return &EarthquakeService{
		queries:   queries,
		mutations: mutations,
		cache:     cache,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// Query resolves one page, reading through the result cache when present.
func (s *EarthquakeService) Query(ctx context.Context, req earthquake.QueryRequest) (earthquake.PagedResult, error) {
	if s.cache == nil {
		return s.queries.Query(ctx, req)
	}

	if _, err := req.Normalize(); err != nil {
		return earthquake.PagedResult{}, err
	}
	signature := urlstate.Signature(req)
	cached, gen, ok := s.cache.Get(ctx, signature)
	if ok {
		s.logger.Debug("query cache hit", zap.String("signature", signature))
		return cached, nil
	}

	result, err := s.queries.Query(ctx, req)
	if err != nil {
		return earthquake.PagedResult{}, err
	}
	s.cache.Put(ctx, gen, signature, result)
	return result, nil
}

// Get fetches a single record
func (s *EarthquakeService) Get(ctx context.Context, id string) (earthquake.Record, error) {
	return s.queries.Get(ctx, id)
}

// Create persists a new record and announces it
func (s *EarthquakeService) Create(ctx context.Context, in earthquake.CreateInput) (earthquake.Record, error) {
	rec, err := s.mutations.Create(ctx, in)
	if err != nil {
		return earthquake.Record{}, err
	}

	s.logger.Info("earthquake created",
		zap.String("id", rec.ID),
		zap.Float64("magnitude", rec.Magnitude),
	)
	s.afterMutation(ctx, mq.NewRecordEvent(mq.EventCreated, rec, s.now()))
	return rec, nil
}

// Update applies a partial update and announces it
func (s *EarthquakeService) Update(ctx context.Context, id string, in earthquake.UpdateInput) (earthquake.Record, error) {
	rec, err := s.mutations.Update(ctx, id, in)
	if err != nil {
		return earthquake.Record{}, err
	}

	s.logger.Info("earthquake updated", zap.String("id", rec.ID))
	s.afterMutation(ctx, mq.NewRecordEvent(mq.EventUpdated, rec, s.now()))
	return rec, nil
}

// Delete removes a record and announces it
func (s *EarthquakeService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.mutations.Delete(ctx, id)
	if err != nil {
		return false, err
	}

	s.logger.Info("earthquake deleted", zap.String("id", id))
	s.afterMutation(ctx, mq.NewDeleteEvent(id, s.now()))
	return deleted, nil
}

// afterMutation runs once the store write has committed. Failures here are
// logged and never undo the write.
func (s *EarthquakeService) afterMutation(ctx context.Context, event mq.MutationEvent) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("failed to invalidate query cache", zap.Error(err))
		}
	}
	if s.events != nil {
		if err := s.events.PublishMutation(ctx, event); err != nil {
			s.logger.Error("failed to publish mutation event",
				zap.Error(err),
				zap.String("type", event.Type),
				zap.String("id", event.ID),
			)
		}
	}
}
