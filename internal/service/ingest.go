package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/logging"
	"github.com/septivank/earthquake-catalog/internal/validator"
	"go.uber.org/zap"
)

// IngestMessage is a batch of raw readings from an upstream seismic feed
type IngestMessage struct {
	RequestID string         `json:"request_id"`
	Source    string         `json:"source"`
	Records   []IngestRecord `json:"records"`
}

// IngestRecord is one reading as delivered by a feed
type IngestRecord struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Magnitude float64  `json:"magnitude"`
	DateTime  string   `json:"date_time"`
}

// IngestResult summarizes one processed message
type IngestResult struct {
	Created int
	Invalid int
}

// IngestService turns feed messages into catalogue records
type IngestService struct {
	earthquakes *EarthquakeService
	logger      *zap.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(earthquakes *EarthquakeService, logger *zap.Logger) *IngestService {
	return &IngestService{earthquakes: earthquakes, logger: logger}
}

// ProcessMessage is the consumer handler. Invalid readings are skipped; an
// unreadable message or an unavailable store fails the whole message.
func (s *IngestService) ProcessMessage(ctx context.Context, body []byte) error {
	_, err := s.Ingest(ctx, body)
	return err
}

// Ingest creates a record for every valid reading in body.
func (s *IngestService) Ingest(ctx context.Context, body []byte) (IngestResult, error) {
	var msg IngestMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return IngestResult{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	if msg.RequestID == "" {
		msg.RequestID = uuid.NewString()
	}
	reqLogger := logging.WithRequestID(s.logger, msg.RequestID)
	reqLogger.Info("processing ingest message",
		zap.String("source", msg.Source),
		zap.Int("record_count", len(msg.Records)),
	)

	var result IngestResult
	for i, raw := range msg.Records {
		if raw.Latitude == nil || raw.Longitude == nil {
			result.Invalid++
			reqLogger.Warn("skipping reading without coordinates", zap.Int("index", i))
			continue
		}

		if err := validator.CheckCoordinates(*raw.Latitude, *raw.Longitude); err != nil {
			result.Invalid++
			reqLogger.Warn("skipping invalid reading", zap.Int("index", i), zap.Error(err))
			continue
		}

		_, err := s.earthquakes.Create(ctx, earthquake.CreateInput{
			Location:  validator.FormatCoordinates(*raw.Latitude, *raw.Longitude),
			Magnitude: raw.Magnitude,
			Date:      raw.DateTime,
		})
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, earthquake.ErrStoreUnavailable), errors.Is(err, context.Canceled):
			reqLogger.Error("store unavailable during ingest",
				zap.Error(err),
				zap.Int("created", result.Created),
			)
			return result, fmt.Errorf("failed to ingest reading %d: %w", i, err)
		default:
			result.Invalid++
			reqLogger.Warn("skipping invalid reading",
				zap.Int("index", i),
				zap.String("code", earthquake.Code(err)),
				zap.Error(err),
			)
		}
	}

	reqLogger.Info("ingest message processed",
		zap.Int("created", result.Created),
		zap.Int("invalid", result.Invalid),
	)
	return result, nil
}
