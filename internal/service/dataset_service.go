package service

import (
	"context"
	"fmt"
	"time"

	"datagen-service/internal/broker"
	"datagen-service/internal/dataset"
	"datagen-service/internal/models"
	"datagen-service/internal/redisclient"
	"datagen-service/internal/store"
	"datagen-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	dateLayout  = "2006-01-02"
	runCacheTTL = 24 * time.Hour
	genLockTTL  = 5 * time.Minute
)

// DatasetService handles dataset generation runs: validation, idempotency,
// the pipeline itself, persistence and event publishing.
type DatasetService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	assembler      *dataset.Assembler
	logger         *zap.Logger
}

// NewDatasetService creates a new dataset service
func NewDatasetService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	assembler *dataset.Assembler,
) *DatasetService {
	return &DatasetService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		assembler:      assembler,
		logger:         util.GetLogger(),
	}
}

// GenerateRequest represents a request to generate a dataset
type GenerateRequest struct {
	Seed          int64    `json:"seed"`
	RecordCount   int      `json:"record_count" binding:"required"`
	ErrorFraction *float64 `json:"error_fraction,omitempty"`
	WindowStart   string   `json:"window_start,omitempty"`
	WindowEnd     string   `json:"window_end,omitempty"`
}

// GenerateResponse represents the outcome of a generation run
type GenerateResponse struct {
	RunID          string `json:"run_id"`
	RowCount       int    `json:"row_count"`
	CorruptedCount int    `json:"corrupted_count"`
	Cached         bool   `json:"cached"`
}

// Config converts the request into a pipeline configuration. Invalid
// window dates are configuration errors.
func (req *GenerateRequest) Config() (dataset.Config, error) {
	cfg := dataset.Config{
		Seed:          req.Seed,
		RecordCount:   req.RecordCount,
		ErrorFraction: dataset.DefaultErrorFraction,
	}
	if req.ErrorFraction != nil {
		cfg.ErrorFraction = *req.ErrorFraction
	}
	if req.WindowStart != "" || req.WindowEnd != "" {
		start, err := time.Parse(dateLayout, req.WindowStart)
		if err != nil {
			return dataset.Config{}, fmt.Errorf("invalid window_start %q: %w", req.WindowStart, err)
		}
		end, err := time.Parse(dateLayout, req.WindowEnd)
		if err != nil {
			return dataset.Config{}, fmt.Errorf("invalid window_end %q: %w", req.WindowEnd, err)
		}
		cfg.WindowStart = start
		cfg.WindowEnd = end
	}
	return cfg, nil
}

// Generate runs the full pipeline for a request. Identical requests are
// idempotent: the generator is deterministic, so a cached run for the same
// parameters is exactly the run a fresh generation would produce.
func (s *DatasetService) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	ctx, span := util.StartSpan(ctx, "DatasetService.Generate")
	defer span.End()

	cfg, err := req.Config()
	if err != nil {
		util.DatasetsFailedTotal.WithLabelValues("invalid_config").Inc()
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		util.DatasetsFailedTotal.WithLabelValues("invalid_config").Inc()
		return nil, err
	}

	cacheKey := redisclient.RunKey(cfg.Seed, cfg.RecordCount, cfg.ErrorFraction, req.WindowStart, req.WindowEnd)

	if runID, err := s.redis.GetRunID(ctx, cacheKey); err != nil {
		s.logger.Warn("Idempotency cache unavailable", zap.Error(err))
	} else if runID != "" {
		run, err := s.store.GetRun(ctx, runID)
		if err == nil {
			util.DatasetsCachedTotal.Inc()
			s.logger.Info("Serving cached run",
				zap.String("run_id", runID),
				zap.Int64("seed", cfg.Seed))
			return &GenerateResponse{
				RunID:          run.ID,
				RowCount:       run.RowCount,
				CorruptedCount: run.CorruptedCount,
				Cached:         true,
			}, nil
		}
		s.logger.Warn("Cached run missing from store, regenerating", zap.String("run_id", runID))
	}

	locked, err := s.redis.AcquireLock(ctx, cacheKey, genLockTTL)
	if err != nil {
		s.logger.Warn("Generation lock unavailable", zap.Error(err))
	} else if !locked {
		return nil, fmt.Errorf("generation already in progress for this configuration")
	} else {
		defer func() {
			if err := s.redis.ReleaseLock(ctx, cacheKey); err != nil {
				s.logger.Warn("Failed to release generation lock", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	table, err := s.assembler.Generate(cfg)
	if err != nil {
		util.DatasetsFailedTotal.WithLabelValues("generation_error").Inc()
		s.publishFailed(ctx, cfg, err)
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	util.GenerationLatency.Observe(time.Since(start).Seconds())
	util.DatasetsGeneratedTotal.Inc()
	util.RecordsGeneratedTotal.Add(float64(cfg.RecordCount))
	for _, c := range table.Audit {
		util.ErrorsInjectedTotal.WithLabelValues(c.ErrorType).Inc()
	}

	run := &models.DatasetRun{
		ID:             uuid.New().String(),
		Seed:           cfg.Seed,
		RecordCount:    cfg.RecordCount,
		ErrorFraction:  cfg.ErrorFraction,
		RowCount:       len(table.Rows),
		CorruptedCount: len(table.Audit),
		Status:         models.RunStatusCompleted,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.CreateRun(ctx, run); err != nil {
		util.DatasetsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to persist run: %w", err)
	}
	if err := s.store.InsertRecords(ctx, run.ID, table.Rows); err != nil {
		util.DatasetsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to persist records: %w", err)
	}
	if err := s.store.InsertAudit(ctx, run.ID, table.Audit); err != nil {
		util.DatasetsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to persist audit: %w", err)
	}

	s.logger.Info("Dataset generated",
		zap.String("run_id", run.ID),
		zap.Int64("seed", cfg.Seed),
		zap.Int("row_count", run.RowCount),
		zap.Int("corrupted_count", run.CorruptedCount))

	if err := s.redis.SetRunID(ctx, cacheKey, run.ID, runCacheTTL); err != nil {
		s.logger.Warn("Failed to cache run id", zap.Error(err))
	}

	event := &models.DatasetCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeDatasetCompleted,
			Timestamp: time.Now(),
		},
		RunID:          run.ID,
		Seed:           run.Seed,
		RecordCount:    run.RecordCount,
		RowCount:       run.RowCount,
		CorruptedCount: run.CorruptedCount,
		ErrorFraction:  run.ErrorFraction,
	}
	if err := s.eventPublisher.PublishDatasetCompleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish DatasetCompleted event", zap.Error(err))
	}

	return &GenerateResponse{
		RunID:          run.ID,
		RowCount:       run.RowCount,
		CorruptedCount: run.CorruptedCount,
	}, nil
}

func (s *DatasetService) publishFailed(ctx context.Context, cfg dataset.Config, cause error) {
	event := &models.DatasetFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeDatasetFailed,
			Timestamp: time.Now(),
		},
		Seed:          cfg.Seed,
		RecordCount:   cfg.RecordCount,
		ErrorFraction: cfg.ErrorFraction,
		Reason:        cause.Error(),
	}
	if err := s.eventPublisher.PublishDatasetFailed(ctx, event); err != nil {
		s.logger.Error("Failed to publish DatasetFailed event", zap.Error(err))
	}
}

// GetRun retrieves run metadata and its corruption audit
func (s *DatasetService) GetRun(ctx context.Context, runID string) (*models.DatasetRun, []models.Corruption, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, nil, err
	}

	audit, err := s.store.GetAudit(ctx, runID)
	if err != nil {
		return nil, nil, err
	}

	return run, audit, nil
}
