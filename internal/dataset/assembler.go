// Package dataset orchestrates the generation pipeline: synthesis,
// seasonality, error injection and the final seeded shuffle. The output is
// bit-for-bit reproducible for a given seed and record count.
package dataset

import (
	"errors"
	"fmt"
	"time"

	"datagen-service/internal/catalog"
	"datagen-service/internal/inject"
	"datagen-service/internal/models"
	"datagen-service/internal/rng"
	"datagen-service/internal/seasonal"
	"datagen-service/internal/synth"
)

// ShuffleStage is the sub-stream label for the final row shuffle.
const ShuffleStage = "shuffle"

// Configuration errors, wrapped with parameter context.
var (
	ErrRecordCount   = errors.New("record count must be positive")
	ErrErrorFraction = errors.New("error fraction must be within [0,1]")
)

// DefaultErrorFraction matches the study design: 5% of rows corrupted.
const DefaultErrorFraction = 0.05

// Config drives one generation run.
type Config struct {
	Seed          int64
	RecordCount   int
	ErrorFraction float64
	WindowStart   time.Time
	WindowEnd     time.Time
}

// Validate checks the configuration before any work is done.
func (c Config) Validate() error {
	if c.RecordCount <= 0 {
		return fmt.Errorf("dataset: %w: got %d", ErrRecordCount, c.RecordCount)
	}
	if c.ErrorFraction < 0 || c.ErrorFraction > 1 {
		return fmt.Errorf("dataset: %w: got %g", ErrErrorFraction, c.ErrorFraction)
	}
	return nil
}

// withDefaults fills the analysis window when the caller left it empty.
func (c Config) withDefaults() Config {
	if c.WindowStart.IsZero() || c.WindowEnd.IsZero() {
		c.WindowStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		c.WindowEnd = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	return c
}

// Assembler runs the pipeline over a validated catalog.
type Assembler struct {
	reg *catalog.Registry
}

// NewAssembler creates an assembler. The registry must already be
// validated (catalog.Default does this).
func NewAssembler(reg *catalog.Registry) *Assembler {
	return &Assembler{reg: reg}
}

// Generate produces the finished table and its corruption audit. Each
// stage draws from its own seed-derived sub-stream, and each record's
// synthesis stream is derived from (seed, index), so the result does not
// depend on generation order.
func (a *Assembler) Generate(cfg Config) (*models.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	ctx := rng.New(cfg.Seed)

	s, err := synth.New(a.reg, cfg.WindowStart, cfg.WindowEnd)
	if err != nil {
		return nil, err
	}

	rows := make([]models.DeliveryRecord, cfg.RecordCount)
	for i := range rows {
		rows[i] = s.Record(ctx.RecordStream(synth.Stage, i), i)
	}

	mod := seasonal.New(a.reg)
	seasonStream := ctx.Stream(seasonal.Stage)
	for i := range rows {
		mod.Apply(seasonStream, &rows[i])
	}

	injector := inject.New(a.reg, cfg.ErrorFraction)
	rows, audit, err := injector.Inject(ctx.Stream(inject.Stage), rows)
	if err != nil {
		return nil, err
	}

	shuffleStream := ctx.Stream(ShuffleStage)
	shuffleStream.Shuffle(len(rows), func(i, j int) {
		rows[i], rows[j] = rows[j], rows[i]
	})

	return &models.Table{Rows: rows, Audit: audit}, nil
}
