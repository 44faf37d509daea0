package dataset

import (
	"errors"
	"strings"
	"testing"

	"datagen-service/internal/catalog"
	"datagen-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssembler(t *testing.T) *Assembler {
	t.Helper()

	reg, err := catalog.Default()
	require.NoError(t, err)
	return NewAssembler(reg)
}

func TestRejectsNonPositiveRecordCount(t *testing.T) {
	a := newAssembler(t)

	for _, n := range []int{0, -5} {
		_, err := a.Generate(Config{Seed: 42, RecordCount: n, ErrorFraction: 0.05})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRecordCount), "count %d", n)
	}
}

func TestRejectsOutOfRangeErrorFraction(t *testing.T) {
	a := newAssembler(t)

	for _, f := range []float64{1.2, -0.1} {
		_, err := a.Generate(Config{Seed: 42, RecordCount: 100, ErrorFraction: f})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrErrorFraction), "fraction %g", f)
	}
}

func TestReferenceScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("10k-row scenario")
	}

	a := newAssembler(t)

	table, err := a.Generate(Config{Seed: 42, RecordCount: 10000, ErrorFraction: 0.05})
	require.NoError(t, err)

	// Exactly 500 corrupted rows, 100 per error type.
	require.Len(t, table.Audit, 500)

	byType := map[string]int{}
	for _, c := range table.Audit {
		byType[c.ErrorType]++
	}
	for _, et := range models.ErrorTypes {
		assert.Equal(t, 100, byType[et], "error type %s", et)
	}

	// Table grows only by the duplicate injections.
	assert.Len(t, table.Rows, 10000+byType[models.ErrorTypeDuplicate])

	// Tagged rows match the audit exactly.
	tagged := map[string]string{}
	for _, rec := range table.Rows {
		if rec.ErrorType != "" {
			tagged[rec.OrderID] = rec.ErrorType
		}
	}
	require.Len(t, tagged, 500)
	for _, c := range table.Audit {
		assert.Equal(t, c.ErrorType, tagged[c.OrderID], "order %s", c.OrderID)
	}

	// Carrier marginals on clean rows stay near market share.
	reg, err := catalog.Default()
	require.NoError(t, err)

	var clean int
	counts := map[string]int{}
	for _, rec := range table.Rows {
		if rec.ErrorType != "" {
			continue
		}
		clean++
		counts[rec.Carrier]++
	}
	assert.InDelta(t, 0.28, float64(counts["Estafeta"])/float64(clean), 0.02)
	for _, c := range reg.Carriers {
		assert.InDelta(t, c.Share, float64(counts[c.Name])/float64(clean), 0.02, "carrier %s", c.Name)
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	a := newAssembler(t)
	cfg := Config{Seed: 42, RecordCount: 2000, ErrorFraction: 0.05}

	first, err := a.Generate(cfg)
	require.NoError(t, err)
	second, err := a.Generate(cfg)
	require.NoError(t, err)

	require.Equal(t, first.Audit, second.Audit)
	require.Equal(t, first.Rows, second.Rows)
}

func TestSeedChangesShuffleAndSelection(t *testing.T) {
	a := newAssembler(t)

	first, err := a.Generate(Config{Seed: 1, RecordCount: 500, ErrorFraction: 0.05})
	require.NoError(t, err)
	second, err := a.Generate(Config{Seed: 2, RecordCount: 500, ErrorFraction: 0.05})
	require.NoError(t, err)

	assert.NotEqual(t, first.Rows, second.Rows)
	assert.NotEqual(t, first.Audit, second.Audit)
}

func TestDuplicatesSurviveShuffle(t *testing.T) {
	a := newAssembler(t)

	table, err := a.Generate(Config{Seed: 42, RecordCount: 1000, ErrorFraction: 0.05})
	require.NoError(t, err)

	index := map[string]models.DeliveryRecord{}
	for _, rec := range table.Rows {
		index[rec.OrderID] = rec
	}

	for _, c := range table.Audit {
		if c.ErrorType != models.ErrorTypeDuplicate {
			continue
		}
		dupe, ok := index[c.OrderID]
		require.True(t, ok, "duplicate row %s missing after shuffle", c.OrderID)

		source, ok := index[strings.TrimPrefix(c.OrderID, "DUPE-")]
		require.True(t, ok)
		assert.Equal(t, source.CustomerID, dupe.CustomerID)
		assert.Equal(t, source.DeliveredDate, dupe.DeliveredDate)
		assert.Equal(t, source.Carrier, dupe.Carrier)
	}
}

func TestCleanRowsKeepInvariantsThroughPipeline(t *testing.T) {
	a := newAssembler(t)

	table, err := a.Generate(Config{Seed: 42, RecordCount: 2000, ErrorFraction: 0.05})
	require.NoError(t, err)

	for _, rec := range table.Rows {
		if rec.ErrorType != "" {
			continue
		}
		require.False(t, rec.OrderDate.After(rec.ShippedDate), "order %s", rec.OrderID)
		require.False(t, rec.ShippedDate.After(rec.DeliveredDate), "order %s", rec.OrderID)

		wantDelay := int(rec.DeliveredDate.Sub(rec.PromisedDate).Hours() / 24)
		require.Equal(t, wantDelay, rec.DelayDays, "order %s", rec.OrderID)
		require.Equal(t, wantDelay <= 0, rec.MetPromise, "order %s", rec.OrderID)
	}
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, Config{Seed: 1, RecordCount: 1, ErrorFraction: 0}.Validate())
	assert.NoError(t, Config{Seed: 1, RecordCount: 1, ErrorFraction: 1}.Validate())
	assert.Error(t, Config{Seed: 1, RecordCount: 0, ErrorFraction: 0.05}.Validate())
	assert.Error(t, Config{Seed: 1, RecordCount: 10, ErrorFraction: 1.01}.Validate())
}
