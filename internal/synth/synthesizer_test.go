package synth

import (
	"testing"
	"time"

	"datagen-service/internal/catalog"
	"datagen-service/internal/models"
	"datagen-service/internal/rng"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindow() (time.Time, time.Time) {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
}

func generate(t *testing.T, seed int64, n int) []models.DeliveryRecord {
	t.Helper()

	reg, err := catalog.Default()
	require.NoError(t, err)

	start, end := testWindow()
	s, err := New(reg, start, end)
	require.NoError(t, err)

	ctx := rng.New(seed)
	rows := make([]models.DeliveryRecord, n)
	for i := range rows {
		rows[i] = s.Record(ctx.RecordStream(Stage, i), i)
	}
	return rows
}

func TestRejectsInvertedWindow(t *testing.T) {
	reg, err := catalog.Default()
	require.NoError(t, err)

	start, end := testWindow()
	_, err = New(reg, end, start)
	assert.Error(t, err)
}

func TestCleanRecordInvariants(t *testing.T) {
	reg, err := catalog.Default()
	require.NoError(t, err)

	categories := map[string]catalog.Category{}
	for _, c := range reg.Categories {
		categories[c.Name] = c
	}

	start, end := testWindow()
	rows := generate(t, 42, 5000)

	for _, rec := range rows {
		// Temporal ordering
		require.False(t, rec.OrderDate.After(rec.ShippedDate), "order %s: order_date after shipped_date", rec.OrderID)
		require.False(t, rec.ShippedDate.After(rec.DeliveredDate), "order %s: shipped_date after delivered_date", rec.OrderID)
		require.False(t, rec.OrderDate.Before(start) || rec.OrderDate.After(end), "order %s: outside analysis window", rec.OrderID)

		// Catalog membership
		require.True(t, reg.HasCarrier(rec.Carrier), "order %s: carrier %q", rec.OrderID, rec.Carrier)
		require.True(t, reg.HasState(rec.State), "order %s: state %q", rec.OrderID, rec.State)

		// Category ranges
		cat, ok := categories[rec.Category]
		require.True(t, ok, "order %s: category %q", rec.OrderID, rec.Category)
		require.NotNil(t, rec.PriceMXN)
		require.GreaterOrEqual(t, *rec.PriceMXN, cat.PriceMin)
		require.LessOrEqual(t, *rec.PriceMXN, cat.PriceMax)
		require.GreaterOrEqual(t, rec.WeightKG, cat.WeightMin)
		require.LessOrEqual(t, rec.WeightKG, cat.WeightMax)

		// Delay derivation
		wantDelay := int(rec.DeliveredDate.Sub(rec.PromisedDate).Hours() / 24)
		require.Equal(t, wantDelay, rec.DelayDays, "order %s", rec.OrderID)
		require.Equal(t, wantDelay <= 0, rec.MetPromise, "order %s", rec.OrderID)

		// Remaining fields are populated
		require.NotNil(t, rec.ShippingCostMXN)
		require.NotNil(t, rec.DistanceKM)
		require.NotNil(t, rec.LoyaltyMonths)
		require.Positive(t, *rec.ShippingCostMXN)
		require.GreaterOrEqual(t, *rec.LoyaltyMonths, 0)
		require.Positive(t, rec.Quantity)
		require.GreaterOrEqual(t, rec.DeliveryRating, 1)
		require.LessOrEqual(t, rec.DeliveryRating, 5)
		require.Empty(t, rec.ErrorType)
	}
}

func TestCarrierMarginalsMatchMarketShare(t *testing.T) {
	reg, err := catalog.Default()
	require.NoError(t, err)

	rows := generate(t, 42, 5000)

	counts := map[string]int{}
	for _, rec := range rows {
		counts[rec.Carrier]++
	}

	for _, c := range reg.Carriers {
		freq := float64(counts[c.Name]) / float64(len(rows))
		assert.InDelta(t, c.Share, freq, 0.02, "carrier %s", c.Name)
	}
}

func TestTierSplit(t *testing.T) {
	rows := generate(t, 42, 5000)

	var express int
	for _, rec := range rows {
		if rec.Tier == models.TierExpress {
			express++
		}
	}

	assert.InDelta(t, 0.15, float64(express)/float64(len(rows)), 0.02)
}

func TestDistanceMatchesBand(t *testing.T) {
	reg, err := catalog.Default()
	require.NoError(t, err)

	rows := generate(t, 42, 2000)

	for _, rec := range rows {
		band, ok := reg.Bands[rec.DistanceBand]
		require.True(t, ok, "order %s: band %q", rec.OrderID, rec.DistanceBand)
		require.NotNil(t, rec.DistanceKM)
		require.GreaterOrEqual(t, *rec.DistanceKM, band.MinKM)
		require.LessOrEqual(t, *rec.DistanceKM, band.MaxKM)
	}
}

func TestGenerationIsDeterministic(t *testing.T) {
	a := generate(t, 42, 500)
	b := generate(t, 42, 500)

	require.Equal(t, a, b)
}

func TestSeedChangesOutput(t *testing.T) {
	a := generate(t, 42, 100)
	b := generate(t, 43, 100)

	assert.NotEqual(t, a, b)
}
