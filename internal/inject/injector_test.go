package inject

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"datagen-service/internal/catalog"
	"datagen-service/internal/models"
	"datagen-service/internal/rng"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRows(n int) []models.DeliveryRecord {
	order := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]models.DeliveryRecord, n)
	for i := range rows {
		price := 1500.0
		cost := 180.0
		distance := 420.0
		loyalty := 8
		rows[i] = models.DeliveryRecord{
			OrderID:         fmt.Sprintf("ECOMMX-2024-%05d", i),
			CustomerID:      fmt.Sprintf("CUST-%05d", 10000+i),
			OrderDate:       order,
			ShippedDate:     order.AddDate(0, 0, 1),
			DeliveredDate:   order.AddDate(0, 0, 5),
			PromisedDate:    order.AddDate(0, 0, 4),
			DelayDays:       1,
			Carrier:         "Estafeta",
			State:           "Jalisco",
			PriceMXN:        &price,
			ShippingCostMXN: &cost,
			DistanceKM:      &distance,
			LoyaltyMonths:   &loyalty,
		}
	}
	return rows
}

func inject(t *testing.T, seed int64, rows []models.DeliveryRecord, fraction float64) ([]models.DeliveryRecord, []models.Corruption) {
	t.Helper()

	reg, err := catalog.Default()
	require.NoError(t, err)

	out, audit, err := New(reg, fraction).Inject(rng.New(seed).Stream(Stage), rows)
	require.NoError(t, err)
	return out, audit
}

func TestCorruptionCountAndPartition(t *testing.T) {
	rows, audit := inject(t, 42, makeRows(1000), 0.05)

	require.Len(t, audit, 50)

	byType := map[string]int{}
	for _, c := range audit {
		byType[c.ErrorType]++
	}
	for _, et := range models.ErrorTypes {
		assert.Equal(t, 10, byType[et], "error type %s", et)
	}

	// Only duplicates grow the table.
	assert.Len(t, rows, 1000+byType[models.ErrorTypeDuplicate])

	var tagged int
	for _, rec := range rows {
		if rec.ErrorType != "" {
			tagged++
		}
	}
	assert.Equal(t, 50, tagged)
}

func TestPartitionRemainderIsSpread(t *testing.T) {
	_, audit := inject(t, 42, makeRows(1000), 0.053)

	require.Len(t, audit, 53)

	byType := map[string]int{}
	for _, c := range audit {
		byType[c.ErrorType]++
	}
	for _, et := range models.ErrorTypes {
		assert.InDelta(t, 53.0/5.0, float64(byType[et]), 1.0, "error type %s", et)
	}
}

func TestMissingValueNullsExactlyOneField(t *testing.T) {
	rows, _ := inject(t, 42, makeRows(500), 0.05)

	var seen int
	for _, rec := range rows {
		if rec.ErrorType != models.ErrorTypeMissing {
			continue
		}
		seen++
		var nils int
		if rec.PriceMXN == nil {
			nils++
		}
		if rec.ShippingCostMXN == nil {
			nils++
		}
		if rec.LoyaltyMonths == nil {
			nils++
		}
		if rec.DistanceKM == nil {
			nils++
		}
		assert.Equal(t, 1, nils, "order %s", rec.OrderID)
	}
	assert.Equal(t, 5, seen)
}

func TestOutlierIsImplausible(t *testing.T) {
	rows, _ := inject(t, 42, makeRows(500), 0.05)

	for _, rec := range rows {
		if rec.ErrorType != models.ErrorTypeOutlier {
			continue
		}
		priceBlown := rec.PriceMXN != nil && *rec.PriceMXN >= 1500.0*50
		distanceBlown := rec.DistanceKM != nil && *rec.DistanceKM >= 5000
		assert.True(t, priceBlown || distanceBlown, "order %s", rec.OrderID)
	}
}

func TestTypoLeavesCatalog(t *testing.T) {
	reg, err := catalog.Default()
	require.NoError(t, err)

	rows, _ := inject(t, 42, makeRows(500), 0.05)

	for _, rec := range rows {
		if rec.ErrorType != models.ErrorTypeTypo {
			continue
		}
		carrierDirty := !reg.HasCarrier(rec.Carrier)
		stateDirty := !reg.HasState(rec.State)
		assert.True(t, carrierDirty || stateDirty, "order %s: carrier=%q state=%q", rec.OrderID, rec.Carrier, rec.State)
	}
}

func TestDuplicateSharesAllFieldsExceptOrderID(t *testing.T) {
	rows, audit := inject(t, 42, makeRows(500), 0.05)

	index := map[string]models.DeliveryRecord{}
	for _, rec := range rows {
		index[rec.OrderID] = rec
	}

	var dupes int
	for _, c := range audit {
		if c.ErrorType != models.ErrorTypeDuplicate {
			continue
		}
		dupes++
		require.True(t, strings.HasPrefix(c.OrderID, "DUPE-"))

		dupe, ok := index[c.OrderID]
		require.True(t, ok)
		source, ok := index[strings.TrimPrefix(c.OrderID, "DUPE-")]
		require.True(t, ok)

		// Same physical order under two ids; only the id and the audit
		// tag differ.
		dupe.OrderID = source.OrderID
		dupe.ErrorType = source.ErrorType
		assert.Equal(t, source, dupe)
	}
	assert.Equal(t, 5, dupes)
}

func TestInconsistentDeliversBeforeShipping(t *testing.T) {
	rows, _ := inject(t, 42, makeRows(500), 0.05)

	var seen int
	for _, rec := range rows {
		if rec.ErrorType != models.ErrorTypeInconsistent {
			continue
		}
		seen++
		assert.True(t, rec.DeliveredDate.Before(rec.ShippedDate), "order %s", rec.OrderID)
	}
	assert.Equal(t, 5, seen)
}

func TestZeroFractionIsNoOp(t *testing.T) {
	rows := makeRows(100)
	out, audit := inject(t, 42, rows, 0)

	assert.Len(t, out, 100)
	assert.Empty(t, audit)
}

func TestOverflowFails(t *testing.T) {
	reg, err := catalog.Default()
	require.NoError(t, err)

	_, _, err = New(reg, 1.5).Inject(rng.New(42).Stream(Stage), makeRows(10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestInjectionIsDeterministic(t *testing.T) {
	rowsA, auditA := inject(t, 42, makeRows(1000), 0.05)
	rowsB, auditB := inject(t, 42, makeRows(1000), 0.05)

	require.Equal(t, rowsA, rowsB)
	require.Equal(t, auditA, auditB)
}
