// Package seasonal degrades delivery performance inside high-demand
// windows (Hot Sale, El Buen Fin, Navidad). Records ordered outside every
// window pass through untouched.
package seasonal

import (
	"math"
	"math/rand"

	"datagen-service/internal/catalog"
	"datagen-service/internal/models"
)

// Stage is the sub-stream label for the seasonality pass.
const Stage = "seasonality"

// Modifier applies window-specific transit inflation.
type Modifier struct {
	reg *catalog.Registry
}

// New creates a modifier over the registry's windows.
func New(reg *catalog.Registry) *Modifier {
	return &Modifier{reg: reg}
}

// Apply scales the transit component of a record's delivered date when its
// order date falls inside a high-demand window, then re-derives
// delivery_delay_days and delivery_met_promise so the record stays
// internally consistent. Returns true when the record was modified.
func (m *Modifier) Apply(r *rand.Rand, rec *models.DeliveryRecord) bool {
	w, ok := m.reg.WindowFor(rec.OrderDate)
	if !ok {
		return false
	}

	transit := int(rec.DeliveredDate.Sub(rec.ShippedDate).Hours() / 24)
	factor := w.FactorMin + r.Float64()*(w.FactorMax-w.FactorMin)
	inflated := int(math.Round(float64(transit) * factor))
	if inflated < 1 {
		inflated = 1
	}
	if r.Float64() < w.SlipProb {
		inflated++
	}

	rec.DeliveredDate = rec.ShippedDate.AddDate(0, 0, inflated)
	rec.DelayDays = int(rec.DeliveredDate.Sub(rec.PromisedDate).Hours() / 24)
	rec.MetPromise = rec.DelayDays <= 0
	rec.IsPeakSeason = true
	return true
}
