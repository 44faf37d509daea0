// Package inject corrupts a deterministic subset of assembled rows with
// the five defect types used by the downstream data-quality exercises:
// missing values, outliers, typos, duplicates and temporal
// inconsistencies. Every corruption is recorded in an audit list and no
// row is ever corrupted twice.
package inject

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"datagen-service/internal/catalog"
	"datagen-service/internal/models"
)

// Stage is the sub-stream label for error injection.
const Stage = "injection"

// ErrOverflow is returned when the requested corruption count exceeds the
// table size. The injector never clamps silently.
var ErrOverflow = errors.New("corruption count exceeds table size")

// Injector applies controlled corruption at a fixed fraction.
type Injector struct {
	reg      *catalog.Registry
	fraction float64
}

// New creates an injector for the given corruption fraction.
func New(reg *catalog.Registry, fraction float64) *Injector {
	return &Injector{reg: reg, fraction: fraction}
}

// Inject selects round(N*fraction) rows without replacement, partitions
// them into five near-equal groups (one per error type, ±1 for the
// remainder) and applies one transform per row. Duplicate transforms
// append rows, so the returned slice may be longer than the input. The
// audit lists every corrupted row's order id and error type.
func (inj *Injector) Inject(r *rand.Rand, rows []models.DeliveryRecord) ([]models.DeliveryRecord, []models.Corruption, error) {
	n := len(rows)
	count := int(math.Round(float64(n) * inj.fraction))
	if count > n {
		return nil, nil, fmt.Errorf("inject: %w: want %d of %d rows", ErrOverflow, count, n)
	}
	if count == 0 {
		return rows, nil, nil
	}

	selected := r.Perm(n)[:count]

	base := count / len(models.ErrorTypes)
	rem := count % len(models.ErrorTypes)

	audit := make([]models.Corruption, 0, count)
	pos := 0
	for g, errType := range models.ErrorTypes {
		size := base
		if g < rem {
			size++
		}
		for _, idx := range selected[pos : pos+size] {
			switch errType {
			case models.ErrorTypeMissing:
				inj.nullField(r, &rows[idx])
			case models.ErrorTypeOutlier:
				inj.outlier(r, &rows[idx])
			case models.ErrorTypeTypo:
				inj.typo(r, &rows[idx])
			case models.ErrorTypeDuplicate:
				dupe := rows[idx]
				dupe.OrderID = "DUPE-" + dupe.OrderID
				dupe.ErrorType = models.ErrorTypeDuplicate
				rows = append(rows, dupe)
				audit = append(audit, models.Corruption{OrderID: dupe.OrderID, ErrorType: models.ErrorTypeDuplicate})
				continue
			case models.ErrorTypeInconsistent:
				// Delivered before shipped, left underivable on purpose.
				rows[idx].DeliveredDate = rows[idx].ShippedDate.AddDate(0, 0, -2)
			}
			rows[idx].ErrorType = errType
			audit = append(audit, models.Corruption{OrderID: rows[idx].OrderID, ErrorType: errType})
		}
		pos += size
	}

	return rows, audit, nil
}

// nullField blanks one of the nullable columns, chosen uniformly.
func (inj *Injector) nullField(r *rand.Rand, rec *models.DeliveryRecord) {
	switch r.Intn(4) {
	case 0:
		rec.PriceMXN = nil
	case 1:
		rec.ShippingCostMXN = nil
	case 2:
		rec.LoyaltyMonths = nil
	case 3:
		rec.DistanceKM = nil
	}
}

// outlier makes a numeric field implausible: price scaled 50-150x or a
// distance no Mexican route can have.
func (inj *Injector) outlier(r *rand.Rand, rec *models.DeliveryRecord) {
	if r.Float64() < 0.5 && rec.PriceMXN != nil {
		v := *rec.PriceMXN * float64(50+r.Intn(101))
		rec.PriceMXN = &v
	} else {
		v := float64(5000 + r.Intn(5000))
		rec.DistanceKM = &v
	}
}

// typo perturbs a categorical field so the value leaves the clean catalog:
// stray whitespace, a case flip or a near-miss spelling.
func (inj *Injector) typo(r *rand.Rand, rec *models.DeliveryRecord) {
	if r.Float64() < 0.5 {
		rec.Carrier = inj.perturb(r, rec.Carrier, inj.reg.HasCarrier)
	} else {
		rec.State = inj.perturb(r, rec.State, inj.reg.HasState)
	}
}

func (inj *Injector) perturb(r *rand.Rand, value string, inCatalog func(string) bool) string {
	var corrupted string
	switch r.Intn(3) {
	case 0:
		corrupted = " " + value
	case 1:
		corrupted = strings.ToLower(value)
	case 2:
		corrupted = doubleLetter(r, value)
	}
	if inCatalog(corrupted) {
		// Fall back to stray whitespace, which no catalog entry carries.
		corrupted = " " + value
	}
	return corrupted
}

// doubleLetter repeats one rune, e.g. "Estafeta" -> "Estaffeta".
func doubleLetter(r *rand.Rand, value string) string {
	runes := []rune(value)
	if len(runes) == 0 {
		return value
	}
	i := r.Intn(len(runes))
	out := make([]rune, 0, len(runes)+1)
	out = append(out, runes[:i+1]...)
	out = append(out, runes[i])
	out = append(out, runes[i+1:]...)
	return string(out)
}
