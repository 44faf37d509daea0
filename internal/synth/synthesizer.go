// Package synth draws clean delivery records from the catalog
// distributions. Every record it returns satisfies the clean-record
// invariants: ordered dates, in-range price and weight, catalog membership
// and an exact delay derivation.
package synth

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"datagen-service/internal/catalog"
	"datagen-service/internal/models"
	"datagen-service/internal/rng"
)

// Stage is the sub-stream label for record synthesis.
const Stage = "synthesis"

// Transaction statuses observed in the Mexican market (~67% authorized).
var txStatuses = []catalog.Weighted{
	{Name: "Autorizada", Weight: 0.67},
	{Name: "En revisión", Weight: 0.26},
	{Name: "Rechazada", Weight: 0.07},
}

// Installment options for authorized credit-card payments (meses sin
// intereses).
var (
	msiOptions = []int{1, 3, 6, 12, 18}
	msiWeights = []float64{0.30, 0.25, 0.20, 0.15, 0.10}
)

// Processing delay distribution: 0, 1 or 2 days between order and shipment.
var processingWeights = []float64{0.70, 0.20, 0.10}

// Synthesizer produces clean records over a fixed analysis window.
type Synthesizer struct {
	reg         *catalog.Registry
	windowStart time.Time
	windowEnd   time.Time
	windowDays  int
}

// New creates a synthesizer for the given analysis window. The window is
// inclusive on both ends and must not be empty.
func New(reg *catalog.Registry, windowStart, windowEnd time.Time) (*Synthesizer, error) {
	start := midnight(windowStart)
	end := midnight(windowEnd)
	days := int(end.Sub(start).Hours() / 24)
	if days < 0 {
		return nil, fmt.Errorf("synth: analysis window start %s after end %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return &Synthesizer{reg: reg, windowStart: start, windowEnd: end, windowDays: days}, nil
}

// Record draws one clean record using the given stream. The index only
// feeds the order identifier; all randomness comes from r.
func (s *Synthesizer) Record(r *rand.Rand, index int) models.DeliveryRecord {
	reg := s.reg

	orderDate := s.windowStart.AddDate(0, 0, r.Intn(s.windowDays+1))

	cat := reg.Categories[rng.WeightedIndex(r, reg.CategoryWeights())]
	price := round2(cat.PriceMin + r.Float64()*(cat.PriceMax-cat.PriceMin))
	weight := round2(cat.WeightMin + r.Float64()*(cat.WeightMax-cat.WeightMin))

	carrier := reg.Carriers[rng.WeightedIndex(r, reg.CarrierShares())]
	tier := models.TierStandard
	if r.Float64() < reg.ExpressProb {
		tier = models.TierExpress
	}

	state := reg.States[r.Intn(len(reg.States))]
	band := reg.Bands[state.Band]
	distance := math.Round(band.MinKM + r.Float64()*(band.MaxKM-band.MinKM))

	baseTransit := carrier.TransitDays[state.Band]
	promisedDays := baseTransit
	if tier == models.TierExpress {
		promisedDays = maxInt(1, baseTransit-reg.ExpressPromiseCut)
	}
	promised := orderDate.AddDate(0, 0, promisedDays)

	processing := rng.WeightedIndex(r, processingWeights)
	shipped := orderDate.AddDate(0, 0, processing)

	transitMean := float64(baseTransit)
	if tier == models.TierExpress {
		transitMean = float64(promisedDays)
	}
	transit := maxInt(1, int(math.Round(transitMean+r.NormFloat64()*carrier.TransitSigma)))
	delivered := shipped.AddDate(0, 0, transit)

	delay := daysBetween(promised, delivered)

	quantity := 1 + r.Intn(5)
	if r.Float64() >= 0.95 {
		quantity = 6 + r.Intn(5)
	}

	shippingCost := s.shippingCost(r, carrier, weight, band, tier == models.TierExpress)
	totalAmount := round2(price*float64(quantity) + shippingCost)

	ageGroup := reg.AgeGroups[rng.WeightedIndex(r, weightsOf(reg.AgeGroups))].Name
	loyalty := rng.ClampedExp(r, reg.LoyaltyMeanMonths, reg.LoyaltyCapMonths)
	frequency := rng.Poisson(r, reg.FrequencyMean)

	payment := reg.PaymentMethods[rng.WeightedIndex(r, weightsOf(reg.PaymentMethods))].Name
	txStatus := txStatuses[rng.WeightedIndex(r, weightsOf(txStatuses))].Name
	installments := 1
	if payment == "Tarjeta de Crédito" && txStatus == "Autorizada" {
		installments = msiOptions[rng.WeightedIndex(r, msiWeights)]
	}

	platform := reg.Platforms[rng.WeightedIndex(r, weightsOf(reg.Platforms))].Name
	channel := "Marketplace"
	if platform == "Sitio Web Propio" {
		channel = "D2C"
	}

	issueSet := reg.Issues
	if delay > 2 {
		issueSet = reg.IssuesDelayed
	}
	issue := issueSet[rng.WeightedIndex(r, weightsOf(issueSet))].Name

	rating := deliveryRating(delay, r)

	_, inWindow := reg.WindowFor(orderDate)

	rec := models.DeliveryRecord{
		OrderID:    fmt.Sprintf("ECOMMX-%d-%05d", s.windowStart.Year(), index),
		CustomerID: fmt.Sprintf("CUST-%05d", 10000+r.Intn(90000)),

		OrderDate:     orderDate,
		ShippedDate:   shipped,
		DeliveredDate: delivered,
		PromisedDate:  promised,
		DelayDays:     delay,
		MetPromise:    delay <= 0,

		Category:       cat.Name,
		PriceMXN:       &price,
		WeightKG:       weight,
		Quantity:       quantity,
		TotalAmountMXN: totalAmount,

		Carrier:         carrier.Name,
		Tier:            tier,
		ShippingCostMXN: &shippingCost,
		DistanceKM:      &distance,
		DistanceBand:    state.Band,

		State:             state.Name,
		Region:            state.Region,
		AgeGroup:          ageGroup,
		LoyaltyMonths:     &loyalty,
		PurchaseFrequency: frequency,
		IsUrban:           r.Float64() < reg.UrbanProb,

		PaymentMethod:       payment,
		TransactionStatus:   txStatus,
		PaymentInstallments: installments,

		SalesChannel: channel,
		PlatformName: platform,

		IsPeakSeason:   inWindow,
		DeliveryRating: rating,
		DeliveryIssue:  issue,

		CostToPriceRatio:   round4(shippingCost / price),
		IsFrequentCustomer: frequency > 3,
		IsLoyalCustomer:    loyalty > 12,
		HighValueOrder:     totalAmount > 5000,
	}

	return rec
}

// shippingCost follows the carrier tariff: base cost plus a per-kg charge,
// scaled by distance band and doubled for Express, with ±10% noise.
func (s *Synthesizer) shippingCost(r *rand.Rand, c catalog.Carrier, weightKG float64, band catalog.Band, express bool) float64 {
	cost := (c.BaseCostMXN + weightKG*s.reg.CostPerKGMXN) * band.CostFactor
	if express {
		cost *= 2.0
	}
	return round2(cost * (0.9 + r.Float64()*0.2))
}

// deliveryRating maps delay against promise to a 1-5 rating with ±1 noise.
func deliveryRating(delay int, r *rand.Rand) int {
	var base int
	switch {
	case delay <= 0:
		base = 5
	case delay <= 2:
		base = 4
	case delay <= 5:
		base = 3
	case delay <= 10:
		base = 2
	default:
		base = 1
	}
	rating := base + r.Intn(3) - 1
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	return rating
}

func weightsOf(ws []catalog.Weighted) []float64 {
	out := make([]float64, len(ws))
	for i, w := range ws {
		out[i] = w.Weight
	}
	return out
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
