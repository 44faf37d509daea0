package catalog

import (
	"fmt"
	"math"
	"time"

	"datagen-service/internal/models"
)

// weightTolerance is the allowed deviation when a weight set must sum to 1.0.
const weightTolerance = 1e-6

// Weighted is a catalog member with a sampling weight.
type Weighted struct {
	Name   string
	Weight float64
}

// Carrier describes a delivery provider: market share, base cost, transit
// days per distance band and the spread of its actual transit times. Fast
// carriers have low sigma, slow carriers high sigma.
type Carrier struct {
	Name         string
	Share        float64
	BaseCostMXN  float64
	TransitDays  map[string]int
	TransitSigma float64
}

// Category describes a product category with its popularity weight and the
// valid price and weight ranges.
type Category struct {
	Name      string
	Weight    float64
	PriceMin  float64
	PriceMax  float64
	WeightMin float64
	WeightMax float64
}

// State is a destination region with its analysis region and distance band
// relative to the CDMX origin hub.
type State struct {
	Name   string
	Region string
	Band   string
}

// Band holds the km range sampled for a distance band and the shipping cost
// multiplier applied to it.
type Band struct {
	MinKM      float64
	MaxKM      float64
	CostFactor float64
}

// Window is a recurring high-demand period (month/day bounds, inclusive)
// with the transit delay factor range applied inside it and the probability
// of an extra slip day.
type Window struct {
	Name       string
	StartMonth int
	StartDay   int
	EndMonth   int
	EndDay     int
	FactorMin  float64
	FactorMax  float64
	SlipProb   float64
}

// Registry is the immutable reference data for generation. Build it with
// Default (or construct and Validate); all weight sets are checked to sum
// to 1.0 and all ranges to be sane.
type Registry struct {
	Carriers   []Carrier
	Categories []Category
	States     []State
	Bands      map[string]Band
	Windows    []Window

	AgeGroups      []Weighted
	PaymentMethods []Weighted
	Platforms      []Weighted
	Issues         []Weighted
	IssuesDelayed  []Weighted

	// Customer segment parameters
	LoyaltyMeanMonths float64
	LoyaltyCapMonths  int
	FrequencyMean     float64
	UrbanProb         float64

	// Logistics parameters
	OriginState       string
	ExpressProb       float64
	ExpressPromiseCut int
	CostPerKGMXN      float64
}

// Default returns the registry seeded from AMVO market research: carrier
// shares, category popularity, the 32 states and the Mexican payment and
// channel mix.
func Default() (*Registry, error) {
	r := &Registry{
		Carriers: []Carrier{
			{Name: "Estafeta", Share: 0.28, BaseCostMXN: 120, TransitDays: map[string]int{models.BandLocal: 2, models.BandRegional: 4, models.BandNational: 6}, TransitSigma: 1.0},
			{Name: "DHL", Share: 0.22, BaseCostMXN: 180, TransitDays: map[string]int{models.BandLocal: 1, models.BandRegional: 2, models.BandNational: 3}, TransitSigma: 0.5},
			{Name: "FedEx", Share: 0.18, BaseCostMXN: 160, TransitDays: map[string]int{models.BandLocal: 2, models.BandRegional: 3, models.BandNational: 4}, TransitSigma: 0.7},
			{Name: "Correos de México", Share: 0.15, BaseCostMXN: 80, TransitDays: map[string]int{models.BandLocal: 5, models.BandRegional: 8, models.BandNational: 12}, TransitSigma: 2.0},
			{Name: "UPS", Share: 0.10, BaseCostMXN: 170, TransitDays: map[string]int{models.BandLocal: 1, models.BandRegional: 2, models.BandNational: 4}, TransitSigma: 0.6},
			{Name: "Redpack", Share: 0.05, BaseCostMXN: 100, TransitDays: map[string]int{models.BandLocal: 3, models.BandRegional: 5, models.BandNational: 7}, TransitSigma: 1.3},
			{Name: "Paquetexpress", Share: 0.02, BaseCostMXN: 90, TransitDays: map[string]int{models.BandLocal: 3, models.BandRegional: 5, models.BandNational: 8}, TransitSigma: 1.3},
		},
		Categories: []Category{
			{Name: "Moda y Accesorios", Weight: 0.25, PriceMin: 150, PriceMax: 5000, WeightMin: 0.1, WeightMax: 2.0},
			{Name: "Electrónicos", Weight: 0.24, PriceMin: 500, PriceMax: 35000, WeightMin: 0.5, WeightMax: 5.0},
			{Name: "Hogar y Jardín", Weight: 0.16, PriceMin: 200, PriceMax: 15000, WeightMin: 1.0, WeightMax: 15.0},
			{Name: "Salud y Belleza", Weight: 0.12, PriceMin: 100, PriceMax: 3000, WeightMin: 0.2, WeightMax: 3.0},
			{Name: "Deportes", Weight: 0.09, PriceMin: 300, PriceMax: 8000, WeightMin: 0.2, WeightMax: 3.0},
			{Name: "Libros y Educación", Weight: 0.08, PriceMin: 50, PriceMax: 2000, WeightMin: 0.2, WeightMax: 3.0},
			{Name: "Juguetes y Bebés", Weight: 0.06, PriceMin: 200, PriceMax: 4000, WeightMin: 0.2, WeightMax: 3.0},
		},
		States: buildStates(),
		Bands: map[string]Band{
			models.BandLocal:    {MinKM: 0, MaxKM: 50, CostFactor: 1.0},
			models.BandRegional: {MinKM: 50, MaxKM: 300, CostFactor: 1.5},
			models.BandNational: {MinKM: 300, MaxKM: 1500, CostFactor: 2.0},
		},
		Windows: []Window{
			{Name: "Hot Sale", StartMonth: 5, StartDay: 15, EndMonth: 5, EndDay: 23, FactorMin: 1.4, FactorMax: 2.0, SlipProb: 0.35},
			{Name: "El Buen Fin", StartMonth: 11, StartDay: 15, EndMonth: 11, EndDay: 18, FactorMin: 1.5, FactorMax: 2.0, SlipProb: 0.40},
			{Name: "Navidad", StartMonth: 12, StartDay: 16, EndMonth: 12, EndDay: 24, FactorMin: 1.2, FactorMax: 1.8, SlipProb: 0.30},
		},
		AgeGroups: []Weighted{
			{Name: "18-24", Weight: 0.15},
			{Name: "25-34", Weight: 0.35},
			{Name: "35-44", Weight: 0.25},
			{Name: "45-54", Weight: 0.15},
			{Name: "55+", Weight: 0.10},
		},
		PaymentMethods: []Weighted{
			{Name: "Tarjeta de Débito", Weight: 0.48},
			{Name: "Tarjeta de Crédito", Weight: 0.30},
			{Name: "Efectivo (OXXO)", Weight: 0.15},
			{Name: "PayPal", Weight: 0.05},
			{Name: "Transferencia", Weight: 0.02},
		},
		Platforms: []Weighted{
			{Name: "Mercado Libre", Weight: 0.35},
			{Name: "Amazon México", Weight: 0.25},
			{Name: "Liverpool", Weight: 0.10},
			{Name: "Coppel", Weight: 0.08},
			{Name: "Walmart", Weight: 0.07},
			{Name: "Sitio Web Propio", Weight: 0.15},
		},
		Issues: []Weighted{
			{Name: "Ninguno", Weight: 0.85},
			{Name: "Retraso", Weight: 0.10},
			{Name: "Paquete dañado", Weight: 0.03},
			{Name: "Extraviado", Weight: 0.01},
			{Name: "Entregado en lugar equivocado", Weight: 0.01},
		},
		IssuesDelayed: []Weighted{
			{Name: "Ninguno", Weight: 0.70},
			{Name: "Retraso", Weight: 0.20},
			{Name: "Paquete dañado", Weight: 0.05},
			{Name: "Extraviado", Weight: 0.03},
			{Name: "Entregado en lugar equivocado", Weight: 0.02},
		},
		LoyaltyMeanMonths: 12,
		LoyaltyCapMonths:  60,
		FrequencyMean:     2.5,
		UrbanProb:         0.75,
		OriginState:       "Ciudad de México",
		ExpressProb:       0.15,
		ExpressPromiseCut: 2,
		CostPerKGMXN:      15,
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func buildStates() []State {
	regions := map[string][]string{
		"Centro":    {"Ciudad de México", "México", "Puebla", "Morelos", "Tlaxcala", "Hidalgo", "Querétaro"},
		"Norte":     {"Nuevo León", "Chihuahua", "Coahuila", "Sonora", "Tamaulipas", "Baja California", "Baja California Sur"},
		"Occidente": {"Jalisco", "Michoacán", "Guanajuato", "Aguascalientes", "Colima", "Nayarit", "Sinaloa"},
		"Sur":       {"Guerrero", "Oaxaca", "Chiapas", "Veracruz", "Tabasco"},
		"Península": {"Yucatán", "Quintana Roo", "Campeche"},
		"Noreste":   {"Durango", "Zacatecas", "San Luis Potosí"},
	}
	// Order must be stable: region names sorted by first appearance here.
	order := []string{"Centro", "Norte", "Occidente", "Sur", "Península", "Noreste"}

	var states []State
	for _, region := range order {
		for _, name := range regions[region] {
			band := models.BandNational
			if name == "Ciudad de México" {
				band = models.BandLocal
			} else if region == "Centro" {
				band = models.BandRegional
			}
			states = append(states, State{Name: name, Region: region, Band: band})
		}
	}
	return states
}

// Validate checks weight sums and range sanity. A registry that fails
// validation must not be used for generation.
func (r *Registry) Validate() error {
	carrierWeights := make([]float64, len(r.Carriers))
	for i, c := range r.Carriers {
		carrierWeights[i] = c.Share
		for _, band := range []string{models.BandLocal, models.BandRegional, models.BandNational} {
			if _, ok := c.TransitDays[band]; !ok {
				return fmt.Errorf("catalog: carrier %q missing transit days for band %q", c.Name, band)
			}
		}
		if c.TransitSigma < 0 {
			return fmt.Errorf("catalog: carrier %q has negative transit sigma", c.Name)
		}
	}
	if err := checkWeightSum("carriers", carrierWeights); err != nil {
		return err
	}

	categoryWeights := make([]float64, len(r.Categories))
	for i, c := range r.Categories {
		categoryWeights[i] = c.Weight
		if c.PriceMin > c.PriceMax {
			return fmt.Errorf("catalog: category %q price range min %.2f > max %.2f", c.Name, c.PriceMin, c.PriceMax)
		}
		if c.WeightMin > c.WeightMax {
			return fmt.Errorf("catalog: category %q weight range min %.2f > max %.2f", c.Name, c.WeightMin, c.WeightMax)
		}
	}
	if err := checkWeightSum("categories", categoryWeights); err != nil {
		return err
	}

	if len(r.States) != 32 {
		return fmt.Errorf("catalog: expected 32 states, got %d", len(r.States))
	}
	for _, s := range r.States {
		if _, ok := r.Bands[s.Band]; !ok {
			return fmt.Errorf("catalog: state %q references unknown band %q", s.Name, s.Band)
		}
	}
	for name, b := range r.Bands {
		if b.MinKM > b.MaxKM {
			return fmt.Errorf("catalog: band %q km range min %.0f > max %.0f", name, b.MinKM, b.MaxKM)
		}
	}

	for _, w := range r.Windows {
		if w.FactorMin > w.FactorMax {
			return fmt.Errorf("catalog: window %q factor range min %.2f > max %.2f", w.Name, w.FactorMin, w.FactorMax)
		}
	}

	for _, set := range []struct {
		name string
		ws   []Weighted
	}{
		{"age groups", r.AgeGroups},
		{"payment methods", r.PaymentMethods},
		{"platforms", r.Platforms},
		{"delivery issues", r.Issues},
		{"delayed delivery issues", r.IssuesDelayed},
	} {
		weights := make([]float64, len(set.ws))
		for i, w := range set.ws {
			weights[i] = w.Weight
		}
		if err := checkWeightSum(set.name, weights); err != nil {
			return err
		}
	}

	return nil
}

func checkWeightSum(name string, weights []float64) error {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("catalog: %s weights sum to %.6f, want 1.0", name, sum)
	}
	return nil
}

// CarrierShares returns carrier weights in catalog order, for weighted draws.
func (r *Registry) CarrierShares() []float64 {
	shares := make([]float64, len(r.Carriers))
	for i, c := range r.Carriers {
		shares[i] = c.Share
	}
	return shares
}

// CategoryWeights returns category weights in catalog order.
func (r *Registry) CategoryWeights() []float64 {
	weights := make([]float64, len(r.Categories))
	for i, c := range r.Categories {
		weights[i] = c.Weight
	}
	return weights
}

// HasCarrier reports whether name is a clean catalog carrier.
func (r *Registry) HasCarrier(name string) bool {
	for _, c := range r.Carriers {
		if c.Name == name {
			return true
		}
	}
	return false
}

// HasState reports whether name is a clean catalog state.
func (r *Registry) HasState(name string) bool {
	for _, s := range r.States {
		if s.Name == name {
			return true
		}
	}
	return false
}

// WindowFor returns the high-demand window containing t, if any. Window
// bounds are inclusive and recur every year.
func (r *Registry) WindowFor(t time.Time) (Window, bool) {
	month, day := int(t.Month()), t.Day()
	for _, w := range r.Windows {
		afterStart := month > w.StartMonth || (month == w.StartMonth && day >= w.StartDay)
		beforeEnd := month < w.EndMonth || (month == w.EndMonth && day <= w.EndDay)
		if afterStart && beforeEnd {
			return w, true
		}
	}
	return Window{}, false
}
