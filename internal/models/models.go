package models

import "time"

// Shipping tiers
const (
	TierStandard = "Estándar"
	TierExpress  = "Express"
)

// Distance bands relative to the CDMX origin hub
const (
	BandLocal    = "local"
	BandRegional = "regional"
	BandNational = "nacional"
)

// Injected error types, recorded in the corruption audit
const (
	ErrorTypeMissing      = "missing"
	ErrorTypeOutlier      = "outlier"
	ErrorTypeTypo         = "typo"
	ErrorTypeDuplicate    = "duplicate"
	ErrorTypeInconsistent = "inconsistent"
)

// ErrorTypes lists the five injectable defect kinds in group order.
var ErrorTypes = []string{
	ErrorTypeMissing,
	ErrorTypeOutlier,
	ErrorTypeTypo,
	ErrorTypeDuplicate,
	ErrorTypeInconsistent,
}

// DeliveryRecord is one synthetic e-commerce delivery. PriceMXN,
// ShippingCostMXN, LoyaltyMonths and DistanceKM are pointers because the
// missing-value corruption nulls them out; clean rows always carry values.
type DeliveryRecord struct {
	// Identity
	OrderID    string `db:"order_id" json:"order_id"`
	CustomerID string `db:"customer_id" json:"customer_id"`

	// Temporal
	OrderDate     time.Time `db:"order_date" json:"order_date"`
	ShippedDate   time.Time `db:"shipped_date" json:"shipped_date"`
	DeliveredDate time.Time `db:"delivered_date" json:"delivered_date"`
	PromisedDate  time.Time `db:"promised_delivery_date" json:"promised_delivery_date"`
	DelayDays     int       `db:"delivery_delay_days" json:"delivery_delay_days"`
	MetPromise    bool      `db:"delivery_met_promise" json:"delivery_met_promise"`

	// Product
	Category       string   `db:"product_category" json:"product_category"`
	PriceMXN       *float64 `db:"product_price_mxn" json:"product_price_mxn"`
	WeightKG       float64  `db:"product_weight_kg" json:"product_weight_kg"`
	Quantity       int      `db:"quantity" json:"quantity"`
	TotalAmountMXN float64  `db:"total_amount_mxn" json:"total_amount_mxn"`

	// Logistics
	Carrier         string   `db:"shipping_carrier" json:"shipping_carrier"`
	Tier            string   `db:"shipping_tier" json:"shipping_tier"`
	ShippingCostMXN *float64 `db:"shipping_cost_mxn" json:"shipping_cost_mxn"`
	DistanceKM      *float64 `db:"distance_km" json:"distance_km"`
	DistanceBand    string   `db:"distance_band" json:"distance_band"`

	// Customer
	State             string `db:"customer_state" json:"customer_state"`
	Region            string `db:"customer_region" json:"customer_region"`
	AgeGroup          string `db:"customer_age_group" json:"customer_age_group"`
	LoyaltyMonths     *int   `db:"customer_loyalty_months" json:"customer_loyalty_months"`
	PurchaseFrequency int    `db:"purchase_frequency" json:"purchase_frequency"`
	IsUrban           bool   `db:"is_urban" json:"is_urban"`

	// Payment
	PaymentMethod       string `db:"payment_method" json:"payment_method"`
	TransactionStatus   string `db:"transaction_status" json:"transaction_status"`
	PaymentInstallments int    `db:"payment_installments" json:"payment_installments"`

	// Channel
	SalesChannel string `db:"sales_channel" json:"sales_channel"`
	PlatformName string `db:"platform_name" json:"platform_name"`

	// Season and delivery experience
	IsPeakSeason   bool   `db:"is_peak_season" json:"is_peak_season"`
	DeliveryRating int    `db:"customer_delivery_rating" json:"customer_delivery_rating"`
	DeliveryIssue  string `db:"delivery_issue" json:"delivery_issue"`

	// Derived analysis fields
	CostToPriceRatio   float64 `db:"shipping_cost_to_price_ratio" json:"shipping_cost_to_price_ratio"`
	IsFrequentCustomer bool    `db:"is_frequent_customer" json:"is_frequent_customer"`
	IsLoyalCustomer    bool    `db:"is_loyal_customer" json:"is_loyal_customer"`
	HighValueOrder     bool    `db:"high_value_order" json:"high_value_order"`

	// ErrorType is the internal audit column. Empty on clean rows; it is a
	// contract with the cleaning stage, not part of the analysis schema.
	ErrorType string `db:"error_type" json:"error_type,omitempty"`
}

// Corruption is one audit entry: which row was corrupted and how.
type Corruption struct {
	OrderID   string `db:"order_id" json:"order_id"`
	ErrorType string `db:"error_type" json:"error_type"`
}

// Table is the finished dataset: shuffled rows plus the corruption audit.
type Table struct {
	Rows  []DeliveryRecord
	Audit []Corruption
}

// DatasetRun is the persisted metadata for one generation run.
type DatasetRun struct {
	ID             string    `db:"id" json:"id"`
	Seed           int64     `db:"seed" json:"seed"`
	RecordCount    int       `db:"record_count" json:"record_count"`
	ErrorFraction  float64   `db:"error_fraction" json:"error_fraction"`
	RowCount       int       `db:"row_count" json:"row_count"`
	CorruptedCount int       `db:"corrupted_count" json:"corrupted_count"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Run statuses
const (
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
)
