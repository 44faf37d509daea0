// Package export writes finished tables to CSV, mirroring the raw +
// sample file layout the analysis stage consumes.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"datagen-service/internal/models"
)

const dateLayout = "2006-01-02"

// Header is the published column order. error_type comes last; it is the
// audit column for the cleaning stage.
var Header = []string{
	"order_id", "customer_id",
	"order_date", "shipped_date", "delivered_date", "promised_delivery_date",
	"delivery_delay_days", "delivery_met_promise",
	"product_category", "product_price_mxn", "product_weight_kg", "quantity", "total_amount_mxn",
	"shipping_carrier", "shipping_tier", "shipping_cost_mxn", "distance_km", "distance_band",
	"customer_state", "customer_region", "customer_age_group", "customer_loyalty_months",
	"purchase_frequency", "is_urban",
	"payment_method", "transaction_status", "payment_installments",
	"sales_channel", "platform_name",
	"is_peak_season", "customer_delivery_rating", "delivery_issue",
	"shipping_cost_to_price_ratio", "is_frequent_customer", "is_loyal_customer", "high_value_order",
	"error_type",
}

// WriteFile writes the whole table to path, creating the file.
func WriteFile(path string, rows []models.DeliveryRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, rows); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

// Write streams rows as CSV with the published header.
func Write(w io.Writer, rows []models.DeliveryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(record(&rows[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Sample draws a seeded random sample of n rows for the quick-test file.
// If n exceeds the table size the whole table is returned.
func Sample(rows []models.DeliveryRecord, n int, seed int64) []models.DeliveryRecord {
	if n >= len(rows) {
		return rows
	}
	r := rand.New(rand.NewSource(seed))
	idx := r.Perm(len(rows))[:n]
	out := make([]models.DeliveryRecord, n)
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

func record(rec *models.DeliveryRecord) []string {
	return []string{
		rec.OrderID, rec.CustomerID,
		rec.OrderDate.Format(dateLayout),
		rec.ShippedDate.Format(dateLayout),
		rec.DeliveredDate.Format(dateLayout),
		rec.PromisedDate.Format(dateLayout),
		strconv.Itoa(rec.DelayDays),
		boolField(rec.MetPromise),
		rec.Category,
		floatPtrField(rec.PriceMXN),
		formatFloat(rec.WeightKG),
		strconv.Itoa(rec.Quantity),
		formatFloat(rec.TotalAmountMXN),
		rec.Carrier, rec.Tier,
		floatPtrField(rec.ShippingCostMXN),
		floatPtrField(rec.DistanceKM),
		rec.DistanceBand,
		rec.State, rec.Region, rec.AgeGroup,
		intPtrField(rec.LoyaltyMonths),
		strconv.Itoa(rec.PurchaseFrequency),
		boolField(rec.IsUrban),
		rec.PaymentMethod, rec.TransactionStatus,
		strconv.Itoa(rec.PaymentInstallments),
		rec.SalesChannel, rec.PlatformName,
		boolField(rec.IsPeakSeason),
		strconv.Itoa(rec.DeliveryRating),
		rec.DeliveryIssue,
		formatFloat(rec.CostToPriceRatio),
		boolField(rec.IsFrequentCustomer),
		boolField(rec.IsLoyalCustomer),
		boolField(rec.HighValueOrder),
		rec.ErrorType,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func floatPtrField(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func intPtrField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func boolField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
