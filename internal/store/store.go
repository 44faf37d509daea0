package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"datagen-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// EnsureSchema creates the run, record and audit tables if they do not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// CreateRun persists the metadata for a generation run
func (s *Store) CreateRun(ctx context.Context, run *models.DatasetRun) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO dataset_runs (id, seed, record_count, error_fraction, row_count, corrupted_count, status, created_at)
		VALUES (:id, :seed, :record_count, :error_fraction, :row_count, :corrupted_count, :status, :created_at)`,
		run)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// GetRun retrieves run metadata by ID
func (s *Store) GetRun(ctx context.Context, runID string) (*models.DatasetRun, error) {
	var run models.DatasetRun
	err := s.db.GetContext(ctx, &run, "SELECT * FROM dataset_runs WHERE id = $1", runID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// insertRecordsStmt matches the delivery_records columns to the record struct tags.
const insertRecordsStmt = `
	INSERT INTO delivery_records (
		run_id, order_id, customer_id,
		order_date, shipped_date, delivered_date, promised_delivery_date,
		delivery_delay_days, delivery_met_promise,
		product_category, product_price_mxn, product_weight_kg, quantity, total_amount_mxn,
		shipping_carrier, shipping_tier, shipping_cost_mxn, distance_km, distance_band,
		customer_state, customer_region, customer_age_group, customer_loyalty_months,
		purchase_frequency, is_urban,
		payment_method, transaction_status, payment_installments,
		sales_channel, platform_name,
		is_peak_season, customer_delivery_rating, delivery_issue,
		shipping_cost_to_price_ratio, is_frequent_customer, is_loyal_customer, high_value_order,
		error_type
	) VALUES (
		:run_id, :order_id, :customer_id,
		:order_date, :shipped_date, :delivered_date, :promised_delivery_date,
		:delivery_delay_days, :delivery_met_promise,
		:product_category, :product_price_mxn, :product_weight_kg, :quantity, :total_amount_mxn,
		:shipping_carrier, :shipping_tier, :shipping_cost_mxn, :distance_km, :distance_band,
		:customer_state, :customer_region, :customer_age_group, :customer_loyalty_months,
		:purchase_frequency, :is_urban,
		:payment_method, :transaction_status, :payment_installments,
		:sales_channel, :platform_name,
		:is_peak_season, :customer_delivery_rating, :delivery_issue,
		:shipping_cost_to_price_ratio, :is_frequent_customer, :is_loyal_customer, :high_value_order,
		:error_type
	)`

// recordRow pairs a delivery record with its run for NamedExec binding.
type recordRow struct {
	RunID string `db:"run_id"`
	models.DeliveryRecord
}

// InsertRecords batch-inserts the generated rows for a run.
func (s *Store) InsertRecords(ctx context.Context, runID string, rows []models.DeliveryRecord) error {
	const batchSize = 500

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := make([]recordRow, 0, end-start)
		for _, rec := range rows[start:end] {
			batch = append(batch, recordRow{RunID: runID, DeliveryRecord: rec})
		}
		if _, err := tx.NamedExecContext(ctx, insertRecordsStmt, batch); err != nil {
			return fmt.Errorf("failed to insert records [%d:%d]: %w", start, end, err)
		}
	}

	return tx.Commit()
}

// InsertAudit persists the corruption audit entries for a run.
func (s *Store) InsertAudit(ctx context.Context, runID string, audit []models.Corruption) error {
	if len(audit) == 0 {
		return nil
	}

	type auditRow struct {
		RunID string `db:"run_id"`
		models.Corruption
	}

	batch := make([]auditRow, 0, len(audit))
	for _, c := range audit {
		batch = append(batch, auditRow{RunID: runID, Corruption: c})
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO corruption_audit (run_id, order_id, error_type)
		VALUES (:run_id, :order_id, :error_type)`,
		batch)
	if err != nil {
		return fmt.Errorf("failed to insert audit: %w", err)
	}
	return nil
}

// GetAudit retrieves the corruption audit for a run
func (s *Store) GetAudit(ctx context.Context, runID string) ([]models.Corruption, error) {
	var audit []models.Corruption
	err := s.db.SelectContext(ctx, &audit,
		"SELECT order_id, error_type FROM corruption_audit WHERE run_id = $1 ORDER BY order_id", runID)
	return audit, err
}

// CountRecords returns the number of persisted rows for a run
func (s *Store) CountRecords(ctx context.Context, runID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM delivery_records WHERE run_id = $1", runID)
	return count, err
}
