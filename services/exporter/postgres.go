package exporter

import (
	"context"
	"fmt"
	"time"

	"sjsage522/machineryworker/internal/scraper"
	"sjsage522/machineryworker/logger"
	apperrors "sjsage522/machineryworker/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS machinery_listings (
	id BIGSERIAL PRIMARY KEY,
	source_website TEXT NOT NULL,
	status TEXT NOT NULL,
	model TEXT,
	make TEXT,
	contract_type TEXT,
	year TEXT,
	worked_hours TEXT,
	city TEXT,
	price TEXT,
	photo_url TEXT,
	scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_machinery_listings_site ON machinery_listings(source_website);
CREATE INDEX IF NOT EXISTS idx_machinery_listings_status ON machinery_listings(status);
`

const insertSQL = `
INSERT INTO machinery_listings
	(source_website, status, model, make, contract_type, year, worked_hours, city, price, photo_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

// PostgresExporter inserts records into the machinery_listings table
type PostgresExporter struct {
	pool *pgxpool.Pool
}

// NewPostgresExporter connects to dsn and makes sure the table exists
func NewPostgresExporter(ctx context.Context, dsn string) (*PostgresExporter, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, dsn)
	if err != nil {
		return nil, apperrors.NewExport("postgres", "failed to create postgres pool", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, apperrors.NewExport("postgres", "failed to connect postgres", err)
	}

	e := &PostgresExporter{pool: pool}
	if err := e.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return e, nil
}

// EnsureSchema creates the table and its indexes when missing
func (e *PostgresExporter) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := e.pool.Exec(ctx, schemaSQL); err != nil {
		return apperrors.NewExport("postgres", "failed to ensure schema", err)
	}
	return nil
}

// Export inserts all records in one batch
func (e *PostgresExporter) Export(ctx context.Context, records []scraper.ListingRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(insertSQL,
			r.SourceSite,
			string(r.Status),
			nullable(r.Model),
			nullable(r.Make),
			nullable(string(r.ContractType)),
			nullable(r.Year),
			nullable(r.WorkedHours),
			nullable(r.City),
			nullable(r.Price),
			nullable(r.PhotoURL),
		)
	}

	results := e.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range records {
		if _, err := results.Exec(); err != nil {
			return apperrors.NewExport("postgres", fmt.Sprintf("batch insert failed at row %d", i), err)
		}
	}

	logger.ForExporter("postgres").Info().Int("records", len(records)).Msg("Exported records")
	return nil
}

// Close releases the connection pool
func (e *PostgresExporter) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

// nullable stores empty fields as NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
