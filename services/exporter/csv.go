package exporter

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"sjsage522/machineryworker/internal/scraper"
	"sjsage522/machineryworker/logger"
	apperrors "sjsage522/machineryworker/pkg/errors"
)

// CSVHeader is the column order of CSV exports
var CSVHeader = []string{
	"Model", "Contract Type", "Make", "Year", "Worked Hours",
	"City", "Price", "Photo URL", "Source Website", "Status",
}

// CSVExporter writes one row per record
type CSVExporter struct {
	Path string
}

// NewCSVExporter creates a CSV exporter writing to path
func NewCSVExporter(path string) *CSVExporter {
	return &CSVExporter{Path: path}
}

// Export implements Exporter
func (e *CSVExporter) Export(_ context.Context, records []scraper.ListingRecord) error {
	if err := os.MkdirAll(filepath.Dir(e.Path), 0755); err != nil {
		return apperrors.NewExport("csv", "could not create output dir", err)
	}

	file, err := os.Create(e.Path)
	if err != nil {
		return apperrors.NewExport("csv", "could not create "+e.Path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(CSVHeader); err != nil {
		return apperrors.NewExport("csv", "could not write header", err)
	}
	for _, r := range records {
		row := []string{
			r.Model,
			string(r.ContractType),
			r.Make,
			r.Year,
			r.WorkedHours,
			r.City,
			r.Price,
			r.PhotoURL,
			r.SourceSite,
			string(r.Status),
		}
		if err := writer.Write(row); err != nil {
			return apperrors.NewExport("csv", "could not write row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewExport("csv", "csv write error", err)
	}

	logger.ForExporter("csv").Info().Int("records", len(records)).Str("path", e.Path).Msg("Exported records")
	return nil
}
