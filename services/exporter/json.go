package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sjsage522/machineryworker/internal/scraper"
	"sjsage522/machineryworker/logger"
	apperrors "sjsage522/machineryworker/pkg/errors"

	"github.com/google/uuid"
)

// JSONExporter writes the records as an indented JSON array. With Grouped
// set it also writes a by-site document next to it.
type JSONExporter struct {
	Path    string
	Grouped bool
	// RunID identifies the run in the grouped document; a new one is generated when empty
	RunID string
}

// GroupedDocument is the by-site representation of a run
type GroupedDocument struct {
	RunID      string                             `json:"runId"`
	Websites   map[string][]scraper.ListingRecord `json:"websites"`
	TotalItems int                                `json:"totalItems"`
}

// NewJSONExporter creates a JSON exporter writing to path
func NewJSONExporter(path string, grouped bool) *JSONExporter {
	return &JSONExporter{Path: path, Grouped: grouped}
}

// Export implements Exporter
func (e *JSONExporter) Export(_ context.Context, records []scraper.ListingRecord) error {
	if records == nil {
		records = []scraper.ListingRecord{}
	}
	if err := writeJSON(e.Path, records); err != nil {
		return err
	}

	log := logger.ForExporter("json")
	log.Info().Int("records", len(records)).Str("path", e.Path).Msg("Exported records")

	if !e.Grouped {
		return nil
	}

	runID := e.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	doc := GroupedDocument{
		RunID:      runID,
		Websites:   groupBySite(records),
		TotalItems: len(records),
	}
	path := GroupedPath(e.Path)
	if err := writeJSON(path, doc); err != nil {
		return err
	}
	log.Info().Int("sites", len(doc.Websites)).Str("path", path).Msg("Exported grouped records")
	return nil
}

// GroupedPath returns the grouped document path for a JSON export path
func GroupedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_grouped" + ext
}

// ReadJSON reads back a JSON array written by JSONExporter
func ReadJSON(path string) ([]scraper.ListingRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []scraper.ListingRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewExport("json", "could not create output dir", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.NewExport("json", "could not encode records", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.NewExport("json", "could not write "+path, err)
	}
	return nil
}
