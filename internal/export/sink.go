// Package export persists scrape results to the per-site directory: an
// accumulating JSON array (the system of record), a spreadsheet regenerated
// wholesale from it, and a plain-text dump of only the latest run's new
// records for quick review.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/tender-radar/tenderscrape/pkg/models"
)

const sheetName = "Appels d'offres"

// Sink writes export files under a base data directory, one subdirectory per
// scraper id.
type Sink struct {
	baseDir string
}

// NewSink returns a Sink rooted at baseDir.
func NewSink(baseDir string) *Sink {
	return &Sink{baseDir: baseDir}
}

// Dir returns the export directory for a scraper id, creating it if needed.
func (s *Sink) Dir(scraperID string) (string, error) {
	dir := filepath.Join(s.baseDir, scraperID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	return dir, nil
}

// Export merges newRecords into the site's accumulated JSON store and
// regenerates the derived views. Existing records keep their order; new ones
// are appended in extraction order. It returns an error instead of panicking
// for every I/O failure so a scraper can report export trouble without
// losing its scrape result.
func (s *Sink) Export(scraperID string, newRecords []models.TenderRecord) error {
	if len(newRecords) == 0 {
		return nil
	}

	dir, err := s.Dir(scraperID)
	if err != nil {
		return err
	}

	jsonPath := filepath.Join(dir, scraperID+"_tenders.json")
	existing := LoadAccumulated(jsonPath)
	all := append(existing, newRecords...)

	if err := writeJSON(jsonPath, all); err != nil {
		return err
	}
	if err := writeWorkbook(filepath.Join(dir, scraperID+"_tenders.xlsx"), all); err != nil {
		return err
	}
	if err := writeTextDump(filepath.Join(dir, "data.txt"), newRecords); err != nil {
		return err
	}

	log.Info().
		Str("scraper", scraperID).
		Int("new", len(newRecords)).
		Int("total", len(all)).
		Msg("Export complete")
	return nil
}

// Rewrite replaces a site's accumulated JSON store wholesale and regenerates
// the spreadsheet from it. The text dump is left alone; it belongs to the
// last scrape run, not to the accumulated data.
func (s *Sink) Rewrite(scraperID string, records []models.TenderRecord) error {
	dir, err := s.Dir(scraperID)
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, scraperID+"_tenders.json"), records); err != nil {
		return err
	}
	return writeWorkbook(filepath.Join(dir, scraperID+"_tenders.xlsx"), records)
}

// LoadAccumulated reads a site's JSON store. A missing file or malformed
// JSON yields an empty prior array; a corrupt export must never block a run.
func LoadAccumulated(path string) []models.TenderRecord {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to read prior export, starting empty")
		}
		return nil
	}
	var records []models.TenderRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Prior export is corrupt, starting empty")
		return nil
	}
	return records
}

// writeJSON rewrites the whole accumulated array. The encoder keeps accented
// characters readable instead of escaping them.
func writeJSON(path string, records []models.TenderRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// writeWorkbook regenerates the spreadsheet projection in full. The file is
// disposable; the JSON array is the source of truth.
func writeWorkbook(path string, records []models.TenderRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []string{"Objet", "Date limite", "Date limite (ISO)", "Lien"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for i, rec := range records {
		values := []string{rec.Title, rec.DeadlineText, rec.DeadlineISO, rec.Link}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writeTextDump writes only the latest run's new records, for human review.
func writeTextDump(path string, records []models.TenderRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	for _, rec := range records {
		deadline := rec.DeadlineText
		if deadline == "" {
			deadline = "N/A"
		}
		link := rec.Link
		if link == "" {
			link = "N/A"
		}
		if _, err := fmt.Fprintf(f, "Objet: %s\nDate limite: %s\nLien: %s\n---\n",
			rec.Title, deadline, link); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
