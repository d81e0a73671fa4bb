// Package csv parses batch import files exported from spreadsheets.
package csv

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/schoolbudget/backend/internal/importer"
	"github.com/shopspring/decimal"
)

// dateFormats are tried in order when parsing the date column.
var dateFormats = []string{"2006-01-02", "02.01.2006", time.RFC3339}

// row maps the columns of a batch file. Transfers fill the to_* columns.
type row struct {
	Kind        string `csv:"kind"`
	ProjectID   string `csv:"project_id"`
	Category    string `csv:"category"`
	ToProjectID string `csv:"to_project_id"`
	ToCategory  string `csv:"to_category"`
	Date        string `csv:"date"`
	Amount      string `csv:"amount"`
	Description string `csv:"description"`
	Reference   string `csv:"reference"`
}

// Parse reads a batch file into import records.
//
// Parse fails on an unreadable file or header, not on bad values in a row:
// those are passed on as records so that the import reports them in its
// per-record error list together with all other validation failures.
func Parse(reader io.Reader) ([]importer.Record, error) {
	var rows []row
	err := gocsv.Unmarshal(reader, &rows)
	if err != nil {
		return nil, fmt.Errorf("error parsing batch file: %w", err)
	}

	records := make([]importer.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}

	return records, nil
}

// record converts a raw row into an import record. Unparseable IDs, dates
// and amounts become zero values, which the importer rejects per record.
func (r row) record() importer.Record {
	record := importer.Record{
		Kind:        importer.RecordKind(strings.ToLower(strings.TrimSpace(r.Kind))),
		Category:    strings.TrimSpace(r.Category),
		ToCategory:  strings.TrimSpace(r.ToCategory),
		Description: strings.TrimSpace(r.Description),
		Reference:   strings.TrimSpace(r.Reference),
	}

	if id, err := uuid.Parse(strings.TrimSpace(r.ProjectID)); err == nil {
		record.ProjectID = id
	}

	if id, err := uuid.Parse(strings.TrimSpace(r.ToProjectID)); err == nil {
		record.ToProjectID = id
	}

	for _, format := range dateFormats {
		if date, err := time.Parse(format, strings.TrimSpace(r.Date)); err == nil {
			record.Date = date.In(time.UTC)
			break
		}
	}

	if amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(r.Amount), ",", ".")); err == nil {
		record.Amount = amount
	}

	return record
}
