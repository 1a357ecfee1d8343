package lead

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadCSV reads leads from a CSV file with a header row. The "id" column is
// required; company_name, contact_name, contact_email, website and notes are
// picked up when present. Unknown columns are ignored.
func ReadCSV(r io.Reader) ([]Lead, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, col := range header {
		cols[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := cols["id"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "id")
	}

	field := func(rec []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	var leads []Lead
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		leads = append(leads, Lead{
			ID:           field(rec, "id"),
			CompanyName:  field(rec, "company_name"),
			ContactName:  field(rec, "contact_name"),
			ContactEmail: field(rec, "contact_email"),
			Website:      field(rec, "website"),
			Notes:        field(rec, "notes"),
		})
	}
	return leads, nil
}
