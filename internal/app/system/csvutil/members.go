// internal/app/system/csvutil/members.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxRows bounds a single member import.
const MaxRows = 2500

// ErrTooManyRows is returned when an import exceeds MaxRows.
var ErrTooManyRows = fmt.Errorf("csv has more than %d rows", MaxRows)

// MemberHeader is the column order ParseMembers expects. The header row
// itself is optional.
var MemberHeader = []string{"Name", "Father's Name", "Mobile", "District", "Designation", "Jurisdiction"}

// MemberRow is one raw import row. Line is the 1-based line in the file.
// Values are trimmed but not otherwise normalized.
type MemberRow struct {
	Line         int
	Name         string
	FatherName   string
	Mobile       string
	District     string
	Designation  string
	Jurisdiction string
}

// RowError describes a row that could not be read.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParseMembers reads r in MemberHeader order. Blank rows are skipped; rows
// with fewer than five columns are reported as errors and left out.
func ParseMembers(r io.Reader) ([]MemberRow, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		rows []MemberRow
		errs []RowError
	)
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs = append(errs, RowError{Line: line, Reason: "unreadable row"})
			continue
		}
		if line == 1 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			if isHeader(rec) {
				continue
			}
		}
		if blank(rec) {
			continue
		}
		if len(rec) < 5 {
			errs = append(errs, RowError{Line: line, Reason: "expected name, father's name, mobile, district and designation"})
			continue
		}
		if len(rows) == MaxRows {
			return nil, nil, ErrTooManyRows
		}
		row := MemberRow{
			Line:        line,
			Name:        strings.TrimSpace(rec[0]),
			FatherName:  strings.TrimSpace(rec[1]),
			Mobile:      strings.TrimSpace(rec[2]),
			District:    strings.TrimSpace(rec[3]),
			Designation: strings.TrimSpace(rec[4]),
		}
		if len(rec) > 5 {
			row.Jurisdiction = strings.TrimSpace(rec[5])
		}
		rows = append(rows, row)
	}
	return rows, errs, nil
}

func isHeader(rec []string) bool {
	first := strings.ToLower(strings.TrimSpace(rec[0]))
	return first == "name" || first == "full name"
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
