// Package export renders the flat resolved-occurrence list produced by the
// scheduling engine into interchange formats. The engine owns expansion and
// ordering; this package owns only formatting and escaping.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rezkam/almanac/internal/domain"
)

// Column layouts follow the common calendar-import CSV convention: all-day
// rows leave both time columns empty.
const (
	csvDateLayout = "01/02/2006"
	csvTimeLayout = "03:04 PM"
)

var csvHeader = []string{
	"Subject", "Start Date", "Start Time", "End Date", "End Time",
	"All Day Event", "Description", "Location", "Private",
}

// WriteCSV writes the occurrences as CSV, one row per resolved occurrence.
// Quoting and escaping are delegated to encoding/csv.
func WriteCSV(w io.Writer, occurrences []domain.Occurrence) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, occ := range occurrences {
		row := []string{
			occ.Subject,
			occ.Start.Format(csvDateLayout),
			"",
			occ.Start.Format(csvDateLayout),
			"",
			strconv.FormatBool(occ.AllDay),
			occ.Description,
			occ.Location,
			strconv.FormatBool(!occ.Public),
		}
		if !occ.AllDay {
			row[2] = occ.Start.Format(csvTimeLayout)
			row[3] = occ.End.Format(csvDateLayout)
			row[4] = occ.End.Format(csvTimeLayout)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
