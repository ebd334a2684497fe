package causelist

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes a header row followed by one row per entry
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"case_ref", "parties", "hearing_date", "bench"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.CaseRef, e.Parties, e.HearingDate, e.Bench}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
