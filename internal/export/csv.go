// Package export serializes per-line statements into downloadable formats.
// It has no knowledge of HTTP; callers own content types and headers.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

var csvHeader = []string{"Expense", "Amount Owed", "Split Type", "Percentage", "Date", "Owed To/From"}

// WriteCSV renders a per-line statement as CSV with a header row.
func WriteCSV(w io.Writer, statement []calculator.StatementLine) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, line := range statement {
		percentage := "N/A"
		if line.Kind == models.SplitPercentage && line.Percentage != nil {
			percentage = line.Percentage.StringFixed(2)
		}

		// StringFixed keeps the two money decimals; String would trim
		// trailing zeros and render 40.00 as "40".
		record := []string{
			line.Description,
			line.AmountOwed.StringFixed(2),
			string(line.Kind),
			percentage,
			time.Unix(line.CreatedAt, 0).UTC().Format(time.RFC3339),
			line.Direction,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
