package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/abdullaharshad/budget-tracker/internal/models"
)

// BuildCSV renders a user's transactions as a CSV document.
func BuildCSV(transactions []models.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Title", "Amount", "Category", "Type", "Date"}); err != nil {
		return nil, err
	}
	for _, t := range transactions {
		record := []string{
			t.Title,
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
			t.Category,
			t.Type,
			t.Date.Format("2006-01-02"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
