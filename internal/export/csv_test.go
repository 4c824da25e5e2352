package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullaharshad/budget-tracker/internal/models"
)

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		{
			Title:    "Salary",
			Amount:   2500,
			Category: "Work",
			Type:     models.TransactionTypeIncome,
			Date:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:    "Groceries, weekly",
			Amount:   82.5,
			Category: "Food",
			Type:     models.TransactionTypeExpense,
			Date:     time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestBuildCSV(t *testing.T) {
	data, err := BuildCSV(sampleTransactions())
	require.NoError(t, err)

	want := "Title,Amount,Category,Type,Date\n" +
		"Salary,2500.00,Work,income,2024-06-01\n" +
		"\"Groceries, weekly\",82.50,Food,expense,2024-06-03\n"
	assert.Equal(t, want, string(data))
}

func TestBuildCSV_Empty(t *testing.T) {
	data, err := BuildCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "Title,Amount,Category,Type,Date\n", string(data))
}
