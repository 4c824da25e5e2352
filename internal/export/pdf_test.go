package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullaharshad/budget-tracker/internal/models"
)

func TestBuildPDF(t *testing.T) {
	summary := &models.Summary{
		TotalIncome:  2500,
		TotalExpense: 82.5,
		Balance:      2417.5,
	}

	data, err := BuildPDF("Alice", sampleTransactions(), summary)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}
