package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(4) // low cost keeps the test fast

	hash, err := h.Hash("Passw0rd!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "Passw0rd!")

	assert.True(t, h.Compare(hash, "Passw0rd!"))
	assert.False(t, h.Compare(hash, "passw0rd!"))
	assert.False(t, h.Compare(hash, ""))
}

func TestNewHasher_CostOutOfRange(t *testing.T) {
	// Out-of-range costs fall back to the bcrypt default instead of failing
	// at hash time.
	h := NewHasher(99)
	hash, err := h.Hash("Passw0rd!")
	require.NoError(t, err)
	assert.True(t, h.Compare(hash, "Passw0rd!"))
}

func TestValidatePasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid", "Passw0rd!", true},
		{"too short", "P0w!", false},
		{"no uppercase", "passw0rd!", false},
		{"no lowercase", "PASSW0RD!", false},
		{"no digit", "Password!", false},
		{"no special", "Passw0rdd", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := ValidatePasswordPolicy(tt.password)
			assert.Equal(t, tt.valid, ok)
			if !tt.valid {
				assert.NotEmpty(t, msg)
			}
		})
	}
}
