package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashAndCompare(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "обычный пароль", password: "supersecret"},
		{name: "пароль со спецсимволами", password: "p@ssw0rd!#$%"},
		{name: "короткий пароль", password: "short"},
		{name: "длинный пароль", password: "averylongpasswordwithwellovertwentycharacters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := GetHash(tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			assert.NoError(t, CompareHash(hash, tt.password))
			assert.Error(t, CompareHash(hash, tt.password+"x"))
		})
	}
}

func TestCompareHash_WrongHash(t *testing.T) {
	other, err := GetHash("another_password")
	require.NoError(t, err)

	assert.Error(t, CompareHash(other, "supersecret"))
	assert.Error(t, CompareHash(other, ""))
}

func TestGetHash_Salted(t *testing.T) {
	first, err := GetHash("supersecret")
	require.NoError(t, err)
	second, err := GetHash("supersecret")
	require.NoError(t, err)

	// bcrypt солит каждый вызов, хэши не должны совпадать.
	assert.NotEqual(t, first, second)
}
