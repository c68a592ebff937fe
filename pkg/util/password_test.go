package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("senhaForte!2024")
	require.NoError(t, err)

	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "senhaForte!2024", hash)
	assert.Contains(t, hash, "$2a$")
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	first, err := HashPassword("senhaForte!2024")
	require.NoError(t, err)
	second, err := HashPassword("senhaForte!2024")
	require.NoError(t, err)

	// salts distintos, mas ambos verificam a mesma senha
	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword(first, "senhaForte!2024"))
	assert.True(t, VerifyPassword(second, "senhaForte!2024"))
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("senhaForte!2024")
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{"senha correta", hash, "senhaForte!2024", true},
		{"senha errada", hash, "senhaErrada", false},
		{"senha vazia", hash, "", false},
		{"hash corrompido", "nao-e-um-hash-bcrypt", "senhaForte!2024", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.hash, tt.password))
		})
	}
}
