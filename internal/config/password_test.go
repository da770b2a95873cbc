package config

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		pepper   string
		wantCost int
		wantErr  bool
	}{
		{"default cost", "", "", 12, false},
		{"lowest accepted", "10", "", 10, false},
		{"highest accepted", "14", "", 14, false},
		{"with pepper", "11", "s3cret", 11, false},
		{"too low", "9", "", 0, true},
		{"too high", "15", "", 0, true},
		{"non numeric", "strong", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.cost)
			t.Setenv("PASSWORD_PEPPER", tt.pepper)

			cfg, err := NewPasswordConfig()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.Equal(t, tt.pepper, cfg.Pepper)
		})
	}
}

// fastConfig bypasses the cost floor so hashing tests stay quick.
func fastConfig(pepper string) *PasswordConfig {
	return &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: pepper}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := fastConfig("")

	hash, err := cfg.HashPassword("placement-2026")
	require.NoError(t, err)
	assert.NotEqual(t, "placement-2026", hash)
	assert.True(t, cfg.VerifyPassword("placement-2026", hash))
	assert.False(t, cfg.VerifyPassword("placement-2025", hash))
	assert.False(t, cfg.VerifyPassword("placement-2026", "not-a-hash"))
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := fastConfig("pepper-a")
	hash, err := peppered.HashPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("hunter22", hash))
	assert.False(t, fastConfig("").VerifyPassword("hunter22", hash), "hash must depend on the pepper")
	assert.False(t, fastConfig("pepper-b").VerifyPassword("hunter22", hash), "rotating the pepper invalidates hashes")
}

func TestPasswordConfig_LengthLimit(t *testing.T) {
	cfg := fastConfig("")

	_, err := cfg.HashPassword(strings.Repeat("a", 72))
	assert.NoError(t, err)

	hash, err := cfg.HashPassword(strings.Repeat("a", 73))
	assert.Error(t, err)
	assert.Empty(t, hash)
}

func TestPasswordConfig_SaltUniqueness(t *testing.T) {
	cfg := fastConfig("")

	first, err := cfg.HashPassword("same-password")
	require.NoError(t, err)
	second, err := cfg.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, cfg.VerifyPassword("same-password", first))
	assert.True(t, cfg.VerifyPassword("same-password", second))
}

func TestPasswordConfig_ConcurrentAccess(t *testing.T) {
	cfg := fastConfig("shared")
	hash, err := cfg.HashPassword("concurrent")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, cfg.VerifyPassword("concurrent", hash))
		}()
	}
	wg.Wait()
}
