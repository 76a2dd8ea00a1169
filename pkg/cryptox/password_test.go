package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Set up a temporary pepper file for testing
	tmpDir := os.TempDir()
	pepperPath := filepath.Join(tmpDir, "test-pepper")
	SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"accented password", "Mot2PasseÉté!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)

			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"),
				"hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	password := "samepassword"

	hash1, err := HashPassword(password)
	require.NoError(t, err)
	hash2, err := HashPassword(password)
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
}

func TestVerifyPassword(t *testing.T) {
	password := "Abcdef1!"
	hash, err := HashPassword(password)
	require.NoError(t, err)

	t.Run("correct password matches", func(t *testing.T) {
		require.NoError(t, VerifyPassword(password, hash))
	})

	t.Run("wrong password returns ErrMismatch", func(t *testing.T) {
		require.ErrorIs(t, VerifyPassword("Abcdef1?", hash), ErrMismatch)
	})

	t.Run("garbage hash is rejected", func(t *testing.T) {
		require.Error(t, VerifyPassword(password, "not-a-phc-hash"))
		require.Error(t, VerifyPassword(password, "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA"))
	})
}

func TestNewCSRFToken(t *testing.T) {
	token, err := NewCSRFToken()
	require.NoError(t, err)
	require.Len(t, token, 64, "32 bytes hex-encode to 64 chars")
	require.Regexp(t, "^[0-9a-f]{64}$", token)

	other, err := NewCSRFToken()
	require.NoError(t, err)
	require.NotEqual(t, token, other, "tokens should be unique")
}
