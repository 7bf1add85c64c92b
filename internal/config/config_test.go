package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"addr": ":9090",
		"database_url": "postgres://localhost/app",
		"max_upload_files": 3
	}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres://localhost/app", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.MaxUploadFiles)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = LoadConfig(bad)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{MaxUploadBytes: -1}
	require.Error(t, cfg.Validate())

	cfg = Config{MaxUploadFiles: -1}
	require.Error(t, cfg.Validate())

	cfg = Config{}
	require.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Addr: ":7000"}
	merged := cfg.MergeWithDefaults(Config{
		Addr:        ":8000",
		DatabaseURL: "postgres://localhost/app",
	})

	assert.Equal(t, ":7000", merged.Addr)
	assert.Equal(t, "postgres://localhost/app", merged.DatabaseURL)
	assert.Equal(t, "uploads", merged.BlobDir)
	assert.Equal(t, int64(1<<20), merged.MaxUploadBytes)
	assert.Equal(t, 5, merged.MaxUploadFiles)
}

func TestNewJWTConfig(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := NewJWTConfig()
		require.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("JWT_EXPIRATION_HOURS", "")
		cfg, err := NewJWTConfig()
		require.NoError(t, err)
		assert.Equal(t, 24, cfg.ExpirationHours)
	})

	t.Run("invalid hours", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("JWT_EXPIRATION_HOURS", "zero")
		_, err := NewJWTConfig()
		require.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, cfg.VerifyPassword("s3cret-password", hash))
	assert.False(t, cfg.VerifyPassword("wrong", hash))
}

func TestPasswordPepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "pepper"}
	plain := &PasswordConfig{BcryptCost: 10}

	hash, err := peppered.HashPassword("pw")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("pw", hash))
	assert.False(t, plain.VerifyPassword("pw", hash))
}

func TestPasswordCostRange(t *testing.T) {
	t.Setenv("BCRYPT_COST", "9")
	_, err := NewPasswordConfig()
	require.Error(t, err)

	t.Setenv("BCRYPT_COST", "12")
	cfg, err := NewPasswordConfig()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.BcryptCost)
}
