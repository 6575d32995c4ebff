package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadWith("", envMap(map[string]string{"JWT_SECRET": "s"}))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.AccessTokenTTL())
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTokenTTL())
	assert.Equal(t, 5*time.Minute, cfg.PlanetCacheTTL())
	assert.Equal(t, time.UTC, cfg.Location())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingSecret(t *testing.T) {
	_, err := loadWith("", envMap(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_EnvOverrides(t *testing.T) {
	cfg, err := loadWith("", envMap(map[string]string{
		"JWT_SECRET":               "s",
		"PORT":                     "9000",
		"DATABASE_DRIVER":          "sqlite",
		"DATABASE_URL":             "file:stellar.db",
		"CORS_ORIGINS":             "http://a.test, http://b.test,",
		"PLANET_CACHE_TTL_SECONDS": "60",
		"AI_PROVIDER":              "none",
	}))
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, time.Minute, cfg.PlanetCacheTTL())
	assert.Equal(t, "none", cfg.AI.Provider)
}

func TestLoad_BadNumber(t *testing.T) {
	_, err := loadWith("", envMap(map[string]string{"JWT_SECRET": "s", "REFRESH_TOKEN_TTL_DAYS": "soon"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_TOKEN_TTL_DAYS")
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stellar.yaml")
	body := strings.Join([]string{
		"server:",
		"  port: \"7000\"",
		"  timezone: Asia/Shanghai",
		"auth:",
		"  jwt_secret: from-file",
		"ai:",
		"  provider: gemini",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := loadWith(path, envMap(map[string]string{"PORT": "7001"}))
	if err != nil && strings.Contains(err.Error(), "TIMEZONE") {
		t.Skip("tzdata not available")
	}
	require.NoError(t, err)
	assert.Equal(t, "7001", cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "Asia/Shanghai", cfg.Location().String())
	// untouched keys keep their defaults
	assert.Equal(t, "pgx", cfg.Database.Driver)
}

func TestValidate(t *testing.T) {
	base := defaults()
	base.Auth.JWTSecret = "s"
	require.NoError(t, base.Validate())

	bad := base
	bad.Database.Driver = "mysql"
	assert.Error(t, bad.Validate())

	bad = base
	bad.AI.Provider = "claude"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Server.Timezone = "Mars/Olympus"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Auth.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short"))
	assert.Error(t, bad.Validate())

	good := base
	good.Auth.EncryptionKey = base64.StdEncoding.EncodeToString(make([]byte, 32))
	require.NoError(t, good.Validate())
	key, err := good.EncryptionKeyBytes()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
