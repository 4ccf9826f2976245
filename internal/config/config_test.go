package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// chdirTemp keeps a stray .env in the working tree out of the test
func chdirTemp(t *testing.T) {
	t.Helper()
	testChdir(t, t.TempDir())
}

func TestLoad_File(t *testing.T) {
	chdirTemp(t)
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: memory
auth:
  mode: jwt
  jwt_secret: s3cret
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, AuthModeJWT, cfg.Auth.Mode)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("APP_PORT", "7000")
	t.Setenv("DB_DSN", "postgres://u:p@db:5432/app")
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "postgres://u:p@db:5432/app", cfg.Database.DSN())
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=warn\n"), 0o600))
	// godotenv never overrides a set variable; Setenv restores the original afterwards
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	cfg, err := Load(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	chdirTemp(t)

	_, err := Load(writeConfig(t, "auth:\n  mode: jwt\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "database:\n  driver: mysql\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [broken"))
	assert.Error(t, err)

	t.Setenv("APP_PORT", "not-a-number")
	_, err = Load(writeConfig(t, ""))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", DBName: "d", SSLMode: "disable", MaxConns: 5}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable pool_max_conns=5", db.DSN())
}

// testChdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func testChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })
}
