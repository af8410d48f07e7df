package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestReadWithDefaults(t *testing.T) {
	p := writeYAML(t, `
app:
  http:
    port: 9090
jwt:
  secret: s3cr3t
db:
  driver: postgres
  dsn: postgres://localhost/todos
`)
	c, err := Read(p)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "s3cr3t", c.JWT.Secret)
	assert.Equal(t, 15, c.Todo.PerPage)
	assert.Equal(t, 100, c.Todo.MaxPerPage)
	assert.Equal(t, 300, c.Redis.TokenCacheTTLSec)
	assert.EqualValues(t, 300, c.App.HTTP.MaxInFlight)
	assert.Equal(t, 0, c.JWT.AccessTokenTTLMin)
}

func TestReadEnvOverride(t *testing.T) {
	p := writeYAML(t, "jwt:\n  secret: from-file\n")
	t.Setenv("APP_JWT_SECRET", "from-env")
	t.Setenv("APP_DB_DSN", "/tmp/override.db")

	c, err := Read(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, "/tmp/override.db", c.DB.DSN)
}

func TestReadRequiresSecret(t *testing.T) {
	p := writeYAML(t, "app:\n  name: x\n")
	_, err := Read(p)
	assert.Error(t, err)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
