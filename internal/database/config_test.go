package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrtdr/mysqlconn/internal/errs"
)

func TestResolveAddr(t *testing.T) {
	tests := []struct {
		name        string
		host        string
		wantNetwork string
		wantAddr    string
		wantErr     bool
	}{
		{
			name:        "absolute socket path",
			host:        "/var/run/mysqld/mysqld.sock",
			wantNetwork: "unix",
			wantAddr:    "/var/run/mysqld/mysqld.sock",
		},
		{
			name:        "relative socket path",
			host:        "./mysql.sock",
			wantNetwork: "unix",
			wantAddr:    "./mysql.sock",
		},
		{
			name:        "host with port",
			host:        "db.example.com:3307",
			wantNetwork: "tcp",
			wantAddr:    "db.example.com:3307",
		},
		{
			name:        "bare host gets default port",
			host:        "db.example.com",
			wantNetwork: "tcp",
			wantAddr:    "db.example.com:3306",
		},
		{
			name:    "non-numeric port",
			host:    "localhost:abc",
			wantErr: true,
		},
		{
			name:    "port out of range",
			host:    "localhost:70000",
			wantErr: true,
		},
		{
			name:    "zero port",
			host:    "localhost:0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			network, addr, err := resolveAddr(tt.host)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNetwork, network)
			assert.Equal(t, tt.wantAddr, addr)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("localhost", "app")

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "app", cfg.Database)
	assert.Equal(t, 8*time.Hour, cfg.MaxIdleTime)
	assert.Equal(t, 4*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, "+0:00", cfg.TimeZone)
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := (&Config{
		Host:        "db01",
		Database:    "app",
		MaxIdleTime: time.Minute,
		TimeZone:    "Europe/Paris",
	}).withDefaults()

	assert.Equal(t, time.Minute, cfg.MaxIdleTime)
	assert.Equal(t, "Europe/Paris", cfg.TimeZone)
	assert.Equal(t, 4*time.Second, cfg.ConnectTimeout)
}

func TestDSN(t *testing.T) {
	t.Run("tcp host", func(t *testing.T) {
		cfg := DefaultConfig("localhost:3307", "app")
		cfg.User = "reader"
		cfg.Password = "secret"

		dsn, err := cfg.dsn()
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(dsn, "reader:secret@tcp(localhost:3307)/app"), dsn)
		assert.Contains(t, dsn, "parseTime=true")
		assert.Contains(t, dsn, "autocommit=1")
		assert.Contains(t, dsn, "charset=utf8mb4")
		assert.Contains(t, dsn, "sql_mode=")
		assert.Contains(t, dsn, "time_zone=")
	})

	t.Run("socket host", func(t *testing.T) {
		cfg := DefaultConfig("/tmp/mysql.sock", "app")

		dsn, err := cfg.dsn()
		require.NoError(t, err)
		assert.Contains(t, dsn, "unix(/tmp/mysql.sock)/app")
	})

	t.Run("bad port surfaces", func(t *testing.T) {
		cfg := DefaultConfig("localhost:nope", "app")

		_, err := cfg.dsn()
		require.Error(t, err)
		assert.True(t, errs.IsInvalidInput(err))
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("full file", func(t *testing.T) {
		path := writeConfigFile(t, `
host: db.internal:3307
database: app
user: reader
password: secret
max_idle_seconds: 3600
connect_timeout_seconds: 2
time_zone: "+2:00"
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "db.internal:3307", cfg.Host)
		assert.Equal(t, "app", cfg.Database)
		assert.Equal(t, "reader", cfg.User)
		assert.Equal(t, "secret", cfg.Password)
		assert.Equal(t, time.Hour, cfg.MaxIdleTime)
		assert.Equal(t, 2*time.Second, cfg.ConnectTimeout)
		assert.Equal(t, "+2:00", cfg.TimeZone)
	})

	t.Run("omitted fields get defaults", func(t *testing.T) {
		path := writeConfigFile(t, "host: localhost\ndatabase: app\n")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 8*time.Hour, cfg.MaxIdleTime)
		assert.Equal(t, 4*time.Second, cfg.ConnectTimeout)
		assert.Equal(t, "+0:00", cfg.TimeZone)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, errs.IsInvalidInput(err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfigFile(t, "host: [broken\n")

		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.True(t, errs.IsInvalidInput(err))
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mysqlconn.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
