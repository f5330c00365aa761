package database

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.yaml.in/yaml/v3"

	"github.com/adrtdr/mysqlconn/internal/errs"
)

const (
	defaultPort           = 3306
	defaultMaxIdleTime    = 8 * time.Hour
	defaultConnectTimeout = 4 * time.Second
	defaultTimeZone       = "+0:00"
)

// Config holds all settings needed to open a MySQL connection.
type Config struct {
	// Host is a "host", "host:port", or filesystem socket path.
	// A "/" anywhere in the value selects the unix socket form.
	Host string

	// Database is the schema selected after connecting.
	Database string

	// Optional credentials.
	User     string
	Password string

	// MaxIdleTime is how long the wrapped connection may sit unused before
	// the next operation preemptively reconnects. MySQL servers drop idle
	// clients after wait_timeout (8 hours by default) without telling them.
	MaxIdleTime time.Duration

	// ConnectTimeout bounds the dial plus the validation ping.
	ConnectTimeout time.Duration

	// TimeZone is the session time_zone, e.g. "+0:00" or "Europe/Paris".
	TimeZone string
}

// DefaultConfig returns a Config for host and database with the
// standard defaults: 8h idle limit, 4s connect timeout, UTC session.
func DefaultConfig(host, database string) *Config {
	return (&Config{Host: host, Database: database}).withDefaults()
}

// withDefaults returns a copy of c with zero-value fields filled in.
func (c *Config) withDefaults() *Config {
	out := *c
	if out.MaxIdleTime == 0 {
		out.MaxIdleTime = defaultMaxIdleTime
	}
	if out.ConnectTimeout == 0 {
		out.ConnectTimeout = defaultConnectTimeout
	}
	if out.TimeZone == "" {
		out.TimeZone = defaultTimeZone
	}
	return &out
}

// fileConfig is the YAML shape of a config file. Timeouts are plain
// seconds so files stay free of Go duration syntax.
type fileConfig struct {
	Host                  string `yaml:"host"`
	Database              string `yaml:"database"`
	User                  string `yaml:"user"`
	Password              string `yaml:"password"`
	MaxIdleSeconds        int    `yaml:"max_idle_seconds"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
	TimeZone              string `yaml:"time_zone"`
}

// LoadConfig reads a YAML config file and returns a Config with
// defaults applied to any omitted field.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("read config file %s", path), err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("parse config file %s", path), err)
	}

	cfg := &Config{
		Host:           fc.Host,
		Database:       fc.Database,
		User:           fc.User,
		Password:       fc.Password,
		MaxIdleTime:    time.Duration(fc.MaxIdleSeconds) * time.Second,
		ConnectTimeout: time.Duration(fc.ConnectTimeoutSeconds) * time.Second,
		TimeZone:       fc.TimeZone,
	}
	return cfg.withDefaults(), nil
}

// resolveAddr disambiguates the host spec into a driver network/address
// pair. A path separator means a local socket; otherwise "h:p" splits into
// host and port, and a bare host gets the default MySQL port.
func resolveAddr(host string) (network, addr string, err error) {
	if strings.Contains(host, "/") {
		return "unix", host, nil
	}

	parts := strings.Split(host, ":")
	if len(parts) != 2 {
		return "tcp", fmt.Sprintf("%s:%d", host, defaultPort), nil
	}

	port, convErr := strconv.Atoi(parts[1])
	if convErr != nil || port < 1 || port > 65535 {
		return "", "", errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("invalid port in host spec %q", host))
	}
	return "tcp", fmt.Sprintf("%s:%d", parts[0], port), nil
}

// dsn builds the driver DSN. The session is pinned to utf8mb4, TRADITIONAL
// sql_mode, the configured time zone, and autocommit on.
func (c *Config) dsn() (string, error) {
	network, addr, err := resolveAddr(c.Host)
	if err != nil {
		return "", err
	}

	mc := mysql.NewConfig()
	mc.Net = network
	mc.Addr = addr
	mc.DBName = c.Database
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Timeout = c.ConnectTimeout
	mc.ParseTime = true
	mc.Params = map[string]string{
		"charset":    "utf8mb4",
		"sql_mode":   "'TRADITIONAL'",
		"time_zone":  "'" + c.TimeZone + "'",
		"autocommit": "1",
	}
	return mc.FormatDSN(), nil
}
