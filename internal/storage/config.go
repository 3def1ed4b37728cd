package storage

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds database configuration settings
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
	CacheSizeKB     int
}

// DefaultConfig returns default database configuration
func DefaultConfig() *Config {
	return &Config{
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		BusyTimeout:     5 * time.Second,
		CacheSizeKB:     16000,
	}
}

// pragmas returns the per-connection SQLite pragmas, in the
// name(value) form the driver accepts in a DSN.
func (c *Config) pragmas() []string {
	return []string{
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"temp_store(memory)",
		fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()),
		"foreign_keys(1)",
		fmt.Sprintf("cache_size(-%d)", c.CacheSizeKB),
	}
}

// dsn applies the pragmas to every connection the pool opens.
func (c *Config) dsn() string {
	q := url.Values{}
	for _, p := range c.pragmas() {
		q.Add("_pragma", p)
	}
	return c.Path + "?" + q.Encode()
}
