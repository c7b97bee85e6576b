package bolt

import (
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

type Config struct {
	Path        string `envconfig:"STORE_BOLT_PATH" default:".devs-assistent/preferences.bolt"`
	OpenTimeout int    `envconfig:"STORE_BOLT_OPEN_TIMEOUT" default:"2"`
}

// New opens (creating if needed) the BoltDB file and its parent directory.
func (c *Config) New() (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return nil, err
	}
	timeout := time.Duration(c.OpenTimeout) * time.Second
	if timeout <= 0 {
		timeout = time.Second
	}
	return bolt.Open(c.Path, 0o600, &bolt.Options{Timeout: timeout})
}
