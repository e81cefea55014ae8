package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvDSN overrides storage.dsn when set.
const EnvDSN = "TASKMASTER_DSN"

// DefaultGoogleList is the Google Tasks list that push writes to.
const DefaultGoogleList = "Taskmaster"

// Settings is the content of config.toml.
//
//	page_size = 12
//	strict_sort = false
//
//	[storage]
//	backend = "file"          # file, mysql or memory
//	key = "taskmaster_tasks"
//	file = "storage.json"
//	dsn = "user:pass@tcp(localhost:3306)/taskmaster"
//	quota_bytes = 5242880
//
//	[google]
//	list = "Taskmaster"
type Settings struct {
	PageSize   int             `toml:"page_size"`
	StrictSort bool            `toml:"strict_sort"`
	Storage    StorageSettings `toml:"storage"`
	Google     GoogleSettings  `toml:"google"`
}

// StorageSettings selects the key-value backend.
type StorageSettings struct {
	Backend    string `toml:"backend"`
	Key        string `toml:"key"`
	File       string `toml:"file"`
	DSN        string `toml:"dsn"`
	QuotaBytes int64  `toml:"quota_bytes"`
}

// GoogleSettings configures push.
type GoogleSettings struct {
	List string `toml:"list"`
}

// LoadSettings reads config.toml if present and applies environment
// overrides. Unknown keys are an error.
func (c *Config) LoadSettings() error {
	var s Settings
	md, err := toml.DecodeFile(c.SettingsPath(), &s)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s = Settings{}
	case err != nil:
		return fmt.Errorf("invalid %s: %w", SettingsFile, err)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return fmt.Errorf("invalid %s: unknown key(s): %s", SettingsFile, strings.Join(keys, ", "))
		}
	}

	if s.PageSize < 0 {
		return fmt.Errorf("invalid %s: page_size must be positive", SettingsFile)
	}
	if dsn := os.Getenv(EnvDSN); dsn != "" {
		s.Storage.DSN = dsn
	}
	c.Settings = s
	return nil
}

// GoogleList returns the push target list name.
func (c *Config) GoogleList() string {
	if c.Settings.Google.List != "" {
		return c.Settings.Google.List
	}
	return DefaultGoogleList
}
