package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BrowserUserAgent is sent on media and StreamYard requests; some CDNs
// reject default client identifiers.
const BrowserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

type Config struct {
	Log          LogConfig          `mapstructure:"log" yaml:"log"`
	EventBrite   EventBriteConfig   `mapstructure:"eventbrite" yaml:"eventbrite"`
	StreamYard   StreamYardConfig   `mapstructure:"streamyard" yaml:"streamyard"`
	Registration RegistrationConfig `mapstructure:"registration" yaml:"registration"`
	Download     DownloadConfig     `mapstructure:"download" yaml:"download"`
	HTTP         HTTPConfig         `mapstructure:"http" yaml:"http"`
	Store        StoreConfig        `mapstructure:"store" yaml:"store"`
	Status       StatusConfig       `mapstructure:"status" yaml:"status"`
}

type LogConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	Level         string `mapstructure:"level" yaml:"level"`
	IncludeStdout bool   `mapstructure:"include_stdout" yaml:"include_stdout"`
}

type EventBriteConfig struct {
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	OrgID    string `mapstructure:"org_id" yaml:"org_id"`
	PageSize int    `mapstructure:"page_size" yaml:"page_size"`
}

type StreamYardConfig struct {
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	APIURL   string `mapstructure:"api_url" yaml:"api_url"`
	TimeZone string `mapstructure:"time_zone" yaml:"time_zone"`
}

type RegistrationConfig struct {
	Email     string `mapstructure:"email" yaml:"email"`
	FirstName string `mapstructure:"first_name" yaml:"first_name"`
	LastName  string `mapstructure:"last_name" yaml:"last_name"`
}

type DownloadConfig struct {
	OutDir    string `mapstructure:"out_dir" yaml:"out_dir"`
	Workers   int    `mapstructure:"workers" yaml:"workers"`
	ChunkSize int    `mapstructure:"chunk_size" yaml:"chunk_size"`
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

type HTTPConfig struct {
	Proxy              string        `mapstructure:"proxy" yaml:"proxy"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	Timeout            time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type StoreConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Driver      string `mapstructure:"driver" yaml:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn" yaml:"postgres_dsn"`
}

type StatusConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Load builds the configuration from defaults, an optional YAML file, a .env
// file, COSMICO_* environment variables and the given command-line flags, in
// increasing order of precedence. flags maps config keys to the flag that
// overrides them.
func Load(path string, flags map[string]*pflag.Flag) (*Config, error) {
	// .env is optional; a missing file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}

	haveFile := true
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		haveFile = false
	}

	v := viper.New()

	// Set Defaults
	v.SetDefault("log.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.include_stdout", true)
	v.SetDefault("eventbrite.base_url", "https://www.eventbrite.it")
	v.SetDefault("eventbrite.org_id", "")
	v.SetDefault("eventbrite.page_size", 20)
	v.SetDefault("registration.email", "")
	v.SetDefault("registration.first_name", "")
	v.SetDefault("registration.last_name", "")
	v.SetDefault("http.proxy", "")
	v.SetDefault("http.insecure_skip_verify", false)
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("streamyard.base_url", "https://streamyard.com")
	v.SetDefault("streamyard.api_url", "https://oa-api.streamyard.com")
	v.SetDefault("streamyard.time_zone", "Europe/Rome")
	v.SetDefault("download.out_dir", "output")
	v.SetDefault("download.workers", 2)
	v.SetDefault("download.chunk_size", 8192)
	v.SetDefault("download.user_agent", BrowserUserAgent)
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("store.enabled", true)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "cosmico-webinar.db")
	v.SetDefault("status.addr", "")

	if haveFile {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// Support Environment Variables
	v.SetEnvPrefix("COSMICO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Download.Workers <= 0 {
		c.Download.Workers = 2
	}

	if c.Download.ChunkSize <= 0 {
		c.Download.ChunkSize = 8192
	}

	if c.Download.OutDir == "" {
		c.Download.OutDir = "output"
	}

	if c.Download.UserAgent == "" {
		c.Download.UserAgent = BrowserUserAgent
	}

	if c.EventBrite.PageSize <= 0 {
		c.EventBrite.PageSize = 20
	}

	c.EventBrite.BaseURL = strings.TrimRight(c.EventBrite.BaseURL, "/")
	c.StreamYard.BaseURL = strings.TrimRight(c.StreamYard.BaseURL, "/")
	c.StreamYard.APIURL = strings.TrimRight(c.StreamYard.APIURL, "/")

	if c.Store.Enabled {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.SQLitePath == "" {
				return errors.New("store: sqlite_path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.PostgresDSN == "" {
				return errors.New("store: postgres_dsn is required for the postgres driver")
			}
		default:
			return fmt.Errorf("store: unknown driver %q (want sqlite or postgres)", c.Store.Driver)
		}
	}

	return nil
}

// RequireRegistration checks the values the download command needs to
// register for webinars on the user's behalf.
func (c *Config) RequireRegistration() error {
	if c.EventBrite.OrgID == "" {
		return errors.New("eventbrite org id is required (--org-id or eventbrite.org_id)")
	}
	if c.Registration.Email == "" {
		return errors.New("registration email is required (--email)")
	}
	if c.Registration.FirstName == "" {
		return errors.New("registration first name is required (--first-name)")
	}
	if c.Registration.LastName == "" {
		return errors.New("registration last name is required (--last-name)")
	}
	return nil
}
