package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Sternrassler/wise-api-client/pkg/client"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "WISE"

// exportConfig is the resolved configuration of one export run.
type exportConfig struct {
	APIKey         string
	SigningKeyFile string
	Production     bool
	ProfileID      string

	Status       string
	ResourceType string
	Since        time.Time
	Until        time.Time
	Size         int

	RedisURL      string
	CheckpointTTL time.Duration
	MetricsAddr   string

	LogLevel  string
	LogPretty bool
}

// newFlagSet declares the command line flags. Every flag can also be set
// through a WISE_ environment variable or the config file.
func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("wise-export", pflag.ContinueOnError)
	fs.String("config", "", "config file (yaml, json or toml)")
	fs.String("api_key", "", "Wise API token")
	fs.String("signing_key_file", "", "RSA private key used to answer SCA challenges")
	fs.Bool("production", true, "use the production API instead of the sandbox")
	fs.String("profile_id", "", "profile whose activities are exported")
	fs.String("status", "", "activity status filter")
	fs.String("resource_type", "", "monetary resource type filter")
	fs.String("since", "", "lower bound of the activity window (RFC 3339)")
	fs.String("until", "", "upper bound of the activity window (RFC 3339)")
	fs.Int("size", 0, "page size, 1 to 100 (server default when 0)")
	fs.String("redis_url", "", "Redis URL for resumable exports")
	fs.Duration("checkpoint_ttl", 7*24*time.Hour, "lifetime of a stored checkpoint")
	fs.String("metrics_addr", "", "listen address of the /metrics and /health server")
	fs.String("log_level", "info", "log level (debug, info, warn, error)")
	fs.Bool("log_pretty", false, "human-readable logs")
	return fs
}

// loadConfig parses args and merges them with the environment and the
// optional config file. Flags win over environment, environment over file.
func loadConfig(args []string) (exportConfig, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return exportConfig{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return exportConfig{}, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return exportConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return configFromViper(v)
}

func configFromViper(v *viper.Viper) (exportConfig, error) {
	cfg := exportConfig{
		APIKey:         v.GetString("api_key"),
		SigningKeyFile: v.GetString("signing_key_file"),
		Production:     v.GetBool("production"),
		ProfileID:      v.GetString("profile_id"),
		Status:         v.GetString("status"),
		ResourceType:   v.GetString("resource_type"),
		Size:           v.GetInt("size"),
		RedisURL:       v.GetString("redis_url"),
		CheckpointTTL:  v.GetDuration("checkpoint_ttl"),
		MetricsAddr:    v.GetString("metrics_addr"),
		LogLevel:       v.GetString("log_level"),
		LogPretty:      v.GetBool("log_pretty"),
	}

	var err error
	if cfg.Since, err = parseTime("since", v.GetString("since")); err != nil {
		return exportConfig{}, err
	}
	if cfg.Until, err = parseTime("until", v.GetString("until")); err != nil {
		return exportConfig{}, err
	}

	if cfg.APIKey == "" {
		return exportConfig{}, errors.New("api_key is required")
	}
	if cfg.ProfileID == "" {
		return exportConfig{}, errors.New("profile_id is required")
	}

	return cfg, nil
}

func parseTime(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// clientConfig builds the Wise client configuration, reading the signing
// key from disk when one is configured.
func (c exportConfig) clientConfig() (client.Config, error) {
	var key []byte
	if c.SigningKeyFile != "" {
		data, err := os.ReadFile(c.SigningKeyFile)
		if err != nil {
			return client.Config{}, fmt.Errorf("read signing key: %w", err)
		}
		key = data
	}

	cfg := client.DefaultConfig(c.APIKey, key)
	cfg.Production = c.Production
	return cfg, nil
}

// filters maps the configuration onto activity filters.
func (c exportConfig) filters() client.ActivityFilters {
	f := client.ActivityFilters{
		MonetaryResourceType: c.ResourceType,
		Status:               c.Status,
		Since:                c.Since,
		Until:                c.Until,
	}
	if c.Size != 0 {
		size := c.Size
		f.Size = &size
	}
	return f
}
