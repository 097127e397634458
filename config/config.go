package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envPrefix namespaces all environment variables: MEMBOX_API_KEY,
// MEMBOX_BASE_URL, MEMBOX_NAMESPACE, MEMBOX_TIMEOUT, MEMBOX_RETRY_ATTEMPTS,
// MEMBOX_RETRY_DELAY.
const envPrefix = "MEMBOX"

// DefaultBaseURL is the hosted MemBox API endpoint.
const DefaultBaseURL = "https://api.membox.dev"

// Config carries the loadable client settings.
type Config struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Namespace     string        `mapstructure:"namespace"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults also register the keys so AutomaticEnv picks them up.
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("namespace", "default")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("retry_delay", 500*time.Millisecond)
	return v
}

// FromEnv loads configuration from MEMBOX_* environment variables, applying
// defaults for anything unset.
func FromEnv() (Config, error) {
	return unmarshal(newViper())
}

// Load reads configuration from a file (format inferred from the extension),
// with environment variables taking precedence over file values.
func Load(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshaling: %w", err)
	}
	return cfg, nil
}
