package agent

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the edge agent configuration.
type Config struct {
	AccelerometerCSV string        `mapstructure:"accelerometer_csv"`
	GpsCSV           string        `mapstructure:"gps_csv"`
	HubURL           string        `mapstructure:"hub_url"`
	BatchSize        int           `mapstructure:"batch_size"`
	ReadInterval     time.Duration `mapstructure:"read_interval"`
	LogLevel         string        `mapstructure:"log_level"`
}

// LoadConfig reads the agent configuration from an optional YAML file and
// AGENT_-prefixed environment variables, with usable defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("accelerometer_csv", "data/accelerometer.csv")
	v.SetDefault("gps_csv", "data/gps.csv")
	v.SetDefault("hub_url", "http://localhost:8000")
	v.SetDefault("batch_size", 10)
	v.SetDefault("read_interval", "500ms")
	v.SetDefault("log_level", "info")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("agent")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("AGENT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults and env cover everything.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.ReadInterval <= 0 {
		cfg.ReadInterval = 500 * time.Millisecond
	}

	return &cfg, nil
}
