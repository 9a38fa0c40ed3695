package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string    `mapstructure:"environment"`
	Server      Server    `mapstructure:"server"`
	Logger      Logger    `mapstructure:"logger"`
	Auth        Auth      `mapstructure:"auth"`
	Providers   Providers `mapstructure:"providers"`
}

type Server struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Auth struct {
	BearerToken string `mapstructure:"bearer_token"`
}

type Providers struct {
	Enhance EnhanceConfig `mapstructure:"enhance"`
	TwentyI TwentyIConfig `mapstructure:"twentyi"`
}

// EnhanceConfig holds credentials and endpoints for the Enhance control
// panel API. OrgID is the reseller's top-level organization under which
// customer orgs are created.
type EnhanceConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	AccessToken string        `mapstructure:"access_token"`
	OrgID       string        `mapstructure:"org_id"`
	PanelURL    string        `mapstructure:"panel_url"`
	Nameservers []string      `mapstructure:"nameservers"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// TwentyIConfig holds credentials and endpoints for the 20i reseller API.
type TwentyIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	ResellerID  string        `mapstructure:"reseller_id"`
	PanelURL    string        `mapstructure:"panel_url"`
	Nameservers []string      `mapstructure:"nameservers"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from files and environment variables
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/hostpanel")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("hostpanel")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "json")

	viper.SetDefault("providers.enhance.base_url", "https://cp.example.com/api")
	viper.SetDefault("providers.enhance.timeout", "30s")
	viper.SetDefault("providers.twentyi.base_url", "https://api.20i.com")
	viper.SetDefault("providers.twentyi.timeout", "30s")
}
