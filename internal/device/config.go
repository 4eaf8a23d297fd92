package device

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the options surface for opening devices and images.
type Config struct {
	Writable         bool   `mapstructure:"writable"`
	LogicalBlockSize uint64 `mapstructure:"logical_block_size"`
	InitializeEmpty  bool   `mapstructure:"initialize_empty"`
	TestDataPath     string `mapstructure:"test_data_path"`
}

// DefaultConfig returns the defaults used when no config file is present:
// read-only, 512-byte sectors, fail on images with no valid GPT.
func DefaultConfig() *Config {
	return &Config{
		Writable:         false,
		LogicalBlockSize: 512,
		InitializeEmpty:  false,
		TestDataPath:     "./tests",
	}
}

// LoadConfig loads device configuration using Viper
func LoadConfig() (*Config, error) {
	viper.SetConfigName("gpt-config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("../..") // For tests running from subdirectories
	viper.AddConfigPath("$HOME/.gpt")
	viper.AddConfigPath("/etc/gpt")

	// Set defaults
	viper.SetDefault("writable", false)
	viper.SetDefault("logical_block_size", 512)
	viper.SetDefault("initialize_empty", false)
	viper.SetDefault("test_data_path", "./tests")

	// Allow environment variables
	viper.SetEnvPrefix("GPT")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
