// Package conf loads and validates application configuration via viper.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled  bool            `yaml:"enabled"`  // true to enable this log
	Path     string          `yaml:"path"`     // path to log file
	Rotation LogRotationType `yaml:"rotation"` // daily, weekly or size
	MaxSize  int64           `yaml:"maxsize"`  // max size in bytes for size rotation
}

// MainSettings contains general application settings
type MainSettings struct {
	Name string    `yaml:"name"` // name of this node, can be used to identify the source of estimates
	Log  LogConfig `yaml:"log"`  // main log configuration
}

// EstimateSettings carries defaults applied when an input tree list does not
// supply a value for the corresponding column.
type EstimateSettings struct {
	VolumeType  string  `yaml:"volumetype"`  // cubic-feet or board-feet
	TopDiameter float64 `yaml:"topdiameter"` // merchantable top DOB in inches
	SiteIndex   float64 `yaml:"siteindex"`   // site index, base age 50
	BasalArea   float64 `yaml:"basalarea"`   // stand basal area, sq ft/acre
}

// RefdataSettings points the reference-data loader at an on-disk override.
// When Path is empty the embedded published tables are used.
type RefdataSettings struct {
	Path string `yaml:"path"`
}

// HTTPSettings configures the estimation API server
type HTTPSettings struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatastoreSettings configures optional persistence of estimation runs
type DatastoreSettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // sqlite database file
}

// OutputSettings controls CLI result output
type OutputSettings struct {
	Path    string `yaml:"path"`    // result CSV path, empty writes to stdout
	Summary bool   `yaml:"summary"` // print batch summary statistics
}

// Settings is the root configuration structure
type Settings struct {
	Debug bool `yaml:"debug"` // true to enable debug logging

	Main      MainSettings      `yaml:"main"`
	Estimate  EstimateSettings  `yaml:"estimate"`
	Refdata   RefdataSettings   `yaml:"refdata"`
	HTTP      HTTPSettings      `yaml:"http"`
	Datastore DatastoreSettings `yaml:"datastore"`
	Output    OutputSettings    `yaml:"output"`
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// defined in defaults.go
	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file found, create one with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the config file search paths: the current
// working directory first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return []string{"."}, nil
	}
	return []string{".", filepath.Join(configDir, "timbervol")}, nil
}

// createDefaultConfig writes a default config.yaml rendered from the default
// settings and loads it.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[len(configPaths)-1], "config.yaml")

	data, err := yaml.Marshal(defaultSettings())
	if err != nil {
		return fmt.Errorf("error rendering default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// Setting returns the current settings instance, loading it if needed.
func Setting() *Settings {
	settingsMutex.RLock()
	instance := settingsInstance
	settingsMutex.RUnlock()
	if instance != nil {
		return instance
	}

	instance, err := Load()
	if err != nil {
		panic(fmt.Sprintf("error loading settings: %v", err))
	}
	return instance
}

// GetSettings returns the current settings instance without loading.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SyncViper syncs the settings struct with viper's current values, so that
// command-line flags bound to viper take precedence over the config file.
func SyncViper(settings *Settings) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	if err := viper.Unmarshal(settings); err != nil {
		fmt.Printf("error syncing viper config: %v\n", err)
	}
	settingsInstance = settings
}
