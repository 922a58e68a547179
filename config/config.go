// Package config resolves the program configuration from the config file
// and command-line arguments.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

var (
	configDir        = "kiroku"
	configFileName   = "config.yml"
	kvFileName       = "kiroku.db"
	serverDBFileName = "kiroku.sqlite"
	logFileName      = "kiroku.log"

	configFilePath string
	kvFilePath     string
	serverDBPath   string
	logFilePath    string
)

const (
	keyBackendURL           = "backend.url"
	keyNotificationsEnabled = "notifications.enabled"
	keyPresenceEnabled      = "presence.enabled"
	keyRecordCmd            = "settings.record_cmd"
	keyDarkTheme            = "display.dark_theme"
	keyServerPort           = "server.port"
)

const defaultServerPort = 5000

// Config is the resolved program configuration.
type Config struct {
	Backend struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"backend"`

	Notifications struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"notifications"`

	Presence struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"presence"`

	Settings struct {
		// RecordCmd is run after each completed measurement.
		RecordCmd string `mapstructure:"record_cmd"`
	} `mapstructure:"settings"`

	Display struct {
		DarkTheme bool `mapstructure:"dark_theme"`
	} `mapstructure:"display"`

	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
}

// InitializePaths resolves the XDG paths for the config file, the local
// key-value store, the bundled server database, and the log file. The
// KIROKU_ENV variable switches to per-environment file names.
func InitializePaths() error {
	env := strings.TrimSpace(os.Getenv("KIROKU_ENV"))
	if env != "" {
		configFileName = fmt.Sprintf("config_%s.yml", env)
		kvFileName = fmt.Sprintf("kiroku_%s.db", env)
		serverDBFileName = fmt.Sprintf("kiroku_%s.sqlite", env)
		logFileName = fmt.Sprintf("kiroku_%s.log", env)
	}

	var err error

	configFilePath, err = xdg.ConfigFile(filepath.Join(configDir, configFileName))
	if err != nil {
		return err
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		return err
	}

	kvFilePath = filepath.Join(dataDir, kvFileName)
	serverDBPath = filepath.Join(dataDir, serverDBFileName)
	logFilePath = filepath.Join(dataDir, logFileName)

	return nil
}

func Dir() string {
	return configDir
}

func ConfigFilePath() string {
	return configFilePath
}

func KVFilePath() string {
	return kvFilePath
}

func ServerDBPath() string {
	return serverDBPath
}

func LogFilePath() string {
	return logFilePath
}

// Load reads the config file, creating it with defaults on first run.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configFilePath)
	v.SetConfigType("yaml")

	setDefaults(v)

	err := v.ReadInConfig()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file failed: %w", err)
		}

		if err := v.WriteConfig(); err != nil {
			return nil, fmt.Errorf("writing default config failed: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyBackendURL, fmt.Sprintf("http://127.0.0.1:%d", defaultServerPort))
	v.SetDefault(keyNotificationsEnabled, true)
	v.SetDefault(keyPresenceEnabled, false)
	v.SetDefault(keyRecordCmd, "")
	v.SetDefault(keyDarkTheme, true)
	v.SetDefault(keyServerPort, defaultServerPort)
}
