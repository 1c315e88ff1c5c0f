package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme       string `mapstructure:"theme" yaml:"theme"`
	ShowPreview bool   `mapstructure:"show_preview" yaml:"show_preview"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// ServerURL is the root URL of the temp-mail backend.
	ServerURL string `mapstructure:"server_url" yaml:"server_url"`

	// MailboxAddress is the address of the last provisioned mailbox.
	// Its access token lives in the system keyring, not here.
	MailboxAddress string `mapstructure:"mailbox_address" yaml:"mailbox_address"`

	// PollIntervalSec is how often (in seconds) to fetch the inbox.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// DownloadDir is where saved attachments and .eml exports land.
	DownloadDir string `mapstructure:"download_dir" yaml:"download_dir"`

	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/cf-tempmail/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "cf-tempmail", "config.yaml")
}

// defaultDownloadDir resolves to ~/Downloads, falling back to the
// working directory when the home directory is unknown.
func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		PollIntervalSec: 15,
		DownloadDir:     defaultDownloadDir(),
		Display: DisplayConfig{
			Theme:       "default",
			ShowPreview: true,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("poll_interval_sec", 15)
	v.SetDefault("download_dir", defaultDownloadDir())
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.show_preview", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.PollIntervalSec <= 0 {
		cfg.PollIntervalSec = 15
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server_url", cfg.ServerURL)
	v.Set("mailbox_address", cfg.MailboxAddress)
	v.Set("poll_interval_sec", cfg.PollIntervalSec)
	v.Set("download_dir", cfg.DownloadDir)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
