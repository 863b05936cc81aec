package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config carries everything needed to reach the dashboard service.
type Config struct {
	BaseURL      string `json:"base_url"`
	TokenPath    string `json:"token_path"`
	SnapshotPath string `json:"snapshot_path"`
}

// LoadConfig reads .dash.yaml (current directory or DASH_CONFIG_PATH)
// plus DASH_* environment overrides.
func LoadConfig() (Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		home = "."
	}
	viper.SetDefault("base_url", "http://localhost:8080")
	viper.SetDefault("token_path", filepath.Join(home, ".dash.token"))
	viper.SetDefault("snapshot_path", filepath.Join(home, ".dash.db"))
	viper.SetConfigName(".dash") // .yaml is implicit
	viper.SetEnvPrefix("DASH")
	viper.AutomaticEnv()

	if override := os.Getenv("DASH_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}
	viper.AddConfigPath("./")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("api: read config: %w", err)
		}
	}

	cfg := Config{
		BaseURL:      strings.TrimRight(viper.GetString("base_url"), "/"),
		TokenPath:    viper.GetString("token_path"),
		SnapshotPath: viper.GetString("snapshot_path"),
	}
	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("api: base_url is required")
	}
	return cfg, nil
}
