package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database      DatabaseConfig      `mapstructure:"database"`
	Search        SearchConfig        `mapstructure:"search"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Feeds         FeedsConfig         `mapstructure:"feeds"`
	Media         MediaConfig         `mapstructure:"media"`
	UI            UIConfig            `mapstructure:"ui"`
	Log           LogConfig           `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SearchConfig struct {
	ContactsIndex string `mapstructure:"contacts_index"`
	// DefaultProvider is used when the store has no default search provider.
	DefaultProvider string `mapstructure:"default_provider"`
	ContactsLimit   int    `mapstructure:"contacts_limit"`
}

type NotificationsConfig struct {
	MaxResults    int           `mapstructure:"max_results"`
	MatchBody     bool          `mapstructure:"match_body"`
	MatchNames    bool          `mapstructure:"match_names"`
	ShowActions   bool          `mapstructure:"show_actions"`
	Retention     time.Duration `mapstructure:"retention"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type FeedsConfig struct {
	URLs              []string      `mapstructure:"urls"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	DefaultRetryAfter time.Duration `mapstructure:"default_retry_after"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	MaxConcurrent     int           `mapstructure:"max_concurrent"`
	UserAgent         string        `mapstructure:"user_agent"`
	AllowPrivate      bool          `mapstructure:"allow_private"`
}

type MediaConfig struct {
	DefaultOpener string `mapstructure:"default_opener"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".justtype")

	return &Config{
		Database: DatabaseConfig{
			Path:    filepath.Join(dataDir, "justtype.db"),
			Timeout: 1 * time.Second,
		},
		Search: SearchConfig{
			ContactsIndex:   filepath.Join(dataDir, "contacts.bleve"),
			DefaultProvider: "google",
			ContactsLimit:   10,
		},
		Notifications: NotificationsConfig{
			MaxResults:    5,
			MatchBody:     true,
			MatchNames:    true,
			ShowActions:   true,
			Retention:     96 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		Feeds: FeedsConfig{
			HTTPTimeout:       30 * time.Second,
			PollInterval:      5 * time.Minute,
			DefaultRetryAfter: 15 * time.Minute,
			RequestsPerSecond: 2,
			MaxConcurrent:     5,
			UserAgent:         "justtype/1.0 (https://github.com/pders01/justtype)",
		},
		Media: MediaConfig{
			DefaultOpener: getDefaultOpener(),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(dataDir, "justtype.log"),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("database", cfg.Database)
	v.SetDefault("search", cfg.Search)
	v.SetDefault("notifications", cfg.Notifications)
	v.SetDefault("feeds", cfg.Feeds)
	v.SetDefault("media", cfg.Media)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("log", cfg.Log)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "justtype")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("JUSTTYPE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Search.ContactsIndex = expandPath(cfg.Search.ContactsIndex)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings keep the TOML readable.
	v.Set("database", map[string]interface{}{
		"path":    config.Database.Path,
		"timeout": config.Database.Timeout.String(),
	})
	v.Set("search", map[string]interface{}{
		"contacts_index":   config.Search.ContactsIndex,
		"default_provider": config.Search.DefaultProvider,
		"contacts_limit":   config.Search.ContactsLimit,
	})
	v.Set("notifications", map[string]interface{}{
		"max_results":    config.Notifications.MaxResults,
		"match_body":     config.Notifications.MatchBody,
		"match_names":    config.Notifications.MatchNames,
		"show_actions":   config.Notifications.ShowActions,
		"retention":      config.Notifications.Retention.String(),
		"sweep_interval": config.Notifications.SweepInterval.String(),
	})
	v.Set("feeds", map[string]interface{}{
		"urls":                config.Feeds.URLs,
		"http_timeout":        config.Feeds.HTTPTimeout.String(),
		"poll_interval":       config.Feeds.PollInterval.String(),
		"default_retry_after": config.Feeds.DefaultRetryAfter.String(),
		"requests_per_second": config.Feeds.RequestsPerSecond,
		"max_concurrent":      config.Feeds.MaxConcurrent,
		"user_agent":          config.Feeds.UserAgent,
		"allow_private":       config.Feeds.AllowPrivate,
	})
	v.Set("media", map[string]interface{}{
		"default_opener": config.Media.DefaultOpener,
	})
	v.Set("ui", map[string]interface{}{
		"colors": map[string]interface{}{
			"primary":   config.UI.Colors.Primary,
			"secondary": config.UI.Colors.Secondary,
			"accent":    config.UI.Colors.Accent,
			"text":      config.UI.Colors.Text,
			"muted":     config.UI.Colors.Muted,
			"error":     config.UI.Colors.Error,
			"success":   config.UI.Colors.Success,
		},
	})
	v.Set("log", map[string]interface{}{
		"level": config.Log.Level,
		"file":  config.Log.File,
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
