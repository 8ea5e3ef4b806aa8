package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	base := defaultConfig()
	return &Config{
		Database: DatabaseConfig{
			Path:    "",
			Timeout: 1 * time.Second,
		},
		Search: SearchConfig{
			DefaultProvider: "google",
			ContactsLimit:   5,
		},
		Notifications: base.Notifications,
		Feeds: FeedsConfig{
			HTTPTimeout:       5 * time.Second,
			PollInterval:      1 * time.Minute,
			DefaultRetryAfter: 5 * time.Minute,
			RequestsPerSecond: 100,
			MaxConcurrent:     2,
			UserAgent:         "justtype-test/1.0",
			AllowPrivate:      true,
		},
		Media: base.Media,
		UI:    base.UI,
		Log:   LogConfig{Level: "off"},
	}
}
