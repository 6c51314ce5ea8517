package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.HTTP = HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "noticeboard-test/1.0",
		AllowPrivate: true,
	}
	cfg.Session = SessionConfig{
		Timeout: 1 * time.Second,
	}
	cfg.Source.Owner = "acme"
	cfg.Source.Repository = "status"
	cfg.Log = LogConfig{Level: "off"}
	return cfg
}
