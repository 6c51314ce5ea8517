package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SourceGitHub = "github"
	SourceFeed   = "feed"
)

type Config struct {
	Source    SourceConfig    `mapstructure:"source"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Session   SessionConfig   `mapstructure:"session"`
	Selection SelectionConfig `mapstructure:"selection"`
	UI        UIConfig        `mapstructure:"ui"`
	Links     LinksConfig     `mapstructure:"links"`
	Log       LogConfig       `mapstructure:"log"`
}

// SourceConfig names where notices come from. The query values are passed
// to the source verbatim.
type SourceConfig struct {
	Kind       string   `mapstructure:"kind"`
	Endpoint   string   `mapstructure:"endpoint"`
	Owner      string   `mapstructure:"owner"`
	Repository string   `mapstructure:"repository"`
	Author     string   `mapstructure:"author"`
	State      string   `mapstructure:"state"`
	Labels     []string `mapstructure:"labels"`
	FeedURL    string   `mapstructure:"feed_url"`
	Token      string   `mapstructure:"token"`
	PerPage    int      `mapstructure:"per_page"`
}

type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	// AllowPrivate permits localhost and private network endpoints.
	AllowPrivate bool `mapstructure:"allow_private"`
}

type SessionConfig struct {
	ID      string        `mapstructure:"id"`
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SelectionConfig struct {
	GroupThreshold     int           `mapstructure:"group_threshold"`
	ReevaluateInterval time.Duration `mapstructure:"reevaluate_interval"`
	RefreshInterval    time.Duration `mapstructure:"refresh_interval"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
	// WordWrap bounds the width used to render notice descriptions.
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

type UIColors struct {
	Primary     string `mapstructure:"primary"`
	Secondary   string `mapstructure:"secondary"`
	Text        string `mapstructure:"text"`
	Muted       string `mapstructure:"muted"`
	Maintenance string `mapstructure:"maintenance"`
	Status      string `mapstructure:"status"`
	Info        string `mapstructure:"info"`
}

type LinksConfig struct {
	File   string `mapstructure:"file"`
	Opener string `mapstructure:"opener"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Source: SourceConfig{
			Kind:     SourceGitHub,
			Endpoint: "https://api.github.com/",
			State:    "open",
			Labels:   []string{},
			PerPage:  30,
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "noticeboard/1.0 (https://github.com/pders01/noticeboard)",
		},
		Session: SessionConfig{
			Path:    filepath.Join(homeDir, ".noticeboard", "session.db"),
			Timeout: 1 * time.Second,
		},
		Selection: SelectionConfig{
			GroupThreshold:     1,
			ReevaluateInterval: 1 * time.Minute,
			RefreshInterval:    5 * time.Minute,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:     "#4ECDC4",
				Secondary:   "#95E1D3",
				Text:        "#EAEAEA",
				Muted:       "#94A3B8",
				Maintenance: "#FBBF24",
				Status:      "#F87171",
				Info:        "#60A5FA",
			},
			WordWrapMaxWidth: 120,
			WordWrapMinWidth: 40,
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "noticeboard")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("NOTICEBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
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

	if err := config.Validate(); err != nil {
		return nil, err
	}

	expandPaths(&config)

	return &config, nil
}

// setDefaults registers every leaf key so a config file that sets only part
// of a section keeps the remaining defaults.
func setDefaults(v *viper.Viper, cfg *Config) {
	defaults := map[string]interface{}{
		"source.kind":                   cfg.Source.Kind,
		"source.endpoint":               cfg.Source.Endpoint,
		"source.owner":                  cfg.Source.Owner,
		"source.repository":             cfg.Source.Repository,
		"source.author":                 cfg.Source.Author,
		"source.state":                  cfg.Source.State,
		"source.labels":                 cfg.Source.Labels,
		"source.feed_url":               cfg.Source.FeedURL,
		"source.token":                  cfg.Source.Token,
		"source.per_page":               cfg.Source.PerPage,
		"http.timeout":                  cfg.HTTP.Timeout,
		"http.user_agent":               cfg.HTTP.UserAgent,
		"http.allow_private":            cfg.HTTP.AllowPrivate,
		"session.id":                    cfg.Session.ID,
		"session.path":                  cfg.Session.Path,
		"session.timeout":               cfg.Session.Timeout,
		"selection.group_threshold":     cfg.Selection.GroupThreshold,
		"selection.reevaluate_interval": cfg.Selection.ReevaluateInterval,
		"selection.refresh_interval":    cfg.Selection.RefreshInterval,
		"ui.colors.primary":             cfg.UI.Colors.Primary,
		"ui.colors.secondary":           cfg.UI.Colors.Secondary,
		"ui.colors.text":                cfg.UI.Colors.Text,
		"ui.colors.muted":               cfg.UI.Colors.Muted,
		"ui.colors.maintenance":         cfg.UI.Colors.Maintenance,
		"ui.colors.status":              cfg.UI.Colors.Status,
		"ui.colors.info":                cfg.UI.Colors.Info,
		"ui.word_wrap_max_width":        cfg.UI.WordWrapMaxWidth,
		"ui.word_wrap_min_width":        cfg.UI.WordWrapMinWidth,
		"links.file":                    cfg.Links.File,
		"links.opener":                  cfg.Links.Opener,
		"log.level":                     cfg.Log.Level,
		"log.file":                      cfg.Log.File,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceGitHub:
		if c.Source.Endpoint == "" {
			return fmt.Errorf("source.endpoint is required for kind %q", c.Source.Kind)
		}
	case SourceFeed:
		if c.Source.FeedURL == "" {
			return fmt.Errorf("source.feed_url is required for kind %q", c.Source.Kind)
		}
	default:
		return fmt.Errorf("unknown source.kind %q", c.Source.Kind)
	}
	if c.Selection.GroupThreshold < 1 {
		return fmt.Errorf("selection.group_threshold must be at least 1")
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" || path == "-" {
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
	cfg.Session.Path = expandPath(cfg.Session.Path)
	cfg.Links.File = expandPath(cfg.Links.File)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations are written as strings for TOML readability
	httpCfg := map[string]interface{}{
		"timeout":       config.HTTP.Timeout.String(),
		"user_agent":    config.HTTP.UserAgent,
		"allow_private": config.HTTP.AllowPrivate,
	}

	sessionCfg := map[string]interface{}{
		"id":      config.Session.ID,
		"path":    config.Session.Path,
		"timeout": config.Session.Timeout.String(),
	}

	selectionCfg := map[string]interface{}{
		"group_threshold":     config.Selection.GroupThreshold,
		"reevaluate_interval": config.Selection.ReevaluateInterval.String(),
		"refresh_interval":    config.Selection.RefreshInterval.String(),
	}

	sourceCfg := map[string]interface{}{
		"kind":       config.Source.Kind,
		"endpoint":   config.Source.Endpoint,
		"owner":      config.Source.Owner,
		"repository": config.Source.Repository,
		"author":     config.Source.Author,
		"state":      config.Source.State,
		"labels":     config.Source.Labels,
		"feed_url":   config.Source.FeedURL,
		"per_page":   config.Source.PerPage,
	}

	colors := config.UI.Colors
	uiCfg := map[string]interface{}{
		"colors": map[string]interface{}{
			"primary":     colors.Primary,
			"secondary":   colors.Secondary,
			"text":        colors.Text,
			"muted":       colors.Muted,
			"maintenance": colors.Maintenance,
			"status":      colors.Status,
			"info":        colors.Info,
		},
		"word_wrap_max_width": config.UI.WordWrapMaxWidth,
		"word_wrap_min_width": config.UI.WordWrapMinWidth,
	}

	// The token is never written back to disk.
	v.Set("source", sourceCfg)
	v.Set("http", httpCfg)
	v.Set("session", sessionCfg)
	v.Set("selection", selectionCfg)
	v.Set("ui", uiCfg)
	v.Set("links", map[string]interface{}{"file": config.Links.File, "opener": config.Links.Opener})
	v.Set("log", map[string]interface{}{"level": config.Log.Level, "file": config.Log.File})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
