// Package config handles application configuration from environment variables
// and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used when neither the environment nor the config file set a value.
var (
	DefaultFeeds = []string{
		"https://www.melhoresdestinos.com.br/feed/rss",
		"https://www.tudodeviagem.com/category/promocao-de-passagens/feed/",
	}
	DefaultKeywordsAny = []string{
		"passagens", "promo", "promoção", "voos", "aéreas", "aereo", "aéreo", "baratas", "oferta",
	}
	DefaultKeywordsDest = []string{
		"eua", "estados unidos",
		"orlando", "miami", "boston",
		"nova york", "los angeles",
		"internacional",
	}
)

const (
	defaultDatabasePath      = "./data/rss_seen.db"
	defaultLogLevel          = "info"
	defaultPollIntervalSec   = 900
	defaultTZOffsetHours     = -3
	defaultDigestHour        = 20
	defaultDigestMinute      = 0
	defaultDigestMaxItems    = 20
	defaultMaxEntriesPerFeed = 40
)

// Config holds the application configuration. It is built once at startup
// and treated as read-only afterwards.
type Config struct {
	TelegramBotToken string
	TelegramChatID   string
	DatabasePath     string
	LogLevel         string

	Feeds          []string
	KeywordsAny    []string
	KeywordsDest   []string
	KeywordsOrigin []string

	PollInterval      time.Duration
	TZOffsetHours     int
	DigestHour        int
	DigestMinute      int
	DigestMaxItems    int
	MaxEntriesPerFeed int
}

// fileConfig mirrors the optional YAML config file. Pointers distinguish
// "unset" from zero values.
type fileConfig struct {
	DatabasePath      string   `yaml:"database_path"`
	Feeds             []string `yaml:"feeds"`
	PollIntervalSec   *int     `yaml:"poll_interval_sec"`
	TZOffsetHours     *int     `yaml:"tz_offset_hours"`
	MaxEntriesPerFeed *int     `yaml:"max_entries_per_feed"`
	Keywords          struct {
		Any         []string `yaml:"any"`
		Destination []string `yaml:"destination"`
		Origin      []string `yaml:"origin"`
	} `yaml:"keywords"`
	Digest struct {
		Hour     *int `yaml:"hour"`
		Minute   *int `yaml:"minute"`
		MaxItems *int `yaml:"max_items"`
	} `yaml:"digest"`
}

// Load reads configuration from environment variables, layered over the YAML
// file named by CONFIG_FILE when it is set.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	chatID := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID"))
	if chatID == "" {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}

	cfg := &Config{
		TelegramBotToken:  token,
		TelegramChatID:    chatID,
		DatabasePath:      defaultDatabasePath,
		LogLevel:          defaultLogLevel,
		Feeds:             slices.Clone(DefaultFeeds),
		KeywordsAny:       slices.Clone(DefaultKeywordsAny),
		KeywordsDest:      slices.Clone(DefaultKeywordsDest),
		KeywordsOrigin:    nil,
		PollInterval:      defaultPollIntervalSec * time.Second,
		TZOffsetHours:     defaultTZOffsetHours,
		DigestHour:        defaultDigestHour,
		DigestMinute:      defaultDigestMinute,
		DigestMaxItems:    defaultDigestMaxItems,
		MaxEntriesPerFeed: defaultMaxEntriesPerFeed,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location returns the fixed zone used to compute day keys.
func (c *Config) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.TZOffsetHours), c.TZOffsetHours*60*60)
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.DatabasePath != "" {
		c.DatabasePath = fc.DatabasePath
	}
	if fc.Feeds != nil {
		c.Feeds = fc.Feeds
	}
	if fc.Keywords.Any != nil {
		c.KeywordsAny = fc.Keywords.Any
	}
	if fc.Keywords.Destination != nil {
		c.KeywordsDest = fc.Keywords.Destination
	}
	if fc.Keywords.Origin != nil {
		c.KeywordsOrigin = fc.Keywords.Origin
	}
	if fc.PollIntervalSec != nil {
		c.PollInterval = time.Duration(*fc.PollIntervalSec) * time.Second
	}
	if fc.TZOffsetHours != nil {
		c.TZOffsetHours = *fc.TZOffsetHours
	}
	if fc.MaxEntriesPerFeed != nil {
		c.MaxEntriesPerFeed = *fc.MaxEntriesPerFeed
	}
	if fc.Digest.Hour != nil {
		c.DigestHour = *fc.Digest.Hour
	}
	if fc.Digest.Minute != nil {
		c.DigestMinute = *fc.Digest.Minute
	}
	if fc.Digest.MaxItems != nil {
		c.DigestMaxItems = *fc.Digest.MaxItems
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	lists := []struct {
		key string
		dst *[]string
	}{
		{"FEEDS", &c.Feeds},
		{"KEYWORDS_ANY", &c.KeywordsAny},
		{"KEYWORDS_DEST", &c.KeywordsDest},
		{"KEYWORDS_ORIGIN", &c.KeywordsOrigin},
	}
	for _, l := range lists {
		if raw := os.Getenv(l.key); raw != "" {
			*l.dst = splitList(raw)
		}
	}

	pollSec := int(c.PollInterval / time.Second)
	ints := []struct {
		key string
		dst *int
	}{
		{"POLL_INTERVAL_SEC", &pollSec},
		{"TZ_OFFSET_HOURS", &c.TZOffsetHours},
		{"DIGEST_HOUR", &c.DigestHour},
		{"DIGEST_MINUTE", &c.DigestMinute},
		{"DIGEST_MAX_ITEMS", &c.DigestMaxItems},
		{"MAX_ENTRIES_PER_FEED", &c.MaxEntriesPerFeed},
	}
	for _, i := range ints {
		raw := strings.TrimSpace(os.Getenv(i.key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", i.key, raw, err)
		}
		*i.dst = n
	}
	c.PollInterval = time.Duration(pollSec) * time.Second
	return nil
}

func (c *Config) validate() error {
	if len(c.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.TZOffsetHours < -12 || c.TZOffsetHours > 14 {
		return fmt.Errorf("timezone offset %d out of range", c.TZOffsetHours)
	}
	if c.DigestHour < 0 || c.DigestHour > 23 {
		return fmt.Errorf("digest hour %d out of range", c.DigestHour)
	}
	if c.DigestMinute < 0 || c.DigestMinute > 59 {
		return fmt.Errorf("digest minute %d out of range", c.DigestMinute)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
