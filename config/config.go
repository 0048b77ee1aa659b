package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gbme/platform-assistant/logger"
)

// Source selects where the assistant looks things up.
type Source string

const (
	SourceRancher   Source = "rancher"
	SourceInventory Source = "inventory"
	SourceBoth      Source = "both"
	SourceMock      Source = "mock"
)

// UsesRancher reports whether the source needs a live Rancher API.
func (s Source) UsesRancher() bool { return s == SourceRancher || s == SourceBoth }

// UsesInventory reports whether the source reads the inventory workbook.
func (s Source) UsesInventory() bool { return s == SourceInventory || s == SourceBoth }

// Config holds all configuration for the assistant.
type Config struct {
	Port           string
	AllowedOrigins []string

	LogLevel string
	LogType  logger.LogType

	Source Source

	// Rancher v3 API
	RancherURL       string
	RancherToken     string
	RancherVerifySSL bool
	RancherTimeout   time.Duration
	RancherRetries   int
	RancherCacheTTL  time.Duration

	// Server inventory workbook
	InventoryPath  string
	InventorySheet string

	StatsInterval time.Duration
	ChatRateLimit float64 // requests per second per client
}

// Keys, with the environment variables they are bound to.
const (
	KeyPort             = "port"
	KeyAllowedOrigins   = "allowed-origins"
	KeyLogLevel         = "log-level"
	KeyLogType          = "log-type"
	KeySource           = "source"
	KeyRancherURL       = "rancher-url"
	KeyRancherToken     = "rancher-token"
	KeyRancherVerifySSL = "rancher-verify-ssl"
	KeyRancherTimeout   = "rancher-timeout"
	KeyRancherRetries   = "rancher-retries"
	KeyRancherCacheTTL  = "rancher-cache-ttl"
	KeyInventoryPath    = "inventory-path"
	KeyInventorySheet   = "inventory-sheet"
	KeyStatsInterval    = "stats-interval"
	KeyChatRateLimit    = "chat-rate-limit"
)

var envBindings = map[string]string{
	KeyPort:             "PORT",
	KeyAllowedOrigins:   "ALLOWED_ORIGINS",
	KeyLogLevel:         "LOG_LEVEL",
	KeyLogType:          "LOG_TYPE",
	KeySource:           "ASSISTANT_SOURCE",
	KeyRancherURL:       "RANCHER_BASE_URL",
	KeyRancherToken:     "RANCHER_API_TOKEN",
	KeyRancherVerifySSL: "RANCHER_VERIFY_SSL",
	KeyRancherTimeout:   "RANCHER_TIMEOUT",
	KeyRancherRetries:   "RANCHER_RETRIES",
	KeyRancherCacheTTL:  "RANCHER_CACHE_TTL",
	KeyInventoryPath:    "EXCEL_FILE_PATH",
	KeyInventorySheet:   "EXCEL_SHEET_NAME",
	KeyStatsInterval:    "STATS_INTERVAL",
	KeyChatRateLimit:    "CHAT_RATE_LIMIT",
}

// RegisterFlags declares every key as a flag with its default.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyPort, "5001", "HTTP listen port")
	fs.String(KeyAllowedOrigins, "", "comma separated CORS origins (default *)")
	fs.String(KeyLogLevel, "info", "log level: trace, debug, info, warn, error")
	fs.String(KeyLogType, string(logger.LogTypeConsole), "log output: console or json")
	fs.String(KeySource, string(SourceRancher), "data source: rancher, inventory, both or mock")
	fs.String(KeyRancherURL, "", "Rancher base URL, e.g. https://rancher.example.com")
	fs.String(KeyRancherToken, "", "Rancher API bearer token")
	fs.Bool(KeyRancherVerifySSL, true, "verify the Rancher TLS certificate")
	fs.Duration(KeyRancherTimeout, 15*time.Second, "timeout per Rancher request")
	fs.Int(KeyRancherRetries, 3, "retries for failed Rancher requests")
	fs.Duration(KeyRancherCacheTTL, 30*time.Second, "how long the cluster list is cached")
	fs.String(KeyInventoryPath, "data/servers.xlsx", "server inventory workbook")
	fs.String(KeyInventorySheet, "Servers", "sheet name inside the inventory workbook")
	fs.Duration(KeyStatsInterval, 30*time.Second, "statistics push interval")
	fs.Float64(KeyChatRateLimit, 5, "chat requests per second allowed per client")
}

// Bind wires flags and environment variables into v.
func Bind(v *viper.Viper, fs *pflag.FlagSet) error {
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	return nil
}

// Load reads configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:             v.GetString(KeyPort),
		AllowedOrigins:   splitList(v.GetString(KeyAllowedOrigins)),
		LogLevel:         v.GetString(KeyLogLevel),
		LogType:          logger.LogType(strings.ToLower(v.GetString(KeyLogType))),
		Source:           Source(strings.ToLower(v.GetString(KeySource))),
		RancherURL:       strings.TrimRight(v.GetString(KeyRancherURL), "/"),
		RancherToken:     v.GetString(KeyRancherToken),
		RancherVerifySSL: v.GetBool(KeyRancherVerifySSL),
		RancherTimeout:   v.GetDuration(KeyRancherTimeout),
		RancherRetries:   v.GetInt(KeyRancherRetries),
		RancherCacheTTL:  v.GetDuration(KeyRancherCacheTTL),
		InventoryPath:    v.GetString(KeyInventoryPath),
		InventorySheet:   v.GetString(KeyInventorySheet),
		StatsInterval:    v.GetDuration(KeyStatsInterval),
		ChatRateLimit:    v.GetFloat64(KeyChatRateLimit),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Source {
	case SourceRancher, SourceInventory, SourceBoth, SourceMock:
	default:
		return fmt.Errorf("unknown source %q (want rancher, inventory, both or mock)", c.Source)
	}
	if c.Source.UsesRancher() {
		if c.RancherURL == "" {
			return fmt.Errorf("RANCHER_BASE_URL is required for source %q", c.Source)
		}
		if c.RancherToken == "" {
			return fmt.Errorf("RANCHER_API_TOKEN is required for source %q", c.Source)
		}
	}
	if c.Source.UsesInventory() && c.InventoryPath == "" {
		return fmt.Errorf("EXCEL_FILE_PATH is required for source %q", c.Source)
	}
	if c.LogType != logger.LogTypeConsole && c.LogType != logger.LogTypeJSON {
		return fmt.Errorf("unknown log type %q", c.LogType)
	}
	if c.RancherTimeout <= 0 || c.StatsInterval <= 0 {
		return fmt.Errorf("rancher-timeout and stats-interval must be positive")
	}
	if c.RancherCacheTTL < 0 || c.RancherRetries < 0 {
		return fmt.Errorf("rancher-cache-ttl and rancher-retries must not be negative")
	}
	if c.ChatRateLimit <= 0 {
		return fmt.Errorf("chat-rate-limit must be positive")
	}
	return nil
}

// OriginsDefaulted reports whether CORS falls back to the wildcard.
func (c *Config) OriginsDefaulted() bool {
	return len(c.AllowedOrigins) == 0
}

// CORSOrigins returns the configured origins, or the wildcard when none were set.
func (c *Config) CORSOrigins() []string {
	if c.OriginsDefaulted() {
		return []string{"*"}
	}
	return c.AllowedOrigins
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
