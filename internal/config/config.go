package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration.
type Config struct {
	Scraper ScraperConfig `yaml:"scraper"`
	Proxy   ProxyConfig   `yaml:"proxy"`
	Browser BrowserConfig `yaml:"browser"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
}

// ScraperConfig holds the scrape run configuration.
type ScraperConfig struct {
	TargetURL      string        `yaml:"target_url"`
	Targets        []string      `yaml:"targets"`
	SiteSignature  string        `yaml:"site_signature"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	PageTimeout    time.Duration `yaml:"page_timeout"`
	ElementTimeout time.Duration `yaml:"element_timeout"`
}

// ProxyConfig holds the proxy failover configuration. Backups use the
// flat ip:port:username:password encoding.
type ProxyConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Server   string   `yaml:"server"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Backups  []string `yaml:"backups"`
}

// BrowserConfig holds the browser launch configuration.
type BrowserConfig struct {
	Headless bool `yaml:"headless"`
	Humanize bool `yaml:"humanize"`
}

// OutputConfig holds the export and artifact configuration.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Dir    string `yaml:"dir"`
	Pretty bool   `yaml:"pretty"`
}

// ServerConfig holds the trigger server configuration.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scraper: ScraperConfig{
			TargetURL:      "https://www.zocdoc.com/practice/dentistry-at-its-finest-19571?LocIdent=31976",
			Targets:        []string{"Dr. Michael Ayzin, DDS", "Dr. Ronald Ayzin, DDS"},
			SiteSignature:  "Dentistry At Its Finest",
			MaxRetries:     3,
			RetryDelay:     5 * time.Second,
			PageTimeout:    60 * time.Second,
			ElementTimeout: 5 * time.Second,
		},
		Proxy: ProxyConfig{
			Enabled: false,
		},
		Browser: BrowserConfig{
			Headless: true,
			Humanize: true,
		},
		Output: OutputConfig{Dir: "./output"},
		Log:    LogConfig{Level: "info", Dir: "./logs", Pretty: true},
		Server: ServerConfig{ListenAddr: ":8080"},
	}
}

// Load builds the configuration: defaults, then an optional YAML file,
// then environment variables (highest precedence). A .env file in the
// working directory is honored if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Scraper.TargetURL = getenv("ZOCDOC_URL", c.Scraper.TargetURL)
	// Provider names carry commas ("Dr. Michael Ayzin, DDS"), so this
	// list is semicolon-separated.
	c.Scraper.Targets = getenvList("ZOCDOC_TARGET_DOCTORS", ";", c.Scraper.Targets)
	c.Scraper.SiteSignature = getenv("ZOCDOC_SITE_SIGNATURE", c.Scraper.SiteSignature)
	c.Scraper.MaxRetries = getenvInt("ZOCDOC_MAX_RETRIES", c.Scraper.MaxRetries)
	c.Scraper.RetryDelay = getenvSeconds("ZOCDOC_RETRY_DELAY", c.Scraper.RetryDelay)
	c.Scraper.PageTimeout = getenvMillis("ZOCDOC_PAGE_TIMEOUT", c.Scraper.PageTimeout)
	c.Scraper.ElementTimeout = getenvMillis("ZOCDOC_ELEMENT_TIMEOUT", c.Scraper.ElementTimeout)

	c.Proxy.Enabled = getenvBool("ZOCDOC_PROXY_ENABLED", c.Proxy.Enabled)
	c.Proxy.Server = getenv("ZOCDOC_PROXY_SERVER", c.Proxy.Server)
	c.Proxy.Username = getenv("ZOCDOC_PROXY_USERNAME", c.Proxy.Username)
	c.Proxy.Password = getenv("ZOCDOC_PROXY_PASSWORD", c.Proxy.Password)
	c.Proxy.Backups = getenvList("ZOCDOC_BACKUP_PROXIES", ",", c.Proxy.Backups)

	c.Browser.Headless = getenvBool("ZOCDOC_HEADLESS", c.Browser.Headless)
	c.Browser.Humanize = getenvBool("ZOCDOC_HUMANIZE", c.Browser.Humanize)

	c.Output.Dir = getenv("ZOCDOC_OUTPUT_DIR", c.Output.Dir)
	c.Log.Level = getenv("ZOCDOC_LOG_LEVEL", c.Log.Level)
	c.Log.Dir = getenv("ZOCDOC_LOG_DIR", c.Log.Dir)
	c.Log.Pretty = getenvBool("ZOCDOC_PRETTY_LOG", c.Log.Pretty)

	// Cloud Run style PORT override.
	if port := os.Getenv("PORT"); port != "" {
		c.Server.ListenAddr = ":" + port
	} else {
		c.Server.ListenAddr = getenv("ZOCDOC_LISTEN_ADDR", c.Server.ListenAddr)
	}
}

func (c *Config) validate() error {
	if c.Scraper.TargetURL == "" {
		return fmt.Errorf("target URL must not be empty")
	}
	if len(c.Scraper.Targets) == 0 {
		return fmt.Errorf("at least one target provider is required")
	}
	if c.Scraper.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	return nil
}

// helpers

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1"
}

// getenvSeconds reads an integer number of seconds.
func getenvSeconds(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(n) * time.Second
}

// getenvMillis reads an integer number of milliseconds.
func getenvMillis(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(n) * time.Millisecond
}

// getenvList reads a sep-delimited list, dropping empty entries.
func getenvList(key, sep string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
