// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "FUNDINTAKE_"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:"127.0.0.1:8080"`
	DBPath     string `env:"DB_PATH" envDefault:"fundintake.db"`

	// SecretKeyHex is 64 hex characters; decoded into SecretKey by Load.
	SecretKeyHex string `env:"SECRET_KEY"`
	SecretKey    []byte

	AdminToken string `env:"ADMIN_TOKEN"`
	AdminEmail string `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`
	SiteName   string `env:"SITE_NAME" envDefault:"Mutual Fund Forms"`
	SiteURL    string `env:"SITE_URL" envDefault:"http://localhost:8080"`

	MailTransport   string `env:"MAIL_TRANSPORT" envDefault:"sendmail"`
	SendmailPath    string `env:"SENDMAIL_PATH" envDefault:"/usr/sbin/sendmail"`
	MailSpoolDir    string `env:"MAIL_SPOOL_DIR" envDefault:"mail-spool"`
	MailDefaultFrom string `env:"MAIL_DEFAULT_FROM"`
	DebugEmail      bool   `env:"DEBUG_EMAIL"`

	SubmitRatePerMinute int `env:"SUBMIT_RATE_PER_MINUTE" envDefault:"10"`
	SubmitBurst         int `env:"SUBMIT_BURST" envDefault:"5"`

	// TrustedProxyList holds CIDR prefixes or addresses of reverse proxies
	// whose X-Forwarded-For style headers are believed. Parsed into
	// TrustedProxies by Load.
	TrustedProxyList []string `env:"TRUSTED_PROXIES" envSeparator:"," envDefault:"127.0.0.0/8,::1/128"`
	TrustedProxies   []netip.Prefix

	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// AdminEnabled reports whether an admin token has been configured. Without
// one every admin surface refuses access.
func (c *Config) AdminEnabled() bool {
	return c.AdminToken != ""
}

// LoadDotEnv loads variables from the given .env files without overriding
// the process environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads FUNDINTAKE_* environment variables and returns a validated Config.
// FUNDINTAKE_SECRET_KEY is optional; when set it must be 64 hex characters
// (32 bytes) and enables encryption of the SMTP password at rest.
func Load() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.SecretKeyHex != "" {
		key, err := hex.DecodeString(cfg.SecretKeyHex)
		if err != nil {
			return nil, fmt.Errorf("%sSECRET_KEY is not valid hex: %w", EnvPrefix, err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("%sSECRET_KEY must be 64 hex characters (32 bytes), got %d bytes", EnvPrefix, len(key))
		}
		cfg.SecretKey = key
	}

	switch cfg.MailTransport {
	case "sendmail", "file":
	default:
		return nil, fmt.Errorf("%sMAIL_TRANSPORT must be \"sendmail\" or \"file\", got %q", EnvPrefix, cfg.MailTransport)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("%sLOG_FORMAT must be \"text\" or \"json\", got %q", EnvPrefix, cfg.LogFormat)
	}

	if cfg.SubmitRatePerMinute <= 0 || cfg.SubmitBurst <= 0 {
		return nil, fmt.Errorf("%sSUBMIT_RATE_PER_MINUTE and %sSUBMIT_BURST must be positive", EnvPrefix, EnvPrefix)
	}

	proxies, err := parseProxies(cfg.TrustedProxyList)
	if err != nil {
		return nil, fmt.Errorf("%sTRUSTED_PROXIES: %w", EnvPrefix, err)
	}
	cfg.TrustedProxies = proxies

	if cfg.MailDefaultFrom == "" {
		cfg.MailDefaultFrom = defaultFrom(cfg.SiteURL)
	}

	return &cfg, nil
}

// parseProxies accepts CIDR prefixes and bare addresses.
func parseProxies(values []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if p, err := netip.ParsePrefix(v); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("%q is neither a CIDR prefix nor an address", v)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// defaultFrom derives a sender address from the site host.
func defaultFrom(siteURL string) string {
	host := "localhost"
	if u, err := url.Parse(siteURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return "fundintake@" + host
}
