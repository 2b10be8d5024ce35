package anticaptcha

import (
	"log/slog"
	"time"
)

// ClientConfig holds all configuration for the anti-captcha client.
type ClientConfig struct {
	// APIKey is the account key sent as clientKey with every request.
	APIKey string

	// BaseURL overrides the API host. Default: https://api.anti-captcha.com
	BaseURL string

	// LanguagePool is the default worker pool for createTask ("en" or "rn").
	LanguagePool string

	// HTTPTimeout bounds a single API call on the net/http back-end.
	HTTPTimeout time.Duration

	// Stealth sends requests through a TLS-fingerprinted browser client
	// instead of net/http.
	Stealth bool

	// Proxy is an egress proxy URL for API calls. Setting it implies Stealth.
	// Not to be confused with the per-task Proxy solved captchas run behind.
	Proxy string

	// Poll overrides the poller settings used when a call passes zero PollOptions.
	// Zero fields fall back to 12 retries every 10s for WaitForResult and to
	// 10 retries every 10s for the Resolve helpers.
	Poll PollOptions

	// Debug promotes task lifecycle logs (created, retry, ready) from Debug to Info.
	Debug bool

	// Logger overrides slog.Default().
	Logger *slog.Logger
}

// PollOptions controls the fixed-interval result poller.
type PollOptions struct {
	// MaxRetries is the number of processing answers tolerated before
	// the poll gives up with a TimeoutError.
	MaxRetries int

	// Interval is the wait before the first and between each query.
	Interval time.Duration
}

const (
	defaultBaseURL      = "https://api.anti-captcha.com"
	defaultLanguagePool = "en"
	defaultHTTPTimeout  = 30 * time.Second

	// softID identifies this SDK to the vendor.
	softID = 791
)

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.LanguagePool == "" {
		cfg.LanguagePool = defaultLanguagePool
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	if cfg.Proxy != "" {
		cfg.Stealth = true
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

var (
	defaultPoll = PollOptions{MaxRetries: 12, Interval: 10 * time.Second}
	resolvePoll = PollOptions{MaxRetries: 10, Interval: 10 * time.Second}
)

// withDefaults returns o with zero fields taken from def.
func (o PollOptions) withDefaults(def PollOptions) PollOptions {
	if o.MaxRetries <= 0 {
		o.MaxRetries = def.MaxRetries
	}
	if o.Interval <= 0 {
		o.Interval = def.Interval
	}
	return o
}
