package anticaptcha

import (
	"context"
	"fmt"
	"log/slog"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Client is the anti-captcha API client. It is safe for concurrent use.
type Client struct {
	cfg       ClientConfig
	transport transport
	log       *slog.Logger
}

// NewClient creates a client for the account identified by cfg.APIKey.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.defaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anticaptcha: empty API key")
	}

	var t transport = newHTTPTransport(cfg.HTTPTimeout)
	if cfg.Stealth {
		st, err := newStealthTransport(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		t = st
		if cfg.Proxy != "" {
			cfg.Logger.Debug("anticaptcha: using egress proxy", slog.String("proxy", stealth.MaskProxy(cfg.Proxy)))
		}
	}

	return &Client{cfg: cfg, transport: t, log: cfg.Logger}, nil
}

// New creates a client with default settings.
func New(apiKey string) (*Client, error) {
	return NewClient(ClientConfig{APIKey: apiKey})
}

// APIKey returns the account key the client was created with.
func (c *Client) APIKey() string {
	return c.cfg.APIKey
}

// Balance returns the account balance in USD.
func (c *Client) Balance(ctx context.Context) (float64, error) {
	var resp balanceResponse
	if err := c.send(ctx, "getBalance", nil, &resp); err != nil {
		return 0, fmt.Errorf("getBalance: %w", err)
	}
	return resp.Balance, nil
}

// QueueStats returns the current load of one of the vendor queues (see the Queue* constants).
func (c *Client) QueueStats(ctx context.Context, queueID int) (*QueueStats, error) {
	var resp queueStatsResponse
	if err := c.send(ctx, "getQueueStats", map[string]any{"queueId": queueID}, &resp); err != nil {
		return nil, fmt.Errorf("getQueueStats: %w", err)
	}
	return &resp.QueueStats, nil
}

// TaskOption customizes a createTask call.
type TaskOption func(*taskOptions)

type taskOptions struct {
	languagePool string
	callbackURL  string
}

// WithLanguagePool selects the worker pool ("en" or "rn") for this task.
func WithLanguagePool(lang string) TaskOption {
	return func(o *taskOptions) { o.languagePool = lang }
}

// WithCallbackURL asks the API to POST the result to url once the task is solved.
func WithCallbackURL(url string) TaskOption {
	return func(o *taskOptions) { o.callbackURL = url }
}

// CreateTask submits task and returns the task ID assigned by the API.
func (c *Client) CreateTask(ctx context.Context, task Task, opts ...TaskOption) (int64, error) {
	if task == nil {
		return 0, fmt.Errorf("createTask: nil task")
	}
	o := taskOptions{languagePool: c.cfg.LanguagePool}
	for _, opt := range opts {
		opt(&o)
	}

	params := map[string]any{
		"task":         task,
		"languagePool": o.languagePool,
	}
	if o.callbackURL != "" {
		params["callbackUrl"] = o.callbackURL
	}

	var resp createTaskResponse
	if err := c.send(ctx, "createTask", params, &resp); err != nil {
		return 0, fmt.Errorf("createTask %s: %w", task.Type(), err)
	}

	c.trace("task created", slog.Int64("taskId", resp.TaskID), slog.String("type", string(task.Type())))
	return resp.TaskID, nil
}

// trace logs task lifecycle milestones. They are Debug level unless cfg.Debug is set.
func (c *Client) trace(msg string, attrs ...slog.Attr) {
	level := slog.LevelDebug
	if c.cfg.Debug {
		level = slog.LevelInfo
	}
	c.log.LogAttrs(context.Background(), level, msg, attrs...)
}
