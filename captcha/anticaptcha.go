package captcha

import (
	"context"
	"fmt"
	"log/slog"

	anticaptcha "github.com/anatolykoptev/go-anticaptcha"
)

const balanceWarnLevel = 5.0 // warn when balance drops below $5

// client is the subset of *anticaptcha.Client used by AntiCaptcha.
type client interface {
	FunCaptcha(ctx context.Context, websiteURL, publicKey string, proxy *anticaptcha.Proxy, opts ...anticaptcha.TaskOption) (int64, error)
	WaitForResult(ctx context.Context, taskID int64, opts anticaptcha.PollOptions) (*anticaptcha.TaskResult, error)
	Balance(ctx context.Context) (float64, error)
}

// AntiCaptcha implements Solver with FunCaptcha tasks on anti-captcha.com.
type AntiCaptcha struct {
	client client
	proxy  *anticaptcha.Proxy
	poll   anticaptcha.PollOptions
}

// NewAntiCaptcha creates a Solver backed by an anti-captcha client.
// A nil proxy submits proxyless tasks.
func NewAntiCaptcha(c *anticaptcha.Client, proxy *anticaptcha.Proxy, poll anticaptcha.PollOptions) *AntiCaptcha {
	return &AntiCaptcha{client: c, proxy: proxy, poll: poll}
}

// Solve submits a FunCaptcha challenge and waits for its token.
func (a *AntiCaptcha) Solve(ctx context.Context, siteKey, pageURL string) (string, error) {
	bal, balErr := a.client.Balance(ctx)
	if balErr == nil && bal < balanceWarnLevel {
		slog.Warn("anti-captcha balance low", slog.Float64("balance", bal))
	}

	taskID, err := a.client.FunCaptcha(ctx, pageURL, siteKey, a.proxy)
	if err != nil {
		return "", err
	}
	slog.Info("CAPTCHA task created", slog.Int64("taskId", taskID))

	res, err := a.client.WaitForResult(ctx, taskID, a.poll)
	if err != nil {
		return "", fmt.Errorf("anti-captcha task %d: %w", taskID, err)
	}
	if res.Solution.Token == "" {
		return "", fmt.Errorf("anti-captcha: ready but empty token")
	}

	slog.Info("CAPTCHA solved", slog.Int64("taskId", taskID))
	return res.Solution.Token, nil
}

// Balance returns the anti-captcha account balance in USD.
func (a *AntiCaptcha) Balance(ctx context.Context) (float64, error) {
	return a.client.Balance(ctx)
}
