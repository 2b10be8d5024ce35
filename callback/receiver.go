// Package callback receives task results pushed by anti-captcha to a callbackUrl.
package callback

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	anticaptcha "github.com/anatolykoptev/go-anticaptcha"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultPendingTTL = 10 * time.Minute
	defaultMaxPending = 1024
)

// outcome is the final state of one pushed task.
type outcome struct {
	result *anticaptcha.TaskResult
	err    error

	receivedAt time.Time
}

// pushPayload is the body anti-captcha POSTs to the callback URL.
type pushPayload struct {
	TaskID           int64  `json:"taskId"`
	ErrorID          int    `json:"errorId"`
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`
	anticaptcha.TaskResult
}

// Receiver is an HTTP endpoint for callbackUrl notifications.
// Results are handed to every Wait caller of the task. Results pushed before
// anyone waits are kept for a limited time and up to a limited count.
type Receiver struct {
	app       *fiber.App
	publicURL string
	token     string

	log        *slog.Logger
	pendingTTL time.Duration
	maxPending int
	now        func() time.Time

	mu      sync.Mutex
	waiters map[int64][]chan outcome
	pending map[int64]outcome
}

// Option customizes a Receiver.
type Option func(*Receiver)

// WithLogger overrides slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Receiver) {
		if l != nil {
			r.log = l
		}
	}
}

// WithPendingTTL sets how long an unclaimed result is kept. Default: 10m.
func WithPendingTTL(d time.Duration) Option {
	return func(r *Receiver) {
		if d > 0 {
			r.pendingTTL = d
		}
	}
}

// WithMaxPending caps the number of unclaimed results; the oldest is dropped first. Default: 1024.
func WithMaxPending(n int) Option {
	return func(r *Receiver) {
		if n > 0 {
			r.maxPending = n
		}
	}
}

// NewReceiver creates a receiver reachable by the API at publicURL,
// e.g. "https://hooks.example.com".
func NewReceiver(publicURL string, opts ...Option) *Receiver {
	r := &Receiver{
		app:        fiber.New(fiber.Config{DisableStartupMessage: true}),
		publicURL:  strings.TrimRight(publicURL, "/"),
		token:      uuid.NewString(),
		log:        slog.Default(),
		pendingTTL: defaultPendingTTL,
		maxPending: defaultMaxPending,
		now:        time.Now,
		waiters:    make(map[int64][]chan outcome),
		pending:    make(map[int64]outcome),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.app.Post("/callback/:token", r.handlePush)
	return r
}

// URL is the callback URL to pass to anticaptcha.WithCallbackURL.
func (r *Receiver) URL() string {
	return r.publicURL + r.Path()
}

// Path is the route results are accepted on.
func (r *Receiver) Path() string {
	return "/callback/" + r.token
}

// App exposes the fiber app, for mounting or testing.
func (r *Receiver) App() *fiber.App {
	return r.app
}

// Listen serves the receiver on addr until Shutdown.
func (r *Receiver) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown stops the HTTP server.
func (r *Receiver) Shutdown() error {
	return r.app.Shutdown()
}

// Wait blocks until the result for taskID is pushed or ctx is done.
// Concurrent waiters on one task all receive the same result.
// A pushed error answer is returned as *anticaptcha.RemoteError.
func (r *Receiver) Wait(ctx context.Context, taskID int64) (*anticaptcha.TaskResult, error) {
	r.mu.Lock()
	if o, ok := r.pending[taskID]; ok {
		delete(r.pending, taskID)
		if !r.expired(o) {
			r.mu.Unlock()
			return o.result, o.err
		}
	}
	ch := make(chan outcome, 1)
	r.waiters[taskID] = append(r.waiters[taskID], ch)
	r.mu.Unlock()

	select {
	case o := <-ch:
		return o.result, o.err
	case <-ctx.Done():
		r.removeWaiter(taskID, ch)
		return nil, ctx.Err()
	}
}

func (r *Receiver) removeWaiter(taskID int64, ch chan outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chans := r.waiters[taskID]
	for i, c := range chans {
		if c == ch {
			chans = append(chans[:i], chans[i+1:]...)
			break
		}
	}
	if len(chans) == 0 {
		delete(r.waiters, taskID)
	} else {
		r.waiters[taskID] = chans
	}
}

func (r *Receiver) handlePush(c *fiber.Ctx) error {
	if c.Params("token") != r.token {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "not_found"})
	}

	var p pushPayload
	if err := c.BodyParser(&p); err != nil || p.TaskID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "bad_request"})
	}

	switch {
	case p.ErrorID != 0:
		r.deliver(p.TaskID, outcome{err: &anticaptcha.RemoteError{
			ID:          p.ErrorID,
			Code:        p.ErrorCode,
			Description: p.ErrorDescription,
		}})
	case p.Ready():
		res := p.TaskResult
		r.deliver(p.TaskID, outcome{result: &res})
	default:
		r.log.Debug("callback: ignoring non-final push", slog.Int64("taskId", p.TaskID), slog.String("status", string(p.Status)))
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// deliver hands o to every waiter for taskID, or keeps it until one arrives.
func (r *Receiver) deliver(taskID int64, o outcome) {
	r.mu.Lock()
	chans := r.waiters[taskID]
	delete(r.waiters, taskID)
	if len(chans) == 0 {
		o.receivedAt = r.now()
		r.prune()
		r.pending[taskID] = o
	}
	r.mu.Unlock()

	for _, ch := range chans {
		ch <- o
	}
	r.log.Debug("callback: task result received", slog.Int64("taskId", taskID), slog.Int("waiters", len(chans)))
}

// prune drops expired results and, at capacity, the oldest one. r.mu must be held.
func (r *Receiver) prune() {
	var oldestID int64
	var oldest time.Time
	for id, o := range r.pending {
		if r.expired(o) {
			delete(r.pending, id)
			continue
		}
		if oldest.IsZero() || o.receivedAt.Before(oldest) {
			oldestID, oldest = id, o.receivedAt
		}
	}
	if len(r.pending) >= r.maxPending {
		delete(r.pending, oldestID)
		r.log.Warn("callback: pending results at capacity, dropping oldest", slog.Int64("taskId", oldestID))
	}
}

func (r *Receiver) expired(o outcome) bool {
	return r.now().Sub(o.receivedAt) > r.pendingTTL
}
