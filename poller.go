package anticaptcha

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// GetTaskResult queries the current state of a task once.
func (c *Client) GetTaskResult(ctx context.Context, taskID int64) (*TaskResult, error) {
	var resp taskResultResponse
	if err := c.send(ctx, "getTaskResult", map[string]any{"taskId": taskID}, &resp); err != nil {
		return nil, fmt.Errorf("getTaskResult: %w", err)
	}
	switch resp.Status {
	case StatusReady, StatusProcessing:
		return &resp.TaskResult, nil
	default:
		return nil, fmt.Errorf("getTaskResult: %w", &TransportError{Op: "getTaskResult", Err: fmt.Errorf("unexpected status %q", resp.Status)})
	}
}

// WaitForResult polls taskID every opts.Interval until the task is ready.
//
// The poll ends on the first of: a ready answer (returned), a failed query
// (its error is returned), more than opts.MaxRetries processing answers
// (a *TimeoutError), or ctx being done (ctx.Err()). Zero fields of opts fall
// back to ClientConfig.Poll and then to 12 retries every 10s.
func (c *Client) WaitForResult(ctx context.Context, taskID int64, opts PollOptions) (*TaskResult, error) {
	return c.poll(ctx, taskID, opts.withDefaults(c.cfg.Poll).withDefaults(defaultPoll))
}

func (c *Client) poll(ctx context.Context, taskID int64, opts PollOptions) (*TaskResult, error) {
	timer := time.NewTimer(opts.Interval)
	defer timer.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		c.trace("polling task result", slog.Int64("taskId", taskID), slog.Int("retry", attempts))

		res, err := c.GetTaskResult(ctx, taskID)
		if err != nil {
			c.trace("task result query failed", slog.Int64("taskId", taskID), slog.Any("error", err))
			return nil, err
		}
		if res.Ready() {
			c.trace("task ready", slog.Int64("taskId", taskID), slog.Int("queries", attempts+1))
			return res, nil
		}

		attempts++
		if attempts > opts.MaxRetries {
			c.trace("task exceeded retry count", slog.Int64("taskId", taskID), slog.Int("maxRetries", opts.MaxRetries))
			return nil, &TimeoutError{TaskID: taskID, Attempts: attempts}
		}
		timer.Reset(opts.Interval)
	}
}
