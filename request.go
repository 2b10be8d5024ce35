package anticaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// apiResponse is implemented by every response type through its embedded errorFields.
type apiResponse interface {
	apiError() error
}

// send POSTs params to the named API method with clientKey and softId added,
// decodes the answer into out and converts a non-zero errorId into a *RemoteError.
func (c *Client) send(ctx context.Context, method string, params map[string]any, out apiResponse) error {
	payload := make(map[string]any, len(params)+2)
	for k, v := range params {
		payload[k] = v
	}
	payload["clientKey"] = c.cfg.APIKey
	payload["softId"] = softID

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", method, err)
	}

	data, status, err := c.transport.post(ctx, endpointURL(c.cfg.BaseURL, method), body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &TransportError{Op: method, Err: err}
	}
	if status != http.StatusOK {
		return &TransportError{Op: method, Err: fmt.Errorf("HTTP %d: %s", status, truncateBytes(data, 200))}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: method, Err: fmt.Errorf("decode response: %w", err)}
	}
	return out.apiError()
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
