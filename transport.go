package anticaptcha

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// transport performs one raw JSON POST and returns the body and HTTP status.
type transport interface {
	post(ctx context.Context, url string, body []byte) ([]byte, int, error)
}

// apiHeaders are sent with every API call.
var apiHeaders = map[string]string{
	"content-type": "application/json",
	"accept":       "application/json",
}

// apiHeaderOrder keeps the stealth client's header order stable.
var apiHeaderOrder = []string{
	"content-type",
	"accept",
	"user-agent",
}

// httpTransport posts through net/http.
type httpTransport struct {
	client *http.Client
}

func newHTTPTransport(timeout time.Duration) *httpTransport {
	return &httpTransport{client: &http.Client{Timeout: timeout}}
}

func (t *httpTransport) post(ctx context.Context, url string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	for k, v := range apiHeaders {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

// stealthTransport posts through a go-stealth browser client, optionally via a proxy.
type stealthTransport struct {
	client *stealth.BrowserClient
}

func newStealthTransport(proxy string) (*stealthTransport, error) {
	opts := []stealth.ClientOption{
		stealth.WithHeaderOrder(apiHeaderOrder),
	}
	if proxy != "" {
		opts = append(opts, stealth.WithProxy(proxy))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}
	return &stealthTransport{client: bc}, nil
}

func (t *stealthTransport) post(ctx context.Context, url string, body []byte) ([]byte, int, error) {
	headers := make(map[string]string, len(apiHeaders))
	for k, v := range apiHeaders {
		headers[k] = v
	}
	data, _, status, err := t.client.DoWithHeaderOrderCtx(ctx, http.MethodPost, url, headers, bytes.NewReader(body), apiHeaderOrder)
	return data, status, err
}

// endpointURL joins the base URL and an API method name.
func endpointURL(base, method string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(method, "/")
}
