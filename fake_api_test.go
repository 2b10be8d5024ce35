package anticaptcha

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-process stand-in for api.anti-captcha.com.
// Each method answers from a queue of JSON bodies; the last body repeats.
type fakeAPI struct {
	srv *httptest.Server

	mu      sync.Mutex
	replies map[string][]string
	calls   map[string][]map[string]any
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		replies: make(map[string][]string),
		calls:   make(map[string][]map[string]any),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) reply(method string, bodies ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[method] = append(f.replies[method], bodies...)
}

func (f *fakeAPI) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls[method])
}

func (f *fakeAPI) lastCall(t *testing.T, method string) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := f.calls[method]
	require.NotEmpty(t, calls, "no %s call recorded", method)
	return calls[len(calls)-1]
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, "/")
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.calls[method] = append(f.calls[method], body)
	queue := f.replies[method]
	var out string
	switch len(queue) {
	case 0:
	case 1:
		out = queue[0]
	default:
		out, f.replies[method] = queue[0], queue[1:]
	}
	f.mu.Unlock()

	if out == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, out)
}

func newTestClient(t *testing.T, f *fakeAPI) *Client {
	t.Helper()
	c, err := NewClient(ClientConfig{
		APIKey:  "test_api_key",
		BaseURL: f.srv.URL,
		Poll:    PollOptions{Interval: time.Millisecond},
	})
	require.NoError(t, err)
	return c
}

const (
	processingBody = `{"errorId":0,"status":"processing"}`
	createdBody    = `{"errorId":0,"taskId":7654321}`
)
