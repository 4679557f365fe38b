// Package httpfetch provides the 'http_fetch' task kind: a single HTTP
// request whose URL, method, headers and body come from resolved inputs and
// whose response payload becomes the task's result data.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vk/taskpipe/internal/ctxlog"
	"github.com/vk/taskpipe/internal/registry"
	"github.com/vk/taskpipe/internal/result"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// httpClient is shared across all http_fetch executions to reuse TCP
// connections.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// Run is the handler for the 'http_fetch' kind.
//
// Recognized inputs: url (required), method (default GET), body (string),
// headers (map of string to string).
func Run(ctx context.Context, inputs map[string]any) result.Result {
	url, ok := inputs["url"].(string)
	if !ok || url == "" {
		return result.Fail(result.KindExecution, "http_fetch requires a 'url' input")
	}

	method := http.MethodGet
	if m, ok := inputs["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}

	var body io.Reader
	if b, ok := inputs["body"].(string); ok && b != "" {
		body = strings.NewReader(b)
	}

	logger := ctxlog.FromContext(ctx).With("kind", "http_fetch", "method", method, "url", url)
	logger.Debug("Sending request.")

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return result.Failf(result.KindExecution, "invalid request: %v", err)
	}
	if headers, ok := inputs["headers"].(map[string]any); ok {
		for name, value := range headers {
			req.Header.Set(name, fmt.Sprintf("%v", value))
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return result.Failf(result.KindExternal, "request failed: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return result.Failf(result.KindExternal, "failed to read response body: %v", err)
	}
	logger.Debug("Request finished.", "status", resp.StatusCode, "bytes", len(payload))

	if resp.StatusCode >= 400 {
		return result.Failf(result.KindExternal, "server returned %s", resp.Status)
	}

	headers := make(map[string]any, len(resp.Header))
	for name := range resp.Header {
		headers[name] = resp.Header.Get(name)
	}
	return result.OkWithMeta(map[string]any{
		"status": resp.StatusCode,
		"body":   string(payload),
	}, map[string]any{"headers": headers})
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("http_fetch", &registry.Handler{Run: Run})
}
