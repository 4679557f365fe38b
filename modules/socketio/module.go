// Package socketio provides the 'socketio' task kind: it connects to a
// Socket.IO server, optionally emits an event carrying data drawn from
// resolved inputs, and waits for a response event that becomes the task's
// result data.
package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/taskpipe/internal/ctxlog"
	"github.com/vk/taskpipe/internal/registry"
	"github.com/vk/taskpipe/internal/result"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// params are the recognized inputs of the 'socketio' kind.
type params struct {
	url                string
	namespace          string
	onEvent            string
	emitEvent          string
	emitData           map[string]any
	timeout            time.Duration
	insecureSkipVerify bool
}

// opResult passes the outcome through the done channel.
type opResult struct {
	value any
	err   error
}

func decodeParams(inputs map[string]any) (*params, error) {
	p := &params{namespace: "/", timeout: 10 * time.Second}

	var ok bool
	if p.url, ok = inputs["url"].(string); !ok || p.url == "" {
		return nil, fmt.Errorf("socketio requires a 'url' input")
	}
	if p.onEvent, ok = inputs["on_event"].(string); !ok || p.onEvent == "" {
		return nil, fmt.Errorf("socketio requires an 'on_event' input")
	}
	if ns, ok := inputs["namespace"].(string); ok && ns != "" {
		p.namespace = ns
	}
	if emit, ok := inputs["emit_event"].(string); ok {
		p.emitEvent = emit
	}
	if data, ok := inputs["emit_data"].(map[string]any); ok {
		p.emitData = data
	}
	if raw, ok := inputs["timeout"].(string); ok && raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", raw, err)
		}
		p.timeout = d
	}
	if skip, ok := inputs["insecure_skip_verify"].(bool); ok {
		p.insecureSkipVerify = skip
	}
	return p, nil
}

// Run is the handler for the 'socketio' kind.
func Run(ctx context.Context, inputs map[string]any) result.Result {
	p, err := decodeParams(inputs)
	if err != nil {
		return result.FromError(result.KindExecution, err)
	}

	logger := ctxlog.FromContext(ctx).With("kind", "socketio", "url", p.url, "onEvent", p.onEvent, "emitEvent", p.emitEvent)
	logger.Debug("Handler started.")
	defer logger.Debug("Handler finished.")

	var isConnected atomic.Bool
	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	parsedURL, err := url.Parse(p.url)
	if err != nil {
		return result.Failf(result.KindExecution, "failed to parse URL: %v", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if p.insecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(p.namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client.")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Connected.", "namespace", p.namespace, "sid", io.Id())
		if p.emitEvent != "" {
			jsonData, _ := json.Marshal(p.emitData)
			logger.Info("Emitting event.", "event", p.emitEvent, "data", string(jsonData))
			io.Emit(p.emitEvent, p.emitData)
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		done <- opResult{err: err}
	})

	io.On(types.EventName(p.onEvent), func(data ...any) {
		var responseData any
		if len(data) > 0 {
			responseData = data[0]
		}
		done <- opResult{value: responseData}
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return result.Failf(result.KindTimeout, "timed out after connecting while waiting for event %q", p.onEvent)
		}
		return result.Fail(result.KindTimeout, "timed out while waiting for initial connection")
	case res := <-done:
		if res.err != nil {
			return result.FromError(result.KindExternal, res.err)
		}
		return result.Ok(map[string]any{"response_data": res.value})
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("socketio", &registry.Handler{Run: Run})
}
