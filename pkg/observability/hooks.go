// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout cycles, node management, preset storage and
// the HTTP control surface.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the core packages stay
// free of any observability framework.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnLayoutStart(ctx, "full", nodeCount)
//	// ... run both passes ...
//	observability.Layout().OnLayoutComplete(ctx, "full", lights, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from layout cycles. Mode is "full" for a
// two-pass cycle and "virtual" for a pass-2-only remap.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, mode string, layouts int)
	OnLayoutComplete(ctx context.Context, mode string, lights int, duration time.Duration, err error)
}

// =============================================================================
// Node Hooks
// =============================================================================

// NodeHooks receives events from node management.
type NodeHooks interface {
	// OnNodeAdded records a node placed into slot.
	OnNodeAdded(ctx context.Context, name string, slot int)

	// OnNodeRemoved records a cleared slot.
	OnNodeRemoved(ctx context.Context, slot int)

	// OnNodeRejected records a name that could not be resolved or constructed.
	OnNodeRejected(ctx context.Context, name string, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from preset store operations.
type StoreHooks interface {
	// OnStoreHit records a successful read.
	OnStoreHit(ctx context.Context, backend, key string)

	// OnStoreMiss records a read of a missing or expired key.
	OnStoreMiss(ctx context.Context, backend, key string)

	// OnStoreSet records a write.
	OnStoreSet(ctx context.Context, backend, key string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP control surface.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response sent for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int) {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {
}

// NoopNodeHooks is a no-op implementation of NodeHooks.
type NoopNodeHooks struct{}

func (NoopNodeHooks) OnNodeAdded(context.Context, string, int)      {}
func (NoopNodeHooks) OnNodeRemoved(context.Context, int)            {}
func (NoopNodeHooks) OnNodeRejected(context.Context, string, error) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreHit(context.Context, string, string)      {}
func (NoopStoreHooks) OnStoreMiss(context.Context, string, string)     {}
func (NoopStoreHooks) OnStoreSet(context.Context, string, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	nodeHooks   NodeHooks   = NoopNodeHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any layout runs.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetNodeHooks registers custom node hooks.
func SetNodeHooks(h NodeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		nodeHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Node returns the registered node hooks.
func Node() NodeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return nodeHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	nodeHooks = NoopNodeHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
