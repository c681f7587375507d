package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lightlayer/pkg/core/layer"
	"github.com/matzehuels/lightlayer/pkg/engine"
	"github.com/matzehuels/lightlayer/pkg/observability"
)

// slowLayout is the layout duration above which a cycle is logged as a
// warning. Full cycles get the pass-1 settle delay on top.
const slowLayout = 50 * time.Millisecond

// logHooks reports layout and store events to the CLI logger.
type logHooks struct {
	observability.NoopLayoutHooks
	observability.NoopStoreHooks
	logger *log.Logger
}

// RegisterHooks routes layout and store events to the CLI logger. Store
// traffic is logged at debug level; slow layout cycles are warnings.
func (c *CLI) RegisterHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetLayoutHooks(h)
	observability.SetStoreHooks(h)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, mode string, lights int, d time.Duration, err error) {
	budget := slowLayout
	if mode == engine.ModeFull {
		budget += layer.DefaultSettleDelay
	}
	if err == nil && d > budget {
		h.logger.Warn("slow layout", "mode", mode, "lights", lights, "duration", d.Round(time.Millisecond))
	}
}

func (h *logHooks) OnStoreHit(_ context.Context, backend, key string) {
	h.logger.Debug("store hit", "backend", backend, "key", key)
}

func (h *logHooks) OnStoreMiss(_ context.Context, backend, key string) {
	h.logger.Debug("store miss", "backend", backend, "key", key)
}

func (h *logHooks) OnStoreSet(_ context.Context, backend, key string, size int) {
	h.logger.Debug("store set", "backend", backend, "key", key, "bytes", size)
}
