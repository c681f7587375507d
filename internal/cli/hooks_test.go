package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lightlayer/pkg/observability"
)

func TestRegisterHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	c := New(&buf, log.DebugLevel)
	c.RegisterHooks()
	ctx := context.Background()

	observability.Store().OnStoreMiss(ctx, "file", "preset:stage")
	observability.Layout().OnLayoutComplete(ctx, "full", 10, time.Millisecond, nil)
	observability.Layout().OnLayoutComplete(ctx, "full", 10, time.Second, nil)

	out := buf.String()
	if !strings.Contains(out, "store miss") || !strings.Contains(out, "preset:stage") {
		t.Errorf("missing store log:\n%s", out)
	}
	if strings.Count(out, "slow layout") != 1 {
		t.Errorf("want one slow layout warning:\n%s", out)
	}
}
