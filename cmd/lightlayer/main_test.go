package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/matzehuels/lightlayer/internal/cli"
	"github.com/matzehuels/lightlayer/pkg/observability"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"failure", errors.New("boom"), exitError},
		{"interrupted", context.Canceled, exitInterrupted},
		{"wrapped interrupt", fmt.Errorf("run: %w", context.Canceled), exitInterrupted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestSetup(t *testing.T) {
	t.Cleanup(observability.Reset)
	observability.Reset()

	c := cli.New(io.Discard, cli.LogInfo)
	verbose := true
	if err := setup(c, &verbose)(nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := c.Logger.GetLevel(); got != cli.LogDebug {
		t.Errorf("level = %v, want debug", got)
	}
	if _, ok := observability.Layout().(observability.NoopLayoutHooks); ok {
		t.Error("layout hooks not registered")
	}
	if _, ok := observability.Store().(observability.NoopStoreHooks); ok {
		t.Error("store hooks not registered")
	}
}
