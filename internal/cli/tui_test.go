package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/lightlayer/pkg/core/layer"
	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/node"
	"github.com/matzehuels/lightlayer/pkg/engine"
	"github.com/matzehuels/lightlayer/pkg/nodes/builtin"
)

func newDashboardEngine(t *testing.T) *engine.Engine {
	t.Helper()
	logger := log.New(io.Discard)
	eng := engine.New(engine.Options{
		Layer:  layer.Options{Registry: builtin.NewRegistry(nil), Logger: logger},
		Logger: logger,
	})
	ctx := context.Background()
	if _, err := eng.AddNode(ctx, 0, "Single Line", node.Controls{{Name: "lights", Value: 3}}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.AddNode(ctx, 1, "Solid", nil); err != nil {
		t.Fatal(err)
	}
	eng.Tick()
	return eng
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDashboardView(t *testing.T) {
	m := NewDashboardModel(newDashboardEngine(t))
	updated, cmd := m.Update(refreshMsg(time.Now()))
	if cmd == nil {
		t.Error("refresh should schedule the next refresh")
	}
	m = updated.(DashboardModel)

	view := m.View()
	for _, want := range []string{"Single Line", "Solid", "layout", "effect", "▸"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if len(m.Preview) != 3 || m.Preview[0] != (lights.RGB{R: 255}) {
		t.Errorf("preview = %v", m.Preview)
	}
}

func TestDashboardKeys(t *testing.T) {
	m := NewDashboardModel(newDashboardEngine(t))

	updated, _ := m.Update(key("down"))
	m = updated.(DashboardModel)
	if m.Cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.Cursor)
	}
	updated, _ = m.Update(key("down"))
	m = updated.(DashboardModel)
	if m.Cursor != 1 {
		t.Errorf("cursor moved past the last node: %d", m.Cursor)
	}

	updated, _ = m.Update(key("x"))
	m = updated.(DashboardModel)
	if !strings.Contains(m.Status, "removed Solid") {
		t.Errorf("status = %q", m.Status)
	}
	if len(m.Snapshot.Nodes) != 1 || m.Cursor != 0 {
		t.Errorf("nodes = %d, cursor = %d", len(m.Snapshot.Nodes), m.Cursor)
	}

	updated, _ = m.Update(key("r"))
	m = updated.(DashboardModel)
	if m.Status != "layout remapped" {
		t.Errorf("status = %q", m.Status)
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestRenderStrip(t *testing.T) {
	out := renderStrip([]lights.RGB{{R: 255}, {G: 255}})
	if strings.Count(out, "█") != 2 {
		t.Errorf("strip = %q", out)
	}
}
