package livescript

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lightlayer/pkg/core/layer"
	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/node"
	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
)

const lineScript = `
n = control("lights", 3)

function addLayout()
  for x = 0, n - 1 do
    addLight(x, 0, 0)
  end
  addPin(4)
end

function loop()
  local r, g, b = hsv(0)
  setRGB(frame() % lights(), r, g, b)
end
`

func newLayer(t *testing.T, scripts map[string]string, opts ...Option) *layer.PhysicalLayer {
	t.Helper()
	reg := node.NewRegistry()
	reg.SetFallback(Fallback(MapLoader(scripts), opts...))
	return layer.New(layer.Options{Registry: reg, Logger: log.New(io.Discard)})
}

func runLayout(t *testing.T, p *layer.PhysicalLayer) {
	t.Helper()
	for _, pass := range []layer.Pass{layer.Pass1, layer.Pass2} {
		if err := p.AddLayoutPre(pass); err != nil {
			t.Fatal(err)
		}
		p.EachNode(func(_ *layer.VirtualLayer, _ int, n node.Node) {
			if l, ok := n.(node.Layout); ok {
				if err := l.AddLayout(p); err != nil {
					t.Fatalf("AddLayout: %v", err)
				}
			}
		})
		if err := p.AddLayoutPost(); err != nil {
			t.Fatal(err)
		}
	}
	p.ReleasePositions()
}

func TestScriptLayoutAndLoop(t *testing.T) {
	p := newLayer(t, map[string]string{"line.lua": lineScript})
	if _, err := p.AddNode(0, "line.lua", node.Controls{{Name: "lights", Value: 5}}); err != nil {
		t.Fatal(err)
	}
	runLayout(t, p)

	if got := p.Header().Lights; got != 5 {
		t.Fatalf("lights = %d, want 5", got)
	}
	if got := p.Pins(); len(got) != 1 || got[0].Pin != 4 || got[0].Count != 5 {
		t.Errorf("pins = %v", got)
	}

	p.Loop()
	p.Loop()
	v := p.Layer(0)
	for i, want := range []lights.RGB{{R: 255}, {R: 255}, {}} {
		if got := v.RGB(i); got != want {
			t.Errorf("light %d = %v, want %v", i, got, want)
		}
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		code   lerrors.Code
	}{
		{"syntax error", "function (", lerrors.ErrCodeInvalidConfig},
		{"sandboxed os", "os.exit(1)", lerrors.ErrCodeInvalidConfig},
		{"missing script", "", lerrors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scripts := map[string]string{"s.lua": tt.script}
			if tt.script == "" {
				scripts = nil
			}
			p := newLayer(t, scripts)
			n, err := p.AddNode(0, "s.lua", nil)
			if n != nil || !lerrors.Is(err, tt.code) {
				t.Fatalf("AddNode = %v, %v; want code %s", n, err, tt.code)
			}
			if !strings.Contains(err.Error(), "s.lua") {
				t.Errorf("error %q does not name the script", err)
			}
			if p.NodeCount() != 0 {
				t.Error("failed script occupies a slot")
			}
		})
	}
}

func TestScriptLoopFailureDisables(t *testing.T) {
	p := newLayer(t, map[string]string{"bad.lua": `function loop() error("boom") end`})
	n, err := p.AddNode(0, "bad.lua", nil)
	if err != nil {
		t.Fatal(err)
	}
	p.Loop()
	s := n.(*Script)
	if !s.Failed() {
		t.Fatal("script not disabled after failing loop")
	}
	p.Loop()
	if s.frame != 0 {
		t.Errorf("frame = %d, want 0", s.frame)
	}
}

func TestScriptTimeout(t *testing.T) {
	p := newLayer(t, map[string]string{"spin.lua": `function loop() while true do end end`},
		WithTimeout(10*time.Millisecond))
	n, err := p.AddNode(0, "spin.lua", nil)
	if err != nil {
		t.Fatal(err)
	}
	p.Loop()
	if !n.(*Script).Failed() {
		t.Error("runaway loop not stopped")
	}
}

func TestAddLightOutsideLayout(t *testing.T) {
	p := newLayer(t, map[string]string{"x.lua": `function setup() addLight(0, 0, 0) end`})
	n, err := p.AddNode(0, "x.lua", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !n.(*Script).Failed() {
		t.Error("addLight in setup did not fail the script")
	}
}

func TestFallbackOnlyForScripts(t *testing.T) {
	fb := Fallback(MapLoader(nil))
	if _, ok := fb("Solid"); ok {
		t.Error("fallback resolved a non-script name")
	}
	if n, ok := fb("a.lua"); !ok || n.(*Script).Name() != "a.lua" {
		t.Error("fallback did not resolve a script name")
	}
}

func TestDirLoaderRejectsEscapes(t *testing.T) {
	load := DirLoader(t.TempDir())
	if _, err := load("../secret.lua"); !lerrors.Is(err, lerrors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestScriptRelease(t *testing.T) {
	p := newLayer(t, map[string]string{"a.lua": ""})
	n, err := p.AddNode(0, "a.lua", nil)
	if err != nil {
		t.Fatal(err)
	}
	p.RemoveNode(n)
	if n.(*Script).L != nil {
		t.Error("state not closed on removal")
	}
}
