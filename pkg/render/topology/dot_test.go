package topology

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/lightlayer/pkg/core/layer"
	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/node"
	"github.com/matzehuels/lightlayer/pkg/core/pins"
	"github.com/matzehuels/lightlayer/pkg/engine"
)

func snapshot() engine.Snapshot {
	return engine.Snapshot{
		Report: layer.Report{
			Lights:       10,
			PackedLights: 8,
			Size:         lights.Coord3D{X: 10, Y: 1, Z: 1},
			State:        "complete",
			Pins:         []pins.Range{{Pin: 2, Start: 0, Count: 10}},
			Layers:       []layer.LayerReport{{ID: 0, Lights: 10, Size: lights.Coord3D{X: 10, Y: 1, Z: 1}}},
		},
		Nodes: []engine.NodeInfo{
			{
				SlotInfo: node.SlotInfo{Index: 0, Name: "Single Line"},
				Category: "layout",
				Controls: node.Controls{
					{Name: "lights", Value: 10},
					{Name: "start", Controls: node.Controls{{Name: "x", Value: 0}}},
				},
			},
			{SlotInfo: node.SlotInfo{Index: 1, Name: "Virtual Driver"}, Category: "driver"},
		},
	}
}

func TestToDOT(t *testing.T) {
	tests := []struct {
		name     string
		detailed bool
		want     []string
		notWant  []string
	}{
		{
			name: "simple",
			want: []string{
				"digraph G {",
				`"physical" -> "pin2"`,
				`"physical" -> "layer0"`,
				`"layer0" -> "slot0"`,
				`"pin2" -> "slot1" [style=dashed]`,
				`label="0: Single Line"`,
				"2 not packed",
				`fillcolor="#cfe8ff"`,
			},
			notWant: []string{"lights: 10"},
		},
		{
			name:     "detailed",
			detailed: true,
			want:     []string{`lights: 10`, `start.x: 0`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(snapshot(), Options{Detailed: tt.detailed})
			for _, w := range tt.want {
				if !strings.Contains(dot, w) {
					t.Errorf("DOT missing %q:\n%s", w, dot)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(dot, w) {
					t.Errorf("DOT contains %q:\n%s", w, dot)
				}
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("without viewBox: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(snapshot(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("output is not SVG: %.80s", svg)
	}
}
