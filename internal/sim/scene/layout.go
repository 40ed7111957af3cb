package scene

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Layout is the static scene description: obstacle footprints, panel
// placements and the device position. It is the data form of the scene-builder
// contract; the renderer builds meshes from the same file.
type Layout struct {
	Agent     LayoutAgent      `yaml:"agent"`
	Obstacles []LayoutObstacle `yaml:"obstacles"`
	Panels    []LayoutPanel    `yaml:"panels"`
	Device    LayoutDevice     `yaml:"device"`
}

type LayoutAgent struct {
	Spawn [2]float64 `yaml:"spawn"` // x, z
}

type LayoutObstacle struct {
	Center [2]float64 `yaml:"center"` // x, z
	Size   [2]float64 `yaml:"size"`   // width, depth
}

type LayoutPanel struct {
	Index int        `yaml:"index"`
	Key   string     `yaml:"key"`
	Pos   [3]float64 `yaml:"pos"`
	Size  [2]float64 `yaml:"size"` // width, height
}

type LayoutDevice struct {
	Pos  [3]float64 `yaml:"pos"`
	Size [3]float64 `yaml:"size"`
}

func LoadLayout(path string) (*Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var l Layout
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("scene.yaml: %w", err)
	}
	if len(l.Panels) != PanelCount {
		return nil, fmt.Errorf("scene.yaml: want %d panels, got %d", PanelCount, len(l.Panels))
	}
	seen := map[int]bool{}
	for _, p := range l.Panels {
		if p.Index < 0 || p.Index >= PanelCount {
			return nil, fmt.Errorf("scene.yaml: panel index %d out of range", p.Index)
		}
		if seen[p.Index] {
			return nil, fmt.Errorf("scene.yaml: duplicate panel index %d", p.Index)
		}
		seen[p.Index] = true
		if p.Key == "" {
			return nil, fmt.Errorf("scene.yaml: panel %d has no content key", p.Index)
		}
	}
	return &l, nil
}

func (l *Layout) obstacles() []Obstacle {
	out := make([]Obstacle, 0, len(l.Obstacles))
	for _, o := range l.Obstacles {
		out = append(out, Obstacle{
			CenterX: o.Center[0],
			CenterZ: o.Center[1],
			Width:   o.Size[0],
			Depth:   o.Size[1],
		})
	}
	return out
}

// DefaultLayout mirrors configs/scene.yaml so tests and fresh checkouts work
// without the config directory.
func DefaultLayout() *Layout {
	panelR := 14.0
	panels := make([]LayoutPanel, PanelCount)
	keys := []string{"about", "projects", "skills", "contact"}
	for i := 0; i < PanelCount; i++ {
		ang := (math.Pi / 2) * float64(i)
		panels[i] = LayoutPanel{
			Index: i,
			Key:   keys[i],
			Pos:   [3]float64{panelR * math.Sin(ang), 2.2, panelR * math.Cos(ang)},
			Size:  [2]float64{3.6, 2.4},
		}
	}
	return &Layout{
		Agent:  LayoutAgent{Spawn: [2]float64{0, 4}},
		Panels: panels,
		Obstacles: []LayoutObstacle{
			{Center: [2]float64{-8, -6}, Size: [2]float64{4, 3}},
			{Center: [2]float64{9, -9}, Size: [2]float64{3, 3}},
			{Center: [2]float64{-10, 10}, Size: [2]float64{3, 5}},
			{Center: [2]float64{6, 12}, Size: [2]float64{2.5, 2.5}},
		},
		Device: LayoutDevice{
			Pos:  [3]float64{-5, 1, -12},
			Size: [3]float64{1.6, 1.2, 1.0},
		},
	}
}
