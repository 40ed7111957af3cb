package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()
	if len(l.Panels) != PanelCount {
		t.Fatalf("panels: %d", len(l.Panels))
	}
	keys := map[string]bool{}
	for i, p := range l.Panels {
		if p.Index != i {
			t.Fatalf("panel %d has index %d", i, p.Index)
		}
		if p.Key == "" || keys[p.Key] {
			t.Fatalf("panel %d key %q", i, p.Key)
		}
		keys[p.Key] = true
	}
	if len(l.Obstacles) == 0 {
		t.Fatalf("default layout should have obstacles")
	}
	// Everything must fit inside the sample square, let alone the boundary.
	for _, o := range l.Obstacles {
		if abs(o.Center[0])+o.Size[0]/2 > 30 || abs(o.Center[1])+o.Size[1]/2 > 30 {
			t.Fatalf("obstacle out of range: %+v", o)
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func writeLayout(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadLayout_Validation(t *testing.T) {
	good := `agent:
  spawn: [0, 4]
panels:
  - {index: 0, key: about, pos: [0, 2.2, 14], size: [3.6, 2.4]}
  - {index: 1, key: projects, pos: [14, 2.2, 0], size: [3.6, 2.4]}
  - {index: 2, key: skills, pos: [0, 2.2, -14], size: [3.6, 2.4]}
  - {index: 3, key: contact, pos: [-14, 2.2, 0], size: [3.6, 2.4]}
device:
  pos: [-5, 1, -12]
  size: [1.6, 1.2, 1.0]
`
	l, err := LoadLayout(writeLayout(t, good))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if l.Agent.Spawn != [2]float64{0, 4} || len(l.Panels) != 4 {
		t.Fatalf("layout: %+v", l)
	}

	bad := []string{
		// three panels
		`panels:
  - {index: 0, key: a, pos: [0, 2, 14], size: [3, 2]}
  - {index: 1, key: b, pos: [14, 2, 0], size: [3, 2]}
  - {index: 2, key: c, pos: [0, 2, -14], size: [3, 2]}
`,
		// duplicate index
		`panels:
  - {index: 0, key: a, pos: [0, 2, 14], size: [3, 2]}
  - {index: 0, key: b, pos: [14, 2, 0], size: [3, 2]}
  - {index: 2, key: c, pos: [0, 2, -14], size: [3, 2]}
  - {index: 3, key: d, pos: [-14, 2, 0], size: [3, 2]}
`,
		// index out of range
		`panels:
  - {index: 0, key: a, pos: [0, 2, 14], size: [3, 2]}
  - {index: 1, key: b, pos: [14, 2, 0], size: [3, 2]}
  - {index: 2, key: c, pos: [0, 2, -14], size: [3, 2]}
  - {index: 9, key: d, pos: [-14, 2, 0], size: [3, 2]}
`,
		// missing content key
		`panels:
  - {index: 0, key: "", pos: [0, 2, 14], size: [3, 2]}
  - {index: 1, key: b, pos: [14, 2, 0], size: [3, 2]}
  - {index: 2, key: c, pos: [0, 2, -14], size: [3, 2]}
  - {index: 3, key: d, pos: [-14, 2, 0], size: [3, 2]}
`,
	}
	for i, body := range bad {
		if _, err := LoadLayout(writeLayout(t, body)); err == nil {
			t.Fatalf("bad layout %d accepted", i)
		}
	}
}
