package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.TickRateHz != 30 {
		t.Fatalf("tick rate %d", d.TickRateHz)
	}
	if d.Agent.RetargetMinMS != 3000 || d.Agent.RetargetMaxMS != 5000 {
		t.Fatalf("retarget interval [%d, %d]", d.Agent.RetargetMinMS, d.Agent.RetargetMaxMS)
	}
	if d.Agent.RetargetMinMS >= d.Agent.RetargetMaxMS {
		t.Fatalf("interval bounds inverted")
	}
	if d.Scene.SampleRange >= d.Scene.BoundaryR {
		t.Fatalf("sample range must sit inside the boundary")
	}
	if d.Focus.EnterTweenMS <= 0 || d.Focus.HelpGraceMS <= 0 {
		t.Fatalf("focus timings: %+v", d.Focus)
	}
	if d.Quality.DownFPS >= d.Quality.UpFPS {
		t.Fatalf("quality thresholds inverted: %+v", d.Quality)
	}
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	body := `tick_rate_hz: 20
agent:
  move_speed: 3.5
  radius: 0.9
  wheel_radius: 0.35
  arrive_radius: 1
  heading_smoothing: 6
  retarget_min_ms: 2000
  retarget_max_ms: 4000
  find_free_attempts: 10
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TickRateHz != 20 || got.Agent.MoveSpeed != 3.5 || got.Agent.RetargetMinMS != 2000 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	// Untouched sections keep their defaults.
	if got.Focus.EnterTweenMS != 2000 || got.Input.DragThresholdPX != 5 {
		t.Fatalf("defaults lost: %+v", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("want error")
	}
	if got.TickRateHz != 30 {
		t.Fatalf("missing file must still return defaults")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("tick_rate_hz: ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("want parse error")
	}
}
