package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int `yaml:"tick_rate_hz"`

	Scene   Scene   `yaml:"scene"`
	Agent   Agent   `yaml:"agent"`
	Focus   Focus   `yaml:"focus"`
	Input   Input   `yaml:"input"`
	Quality Quality `yaml:"quality"`
}

type Scene struct {
	BoundaryR     float64 `yaml:"boundary_r"`
	SampleRange   float64 `yaml:"sample_range"`
	PoseEveryTick int     `yaml:"pose_every_ticks"`
}

type Agent struct {
	MoveSpeed        float64 `yaml:"move_speed"` // units per second
	Radius           float64 `yaml:"radius"`
	WheelRadius      float64 `yaml:"wheel_radius"`
	ArriveRadius     float64 `yaml:"arrive_radius"`
	HeadingSmoothing float64 `yaml:"heading_smoothing"` // per-second exponential rate
	RetargetMinMS    int64   `yaml:"retarget_min_ms"`
	RetargetMaxMS    int64   `yaml:"retarget_max_ms"`
	FindFreeAttempts int     `yaml:"find_free_attempts"`
}

type Focus struct {
	EnterTweenMS    int64   `yaml:"enter_tween_ms"`
	ExitTweenMS     int64   `yaml:"exit_tween_ms"`
	RevealStaggerMS int64   `yaml:"reveal_stagger_ms"`
	HelpGraceMS     int64   `yaml:"help_grace_ms"`
	HelpCameraDist  float64 `yaml:"help_camera_dist"`
	HelpTargetDist  float64 `yaml:"help_target_dist"`
	PanelFrontDist  float64 `yaml:"panel_front_dist"`
}

type Input struct {
	DragThresholdPX float64 `yaml:"drag_threshold_px"`
}

type Quality struct {
	WindowSamples int     `yaml:"window_samples"`
	DownFPS       float64 `yaml:"down_fps"`
	UpFPS         float64 `yaml:"up_fps"`
	HoldMS        int64   `yaml:"hold_ms"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      30,
		Scene: Scene{
			BoundaryR:     40,
			SampleRange:   30,
			PoseEveryTick: 1,
		},
		Agent: Agent{
			MoveSpeed:        2.4,
			Radius:           0.9,
			WheelRadius:      0.35,
			ArriveRadius:     1,
			HeadingSmoothing: 6,
			RetargetMinMS:    3000,
			RetargetMaxMS:    5000,
			FindFreeAttempts: 10,
		},
		Focus: Focus{
			EnterTweenMS:    2000,
			ExitTweenMS:     2000,
			RevealStaggerMS: 150,
			HelpGraceMS:     3000,
			HelpCameraDist:  25,
			HelpTargetDist:  20,
			PanelFrontDist:  6,
		},
		Input: Input{
			DragThresholdPX: 5,
		},
		Quality: Quality{
			WindowSamples: 60,
			DownFPS:       24,
			UpFPS:         50,
			HoldMS:        4000,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
