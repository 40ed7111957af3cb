package scene

import (
	"holoroom.app/internal/protocol"
	"holoroom.app/internal/sim/tuning"
)

// QualityController folds client-reported frame-rate samples into a visual
// quality tier. The sampling loop lives in the renderer; the server only sees
// sample batches and emits a config when the tier actually changes. Hysteresis
// (separate up/down thresholds plus a hold time) keeps the tier from flapping.
type QualityController struct {
	cfg tuning.Quality

	window []float64
	tier   int // 0 high, 1 medium, 2 low

	lastChangeMS float64
}

func newQualityController(cfg tuning.Quality) *QualityController {
	return &QualityController{cfg: cfg, lastChangeMS: -1e15}
}

func (q *QualityController) Tier() int { return q.tier }

func (q *QualityController) Config() protocol.QualityConfig {
	switch q.tier {
	case 2:
		return protocol.QualityConfig{PixelDensity: 0.5}
	case 1:
		return protocol.QualityConfig{
			PixelDensity:     0.75,
			ParticlesEnabled: true,
		}
	default:
		return protocol.QualityConfig{
			PixelDensity:       1.0,
			ShadowsEnabled:     true,
			ParticlesEnabled:   true,
			DecorationsEnabled: true,
		}
	}
}

// AddSamples ingests a batch and reports whether the tier changed.
func (q *QualityController) AddSamples(nowMS float64, samples []float64) (protocol.QualityConfig, bool) {
	for _, s := range samples {
		if s <= 0 || s > 1000 {
			continue
		}
		q.window = append(q.window, s)
	}
	if n := len(q.window); n > q.cfg.WindowSamples {
		q.window = q.window[n-q.cfg.WindowSamples:]
	}
	if len(q.window) < q.cfg.WindowSamples {
		return protocol.QualityConfig{}, false
	}
	if nowMS-q.lastChangeMS < float64(q.cfg.HoldMS) {
		return protocol.QualityConfig{}, false
	}

	var sum float64
	for _, s := range q.window {
		sum += s
	}
	avg := sum / float64(len(q.window))

	switch {
	case avg < q.cfg.DownFPS && q.tier < 2:
		q.tier++
	case avg > q.cfg.UpFPS && q.tier > 0:
		q.tier--
	default:
		return protocol.QualityConfig{}, false
	}
	q.lastChangeMS = nowMS
	q.window = q.window[:0]
	return q.Config(), true
}
