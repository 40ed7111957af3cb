package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"holoroom.app/internal/content"
	"holoroom.app/internal/protocol"
	"holoroom.app/internal/sim/tuning"
)

type Config struct {
	ID   string
	Seed int64
}

// TickLogEntry is one JSONL row in the interaction log.
type TickLogEntry struct {
	Tick    uint64         `json:"t"`
	Type    string         `json:"type"`
	Session string         `json:"session,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

type TickLogger interface {
	WriteTick(TickLogEntry) error
}

type JoinRequest struct {
	Name        string
	AspectRatio float64
	Out         chan []byte
	Resp        chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

type InputEnvelope struct {
	SessionID string
	Input     *protocol.InputMsg
	FPS       *protocol.FPSMsg
}

type sessionState struct {
	Out chan []byte
}

// Scene is the authoritative showroom simulation. One goroutine (Run) owns
// all mutable state; viewer sessions talk to it through channels only.
type Scene struct {
	cfg     Config
	tun     tuning.Tuning
	content *content.Store
	logger  *log.Logger

	rng   *rand.Rand
	tick  atomic.Uint64
	nowMS float64
	dtMS  float64

	obstacles *ObstacleMap
	camera    *CameraRig
	agent     *Navigator
	panels    []*Panel
	device    *Device
	tweens    *Tweener
	coord     *Coordinator
	quality   *QualityController

	sessions       map[string]*sessionState
	nextSessionNum atomic.Int64

	inbox chan InputEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	tickLogger TickLogger
	pending    []protocol.Event

	stepMS float64
}

func New(cfg Config, tun tuning.Tuning, layout *Layout, store *content.Store, logger *log.Logger) (*Scene, error) {
	if tun.TickRateHz <= 0 {
		return nil, fmt.Errorf("tick rate must be positive, got %d", tun.TickRateHz)
	}
	if layout == nil {
		layout = DefaultLayout()
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Scene{
		cfg:      cfg,
		tun:      tun,
		content:  store,
		logger:   logger,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		dtMS:     1000 / float64(tun.TickRateHz),
		sessions: map[string]*sessionState{},
		inbox:    make(chan InputEnvelope, 256),
		join:     make(chan JoinRequest, 16),
		leave:    make(chan string, 16),
		stop:     make(chan struct{}),
	}

	s.obstacles = NewObstacleMap(layout.obstacles(), tun.Scene.BoundaryR, tun.Scene.SampleRange)
	s.camera = newCameraRig()
	s.agent = newNavigator(tun.Agent, s.obstacles, s.rng, layout.Agent.Spawn[0], layout.Agent.Spawn[1])
	s.panels = make([]*Panel, 0, PanelCount)
	for i := 0; i < PanelCount; i++ {
		for _, lp := range layout.Panels {
			if lp.Index == i {
				s.panels = append(s.panels, newPanel(lp, tun.Focus.PanelFrontDist))
			}
		}
	}
	s.device = newDevice(layout.Device, 4)
	s.tweens = NewTweener()
	s.quality = newQualityController(tun.Quality)
	s.coord = newCoordinator(tun.Focus, s.camera, s.agent, s.panels, s.device, s.tweens, s.emit)

	if store != nil {
		if rec, ok := store.Get(content.KeyAbout); ok {
			s.coord.HelpDialogue = rec.Body
		}
		if rec, ok := store.Get(content.KeyContact); ok && len(rec.Links) > 0 {
			s.device.LinkURL = rec.Links[0].URL
		}
	}
	return s, nil
}

func (s *Scene) SetTickLogger(l TickLogger) { s.tickLogger = l }

func (s *Scene) Inbox() chan<- InputEnvelope { return s.inbox }
func (s *Scene) Join() chan<- JoinRequest    { return s.join }
func (s *Scene) Leave() chan<- string        { return s.leave }

func (s *Scene) CurrentTick() uint64 { return s.tick.Load() }

// Coordinator exposes the mode state machine for tests and admin reads.
func (s *Scene) Coordinator() *Coordinator { return s.coord }

func (s *Scene) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(s.tun.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingInputs []InputEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case req := <-s.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-s.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-s.inbox:
			pendingInputs = append(pendingInputs, env)
		case <-ticker.C:
			s.step(pendingJoins, pendingLeaves, pendingInputs)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingInputs = pendingInputs[:0]
		}
	}
}

func (s *Scene) Stop() { close(s.stop) }

// step advances the simulation one tick: sessions, inputs, navigator,
// coordinator, then broadcast. A panicking frame is logged and dropped rather
// than taking the loop down.
func (s *Scene) step(joins []JoinRequest, leaves []string, inputs []InputEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("tick %d panic: %v", s.tick.Load(), r)
		}
	}()
	start := time.Now()

	s.tick.Add(1)
	s.nowMS += s.dtMS
	nowMS := s.nowMS

	for _, req := range joins {
		s.handleJoin(req)
	}
	for _, id := range leaves {
		delete(s.sessions, id)
		s.logTick("session_leave", id, nil)
	}

	for _, env := range inputs {
		s.applyInput(nowMS, env)
	}

	rep := s.agent.Update(nowMS, s.dtMS)
	if rep.Retargeted {
		data := map[string]any{
			"target": [2]float64{s.agent.TargetX, s.agent.TargetZ},
			"failed": rep.RetargetFailed,
		}
		s.logTick("retarget", "", data)
	}

	s.coord.Update(nowMS)

	s.broadcast(nowMS)
	s.stepMS = float64(time.Since(start).Microseconds()) / 1000
}

func (s *Scene) handleJoin(req JoinRequest) {
	id := fmt.Sprintf("V%d", s.nextSessionNum.Add(1))
	if req.Out != nil {
		s.sessions[id] = &sessionState{Out: req.Out}
	}
	if req.AspectRatio > 0 {
		s.camera.SetAspect(req.AspectRatio)
	}

	digest := ""
	if s.content != nil {
		digest = s.content.Digest()
	}
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       id,
		SceneParams: protocol.SceneParams{
			TickRateHz:    s.tun.TickRateHz,
			BoundaryR:     s.tun.Scene.BoundaryR,
			PanelCount:    PanelCount,
			ContentDigest: digest,
		},
		Quality: s.quality.Config(),
	}
	if req.Resp != nil {
		req.Resp <- JoinResponse{Welcome: welcome}
	}
	s.logTick("session_join", id, map[string]any{"name": req.Name})
}

func (s *Scene) applyInput(nowMS float64, env InputEnvelope) {
	if env.FPS != nil {
		if cfg, changed := s.quality.AddSamples(nowMS, env.FPS.Samples); changed {
			s.emit(protocol.Event{"type": "QUALITY", "config": cfg, "tier": s.quality.Tier()})
			s.logTick("quality_change", env.SessionID, map[string]any{"tier": s.quality.Tier()})
		}
		return
	}
	in := env.Input
	if in == nil {
		return
	}

	switch in.Kind {
	case protocol.InputCamera:
		// Free-look orbit pose from the client; ignored while the
		// coordinator owns the camera.
		if !s.coord.CameraLocked() && in.Pos != nil && in.Target != nil {
			s.camera.Pos = v3FromArray(*in.Pos)
			s.camera.Target = v3FromArray(*in.Target)
		}

	case protocol.InputPointerUp:
		if in.DragPX > s.tun.Input.DragThresholdPX {
			return // orbit drag, not a click
		}
		s.handleClick(nowMS, env.SessionID, in.X, in.Y)

	case protocol.InputKeyDown:
		if in.Key == "Escape" {
			s.coord.ExitToDefault(nowMS)
		}

	case protocol.InputPointerDown, protocol.InputPointerMove:
		// Drag distance is accumulated client-side and reported on release.
	}
}

func (s *Scene) handleClick(nowMS float64, sessionID string, nx, ny float64) {
	ray := s.camera.PickRay(nx, ny)
	intent := resolveIntent(s.coord, s.agent, s.device, s.panels, ray)

	switch intent.Kind {
	case IntentHelpConfirm:
		s.coord.ConfirmHelp(nowMS)
	case IntentHelpDismiss:
		s.coord.DismissHelp(nowMS)
	case IntentAgentHelp:
		s.coord.EnterAgentHelp(nowMS)
	case IntentDeviceToggle:
		s.coord.ToggleDevice(nowMS)
	case IntentDeviceClose:
		s.coord.ExitToDefault(nowMS)
	case IntentDeviceLink:
		if s.device.LinkURL != "" {
			s.emit(protocol.Event{"type": "EXTERNAL_LINK", "url": s.device.LinkURL})
		}
	case IntentPanelBack:
		s.coord.ExitToDefault(nowMS)
	case IntentPanelDetails:
		s.requestContent(sessionID, s.panels[intent.Panel].Key)
	case IntentPanelFocus:
		s.coord.EnterHologram(nowMS, intent.Panel)
	case IntentNone:
		return
	}

	s.logTick("click", sessionID, map[string]any{"intent": int(intent.Kind), "panel": intent.Panel})
}

func (s *Scene) requestContent(sessionID, key string) {
	if s.content == nil {
		s.emit(protocol.Event{"type": "CONTENT_MISSING", "key": key, "code": protocol.ErrNoContent})
		return
	}
	rec, ok := s.content.Get(key)
	if !ok {
		// Display-level failure; the coordinator keeps running.
		s.emit(protocol.Event{"type": "CONTENT_MISSING", "key": key, "code": protocol.ErrNoContent})
		s.logTick("content_miss", sessionID, map[string]any{"key": key})
		return
	}
	s.emit(protocol.Event{"type": "CONTENT_RECORD", "key": key, "record": rec})
	s.logTick("content_request", sessionID, map[string]any{"key": key})
}

func (s *Scene) emit(e protocol.Event) {
	s.pending = append(s.pending, e)
}

func (s *Scene) broadcast(nowMS float64) {
	tick := s.tick.Load()

	if len(s.pending) > 0 {
		for _, e := range s.pending {
			s.logTick("event", "", map[string]any(e))
		}
		msg := protocol.EventMsg{
			Type:            protocol.TypeEvent,
			ProtocolVersion: protocol.Version,
			Tick:            tick,
			Events:          s.pending,
		}
		s.send(msg)
		s.pending = nil
	}

	every := s.tun.Scene.PoseEveryTick
	if every <= 0 {
		every = 1
	}
	if tick%uint64(every) == 0 {
		s.send(s.buildPose(nowMS, tick))
	}
}

func (s *Scene) buildPose(nowMS float64, tick uint64) protocol.PoseMsg {
	drift := s.camera.DriftOffset(nowMS)
	panels := make([]protocol.PanelPose, 0, len(s.panels))
	for _, p := range s.panels {
		panels = append(panels, protocol.PanelPose{
			Index:          p.Index,
			Yaw:            p.Yaw,
			Tracking:       p.Tracking,
			ContentVisible: p.ContentVisible,
		})
	}
	return protocol.PoseMsg{
		Type:            protocol.TypePose,
		ProtocolVersion: protocol.Version,
		Tick:            tick,
		Mode:            s.coord.Mode().String(),
		Camera: protocol.CameraPose{
			Pos:    s.camera.Pos.ToArray(),
			Target: s.camera.Target.Add(drift).ToArray(),
		},
		Agent: protocol.AgentPose{
			Pos:     [2]float64{s.agent.X, s.agent.Z},
			Heading: s.agent.Heading,
			Wheel:   s.agent.Wheel,
			State:   s.agent.State().String(),
		},
		Panels: panels,
	}
}

func (s *Scene) send(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Printf("marshal outbound: %v", err)
		return
	}
	for _, sess := range s.sessions {
		select {
		case sess.Out <- b:
		default:
			// Slow consumer: drop the frame rather than stall the tick.
		}
	}
}

func (s *Scene) logTick(typ, session string, data map[string]any) {
	if s.tickLogger == nil {
		return
	}
	_ = s.tickLogger.WriteTick(TickLogEntry{
		Tick:    s.tick.Load(),
		Type:    typ,
		Session: session,
		Data:    data,
	})
}

// SceneMetrics is a point-in-time read for /metrics.
type SceneMetrics struct {
	Tick     uint64  `json:"tick"`
	Sessions int     `json:"sessions"`
	Mode     string  `json:"mode"`
	Tier     int     `json:"quality_tier"`
	StepMS   float64 `json:"step_ms"`
	Inbox    int     `json:"inbox_depth"`
}

// Metrics reads are approximate: sessions/mode race the loop goroutine but
// are only used for exposition.
func (s *Scene) Metrics() SceneMetrics {
	return SceneMetrics{
		Tick:     s.tick.Load(),
		Sessions: len(s.sessions),
		Mode:     s.coord.Mode().String(),
		Tier:     s.quality.Tier(),
		StepMS:   s.stepMS,
		Inbox:    len(s.inbox),
	}
}
