package scene

import (
	"holoroom.app/internal/protocol"
	"holoroom.app/internal/sim/tuning"
)

type FocusMode int

const (
	ModeDefault FocusMode = iota
	ModeHologram
	ModeAgentHelp
	ModeDevice
)

func (m FocusMode) String() string {
	switch m {
	case ModeDefault:
		return "DEFAULT"
	case ModeHologram:
		return "HOLOGRAM"
	case ModeAgentHelp:
		return "AGENT_HELP"
	case ModeDevice:
		return "DEVICE"
	default:
		return "UNKNOWN"
	}
}

// SessionContext is the camera pose captured when leaving Default, consumed on
// the way back. Lifetime is exactly one focus session.
type SessionContext struct {
	CamPos    Vec3
	CamTarget Vec3
	valid     bool
}

const (
	keyCamPos    = "camera.pos"
	keyCamTarget = "camera.target"
)

// Coordinator is the focus-mode state machine. Mode and visibility flags
// update synchronously on every transition; only the camera interpolation is
// asynchronous, and starting a new camera tween silently overrides an
// in-flight one, which is how pre-emption works.
type Coordinator struct {
	tun    tuning.Focus
	camera *CameraRig
	agent  *Navigator
	panels []*Panel
	device *Device
	tweens *Tweener
	emit   func(protocol.Event)

	// HelpDialogue is the informational body shown when the help prompt is
	// confirmed. Wired from the content store at scene build.
	HelpDialogue string

	mode     FocusMode
	panelIdx int
	session  SessionContext

	helpEnteredMS     float64
	helpPromptVisible bool
}

func newCoordinator(tun tuning.Focus, cam *CameraRig, agent *Navigator, panels []*Panel, device *Device, tweens *Tweener, emit func(protocol.Event)) *Coordinator {
	return &Coordinator{
		tun:      tun,
		camera:   cam,
		agent:    agent,
		panels:   panels,
		device:   device,
		tweens:   tweens,
		emit:     emit,
		mode:     ModeDefault,
		panelIdx: -1,
	}
}

func (c *Coordinator) Mode() FocusMode { return c.mode }

// FocusedPanel returns the focused panel index, or -1 outside HologramFocus.
func (c *Coordinator) FocusedPanel() int {
	if c.mode != ModeHologram {
		return -1
	}
	return c.panelIdx
}

func (c *Coordinator) HelpPromptVisible() bool { return c.helpPromptVisible }

// CameraLocked reports whether client orbit input must be ignored: while a
// camera tween is in flight, and in hologram/device focus where the camera is
// pinned to the framed subject. AgentHelp deliberately hands the orbit back
// once the entry tween lands, so walking the camera away can trip the
// distance-based auto-exit.
func (c *Coordinator) CameraLocked() bool {
	if c.tweens.Active(keyCamPos) || c.tweens.Active(keyCamTarget) {
		return true
	}
	return c.mode == ModeHologram || c.mode == ModeDevice
}

// Update runs once per tick after the navigator: advances camera tweens,
// keeps the focused panel facing the (possibly interpolating) camera, and
// evaluates the help auto-exit policy.
func (c *Coordinator) Update(nowMS float64) {
	c.tweens.Update(nowMS)

	if c.mode == ModeHologram && c.panelIdx >= 0 && c.panelIdx < len(c.panels) {
		// The panel faces the live camera both during the entry tween and
		// afterwards; the Tracking flag flips only at tween completion.
		c.panels[c.panelIdx].FaceTarget(c.camera.Pos)
	}

	if c.mode == ModeAgentHelp && c.helpAutoExitDue(nowMS, c.camera.Pos, c.camera.Target) {
		c.ExitToDefault(nowMS)
	}
}

// helpAutoExitDue is the distance policy from the help session, split out so
// it can be probed with synthetic camera poses.
func (c *Coordinator) helpAutoExitDue(nowMS float64, camPos, camTarget Vec3) bool {
	if c.mode != ModeAgentHelp {
		return false
	}
	if nowMS-c.helpEnteredMS <= float64(c.tun.HelpGraceMS) {
		return false
	}
	anchor := c.agent.PosVec()
	return dist3(camPos, anchor) > c.tun.HelpCameraDist ||
		dist3(camTarget, anchor) > c.tun.HelpTargetDist
}

// EnterHologram focuses panel idx, pre-empting whatever is active. Out-of-range
// indexes and re-focusing the current panel are no-ops.
func (c *Coordinator) EnterHologram(nowMS float64, idx int) {
	if idx < 0 || idx >= len(c.panels) {
		return
	}
	if c.mode == ModeHologram && c.panelIdx == idx {
		return
	}

	c.preempt()
	c.snapshotIfDefault()

	c.mode = ModeHologram
	c.panelIdx = idx
	p := c.panels[idx]

	// Instant pre-orientation so the panel doesn't pop mid-transition.
	p.FaceTarget(c.camera.Pos)

	c.camera.SuspendDrift(nowMS, float64(c.tun.EnterTweenMS)+1500)
	c.tweenCamera(nowMS, p.FrontPoint(), p.Pos, float64(c.tun.EnterTweenMS), func() {
		// Guard against stale completion after another pre-emption.
		if c.mode != ModeHologram || c.panelIdx != idx {
			return
		}
		p.Tracking = true
		p.ContentVisible = true
		c.emit(protocol.Event{
			"type":       "PANEL_CONTENT",
			"panel":      idx,
			"key":        p.Key,
			"visible":    true,
			"stagger_ms": c.tun.RevealStaggerMS,
		})
	})

	c.emit(protocol.Event{"type": "FOCUS_ENTERED", "mode": ModeHologram.String(), "panel": idx})
}

// EnterAgentHelp opens the help dialogue on the greeter agent.
func (c *Coordinator) EnterAgentHelp(nowMS float64) {
	if c.mode == ModeAgentHelp {
		return
	}

	c.preempt()
	c.snapshotIfDefault()

	c.mode = ModeAgentHelp
	c.helpEnteredMS = nowMS
	c.helpPromptVisible = true
	c.agent.Suspend()

	anchor := c.agent.PosVec()
	camPos := anchor.Add(Vec3{4, 2.5, 4})
	camTarget := anchor.Add(Vec3{0, 1.6, 0})
	c.camera.SuspendDrift(nowMS, float64(c.tun.EnterTweenMS))
	c.tweenCamera(nowMS, camPos, camTarget, float64(c.tun.EnterTweenMS), nil)

	c.emit(protocol.Event{"type": "FOCUS_ENTERED", "mode": ModeAgentHelp.String()})
	c.emit(protocol.Event{"type": "HELP_PROMPT", "visible": true})
}

// ConfirmHelp opens the informational dialogue and closes the help session.
func (c *Coordinator) ConfirmHelp(nowMS float64) {
	if c.mode != ModeAgentHelp {
		return
	}
	c.emit(protocol.Event{"type": "DIALOGUE", "body": c.HelpDialogue})
	c.ExitToDefault(nowMS)
}

// DismissHelp closes the help session with no side effect.
func (c *Coordinator) DismissHelp(nowMS float64) {
	if c.mode != ModeAgentHelp {
		return
	}
	c.ExitToDefault(nowMS)
}

// ToggleDevice focuses or releases the console device.
func (c *Coordinator) ToggleDevice(nowMS float64) {
	if c.mode == ModeDevice {
		c.ExitToDefault(nowMS)
		return
	}

	c.preempt()
	c.snapshotIfDefault()

	c.mode = ModeDevice
	c.device.OverlayVisible = true

	c.camera.SuspendDrift(nowMS, float64(c.tun.EnterTweenMS))
	c.tweenCamera(nowMS, c.device.FrontPoint(), c.device.Pos, float64(c.tun.EnterTweenMS), nil)

	c.emit(protocol.Event{"type": "FOCUS_ENTERED", "mode": ModeDevice.String()})
	c.emit(protocol.Event{"type": "DEVICE_OVERLAY", "visible": true})
}

// ExitToDefault returns to free look, restoring the pre-entry camera pose.
// No-op when already in Default.
func (c *Coordinator) ExitToDefault(nowMS float64) {
	if c.mode == ModeDefault {
		return
	}

	exited := c.mode
	c.preempt()
	c.mode = ModeDefault

	if c.session.valid {
		pos := c.session.CamPos
		target := c.session.CamTarget
		c.session = SessionContext{}
		c.tweenCamera(nowMS, pos, target, float64(c.tun.ExitTweenMS), nil)
	}
	c.camera.SuspendDrift(nowMS, float64(c.tun.ExitTweenMS))

	c.emit(protocol.Event{"type": "FOCUS_EXITED", "mode": exited.String()})
}

// preempt forces any active non-default mode out before a new one enters.
// Logical state settles here, synchronously; only camera motion remains async.
func (c *Coordinator) preempt() {
	switch c.mode {
	case ModeHologram:
		if c.panelIdx >= 0 && c.panelIdx < len(c.panels) {
			p := c.panels[c.panelIdx]
			p.Tracking = false
			if p.ContentVisible {
				p.ContentVisible = false
				c.emit(protocol.Event{"type": "PANEL_CONTENT", "panel": p.Index, "visible": false, "fast": true})
			}
			p.FaceHome()
		}
		c.panelIdx = -1
	case ModeAgentHelp:
		c.helpPromptVisible = false
		c.agent.Resume()
		c.emit(protocol.Event{"type": "HELP_PROMPT", "visible": false})
	case ModeDevice:
		if c.device.OverlayVisible {
			c.device.OverlayVisible = false
			c.emit(protocol.Event{"type": "DEVICE_OVERLAY", "visible": false})
		}
	}
}

func (c *Coordinator) snapshotIfDefault() {
	if c.mode == ModeDefault && !c.session.valid {
		c.session = SessionContext{
			CamPos:    c.camera.Pos,
			CamTarget: c.camera.Target,
			valid:     true,
		}
	}
}

func (c *Coordinator) tweenCamera(nowMS float64, pos, target Vec3, durationMS float64, onPosComplete func()) {
	c.tweens.Start(keyCamPos, c.camera.Pos, pos, nowMS, durationMS,
		func(v Vec3) { c.camera.Pos = v }, onPosComplete)
	c.tweens.Start(keyCamTarget, c.camera.Target, target, nowMS, durationMS,
		func(v Vec3) { c.camera.Target = v }, nil)
}
