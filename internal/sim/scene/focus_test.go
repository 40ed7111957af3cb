package scene

import (
	"math/rand"
	"testing"

	"holoroom.app/internal/protocol"
	"holoroom.app/internal/sim/tuning"
)

type coordFixture struct {
	cam    *CameraRig
	agent  *Navigator
	panels []*Panel
	device *Device
	tweens *Tweener
	coord  *Coordinator
	events []protocol.Event
}

func newCoordFixture() *coordFixture {
	tun := tuning.Defaults()
	layout := DefaultLayout()
	obs := NewObstacleMap(layout.obstacles(), tun.Scene.BoundaryR, tun.Scene.SampleRange)

	f := &coordFixture{
		cam:    newCameraRig(),
		agent:  newNavigator(tun.Agent, obs, rand.New(rand.NewSource(1)), layout.Agent.Spawn[0], layout.Agent.Spawn[1]),
		device: newDevice(layout.Device, 4),
		tweens: NewTweener(),
	}
	for _, lp := range layout.Panels {
		f.panels = append(f.panels, newPanel(lp, tun.Focus.PanelFrontDist))
	}
	f.coord = newCoordinator(tun.Focus, f.cam, f.agent, f.panels, f.device, f.tweens,
		func(e protocol.Event) { f.events = append(f.events, e) })
	f.coord.HelpDialogue = "hello, have a look around"
	return f
}

func (f *coordFixture) eventsOf(typ string) []protocol.Event {
	var out []protocol.Event
	for _, e := range f.events {
		if e["type"] == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestCoordinator_TrackingWaitsForTween(t *testing.T) {
	f := newCoordFixture()
	f.coord.EnterHologram(0, 0)

	if f.coord.Mode() != ModeHologram || f.coord.FocusedPanel() != 0 {
		t.Fatalf("mode %v panel %d", f.coord.Mode(), f.coord.FocusedPanel())
	}
	p := f.panels[0]

	for now := 100.0; now < 2000; now += 100 {
		f.coord.Update(now)
		if p.Tracking || p.ContentVisible {
			t.Fatalf("tracking/content turned on mid-tween at %.0f ms", now)
		}
	}

	f.coord.Update(2000)
	if !p.Tracking || !p.ContentVisible {
		t.Fatalf("tracking and content must turn on at tween completion")
	}
	if f.cam.Pos != p.FrontPoint() || f.cam.Target != p.Pos {
		t.Fatalf("camera did not land on the panel front point")
	}

	reveals := f.eventsOf("PANEL_CONTENT")
	if len(reveals) != 1 || reveals[0]["visible"] != true {
		t.Fatalf("expected one reveal event, got %v", reveals)
	}
}

func TestCoordinator_ExitRestoresCamera(t *testing.T) {
	f := newCoordFixture()
	origPos, origTarget := f.cam.Pos, f.cam.Target

	f.coord.EnterHologram(0, 1)
	f.coord.Update(2000)
	f.coord.ExitToDefault(2500)
	f.coord.Update(4500)

	if f.coord.Mode() != ModeDefault {
		t.Fatalf("mode %v", f.coord.Mode())
	}
	if f.cam.Pos != origPos || f.cam.Target != origTarget {
		t.Fatalf("camera not restored: pos %+v target %+v", f.cam.Pos, f.cam.Target)
	}
	if f.coord.CameraLocked() {
		t.Fatalf("camera must unlock once the exit tween lands")
	}
	if exits := f.eventsOf("FOCUS_EXITED"); len(exits) != 1 || exits[0]["mode"] != "HOLOGRAM" {
		t.Fatalf("exit events: %v", f.eventsOf("FOCUS_EXITED"))
	}
}

func TestCoordinator_ExitWithoutSessionIsInert(t *testing.T) {
	f := newCoordFixture()
	f.coord.ExitToDefault(0)
	if len(f.events) != 0 {
		t.Fatalf("exit from default emitted %v", f.events)
	}
}

func TestCoordinator_PanelSwitchPreempts(t *testing.T) {
	f := newCoordFixture()
	origPos := f.cam.Pos

	f.coord.EnterHologram(0, 0)
	f.coord.Update(2000) // panel 0 fully revealed
	f.coord.EnterHologram(2500, 1)

	p0, p1 := f.panels[0], f.panels[1]
	if p0.Tracking || p0.ContentVisible {
		t.Fatalf("panel 0 must be torn down synchronously on switch")
	}
	if p0.Yaw != p0.HomeYaw {
		t.Fatalf("panel 0 should have snapped home")
	}
	if f.coord.FocusedPanel() != 1 {
		t.Fatalf("focused panel %d", f.coord.FocusedPanel())
	}

	f.coord.Update(4500)
	if !p1.Tracking {
		t.Fatalf("panel 1 should track after its tween")
	}

	// One session spans both panels: exiting returns to the original pose,
	// not to panel 0's front point.
	f.coord.ExitToDefault(5000)
	f.coord.Update(7000)
	if f.cam.Pos != origPos {
		t.Fatalf("exit must restore the pre-session pose, got %+v", f.cam.Pos)
	}
}

func TestCoordinator_StaleCompletionIgnored(t *testing.T) {
	f := newCoordFixture()
	f.coord.EnterHologram(0, 0)
	f.coord.Update(500)
	f.coord.EnterHologram(500, 1) // pre-empt mid-tween
	f.coord.Update(2500)          // panel 1 tween completes

	if f.panels[0].Tracking || f.panels[0].ContentVisible {
		t.Fatalf("panel 0 must never complete after pre-emption")
	}
	for _, e := range f.eventsOf("PANEL_CONTENT") {
		if e["panel"] == 0 && e["visible"] == true {
			t.Fatalf("panel 0 reveal leaked through: %v", e)
		}
	}
}

func TestCoordinator_RefocusSamePanelIsNoop(t *testing.T) {
	f := newCoordFixture()
	f.coord.EnterHologram(0, 0)
	n := len(f.events)
	f.coord.EnterHologram(100, 0)
	if len(f.events) != n {
		t.Fatalf("refocusing the focused panel emitted events")
	}
}

func TestCoordinator_OutOfRangePanelIsNoop(t *testing.T) {
	f := newCoordFixture()
	f.coord.EnterHologram(0, -1)
	f.coord.EnterHologram(0, 4)
	if f.coord.Mode() != ModeDefault || len(f.events) != 0 {
		t.Fatalf("out-of-range index must not transition")
	}
}

func TestCoordinator_HelpFlow(t *testing.T) {
	f := newCoordFixture()
	f.coord.EnterAgentHelp(0)

	if f.coord.Mode() != ModeAgentHelp || !f.coord.HelpPromptVisible() {
		t.Fatalf("help not entered")
	}
	if f.agent.State() != StateSuspended {
		t.Fatalf("agent must suspend during help, got %v", f.agent.State())
	}

	f.coord.Update(2000)
	f.coord.ConfirmHelp(2100)

	dialogues := f.eventsOf("DIALOGUE")
	if len(dialogues) != 1 || dialogues[0]["body"] != f.coord.HelpDialogue {
		t.Fatalf("dialogue events: %v", dialogues)
	}
	if f.coord.Mode() != ModeDefault || f.coord.HelpPromptVisible() {
		t.Fatalf("confirm must close the help session")
	}
	if f.agent.State() == StateSuspended {
		t.Fatalf("agent must resume on exit")
	}

	prompts := f.eventsOf("HELP_PROMPT")
	if len(prompts) != 2 || prompts[0]["visible"] != true || prompts[1]["visible"] != false {
		t.Fatalf("prompt events: %v", prompts)
	}
}

func TestCoordinator_DismissHelp(t *testing.T) {
	f := newCoordFixture()
	f.coord.EnterAgentHelp(0)
	f.coord.DismissHelp(100)
	if f.coord.Mode() != ModeDefault {
		t.Fatalf("dismiss must exit")
	}
	if len(f.eventsOf("DIALOGUE")) != 0 {
		t.Fatalf("dismiss must not open the dialogue")
	}
}

func TestCoordinator_HelpAutoExitAfterGrace(t *testing.T) {
	f := newCoordFixture()
	f.coord.EnterAgentHelp(0)
	f.coord.Update(2000) // entry tween lands

	// Walk the camera away from the agent.
	far := f.agent.PosVec().Add(Vec3{30, 0, 0})
	f.cam.Pos = far

	f.coord.Update(2500)
	if f.coord.Mode() != ModeAgentHelp {
		t.Fatalf("auto-exit must not fire inside the grace window")
	}
	f.coord.Update(3100)
	if f.coord.Mode() != ModeDefault {
		t.Fatalf("auto-exit must fire once the grace window passes")
	}
}

func TestCoordinator_HelpAutoExitPolicy(t *testing.T) {
	f := newCoordFixture()
	f.coord.EnterAgentHelp(0)
	anchor := f.agent.PosVec()
	near := anchor.Add(Vec3{4, 2.5, 4})

	cases := []struct {
		name     string
		now      float64
		pos, tgt Vec3
		wantExit bool
	}{
		{"inside grace", 3000, anchor.Add(Vec3{30, 0, 0}), near, false},
		{"near camera", 3001, near, anchor, false},
		{"camera too far", 3001, anchor.Add(Vec3{25.1, 0, 0}), anchor, true},
		{"target too far", 3001, near, anchor.Add(Vec3{0, 0, 20.1}), true},
		{"target at limit", 3001, near, anchor.Add(Vec3{0, 0, 20}), false},
	}
	for _, tc := range cases {
		if got := f.coord.helpAutoExitDue(tc.now, tc.pos, tc.tgt); got != tc.wantExit {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.wantExit)
		}
	}
}

func TestCoordinator_DeviceToggle(t *testing.T) {
	f := newCoordFixture()
	f.coord.ToggleDevice(0)

	if f.coord.Mode() != ModeDevice || !f.device.OverlayVisible {
		t.Fatalf("device not focused")
	}
	f.coord.Update(2000)
	if f.cam.Pos != f.device.FrontPoint() {
		t.Fatalf("camera did not land on the device front point")
	}

	f.coord.ToggleDevice(2500)
	if f.coord.Mode() != ModeDefault || f.device.OverlayVisible {
		t.Fatalf("second toggle must release the device")
	}

	overlays := f.eventsOf("DEVICE_OVERLAY")
	if len(overlays) != 2 || overlays[0]["visible"] != true || overlays[1]["visible"] != false {
		t.Fatalf("overlay events: %v", overlays)
	}
}

func TestCoordinator_SessionSurvivesModeHops(t *testing.T) {
	f := newCoordFixture()
	origPos, origTarget := f.cam.Pos, f.cam.Target

	f.coord.EnterHologram(0, 0)
	f.coord.Update(1000)
	f.coord.ToggleDevice(1000)
	f.coord.Update(2000)
	f.coord.EnterAgentHelp(2000)
	f.coord.Update(3000)
	f.coord.ExitToDefault(3000)
	f.coord.Update(5000)

	if f.cam.Pos != origPos || f.cam.Target != origTarget {
		t.Fatalf("session snapshot must be the first default pose, got %+v", f.cam.Pos)
	}

	// Exactly one focus session: one snapshot, one restore.
	if f.coord.session.valid {
		t.Fatalf("session context must be consumed on exit")
	}
}

func TestCoordinator_CameraLocked(t *testing.T) {
	f := newCoordFixture()
	if f.coord.CameraLocked() {
		t.Fatalf("default free look must accept camera input")
	}
	f.coord.EnterHologram(0, 0)
	if !f.coord.CameraLocked() {
		t.Fatalf("focused camera must be locked")
	}
	f.coord.ExitToDefault(500)
	if !f.coord.CameraLocked() {
		t.Fatalf("camera stays locked while the exit tween flies")
	}
	f.coord.Update(2500)
	if f.coord.CameraLocked() {
		t.Fatalf("camera must unlock after the exit tween")
	}

	// Help pins the camera only while the framing tween flies; after that the
	// viewer may orbit (and thereby trip the distance auto-exit).
	f.coord.EnterAgentHelp(3000)
	if !f.coord.CameraLocked() {
		t.Fatalf("camera must be locked during the help entry tween")
	}
	f.coord.Update(5000)
	if f.coord.Mode() != ModeAgentHelp {
		t.Fatalf("help should still be open")
	}
	if f.coord.CameraLocked() {
		t.Fatalf("help mode must hand free look back after the tween")
	}
}
