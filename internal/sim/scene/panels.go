package scene

import "math"

// PanelCount is fixed by the scene: four hologram panels around the floor.
const PanelCount = 4

// Panel is a hologram panel handle. Yaw is the only live orientation; position
// is fixed at scene build. Tracking means the panel re-faces the camera every
// tick; it turns on only after the focus entry tween completes.
type Panel struct {
	Index     int
	Key       string
	Pos       Vec3
	Size      [2]float64 // width, height
	HomeYaw   float64
	Yaw       float64
	FrontDist float64

	ContentVisible bool
	Tracking       bool
}

func newPanel(lp LayoutPanel, frontDist float64) *Panel {
	pos := v3FromArray(lp.Pos)
	home := math.Atan2(-pos.X, -pos.Z) // face the scene center
	return &Panel{
		Index:     lp.Index,
		Key:       lp.Key,
		Pos:       pos,
		Size:      lp.Size,
		HomeYaw:   home,
		Yaw:       home,
		FrontDist: frontDist,
	}
}

// FaceTarget orients the panel toward a world point (usually the camera).
func (p *Panel) FaceTarget(t Vec3) {
	p.Yaw = math.Atan2(t.X-p.Pos.X, t.Z-p.Pos.Z)
}

func (p *Panel) FaceHome() { p.Yaw = p.HomeYaw }

// FrontPoint is the camera position used when the panel is focused: offset
// from the panel along its home facing axis.
func (p *Panel) FrontPoint() Vec3 {
	return p.Pos.Add(dirFromYaw(p.HomeYaw).Scale(p.FrontDist))
}

// Body is a conservative pick box around the panel, yaw-independent so picking
// stays stable while the panel turns.
func (p *Panel) Body() AABB {
	half := p.Size[0] / 2
	return AABB{
		Min: Vec3{p.Pos.X - half, p.Pos.Y - p.Size[1]/2, p.Pos.Z - half},
		Max: Vec3{p.Pos.X + half, p.Pos.Y + p.Size[1]/2, p.Pos.Z + half},
	}
}

// Affordance boxes hang off the panel's lower corners. They are small fixed
// boxes; only meaningful while the corresponding UI is visible.
func (p *Panel) BackButton() AABB {
	return buttonBox(p.Pos.Add(Vec3{-p.Size[0] / 2, -p.Size[1]/2 - 0.4, 0}))
}

func (p *Panel) DetailsButton() AABB {
	return buttonBox(p.Pos.Add(Vec3{p.Size[0] / 2, -p.Size[1]/2 - 0.4, 0}))
}

func buttonBox(center Vec3) AABB {
	const r = 0.35
	return AABB{
		Min: Vec3{center.X - r, center.Y - r, center.Z - r},
		Max: Vec3{center.X + r, center.Y + r, center.Z + r},
	}
}

func dirFromYaw(yaw float64) Vec3 {
	return Vec3{math.Sin(yaw), 0, math.Cos(yaw)}
}

// Device is the focusable console. Its overlay affordances exist only while
// OverlayVisible is set, so nothing on it is pickable before the first focus.
type Device struct {
	Pos  Vec3
	Size Vec3

	FrontDist      float64
	OverlayVisible bool
	LinkURL        string
}

func newDevice(ld LayoutDevice, frontDist float64) *Device {
	return &Device{
		Pos:       v3FromArray(ld.Pos),
		Size:      v3FromArray(ld.Size),
		FrontDist: frontDist,
	}
}

func (d *Device) Body() AABB {
	h := d.Size.Scale(0.5)
	return AABB{Min: d.Pos.Sub(h), Max: d.Pos.Add(h)}
}

func (d *Device) FacingYaw() float64 { return math.Atan2(-d.Pos.X, -d.Pos.Z) }

func (d *Device) FrontPoint() Vec3 {
	return d.Pos.Add(dirFromYaw(d.FacingYaw()).Scale(d.FrontDist)).Add(Vec3{0, 1.2, 0})
}

// Overlay buttons float above the device once built.
func (d *Device) CloseButton() AABB {
	return buttonBox(d.Pos.Add(Vec3{-0.6, d.Size.Y/2 + 1.2, 0}))
}

func (d *Device) LinkButton() AABB {
	return buttonBox(d.Pos.Add(Vec3{0.6, d.Size.Y/2 + 1.2, 0}))
}
