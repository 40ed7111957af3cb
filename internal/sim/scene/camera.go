package scene

import "math"

// CameraRig owns the authoritative camera pose. During free look the client
// orbits and reports the pose back; during focus transitions the coordinator
// tweens Pos/Target and client input on them is ignored.
type CameraRig struct {
	Pos    Vec3
	Target Vec3

	aspect float64

	// Ambient drift is suppressed until this sim time; the pose sent to the
	// client carries the drift additively so the stored Target stays exact.
	driftFromMS float64
}

const (
	defaultAspect  = 16.0 / 9.0
	cameraFOV      = 50 * math.Pi / 180 // vertical
	driftAmplitude = 0.25
	driftPeriodMS  = 9000
)

func newCameraRig() *CameraRig {
	return &CameraRig{
		Pos:    Vec3{0, 6, 22},
		Target: Vec3{0, 2, 0},
		aspect: defaultAspect,
	}
}

func (c *CameraRig) SetAspect(a float64) {
	if a > 0.1 && a < 10 {
		c.aspect = a
	}
}

// SuspendDrift holds ambient drift until nowMS+delayMS.
func (c *CameraRig) SuspendDrift(nowMS, delayMS float64) {
	at := nowMS + delayMS
	if at > c.driftFromMS {
		c.driftFromMS = at
	}
}

func (c *CameraRig) DriftOffset(nowMS float64) Vec3 {
	if nowMS < c.driftFromMS {
		return Vec3{}
	}
	phase := 2 * math.Pi * nowMS / driftPeriodMS
	return Vec3{driftAmplitude * math.Sin(phase), 0, driftAmplitude * math.Cos(phase*0.7)}
}

// PickRay builds the ray through a normalized device coordinate (x,y in
// [-1,1], y up) using a pinhole model. Good enough for AABB picking; the
// client's renderer uses the same FOV.
func (c *CameraRig) PickRay(nx, ny float64) Ray {
	fwd := c.Target.Sub(c.Pos)
	fl := fwd.Len()
	if fl == 0 {
		fwd = Vec3{0, 0, -1}
	} else {
		fwd = fwd.Scale(1 / fl)
	}
	worldUp := Vec3{0, 1, 0}
	right := cross(fwd, worldUp)
	if right.Len() < 1e-9 {
		right = Vec3{1, 0, 0}
	} else {
		right = right.Scale(1 / right.Len())
	}
	up := cross(right, fwd)

	tanHalf := math.Tan(cameraFOV / 2)
	dir := fwd.
		Add(right.Scale(nx * tanHalf * c.aspect)).
		Add(up.Scale(ny * tanHalf))
	return Ray{Origin: c.Pos, Dir: dir.Scale(1 / dir.Len())}
}

func cross(a, b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}
