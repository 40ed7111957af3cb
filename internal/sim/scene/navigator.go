package scene

import (
	"math"
	"math/rand"

	"holoroom.app/internal/sim/tuning"
)

type MicroState int

const (
	StateIdle MicroState = iota
	StateMoving
	StateSuspended
)

func (s MicroState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateMoving:
		return "MOVING"
	case StateSuspended:
		return "SUSPENDED"
	default:
		return "UNKNOWN"
	}
}

// Navigator owns the greeter agent's position, heading and wander behavior.
// It never fails observably: an exhausted position sampler leaves the agent
// in place for one retarget cycle.
type Navigator struct {
	cfg       tuning.Agent
	obstacles *ObstacleMap
	rng       *rand.Rand

	X, Z    float64
	Heading float64
	Wheel   float64 // accumulated wheel roll, radians

	state            MicroState
	TargetX, TargetZ float64

	lastRetargetMS float64
	intervalMS     float64
}

func newNavigator(cfg tuning.Agent, obstacles *ObstacleMap, rng *rand.Rand, spawnX, spawnZ float64) *Navigator {
	n := &Navigator{
		cfg:       cfg,
		obstacles: obstacles,
		rng:       rng,
		X:         spawnX,
		Z:         spawnZ,
		state:     StateIdle,
	}
	n.intervalMS = n.drawInterval()
	return n
}

func (n *Navigator) State() MicroState { return n.state }

func (n *Navigator) drawInterval() float64 {
	lo := float64(n.cfg.RetargetMinMS)
	hi := float64(n.cfg.RetargetMaxMS)
	return lo + n.rng.Float64()*(hi-lo)
}

// NavReport carries what happened this tick, for the tick log.
type NavReport struct {
	Retargeted     bool
	RetargetFailed bool
	Arrived        bool
}

func (n *Navigator) Update(nowMS, dtMS float64) NavReport {
	var rep NavReport
	switch n.state {
	case StateSuspended:
		return rep

	case StateIdle:
		if nowMS-n.lastRetargetMS > n.intervalMS {
			rep.Retargeted = true
			rep.RetargetFailed = !n.retarget(nowMS)
		}
		return rep

	case StateMoving:
		dx := n.TargetX - n.X
		dz := n.TargetZ - n.Z
		dist := math.Sqrt(dx*dx + dz*dz)
		if dist <= n.cfg.ArriveRadius {
			n.state = StateIdle
			n.lastRetargetMS = nowMS
			n.intervalMS = n.drawInterval()
			rep.Arrived = true
			return rep
		}

		step := n.cfg.MoveSpeed * dtMS / 1000
		if step > dist {
			step = dist
		}
		nextX := n.X + dx/dist*step
		nextZ := n.Z + dz/dist*step

		if n.obstacles.Blocked(nextX, nextZ, n.cfg.Radius) {
			// Collision avoidance is re-targeting, not sliding: abandon the
			// target and stay put this tick.
			rep.Retargeted = true
			rep.RetargetFailed = !n.retarget(nowMS)
			return rep
		}

		n.X = nextX
		n.Z = nextZ
		n.Wheel += step / n.cfg.WheelRadius // rolling without slipping

		desired := math.Atan2(dx, dz)
		alpha := 1 - math.Exp(-n.cfg.HeadingSmoothing*dtMS/1000)
		n.Heading = wrapAngle(n.Heading + wrapAngle(desired-n.Heading)*alpha)
		return rep
	}
	return rep
}

// retarget draws a new destination near the current position. Returns false
// when the sampler exhausted its attempts; the agent then holds position
// until the next cycle.
func (n *Navigator) retarget(nowMS float64) bool {
	x, z, ok := n.obstacles.FindFreePosition(n.rng, n.X, n.Z, n.cfg.Radius, n.cfg.FindFreeAttempts)
	n.lastRetargetMS = nowMS
	n.intervalMS = n.drawInterval()
	n.TargetX = x
	n.TargetZ = z
	if ok {
		n.state = StateMoving
	} else {
		n.state = StateIdle
	}
	return ok
}

// Suspend freezes the agent in place and stops retargeting. Used while the
// help dialogue frames the agent.
func (n *Navigator) Suspend() {
	n.state = StateSuspended
}

// Resume backdates the retarget clock so a fresh destination is drawn on the
// very next eligible tick instead of waiting out a full interval.
func (n *Navigator) Resume() {
	if n.state != StateSuspended {
		return
	}
	n.state = StateIdle
	n.lastRetargetMS = -1e15
}

func (n *Navigator) PosVec() Vec3 { return Vec3{n.X, 0, n.Z} }

// Body is the agent's pick box, roughly torso height.
func (n *Navigator) Body() AABB {
	r := n.cfg.Radius
	return AABB{
		Min: Vec3{n.X - r, 0, n.Z - r},
		Max: Vec3{n.X + r, 2.0, n.Z + r},
	}
}

// Help affordances float beside the agent's head while the help dialogue is
// open: confirm on the agent's left, dismiss on the right.
func (n *Navigator) ConfirmButton() AABB {
	return buttonBox(Vec3{n.X - 0.7, 2.3, n.Z})
}

func (n *Navigator) DismissButton() AABB {
	return buttonBox(Vec3{n.X + 0.7, 2.3, n.Z})
}
