package scene

import "math/rand"

// Obstacle is an axis-aligned footprint on the scene floor. Immutable after
// scene setup.
type Obstacle struct {
	CenterX float64
	CenterZ float64
	Width   float64
	Depth   float64
}

// ObstacleMap answers point-in-clutter queries for agent movement. Pure query
// surface; no mutation after construction.
type ObstacleMap struct {
	obstacles   []Obstacle
	boundaryR   float64
	sampleRange float64
}

func NewObstacleMap(obstacles []Obstacle, boundaryR, sampleRange float64) *ObstacleMap {
	return &ObstacleMap{
		obstacles:   append([]Obstacle(nil), obstacles...),
		boundaryR:   boundaryR,
		sampleRange: sampleRange,
	}
}

// Blocked reports whether a square agent footprint of half-side radius centered
// at (x,z) overlaps any obstacle or leaves the scene boundary. Closed-interval
// overlap: touching counts as blocked.
func (m *ObstacleMap) Blocked(x, z, radius float64) bool {
	if x < -m.boundaryR || x > m.boundaryR || z < -m.boundaryR || z > m.boundaryR {
		return true
	}
	for _, o := range m.obstacles {
		halfW := o.Width/2 + radius
		halfD := o.Depth/2 + radius
		dx := x - o.CenterX
		dz := z - o.CenterZ
		if dx >= -halfW && dx <= halfW && dz >= -halfD && dz <= halfD {
			return true
		}
	}
	return false
}

// FindFreePosition rejection-samples a uniform point in the sample square,
// up to maxAttempts times. When every candidate collides it returns (nearX,
// nearZ) unchanged; the caller treats that as "stay put one cycle".
func (m *ObstacleMap) FindFreePosition(rng *rand.Rand, nearX, nearZ, radius float64, maxAttempts int) (float64, float64, bool) {
	for i := 0; i < maxAttempts; i++ {
		x := (rng.Float64()*2 - 1) * m.sampleRange
		z := (rng.Float64()*2 - 1) * m.sampleRange
		if !m.Blocked(x, z, radius) {
			return x, z, true
		}
	}
	return nearX, nearZ, false
}
