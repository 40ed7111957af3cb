package scene

// Ray/AABB picking plumbing for pointer intent resolution.

type AABB struct {
	Min, Max Vec3
}

type Ray struct {
	Origin Vec3
	Dir    Vec3 // unit length
}

// HitAABB is the standard slab test. Returns the entry distance along the ray
// and whether the box is hit in front of the origin.
func (r Ray) HitAABB(b AABB) (float64, bool) {
	tmin := 0.0
	tmax := 1e18
	o := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	d := [3]float64{r.Dir.X, r.Dir.Y, r.Dir.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
