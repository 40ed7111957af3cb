package scene

// Property-keyed tween engine. Starting a tween on a key that already has one
// in flight replaces it without firing the old completion callback; that
// replacement is the coordinator's pre-emption mechanism, so it must stay the
// only cancellation path.

type tween struct {
	from, to   Vec3
	startMS    float64
	durationMS float64
	apply      func(Vec3)
	onComplete func()
}

type Tweener struct {
	active map[string]*tween
}

func NewTweener() *Tweener {
	return &Tweener{active: map[string]*tween{}}
}

// Start begins an eased interpolation on the named property. Duration <= 0
// applies the end value immediately and fires onComplete on the next update.
func (t *Tweener) Start(key string, from, to Vec3, nowMS, durationMS float64, apply func(Vec3), onComplete func()) {
	t.active[key] = &tween{
		from:       from,
		to:         to,
		startMS:    nowMS,
		durationMS: durationMS,
		apply:      apply,
		onComplete: onComplete,
	}
}

// Cancel drops an in-flight tween without firing its completion callback.
func (t *Tweener) Cancel(key string) {
	delete(t.active, key)
}

func (t *Tweener) Active(key string) bool {
	_, ok := t.active[key]
	return ok
}

// Update advances every active tween to nowMS. Completed tweens apply their
// exact end value, then fire onComplete after removal so a callback may start
// a new tween on the same key.
func (t *Tweener) Update(nowMS float64) {
	var done []*tween
	for key, tw := range t.active {
		el := nowMS - tw.startMS
		if tw.durationMS <= 0 || el >= tw.durationMS {
			tw.apply(tw.to)
			delete(t.active, key)
			done = append(done, tw)
			continue
		}
		if el < 0 {
			el = 0
		}
		k := easeInOutCubic(el / tw.durationMS)
		tw.apply(lerpVec3(tw.from, tw.to, k))
	}
	for _, tw := range done {
		if tw.onComplete != nil {
			tw.onComplete()
		}
	}
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
