package physics

import (
	"cogentcore.org/core/math32"
)

// BroadPhaseVisible reports whether p projects inside the camera frustum's
// screen rectangle and in front of the eye.
func (w *World) BroadPhaseVisible(cam *Camera, p math32.Vector3) bool {
	ndc, clipW := cam.Project(p)
	if clipW <= 0 {
		return false
	}
	return ndc.X >= -1 && ndc.X <= 1 && ndc.Y >= -1 && ndc.Y <= 1
}

// NarrowPhaseVisible reports whether the segment from the eye to the target
// body's center is free of World-layer bodies.
//
// Postcondition: Unknown targets are never visible.
func (w *World) NarrowPhaseVisible(cam *Camera, target BodyID) bool {
	t, ok := w.bodies[target]
	if !ok {
		return false
	}
	for _, id := range w.ids() {
		if id == target {
			continue
		}
		b := w.bodies[id]
		if b.Layer != LayerWorld {
			continue
		}
		if segmentHitsBox(cam.Eye, t.Position, b.Bounds(w.shapes[b.Shape])) {
			return false
		}
	}
	return true
}

// segmentHitsBox runs a slab test of the segment a->b against box.
// Touching the box at either endpoint does not count as a hit.
func segmentHitsBox(a, b math32.Vector3, box math32.Box3) bool {
	d := b.Sub(a)
	tmin, tmax := float32(0), float32(1)
	axes := [3][4]float32{
		{a.X, d.X, box.Min.X, box.Max.X},
		{a.Y, d.Y, box.Min.Y, box.Max.Y},
		{a.Z, d.Z, box.Min.Z, box.Max.Z},
	}
	for _, ax := range axes {
		origin, dir, lo, hi := ax[0], ax[1], ax[2], ax[3]
		if math32.Abs(dir) < 1e-9 {
			if origin <= lo || origin >= hi {
				return false
			}
			continue
		}
		t1 := (lo - origin) / dir
		t2 := (hi - origin) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin >= tmax {
			return false
		}
	}
	const eps = 1e-5
	return tmin < 1-eps && tmax > eps
}
