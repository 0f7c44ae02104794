package curve

import "github.com/milk9111/animengine/common"

// ControlPoints holds the Bezier control values computed for one keyframe.
type ControlPoints struct {
	In  float32
	Out float32
}

// The solvers below build a tridiagonal system over the first control point
// P1 of every segment and derive the second control point P2 from C1
// continuity at the following knot. They read only times and values, so
// re-running them on unchanged keys yields identical results.

// SolveOpen computes natural-spline control points assuming uniformly spaced
// keys. Segment i's outgoing control is P1[i]; the incoming control of key
// i+1 is 2*K[i+1] - P1[i+1].
func SolveOpen(keys []Keyframe) []ControlPoints {
	if cps, ok := trivialControlPoints(keys, false); ok {
		return cps
	}
	n := len(keys) - 1
	k := values(keys)
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	r := make([]float64, n)

	b[0], c[0] = 2, 1
	r[0] = k[0] + 2*k[1]
	for i := 1; i < n-1; i++ {
		a[i], b[i], c[i] = 1, 4, 1
		r[i] = 4*k[i] + 2*k[i+1]
	}
	a[n-1], b[n-1], c[n-1] = 2, 7, 0
	r[n-1] = 8*k[n-1] + k[n]

	p1, ok := solveTridiagonal(a, b, c, r)
	if !ok {
		return linearControlPoints(keys)
	}
	p2 := make([]float64, n)
	for i := 0; i < n-1; i++ {
		p2[i] = 2*k[i+1] - p1[i+1]
	}
	p2[n-1] = 0.5 * (k[n] + p1[n-1])
	return assemble(keys, p1, p2, false)
}

// SolveWeighted computes natural-spline control points for keys spaced
// unevenly in time. Each row is weighted by the durations h of the segments
// meeting at its knot so the curve is C1 and C2 continuous in time rather than
// in segment parameter:
//
//	first:    2 P1[0] + (h0/h1) P1[1] = K0 + (1 + h0/h1) K1
//	interior: h[j]² P1[j-1] + 2 h[j-1](h[j-1]+h[j]) P1[j] + h[j-1]² h[j]/h[j+1] P1[j+1]
//	            = (h[j-1]+h[j])² K[j] + h[j-1]² (1 + h[j]/h[j+1]) K[j+1]
//	last:     2 h[n-1]² P1[n-2] + (4 h[n-2] h[n-1] + 3 h[n-2]²) P1[n-1]
//	            = 2 (h[n-2]+h[n-1])² K[n-1] + h[n-2]² K[n]
//
// With uniform spacing every row reduces to the SolveOpen system.
func SolveWeighted(keys []Keyframe) []ControlPoints {
	if cps, ok := trivialControlPoints(keys, false); ok {
		return cps
	}
	n := len(keys) - 1
	k := values(keys)
	h := durations(keys)
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	r := make([]float64, n)

	rho0 := h[0] / h[1]
	b[0], c[0] = 2, rho0
	r[0] = k[0] + (1+rho0)*k[1]
	for j := 1; j < n-1; j++ {
		hp, hj, hn := h[j-1], h[j], h[j+1]
		a[j] = hj * hj
		b[j] = 2 * hp * (hp + hj)
		c[j] = hp * hp * hj / hn
		r[j] = (hp+hj)*(hp+hj)*k[j] + hp*hp*(1+hj/hn)*k[j+1]
	}
	hp, hj := h[n-2], h[n-1]
	a[n-1] = 2 * hj * hj
	b[n-1] = 4*hp*hj + 3*hp*hp
	c[n-1] = 0
	r[n-1] = 2*(hp+hj)*(hp+hj)*k[n-1] + hp*hp*k[n]

	p1, ok := solveTridiagonal(a, b, c, r)
	if !ok {
		return linearControlPoints(keys)
	}
	p2 := make([]float64, n)
	for i := 0; i < n-1; i++ {
		rho := h[i] / h[i+1]
		p2[i] = (1+rho)*k[i+1] - rho*p1[i+1]
	}
	p2[n-1] = 0.5 * (k[n] + p1[n-1])
	return assemble(keys, p1, p2, false)
}

// SolveLoop computes control points for a looping curve whose last key is
// coincident with the first (same value, time = loop length). The interior
// row of SolveWeighted is applied at every knot with segment indices taken
// modulo the segment count, which couples the first and last unknowns through
// the corner entries of a cyclic tridiagonal matrix.
func SolveLoop(keys []Keyframe) []ControlPoints {
	if cps, ok := trivialControlPoints(keys, true); ok {
		return cps
	}
	n := len(keys) - 1
	k := values(keys)
	k[n] = k[0]
	h := durations(keys)
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	r := make([]float64, n)
	for j := 0; j < n; j++ {
		hp, hj, hn := h[(j-1+n)%n], h[j], h[(j+1)%n]
		a[j] = hj * hj
		b[j] = 2 * hp * (hp + hj)
		c[j] = hp * hp * hj / hn
		r[j] = (hp+hj)*(hp+hj)*k[j] + hp*hp*(1+hj/hn)*k[j+1]
	}

	var p1 []float64
	var ok bool
	if n == 2 {
		p1, ok = solve2x2(b[0], a[0]+c[0], a[1]+c[1], b[1], r[0], r[1])
	} else {
		p1, ok = solveCyclicTridiagonal(a, b, c, r)
	}
	if !ok {
		return linearControlPoints(keys)
	}
	p2 := make([]float64, n)
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		rho := h[i] / h[next]
		p2[i] = (1+rho)*k[i+1] - rho*p1[next]
	}
	return assemble(keys, p1, p2, true)
}

// solveTridiagonal solves the system with sub-diagonal a, diagonal b and
// super-diagonal c using forward elimination and back substitution. a[0] and
// c[n-1] are ignored. It reports false on a vanishing pivot.
func solveTridiagonal(a, b, c, r []float64) ([]float64, bool) {
	n := len(b)
	bb := append([]float64(nil), b...)
	rr := append([]float64(nil), r...)
	for i := 1; i < n; i++ {
		if bb[i-1] == 0 {
			return nil, false
		}
		m := a[i] / bb[i-1]
		bb[i] -= m * c[i-1]
		rr[i] -= m * rr[i-1]
	}
	if bb[n-1] == 0 {
		return nil, false
	}
	x := make([]float64, n)
	x[n-1] = rr[n-1] / bb[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = (rr[i] - c[i]*x[i+1]) / bb[i]
	}
	return x, finite(x)
}

// solveCyclicTridiagonal solves a tridiagonal system with the corner entries
// a[0] (row 0, column n-1) and c[n-1] (row n-1, column 0). Elimination keeps
// the last column as a dense vector and folds the last row in as it goes, so
// the corner couplings never need a separate correction solve. Requires n >= 3.
func solveCyclicTridiagonal(a, b, c, r []float64) ([]float64, bool) {
	n := len(b)
	bb := append([]float64(nil), b...)
	rr := append([]float64(nil), r...)

	// super[i] couples row i to column i+1; row n-2's coupling lives in col
	super := make([]float64, n-1)
	for i := 0; i < n-2; i++ {
		super[i] = c[i]
	}
	col := make([]float64, n-1)
	col[0] = a[0]
	col[n-2] += c[n-2]
	row := make([]float64, n-1)
	row[0] = c[n-1]
	row[n-2] += a[n-1]
	last := bb[n-1]
	lastR := rr[n-1]

	for i := 0; i < n-1; i++ {
		if bb[i] == 0 {
			return nil, false
		}
		if i+1 < n-1 {
			m := a[i+1] / bb[i]
			bb[i+1] -= m * super[i]
			col[i+1] -= m * col[i]
			rr[i+1] -= m * rr[i]
		}
		m := row[i] / bb[i]
		if i+1 < n-1 {
			row[i+1] -= m * super[i]
		}
		last -= m * col[i]
		lastR -= m * rr[i]
	}
	if last == 0 {
		return nil, false
	}

	x := make([]float64, n)
	x[n-1] = lastR / last
	for i := n - 2; i >= 0; i-- {
		next := 0.0
		if i+1 < n-1 {
			next = x[i+1]
		}
		x[i] = (rr[i] - super[i]*next - col[i]*x[n-1]) / bb[i]
	}
	return x, finite(x)
}

func solve2x2(m00, m01, m10, m11, r0, r1 float64) ([]float64, bool) {
	det := m00*m11 - m01*m10
	if det == 0 {
		return nil, false
	}
	x := []float64{(r0*m11 - m01*r1) / det, (m00*r1 - m10*r0) / det}
	return x, finite(x)
}

// trivialControlPoints handles curves too short for a system: a single key is
// flat, two keys are linear, and a loop of two keys (first and last
// coincident) is flat.
func trivialControlPoints(keys []Keyframe, loop bool) ([]ControlPoints, bool) {
	switch {
	case len(keys) == 0:
		return nil, true
	case len(keys) == 1 || (loop && len(keys) == 2):
		cps := make([]ControlPoints, len(keys))
		for i, k := range keys {
			cps[i] = ControlPoints{In: k.Value, Out: k.Value}
		}
		return cps, true
	case len(keys) == 2:
		return linearControlPoints(keys), true
	}
	return nil, false
}

// linearControlPoints places every control point a third of the way towards
// its neighbour, which makes each segment a straight line.
func linearControlPoints(keys []Keyframe) []ControlPoints {
	cps := make([]ControlPoints, len(keys))
	for i, k := range keys {
		cps[i] = ControlPoints{In: k.Value, Out: k.Value}
		if i > 0 {
			cps[i].In = k.Value + (keys[i-1].Value-k.Value)/3
		}
		if i < len(keys)-1 {
			cps[i].Out = k.Value + (keys[i+1].Value-k.Value)/3
		}
	}
	return cps
}

func assemble(keys []Keyframe, p1, p2 []float64, loop bool) []ControlPoints {
	n := len(keys) - 1
	cps := make([]ControlPoints, len(keys))
	cps[0].In = keys[0].Value
	cps[n].Out = keys[n].Value
	for i := 0; i < n; i++ {
		cps[i].Out = float32(p1[i])
		cps[i+1].In = float32(p2[i])
	}
	if loop {
		cps[0].In = cps[n].In
		cps[n].Out = cps[0].Out
	}
	return cps
}

func values(keys []Keyframe) []float64 {
	k := make([]float64, len(keys))
	for i, key := range keys {
		k[i] = float64(key.Value)
	}
	return k
}

func durations(keys []Keyframe) []float64 {
	h := make([]float64, len(keys)-1)
	for i := range h {
		h[i] = float64(keys[i+1].Time) - float64(keys[i].Time)
	}
	return h
}

func finite(x []float64) bool {
	for _, v := range x {
		if !common.IsFinite(v) {
			return false
		}
	}
	return true
}
