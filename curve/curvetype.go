package curve

// ApplyOptions controls how control points are re-derived.
type ApplyOptions struct {
	// Loop treats the last key as coincident with the first and smooths with
	// the cyclic solver.
	Loop bool
	// Uniform ignores time spacing when smoothing.
	Uniform bool
}

// ApplyTypes re-derives the control points of every key from its CurveType.
// Copy-previous values are resolved first, then the solver runs once for all
// smooth keys, then the analytic types are assigned.
func (c *Curve) ApplyTypes(opts ApplyOptions) {
	keys := c.keys
	n := len(keys)
	if n == 0 {
		return
	}
	if opts.Loop && n > 1 {
		keys[n-1].Value = keys[0].Value
	}

	for i := 1; i < n; i++ {
		if keys[i].CurveType == TypeCopyPrevious {
			keys[i].Value = keys[i-1].Value
		}
	}

	var solved []ControlPoints
	for _, k := range keys {
		if k.CurveType == TypeSmooth {
			solved = c.solve(opts)
			break
		}
	}

	for i := range keys {
		k := &keys[i]
		switch k.CurveType {
		case TypeSmooth:
			k.ControlPointIn = solved[i].In
			k.ControlPointOut = solved[i].Out
		case TypeLinear:
			prev, next, hasPrev, hasNext := neighbours(keys, i, opts.Loop)
			k.ControlPointIn, k.ControlPointOut = k.Value, k.Value
			if hasPrev {
				k.ControlPointIn = k.Value + (prev.Value-k.Value)/3
			}
			if hasNext {
				k.ControlPointOut = k.Value + (next.Value-k.Value)/3
			}
		case TypeSmoothLocal:
			applySmoothLocal(keys, i, opts.Loop)
		case TypeFlat:
			k.ControlPointIn, k.ControlPointOut = k.Value, k.Value
		}
	}

	// holds flatten the segment leading into them, so they run last
	for i := range keys {
		if keys[i].CurveType != TypeCopyPrevious {
			continue
		}
		keys[i].ControlPointIn, keys[i].ControlPointOut = keys[i].Value, keys[i].Value
		if i > 0 {
			keys[i-1].ControlPointOut = keys[i-1].Value
		}
	}

	if opts.Loop && n > 1 {
		keys[0].ControlPointIn = keys[n-1].ControlPointIn
		keys[n-1].ControlPointOut = keys[0].ControlPointOut
	}
}

func (c *Curve) solve(opts ApplyOptions) []ControlPoints {
	switch {
	case opts.Loop:
		return SolveLoop(c.keys)
	case opts.Uniform:
		return SolveOpen(c.keys)
	default:
		return SolveWeighted(c.keys)
	}
}

// neighbours returns the keys around i with their times shifted so that, on a
// loop, the wrapped neighbour sits on the correct side of i.
func neighbours(keys []Keyframe, i int, loop bool) (prev, next Keyframe, hasPrev, hasNext bool) {
	n := len(keys)
	if i > 0 {
		prev, hasPrev = keys[i-1], true
	} else if loop && n > 2 {
		prev = keys[n-2]
		prev.Time -= keys[n-1].Time
		hasPrev = true
	}
	if i < n-1 {
		next, hasNext = keys[i+1], true
	} else if loop && n > 2 {
		next = keys[1]
		next.Time += keys[n-1].Time
		hasNext = true
	}
	return prev, next, hasPrev, hasNext
}

func applySmoothLocal(keys []Keyframe, i int, loop bool) {
	k := &keys[i]
	prev, next, hasPrev, hasNext := neighbours(keys, i, loop)
	k.ControlPointIn, k.ControlPointOut = k.Value, k.Value
	var slope float32
	switch {
	case hasPrev && hasNext:
		slope = (next.Value - prev.Value) / (next.Time - prev.Time)
	case hasNext:
		slope = (next.Value - k.Value) / (next.Time - k.Time)
	case hasPrev:
		slope = (k.Value - prev.Value) / (k.Time - prev.Time)
	default:
		return
	}
	if hasPrev {
		k.ControlPointIn = k.Value - slope*(k.Time-prev.Time)/3
	}
	if hasNext {
		k.ControlPointOut = k.Value + slope*(next.Time-k.Time)/3
	}
}
