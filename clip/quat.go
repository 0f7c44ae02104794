package clip

import "github.com/go-gl/mathgl/mgl32"

// Rotations travel through sinks as {x, y, z, w}.

// Quat converts an {x, y, z, w} rotation.
func Quat(q [4]float32) mgl32.Quat {
	return mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}
}

// QuatArray converts q back to {x, y, z, w}.
func QuatArray(q mgl32.Quat) [4]float32 {
	return [4]float32{q.V[0], q.V[1], q.V[2], q.W}
}

// NormalizeQuat returns q at unit length, or the identity when q is too short
// to have a direction.
func NormalizeQuat(q mgl32.Quat) mgl32.Quat {
	if q.Len() < 1e-6 {
		return mgl32.QuatIdent()
	}
	return q.Normalize()
}
