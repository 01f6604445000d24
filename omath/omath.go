package omath

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Normalize returns the unit vector of v and its length. The zero vector is
// returned unchanged with a length of zero.
func Normalize(v mgl32.Vec3) (mgl32.Vec3, float32) {
	l := math32.Sqrt(v.Dot(v))
	if l == 0 {
		return v, 0
	}
	inv := 1 / l
	return mgl32.Vec3{v[0] * inv, v[1] * inv, v[2] * inv}, l
}

// ProjectOntoPlane removes the component of v along the plane normal n. The
// removed component is scaled by overBounce so the result points slightly
// away from the plane.
func ProjectOntoPlane(v, n mgl32.Vec3, overBounce float32) mgl32.Vec3 {
	backoff := v.Dot(n)
	if overBounce != 1.0 {
		if backoff < 0 {
			backoff *= overBounce
		} else {
			backoff /= overBounce
		}
	}
	return v.Sub(n.Mul(backoff))
}

// RemoveComponent returns v without its component along the unit vector dir.
func RemoveComponent(v, dir mgl32.Vec3) mgl32.Vec3 {
	return v.Sub(dir.Mul(v.Dot(dir)))
}

// Component returns the component of v along the unit vector dir.
func Component(v, dir mgl32.Vec3) mgl32.Vec3 {
	return dir.Mul(v.Dot(dir))
}

// AngleVectors returns the forward, right and up vectors of pitch/yaw/roll
// angles given in degrees. X is forward at zero yaw and Z points up.
func AngleVectors(angles mgl32.Vec3) (forward, right, up mgl32.Vec3) {
	sp, cp := math32.Sincos(mgl32.DegToRad(angles[0]))
	sy, cy := math32.Sincos(mgl32.DegToRad(angles[1]))
	sr, cr := math32.Sincos(mgl32.DegToRad(angles[2]))

	forward = mgl32.Vec3{cp * cy, cp * sy, -sp}
	right = mgl32.Vec3{-sr*sp*cy + cr*sy, -sr*sp*sy - cr*cy, -sr * cp}
	up = mgl32.Vec3{cr*sp*cy + sr*sy, cr*sp*sy - sr*cy, cr * cp}
	return
}

// ToForward returns only the forward vector of the given angles.
func ToForward(angles mgl32.Vec3) mgl32.Vec3 {
	f, _, _ := AngleVectors(angles)
	return f
}

// Yaw returns the yaw in degrees of the direction vector.
func Yaw(dir mgl32.Vec3) float32 {
	if dir[0] == 0 && dir[1] == 0 {
		return 0
	}
	yaw := mgl32.RadToDeg(math32.Atan2(dir[1], dir[0]))
	if yaw < 0 {
		yaw += 360
	}
	return yaw
}

// ConeAlignment reports whether two vectors point within threshold degrees of
// each other: 1 if they do, 0 if they do not and -1 if either vector has no
// length.
func ConeAlignment(a, b mgl32.Vec3, threshold float32) int {
	a, la := Normalize(a)
	b, lb := Normalize(b)
	if la == 0 || lb == 0 {
		return -1
	}

	cosine := math32.Cos(mgl32.DegToRad(math32.Abs(AngleNormalize180(threshold))))
	if a.Dot(b) >= cosine {
		return 1
	}
	return 0
}
