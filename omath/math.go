package omath

import "github.com/chewxy/math32"

// ClampFloat clamps num into [min, max].
func ClampFloat(num, min, max float32) float32 {
	if num < min {
		return min
	}
	return math32.Min(num, max)
}

// MinNormalizeMax maps number onto the interval between min and max so that
// min maps to 0 and max maps to 1. Values at or below min return 0; values
// above max are not clamped.
func MinNormalizeMax(number, max, min float32) float32 {
	interval := max - min
	incorporated := number - min
	if incorporated <= 0 {
		return 0
	}
	if interval <= 0 {
		return 1
	}
	return incorporated / interval
}

// AngleNormalize360 maps an angle in degrees into [0, 360).
func AngleNormalize360(angle float32) float32 {
	if angle >= 360 || angle < 0 {
		angle -= math32.Floor(angle/360) * 360
	}
	return angle
}

// AngleNormalize180 maps an angle in degrees into (-180, 180].
func AngleNormalize180(angle float32) float32 {
	angle = AngleNormalize360(angle)
	if angle > 180 {
		angle -= 360
	}
	return angle
}
