package omath

import "math"

// Number is any float type the statistics helpers accept.
type Number interface {
	~float32 | ~float64
}

// Mean ...
func Mean[T Number](nums []T) T {
	if len(nums) == 0 {
		return 0
	}
	var sum T
	for _, v := range nums {
		sum += v
	}
	return sum / T(len(nums))
}

// Variance ...
func Variance[T Number](nums []T) T {
	if len(nums) == 0 {
		return 0
	}
	mean := Mean(nums)
	var variance T
	for _, n := range nums {
		variance += (n - mean) * (n - mean)
	}
	return variance / T(len(nums))
}

// StandardDeviation ...
func StandardDeviation[T Number](nums []T) T {
	return T(math.Sqrt(float64(Variance(nums))))
}

// Max returns the largest value, or zero for an empty slice.
func Max[T Number](nums []T) T {
	var max T
	for i, n := range nums {
		if i == 0 || n > max {
			max = n
		}
	}
	return max
}
