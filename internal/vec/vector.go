package vec

import "math"

// Vector is a finite-dimensional state vector. The hot-path operations
// mutate the receiver in place so the stepper can run without allocating
// once its buffers are sized.
type Vector []float64

func New(n int) Vector {
	return make(Vector, n)
}

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) Set(src Vector) {
	copy(v, src)
}

func (v Vector) Zero() {
	for i := range v {
		v[i] = 0
	}
}

// Axpy adds a*w to v in place.
func (v Vector) Axpy(a float64, w Vector) {
	for i := range v {
		v[i] += a * w[i]
	}
}

func (v Vector) Scale(a float64) {
	for i := range v {
		v[i] *= a
	}
}

// SubInto stores v - w into dst.
func (v Vector) SubInto(w, dst Vector) {
	for i := range v {
		dst[i] = v[i] - w[i]
	}
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Norm is the Euclidean norm.
func (v Vector) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// WeightedNorm is the RMS of v scaled component-wise by wt:
// sqrt(mean((v_i/wt_i)^2)). Both tolerance scaling and error
// measurement go through this one convention.
func WeightedNorm(v, wt Vector) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for i, x := range v {
		r := x / wt[i]
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(v)))
}
