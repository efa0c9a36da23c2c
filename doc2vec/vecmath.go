package doc2vec

import "github.com/chewxy/math32"

// maxExp bounds the logistic function; beyond it the output saturates.
const maxExp = 6

func sigmoid(x float32) float32 {
	if x >= maxExp {
		return 1
	}
	if x <= -maxExp {
		return 0
	}
	return 1 / (1 + math32.Exp(-x))
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// axpy computes y += a*x.
func axpy(a float32, x, y []float32) {
	for i := range x {
		y[i] += a * x[i]
	}
}

func scale(v []float32, a float32) {
	for i := range v {
		v[i] *= a
	}
}

// Cosine returns the cosine similarity of two equal-length vectors.
// Zero vectors have similarity 0 with everything.
func Cosine(a, b []float32) float32 {
	na := math32.Sqrt(dot(a, a))
	nb := math32.Sqrt(dot(b, b))
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}
