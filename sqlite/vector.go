package sqlite

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/fwojciec/ragdoc"
)

// encodeVector packs v as little-endian float32 values.
func encodeVector(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob has %d bytes, not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}

// similarity scores a against b so that larger is closer for every metric.
// Euclidean distance d is reported as 1/(1+d).
func similarity(metric ragdoc.Metric, a, b []float32) float32 {
	var dot, na, nb, sq float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
		sq += (x - y) * (x - y)
	}

	switch metric {
	case ragdoc.MetricDotProduct:
		return float32(dot)
	case ragdoc.MetricEuclidean:
		return float32(1 / (1 + math.Sqrt(sq)))
	default:
		if na == 0 || nb == 0 {
			return 0
		}
		return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
	}
}
