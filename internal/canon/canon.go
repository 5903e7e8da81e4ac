// Package canon reduces raw probe readings to small, reproducible values.
// Every function here is pure.
package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/stupside/prism/internal/capability"
)

// Hash64 is the FNV-1a 64-bit hash of an encoded raster.
func Hash64(encoding string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(encoding))
	return h.Sum64()
}

// AbsSum accumulates |s| over samples in single precision, in order.
func AbsSum(samples []float32) float32 {
	var sum float32
	for _, s := range samples {
		sum += float32(math.Abs(float64(s)))
	}
	return sum
}

// Envelope is the collapsed range of several shader precision readings.
type Envelope struct {
	LeastMin         int32 `json:"leastMin"`
	MostMax          int32 `json:"mostMax"`
	HighestPrecision int32 `json:"highestPrecision"`
}

// Precision reduces readings to the minimum range-min, the maximum range-max
// and the maximum precision. It reports false when there are no readings.
func Precision(formats []capability.PrecisionFormat) (Envelope, bool) {
	if len(formats) == 0 {
		return Envelope{}, false
	}
	env := Envelope{
		LeastMin:         math.MaxInt32,
		MostMax:          math.MinInt32,
		HighestPrecision: math.MinInt32,
	}
	for _, f := range formats {
		env.LeastMin = min(env.LeastMin, f.RangeMin)
		env.MostMax = max(env.MostMax, f.RangeMax)
		env.HighestPrecision = max(env.HighestPrecision, f.Precision)
	}
	return env, true
}

// Digest is the hex SHA-256 of v's JSON encoding.
func Digest(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding digest input: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
