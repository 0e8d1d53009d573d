package vectorstore

import (
	"encoding/binary"
	"fmt"
	"math"
)

// bytesPerFloat is the width of one encoded float32.
const bytesPerFloat = 4

// Encode serializes a vector as len(v)*4 bytes of native-endian IEEE-754
// single-precision floats, in vector order.
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*bytesPerFloat)
	for i, f := range v {
		binary.NativeEndian.PutUint32(buf[i*bytesPerFloat:], math.Float32bits(f))
	}
	return buf
}

// Decode reinterprets b as len(b)/4 native-endian float32 values.
//
// len(b) must be a multiple of 4. Anything else means the blob was not
// written by Encode and Decode panics.
func Decode(b []byte) []float32 {
	if len(b)%bytesPerFloat != 0 {
		panic(fmt.Sprintf("vectorstore: blob length %d is not a multiple of %d", len(b), bytesPerFloat))
	}
	v := make([]float32, len(b)/bytesPerFloat)
	for i := range v {
		v[i] = math.Float32frombits(binary.NativeEndian.Uint32(b[i*bytesPerFloat:]))
	}
	return v
}

// Dot returns the dot product of a and b over their common prefix.
//
// For unit vectors this is the cosine similarity.
func Dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
