package core

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sort"
)

// SampleHash is the hex SHA-256 of the grouped samples a comparison was computed from
type SampleHash string

func (h SampleHash) String() string { return string(h) }

// Short returns the first 12 hex characters, enough to tell reports apart
func (h SampleHash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputeSampleHash hashes named groups of values. Group order does not
// matter; value order within a group does, since resampling depends on it.
func ComputeSampleHash(groups map[string][]float64) SampleHash {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data []byte
	var buf [8]byte
	for _, key := range keys {
		data = append(data, key...)
		data = append(data, 0)
		for _, v := range groups[key] {
			bits := math.Float64bits(v)
			for i := 0; i < 8; i++ {
				buf[i] = byte(bits >> (8 * i))
			}
			data = append(data, buf[:]...)
		}
		data = append(data, 0xff)
	}
	sum := sha256.Sum256(data)
	return SampleHash(hex.EncodeToString(sum[:]))
}
