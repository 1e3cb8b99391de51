package stats

// mulberry32 is a 32-bit state generator yielding floats in [0, 1).
// Each resampling call owns its own instance; the sequence for a given seed
// is fixed and must not change, published intervals depend on it.
type mulberry32 struct {
	state uint32
}

func newMulberry32(seed uint32) *mulberry32 {
	return &mulberry32{state: seed}
}

func (m *mulberry32) Float64() float64 {
	m.state += 0x6d2b79f5
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296
}

// Intn returns an index in [0, n) as floor(u*n).
func (m *mulberry32) Intn(n int) int {
	return int(m.Float64() * float64(n))
}
