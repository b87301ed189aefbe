package compute

import "github.com/lumen-rt/lumen/types"

// Deterministic per-lane random stream in the style of GPU hash based
// generators: a wang-hashed seed feeding an xorshift sequence. Two lanes with
// different ids never share a stream for the same dispatch seed, and the same
// (seed, lane) pair always replays the same sequence.
type sampler struct {
	state uint32
}

func wangHash(seed uint32) uint32 {
	seed = (seed ^ 61) ^ (seed >> 16)
	seed *= 9
	seed ^= seed >> 4
	seed *= 0x27d4eb2d
	seed ^= seed >> 15
	return seed
}

func newSampler(seed, lane uint32) *sampler {
	state := wangHash(seed ^ lane*0x9e3779b9)
	if state == 0 {
		state = 0x6d2b79f5
	}
	return &sampler{state: state}
}

func (s *sampler) next() uint32 {
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return x
}

// Get the next variate in [0, 1).
func (s *sampler) Float32() float32 {
	return float32(s.next()>>8) * (1.0 / (1 << 24))
}

// Get a random point inside the unit sphere.
func (s *sampler) InUnitSphere() types.Vec3 {
	for {
		p := types.Vec3{
			2*s.Float32() - 1,
			2*s.Float32() - 1,
			2*s.Float32() - 1,
		}
		if p.LenSq() < 1 {
			return p
		}
	}
}

// Get a random point inside the unit disk.
func (s *sampler) InUnitDisk() types.Vec2 {
	for {
		p := types.Vec2{
			2*s.Float32() - 1,
			2*s.Float32() - 1,
		}
		if p.Dot(p) < 1 {
			return p
		}
	}
}
