/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

// Determinism is a hard requirement here: the same seed and the same
// call sequence must give identical runs, and a checkpoint has to
// capture the generator's exact position in its stream.  So we carry
// our own small generator (xorshift64*) whose whole state is one
// uint64, rather than any library generator whose state we can't
// serialize.

// Random is a seeded xorshift64* generator.
type Random struct {
	state uint64
}

// NewRandom returns a generator seeded with Seed(seed).
func NewRandom(seed uint64) *Random {
	r := &Random{}
	r.Seed(seed)
	return r
}

// Seed reinitializes the stream.  The raw seed is run through a
// splitmix64 step so that small seeds (0, 1, 2, ...) still land in
// well-mixed states.  Xorshift sticks at zero, so zero is remapped.
func (r *Random) Seed(seed uint64) {
	z := seed + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	if z == 0 {
		z = 0x9e3779b97f4a7c15
	}
	r.state = z
}

// State returns the generator's complete internal state.
func (r *Random) State() uint64 {
	return r.state
}

// SetState restores a state previously obtained from State.
func (r *Random) SetState(s uint64) {
	if s == 0 {
		s = 0x9e3779b97f4a7c15
	}
	r.state = s
}

func (r *Random) next() uint64 {
	x := r.state
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	r.state = x
	return x * 0x2545f4914f6cdd1d
}

// Uint64 returns the next 64 random bits.
func (r *Random) Uint64() uint64 {
	return r.next()
}

// Intn returns a value in [0,n).  n must be positive.
func (r *Random) Intn(n int) int {
	if n <= 0 {
		panic("Intn with non-positive n")
	}
	return int(r.next() % uint64(n))
}

// Float64 returns a value in [0,1).
func (r *Random) Float64() float64 {
	return float64(r.next()>>11) / (1 << 53)
}

// Shuffle permutes n elements with Fisher-Yates, calling swap for
// each transposition.
func (r *Random) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}
