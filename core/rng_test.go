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

import (
	"testing"
)

func TestRandomDeterminism(t *testing.T) {
	a := NewRandom(42)
	b := NewRandom(42)
	for i := 0; i < 100; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatal("same seed should give the same stream")
		}
	}
}

func TestRandomStateRoundTrip(t *testing.T) {
	a := NewRandom(7)
	for i := 0; i < 10; i++ {
		a.Uint64()
	}
	s := a.State()

	b := &Random{}
	b.SetState(s)
	for i := 0; i < 100; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatal("restored state should resume the stream")
		}
	}
}

func TestRandomZeroSeed(t *testing.T) {
	r := NewRandom(0)
	if r.State() == 0 {
		t.Fatal("zero must never be the internal state")
	}
	if r.Uint64() == 0 && r.Uint64() == 0 {
		t.Fatal("stream from seed zero should not be stuck")
	}
}

func TestIntn(t *testing.T) {
	r := NewRandom(1)
	for i := 0; i < 1000; i++ {
		v := r.Intn(10)
		if v < 0 || 10 <= v {
			t.Fatal(v)
		}
	}

	defer func() {
		if recover() == nil {
			t.Fatal("Intn(0) should panic")
		}
	}()
	r.Intn(0)
}

func TestFloat64(t *testing.T) {
	r := NewRandom(2)
	for i := 0; i < 1000; i++ {
		f := r.Float64()
		if f < 0 || 1 <= f {
			t.Fatal(f)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	r := NewRandom(3)
	xs := []int{0, 1, 2, 3, 4, 5, 6, 7}
	r.Shuffle(len(xs), func(i, j int) {
		xs[i], xs[j] = xs[j], xs[i]
	})
	seen := make([]bool, len(xs))
	for _, x := range xs {
		if seen[x] {
			t.Fatal("duplicate after shuffle")
		}
		seen[x] = true
	}
}
