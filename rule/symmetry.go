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

package rule

// Symmetry expansion happens once, at rule construction time.  A node
// that owns a rule really owns the rule's unique symmetry variants.

// Subgroup names a subgroup of the square's eight symmetries.
type Subgroup int

const (
	// SubgroupAll is every rotation and reflection.  The default.
	SubgroupAll Subgroup = iota
	// SubgroupNone is just the identity.
	SubgroupNone
	// SubgroupReflectX adds the X mirror.
	SubgroupReflectX
	// SubgroupReflectY adds the Y mirror.
	SubgroupReflectY
	// SubgroupReflectXY is identity plus both mirrors and the 180
	// rotation.
	SubgroupReflectXY
	// SubgroupRotate is the four rotations without reflections.
	SubgroupRotate
)

// ParseSubgroup understands the compact notation used in model
// definitions: "()", "(x)", "(y)", "(x)(y)", "(xy+)", "(xy)".  The
// empty string means SubgroupAll.
func ParseSubgroup(s string) (Subgroup, bool) {
	switch s {
	case "":
		return SubgroupAll, true
	case "()":
		return SubgroupNone, true
	case "(x)":
		return SubgroupReflectX, true
	case "(y)":
		return SubgroupReflectY, true
	case "(x)(y)":
		return SubgroupReflectXY, true
	case "(xy+)":
		return SubgroupRotate, true
	case "(xy)":
		return SubgroupAll, true
	}
	return 0, false
}

func (s Subgroup) String() string {
	switch s {
	case SubgroupNone:
		return "()"
	case SubgroupReflectX:
		return "(x)"
	case SubgroupReflectY:
		return "(y)"
	case SubgroupReflectXY:
		return "(x)(y)"
	case SubgroupRotate:
		return "(xy+)"
	}
	return "(xy)"
}

// Mask returns which of the eight square symmetries the subgroup
// includes, in the order e, b, a, ba, a2, ba2, a3, ba3 where a is a
// 90-degree rotation and b is the X reflection.
func (s Subgroup) Mask() [8]bool {
	switch s {
	case SubgroupNone:
		return [8]bool{true, false, false, false, false, false, false, false}
	case SubgroupReflectX:
		return [8]bool{true, true, false, false, false, false, false, false}
	case SubgroupReflectY:
		return [8]bool{true, false, false, false, false, true, false, false}
	case SubgroupReflectXY:
		return [8]bool{true, true, false, false, true, true, false, false}
	case SubgroupRotate:
		return [8]bool{true, false, true, false, true, false, true, false}
	}
	return [8]bool{true, true, true, true, true, true, true, true}
}

// SquareSymmetries returns the unique variants of r under the given
// subgroup of the square's symmetries.  Duplicates collapse, so a
// fully symmetric rule expands to itself alone.
func SquareSymmetries(r *Rule, s Subgroup) []*Rule {
	mask := s.Mask()

	r0 := r
	r1 := r0.Reflected()
	r2 := r0.ZRotated()
	r3 := r2.Reflected()
	r4 := r2.ZRotated()
	r5 := r4.Reflected()
	r6 := r4.ZRotated()
	r7 := r6.Reflected()
	all := []*Rule{r0, r1, r2, r3, r4, r5, r6, r7}

	variants := make([]*Rule, 0, 8)
	for i, v := range all {
		if mask[i] && !contains(variants, v) {
			variants = append(variants, v)
		}
	}
	return variants
}

// CubeSymmetries returns the unique variants of r under the full
// cubic group: the closure of r under Z rotation, Y rotation, and
// reflection.  At most 48 variants come back.
func CubeSymmetries(r *Rule) []*Rule {
	variants := []*Rule{r}
	// Closure: keep applying the generators until nothing new
	// appears.  The group is tiny, so brute force is fine.
	for i := 0; i < len(variants); i++ {
		for _, next := range []*Rule{
			variants[i].ZRotated(),
			variants[i].YRotated(),
			variants[i].Reflected(),
		} {
			if !contains(variants, next) {
				variants = append(variants, next)
			}
		}
	}
	return variants
}

// Symmetries expands r for the given grid dimensionality: the square
// subgroup in 2D, the full cubic group in 3D.
func Symmetries(r *Rule, is2D bool, s Subgroup) []*Rule {
	if is2D {
		return SquareSymmetries(r, s)
	}
	return CubeSymmetries(r)
}

func contains(rules []*Rule, r *Rule) bool {
	for _, have := range rules {
		if have.Same(r) {
			return true
		}
	}
	return false
}
