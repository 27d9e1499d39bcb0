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

package grid

// These errors are construction-time user errors.  Once a Grid
// exists, its operations don't fail.

import (
	"fmt"
)

// BadBounds occurs when a Grid is requested with a non-positive
// extent.
type BadBounds struct {
	MX, MY, MZ int
}

func (e *BadBounds) Error() string {
	return fmt.Sprintf("bad grid bounds %dx%dx%d", e.MX, e.MY, e.MZ)
}

// BadAlphabet occurs when an alphabet is empty, too large, or has a
// repeated symbol.
type BadAlphabet struct {
	Symbols string
}

func (e *BadAlphabet) Error() string {
	return `bad alphabet "` + e.Symbols + `"`
}

// UnknownSymbol occurs when a pattern or model references a symbol
// that's not in the Grid's alphabet.
type UnknownSymbol struct {
	Symbol   rune
	Alphabet string
}

func (e *UnknownSymbol) Error() string {
	return `symbol '` + string(e.Symbol) + `' not in alphabet "` + e.Alphabet + `"`
}
