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

// BadPattern occurs when a pattern string can't be parsed: empty, or
// ragged rows/layers.
type BadPattern struct {
	Pattern string
	Problem string
}

func (e *BadPattern) Error() string {
	return `bad pattern "` + e.Pattern + `": ` + e.Problem
}

// ShapeMismatch occurs when the input and output patterns of a rule
// have different extents.
type ShapeMismatch struct {
	Input  string
	Output string
}

func (e *ShapeMismatch) Error() string {
	return `rule "` + e.Input + `=` + e.Output + `" input and output shapes differ`
}
