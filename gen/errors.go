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

package gen

// EmptyComposite occurs when a Sequential or Parallel generator is
// built without children.
type EmptyComposite struct {
	Kind string
}

func (e *EmptyComposite) Error() string {
	return `composite generator "` + e.Kind + `" has no children`
}

// SharedGenerator occurs when the same generator instance appears
// more than once in a scene tree.
type SharedGenerator struct {
	Kind string
	Name string
}

func (e *SharedGenerator) Error() string {
	return `generator "` + e.Name + `" (` + e.Kind + `) appears more than once in the scene tree`
}

// NotInitialized occurs when a generator is stepped before Init.
type NotInitialized struct {
	Kind string
	Path string
}

func (e *NotInitialized) Error() string {
	return `generator "` + e.Path + `" (` + e.Kind + `) stepped before Init`
}

// BadRegion occurs when a Fill region doesn't fit its grid.
type BadRegion struct {
	Problem string
}

func (e *BadRegion) Error() string {
	return `bad fill region: ` + e.Problem
}

// BadDensity occurs when a Scatter density is outside [0,1].
type BadDensity struct{}

func (e *BadDensity) Error() string {
	return `scatter density must be in [0,1]`
}
