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

package checkpoint

// BadSnapshot occurs when a snapshot can't be decoded or doesn't fit
// the interpreter it's being restored into.
type BadSnapshot struct {
	ID      string
	Problem string
}

func (e *BadSnapshot) Error() string {
	if e.ID == "" {
		return `bad snapshot: ` + e.Problem
	}
	return `bad snapshot "` + e.ID + `": ` + e.Problem
}

// NotFound occurs when a snapshot ID isn't in the store.
type NotFound struct {
	ID string
}

func (e *NotFound) Error() string {
	return `snapshot "` + e.ID + `" not found`
}
