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

package model

// BadModel occurs when a model document can't be parsed or compiled.
// Where names the offending part when known.
type BadModel struct {
	Where   string
	Problem string
}

func (e *BadModel) Error() string {
	if e.Where == "" {
		return `bad model: ` + e.Problem
	}
	return `bad model at ` + e.Where + `: ` + e.Problem
}
