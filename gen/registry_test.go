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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rulegrid/rulegrid/core"
)

func TestRegistryLatest(t *testing.T) {
	r := NewRegistry()
	r.Record(core.StepInfo{Path: "root.step_1", Rule: "a"})
	r.Record(core.StepInfo{Path: "root.step_2", Rule: "b"})
	r.Record(core.StepInfo{Path: "root.step_1", Rule: "c"})

	info, found := r.Latest("root.step_1")
	require.True(t, found)
	require.Equal(t, "c", info.Rule, "the later record wins")

	info, found = r.Latest("")
	require.True(t, found)
	require.Equal(t, "c", info.Rule, "empty prefix sees everything")

	_, found = r.Latest("root.step_3")
	require.False(t, found)
}

func TestRegistryPrefixIsHierarchical(t *testing.T) {
	r := NewRegistry()
	r.Record(core.StepInfo{Path: "root.step_1.one[0]", Rule: "a"})
	r.Record(core.StepInfo{Path: "root.step_10", Rule: "b"})

	infos := r.All("root.step_1")
	require.Len(t, infos, 1)
	require.Equal(t, "a", infos[0].Rule, "step_10 is not under step_1")
}

func TestRegistryAllOrdersByRecency(t *testing.T) {
	r := NewRegistry()
	r.Record(core.StepInfo{Path: "root.a", Rule: "1"})
	r.Record(core.StepInfo{Path: "root.b", Rule: "2"})
	r.Record(core.StepInfo{Path: "root.a", Rule: "3"})

	infos := r.All("root")
	require.Len(t, infos, 2)
	require.Equal(t, "2", infos[0].Rule)
	require.Equal(t, "3", infos[1].Rule)
}

func TestRegistryPaths(t *testing.T) {
	r := NewRegistry()
	r.Record(core.StepInfo{Path: "root.b"})
	r.Record(core.StepInfo{Path: "root.a"})

	require.Equal(t, []string{"root.a", "root.b"}, r.Paths())
}
