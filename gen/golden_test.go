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
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestBorderScene(t *testing.T) {
	g := testGrid(t, 6, 4, 1, "BW")

	f := NewFill(1, FillBorder, 0)
	r, err := NewRunner(f, g, 1, nil)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))

	gold := goldie.New(t)
	gold.Assert(t, "border_scene", []byte(g.Render()))
}
