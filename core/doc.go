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

// Package core is the rule-rewriting engine: execution trees of nodes
// that rewrite a grid, driven step by step by an Interpreter.
//
// A tree is built from a closed set of node kinds.  Markov and
// Sequence nodes compose; One, All, Path, Convolution, ConvChain, and
// WaveCollapse nodes act on the grid.  A node's Go call either makes
// progress (possibly applying one or more rules) or reports that it's
// exhausted in the grid's current state.
//
// Everything is deterministic: one seeded random stream, fixed scan
// orders, and a step counter that ticks once per atomic rule
// application.  Given the same tree, seed, and budget sequence, a run
// replays exactly; that's also what makes checkpoints work.
package core
