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
	"strconv"
)

// Sequential runs its children one after another.  A child runs to
// completion (its Step reports no more work) before the next child's
// Init; completed children are torn down as the cursor passes them.
// Children are named step_1, step_2, ... unless renamed.
type Sequential struct {
	base
	kids    []Generator
	cursor  int
	started bool
}

// NewSequential builds a sequential composite.
func NewSequential(children ...Generator) (*Sequential, error) {
	if len(children) == 0 {
		return nil, &EmptyComposite{Kind: "sequential"}
	}
	s := &Sequential{kids: children}
	for i, c := range children {
		if c.name() == "" {
			c.setName("step_" + strconv.Itoa(i+1))
		}
	}
	return s, nil
}

func (s *Sequential) Kind() string           { return "sequential" }
func (s *Sequential) children() []Generator  { return s.kids }
func (s *Sequential) Structure() *Structure  { return structureOf(s) }
func (s *Sequential) Done() bool             { return s.started && len(s.kids) <= s.cursor }

func (s *Sequential) setPath(parent string) {
	s.path = join(parent, s.nm)
	for _, c := range s.kids {
		c.setPath(s.path)
	}
}

func (s *Sequential) Reset() {
	s.cursor = 0
	s.started = false
	for _, c := range s.kids {
		c.Reset()
	}
}

func (s *Sequential) Init(ctx context.Context, gc *Context) error {
	s.cursor = 0
	s.started = true
	return s.kids[0].Init(ctx, gc)
}

func (s *Sequential) Step(ctx context.Context, gc *Context) (bool, error) {
	if !s.started {
		return false, &NotInitialized{Kind: s.Kind(), Path: s.path}
	}
	for s.cursor < len(s.kids) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		child := s.kids[s.cursor]
		more, err := child.Step(ctx, gc)
		if err != nil {
			return false, err
		}
		if more {
			return true, nil
		}
		if err := child.Teardown(ctx, gc); err != nil {
			return false, err
		}
		s.cursor++
		if s.cursor < len(s.kids) {
			if err := s.kids[s.cursor].Init(ctx, gc); err != nil {
				return false, err
			}
			// The advance itself consumed this increment.
			return true, nil
		}
	}
	return false, nil
}

func (s *Sequential) Teardown(ctx context.Context, gc *Context) error {
	// Tear down a child the cursor was still on.
	if s.started && s.cursor < len(s.kids) {
		return s.kids[s.cursor].Teardown(ctx, gc)
	}
	return nil
}

// Parallel interleaves its children: every Step gives each unfinished
// child one increment.  It finishes when all children have.  Children
// are named branch_1, branch_2, ... unless renamed.
type Parallel struct {
	base
	kids    []Generator
	started bool
}

// NewParallel builds a parallel composite.
func NewParallel(children ...Generator) (*Parallel, error) {
	if len(children) == 0 {
		return nil, &EmptyComposite{Kind: "parallel"}
	}
	p := &Parallel{kids: children}
	for i, c := range children {
		if c.name() == "" {
			c.setName("branch_" + strconv.Itoa(i+1))
		}
	}
	return p, nil
}

func (p *Parallel) Kind() string          { return "parallel" }
func (p *Parallel) children() []Generator { return p.kids }
func (p *Parallel) Structure() *Structure { return structureOf(p) }

func (p *Parallel) Done() bool {
	if !p.started {
		return false
	}
	for _, c := range p.kids {
		if !c.Done() {
			return false
		}
	}
	return true
}

func (p *Parallel) setPath(parent string) {
	p.path = join(parent, p.nm)
	for _, c := range p.kids {
		c.setPath(p.path)
	}
}

func (p *Parallel) Reset() {
	p.started = false
	for _, c := range p.kids {
		c.Reset()
	}
}

func (p *Parallel) Init(ctx context.Context, gc *Context) error {
	for _, c := range p.kids {
		if err := c.Init(ctx, gc); err != nil {
			return err
		}
	}
	p.started = true
	return nil
}

func (p *Parallel) Step(ctx context.Context, gc *Context) (bool, error) {
	if !p.started {
		return false, &NotInitialized{Kind: p.Kind(), Path: p.path}
	}
	more := false
	for _, c := range p.kids {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if c.Done() {
			continue
		}
		m, err := c.Step(ctx, gc)
		if err != nil {
			return false, err
		}
		more = more || m
	}
	return more, nil
}

func (p *Parallel) Teardown(ctx context.Context, gc *Context) error {
	for _, c := range p.kids {
		if err := c.Teardown(ctx, gc); err != nil {
			return err
		}
	}
	return nil
}

func join(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
