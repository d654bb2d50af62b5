// scope.go - the save stack
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package scope implements the dynamically scoped state of a TeX
// interpreter.
//
// All values live in a single base storage.  Groups never copy this
// storage; they only record which values to restore when they are
// closed.  A local assignment saves the previous value in the current
// group (once per key and group), a global assignment removes all
// pending restorations of the key.
package scope

import (
	"fmt"
	"strconv"

	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
)

// Namespace separates the different kinds of values stored in a
// Context.
type Namespace uint8

// The namespaces used by the expansion core.  Collaborators may use
// values starting at NSUser.
const (
	NSMeaning Namespace = iota // control sequence meanings, by name
	NSActive                   // meanings of active characters, by code
	NSCatcode                  // category codes, by character
	NSInt                      // integer parameters, by name
	NSCount                    // \count registers, by number
	NSDimen                    // \dimen registers, by number
	NSUser
)

var nsNames = []string{"meaning", "active", "catcode", "int", "count", "dimen"}

func (ns Namespace) String() string {
	if int(ns) < len(nsNames) {
		return nsNames[ns]
	}
	return "ns" + strconv.Itoa(int(ns))
}

// Key identifies a value in a Context.
type Key struct {
	NS    Namespace
	Name  string
	Index int
}

func (key Key) String() string {
	if key.Name != "" {
		return key.NS.String() + ":" + key.Name
	}
	return key.NS.String() + ":" + strconv.Itoa(key.Index)
}

// GroupKind tells which construct opened a group.  The values are
// the ones reported by \currentgrouptype.
type GroupKind int

// The group kinds known to TeX.
const (
	BottomLevel GroupKind = iota
	SimpleGroup
	HBoxGroup
	AdjustedHBoxGroup
	VBoxGroup
	VTopGroup
	AlignGroup
	NoAlignGroup
	OutputGroup
	MathGroup
	DiscGroup
	InsertGroup
	VCenterGroup
	MathChoiceGroup
	SemiSimpleGroup
	MathShiftGroup
	MathLeftGroup
)

func (kind GroupKind) String() string {
	switch kind {
	case BottomLevel:
		return "bottom level"
	case SimpleGroup:
		return "simple group"
	case SemiSimpleGroup:
		return "semi simple group"
	case MathShiftGroup:
		return "math shift group"
	case MathLeftGroup:
		return "math left group"
	}
	return "group type " + strconv.Itoa(int(kind))
}

type savedBinding struct {
	key     Key
	value   any
	defined bool
	purged  bool
}

// Group is one frame of the save stack.
type Group struct {
	Kind   GroupKind
	Origin texerr.Frame

	saved []savedBinding
	index map[Key]int
	after token.List
}

// Saved returns the number of pending restorations in the group.
func (g *Group) Saved() int {
	n := 0
	for _, s := range g.saved {
		if !s.purged {
			n++
		}
	}
	return n
}

// Context is the scoped state of an interpreter run.
type Context struct {
	base   map[Key]any
	groups []*Group
}

// New creates an empty context at the bottom level.
func New() *Context {
	return &Context{
		base: make(map[Key]any),
	}
}

// Lookup returns the current value stored under key.  The second
// return value is false if the key is undefined.
func (ctx *Context) Lookup(key Key) (any, bool) {
	val, ok := ctx.base[key]
	return val, ok
}

// Assign sets the value of key.  A nil value makes the key undefined.
// Local assignments are undone when the current group is closed,
// global assignments survive the closing of all enclosing groups.
func (ctx *Context) Assign(key Key, value any, global bool) {
	if global {
		for _, g := range ctx.groups {
			if idx, ok := g.index[key]; ok {
				g.saved[idx].purged = true
				delete(g.index, key)
			}
		}
	} else if n := len(ctx.groups); n > 0 {
		g := ctx.groups[n-1]
		if _, seen := g.index[key]; !seen {
			old, defined := ctx.base[key]
			g.index[key] = len(g.saved)
			g.saved = append(g.saved, savedBinding{
				key:     key,
				value:   old,
				defined: defined,
			})
		}
	}

	if value == nil {
		delete(ctx.base, key)
	} else {
		ctx.base[key] = value
	}
}

// Names returns the names of all keys in the given namespace which
// currently have a value.
func (ctx *Context) Names(ns Namespace) []string {
	var res []string
	for key := range ctx.base {
		if key.NS == ns && key.Name != "" {
			res = append(res, key.Name)
		}
	}
	return res
}

// OpenGroup starts a new group and returns the new nesting level.
func (ctx *Context) OpenGroup(kind GroupKind, origin texerr.Frame) int {
	ctx.groups = append(ctx.groups, &Group{
		Kind:   kind,
		Origin: origin,
		index:  make(map[Key]int),
	})
	return len(ctx.groups)
}

// CloseGroup ends the innermost group.  All local assignments made
// inside the group are undone, in reverse order.  The tokens queued
// by AfterGroup are returned in the order they were recorded; the
// caller is responsible for inserting them into the input.
func (ctx *Context) CloseGroup() (*Group, token.List, error) {
	n := len(ctx.groups)
	if n == 0 {
		return nil, nil, texerr.New(texerr.UnbalancedGroup,
			"too many closing braces")
	}
	g := ctx.groups[n-1]
	ctx.groups = ctx.groups[:n-1]

	for i := len(g.saved) - 1; i >= 0; i-- {
		s := g.saved[i]
		if s.purged {
			continue
		}
		if s.defined {
			ctx.base[s.key] = s.value
		} else {
			delete(ctx.base, s.key)
		}
	}
	return g, g.after, nil
}

// AfterGroup queues a token to be inserted after the current group
// ends.  At the bottom level the token is discarded.
func (ctx *Context) AfterGroup(tok token.Token) {
	n := len(ctx.groups)
	if n == 0 {
		return
	}
	g := ctx.groups[n-1]
	g.after = append(g.after, tok.Plain())
}

// Level returns the current group nesting depth.  The bottom level
// is 0.
func (ctx *Context) Level() int {
	return len(ctx.groups)
}

// Top returns the innermost group, or nil at the bottom level.
func (ctx *Context) Top() *Group {
	n := len(ctx.groups)
	if n == 0 {
		return nil
	}
	return ctx.groups[n-1]
}

// TopKind returns the kind of the innermost group.
func (ctx *Context) TopKind() GroupKind {
	g := ctx.Top()
	if g == nil {
		return BottomLevel
	}
	return g.Kind
}

// Snapshot returns a printable copy of all current values.  This is
// mainly useful to compare the state of the context at different
// times.
func (ctx *Context) Snapshot() map[Key]string {
	res := make(map[Key]string, len(ctx.base))
	for key, val := range ctx.base {
		res[key] = fmt.Sprint(val)
	}
	return res
}
