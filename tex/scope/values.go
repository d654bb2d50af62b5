// values.go - typed access to the values of a Context
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

package scope

import "github.com/seehuhn/texcore/tex/catcode"

// IntDefaults gives the initial values of the integer parameters
// which are not zero.
var IntDefaults = map[string]int{
	"endlinechar": '\r',
	"escapechar":  '\\',
	"interaction": 3,
}

// Catcode returns the category code of r.  Characters which were
// never assigned a category have their initial category.
func (ctx *Context) Catcode(r rune) catcode.Catcode {
	val, ok := ctx.base[Key{NS: NSCatcode, Index: int(r)}]
	if !ok {
		return catcode.Initial(r)
	}
	return val.(catcode.Catcode)
}

// SetCatcode assigns a new category code to r.
func (ctx *Context) SetCatcode(r rune, c catcode.Catcode, global bool) {
	ctx.Assign(Key{NS: NSCatcode, Index: int(r)}, c, global)
}

// Int returns the value of the named integer parameter.
func (ctx *Context) Int(name string) int {
	val, ok := ctx.base[Key{NS: NSInt, Name: name}]
	if !ok {
		return IntDefaults[name]
	}
	return val.(int)
}

// SetInt assigns a value to the named integer parameter.
func (ctx *Context) SetInt(name string, val int, global bool) {
	ctx.Assign(Key{NS: NSInt, Name: name}, val, global)
}

// EndLineChar implements the tokenizer.Env interface.
func (ctx *Context) EndLineChar() int {
	return ctx.Int("endlinechar")
}

// Count returns the value of a \count register.
func (ctx *Context) Count(n int) int {
	val, _ := ctx.base[Key{NS: NSCount, Index: n}].(int)
	return val
}

// SetCount assigns a value to a \count register.
func (ctx *Context) SetCount(n, val int, global bool) {
	ctx.Assign(Key{NS: NSCount, Index: n}, val, global)
}

// Dimen returns the value of a \dimen register, in scaled points.
func (ctx *Context) Dimen(n int) int {
	val, _ := ctx.base[Key{NS: NSDimen, Index: n}].(int)
	return val
}

// SetDimen assigns a value, in scaled points, to a \dimen register.
func (ctx *Context) SetDimen(n, val int, global bool) {
	ctx.Assign(Key{NS: NSDimen, Index: n}, val, global)
}
