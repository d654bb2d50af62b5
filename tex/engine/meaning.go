// meaning.go - what control sequences stand for
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

package engine

import (
	"strings"

	"github.com/seehuhn/texcore/tex/catcode"
	"github.com/seehuhn/texcore/tex/scope"
	"github.com/seehuhn/texcore/tex/token"
)

// Prefix is a set of the prefixes \global, \long, \outer and
// \protected.
type Prefix uint8

// The prefixes which can precede definitions and assignments.
const (
	Global Prefix = 1 << iota
	Long
	Outer
	Protected
)

// Has reports whether all prefixes in q are contained in p.
func (p Prefix) Has(q Prefix) bool {
	return p&q == q
}

// QuantityKind distinguishes the values of internal quantities.
type QuantityKind int

// The kinds of internal quantity.
const (
	IntQuantity QuantityKind = iota
	DimenQuantity
)

// Quantity is the value of an internal quantity.  Dimensions are
// given in scaled points.
type Quantity struct {
	Kind  QuantityKind
	Value int
}

// Register identifies a modifiable internal quantity.
type Register struct {
	Key  scope.Key
	Kind QuantityKind
}

// Kind gives the primary capability of a primitive.
type Kind int

// The capabilities a primitive can have.
const (
	Passive Kind = iota
	Expandable
	Conditional
	Command
	Internal
	BoxProducing
	PrefixModifying
)

type condCode int

const (
	codeNone condCode = iota
	codeIf
	codeFi
	codeElse
	codeOr
)

// Primitive describes a built-in behaviour.  Each function field
// implements one capability; fields which are nil are not available.
// A primitive without any capabilities is passed on unchanged to the
// consumer of the token stream.
type Primitive struct {
	Name string

	// Expand replaces the token by its expansion, typically by
	// reading arguments and pushing tokens back onto the input.
	Expand func(e *Engine, tok token.Token) error

	// Test and Case implement conditionals.  Test is used for
	// boolean tests, Case for \ifcase-like selection.
	Test func(e *Engine) (bool, error)
	Case func(e *Engine) (int, error)

	// Exec carries out a non-expandable command.
	Exec func(e *Engine, tok token.Token, pfx Prefix) error

	// Value reads an internal quantity, for \the and for number
	// scanning.
	Value func(e *Engine) (Quantity, error)

	// Ref identifies the register changed by \advance and friends.
	Ref func(e *Engine) (Register, error)

	// Box produces a box, see Engine.ScanBox.
	Box func(e *Engine) (any, error)

	// Prefix is set for \global, \long, \outer and \protected.
	Prefix Prefix

	// Assignment is set for commands which accept \global, Definition
	// for commands which also accept the other prefixes.
	Assignment bool
	Definition bool

	cond condCode
}

// Kind returns the primary capability of the primitive.
func (p *Primitive) Kind() Kind {
	switch {
	case p.Test != nil || p.Case != nil:
		return Conditional
	case p.Expand != nil:
		return Expandable
	case p.Prefix != 0:
		return PrefixModifying
	case p.Exec != nil:
		return Command
	case p.Box != nil:
		return BoxProducing
	case p.Value != nil:
		return Internal
	}
	return Passive
}

// Macro is a user-defined control sequence.
type Macro struct {
	// Params is the parameter text, consisting of literal tokens and
	// parameter markers.  If LeftBrace is set, the last token is the
	// begin-group character of a #{ at the end of the parameter text.
	Params token.List

	// Body is the replacement text.  Parameter markers refer to the
	// arguments.
	Body token.List

	Long, Outer, Protected bool
	LeftBrace              bool
}

// Equal reports whether two macros have the same definition.
func (m *Macro) Equal(other *Macro) bool {
	if m == other {
		return true
	}
	return m.Long == other.Long && m.Outer == other.Outer &&
		m.Protected == other.Protected && m.LeftBrace == other.LeftBrace &&
		m.Params.Equal(other.Params) && m.Body.Equal(other.Body)
}

// Describe formats the macro the way \meaning does.
func (m *Macro) Describe(escape rune) string {
	var b strings.Builder
	if m.Protected {
		b.WriteString(token.FormatName("protected", escape))
	}
	if m.Long {
		b.WriteString(token.FormatName("long", escape))
	}
	if m.Outer {
		b.WriteString(token.FormatName("outer", escape))
	}
	b.WriteString("macro:")
	params := m.Params
	if m.LeftBrace {
		params = params[:len(params)-1]
	}
	b.WriteString(params.Format(escape))
	if m.LeftBrace {
		b.WriteString("#{")
	}
	b.WriteString("->")
	b.WriteString(m.Body.Format(escape))
	return b.String()
}

// MeaningKind enumerates the things a control sequence can stand for.
type MeaningKind uint8

// The different meanings.
const (
	Undefined MeaningKind = iota
	CharMeaning
	MacroMeaning
	PrimitiveMeaning
)

// Meaning is the value bound to a control sequence or active
// character.  Character tokens have a CharMeaning, too.
type Meaning struct {
	Kind  MeaningKind
	Char  token.Token
	Macro *Macro
	Prim  *Primitive
}

// Same implements the comparison made by \ifx.
func (m Meaning) Same(other Meaning) bool {
	if m.Kind != other.Kind {
		return false
	}
	switch m.Kind {
	case CharMeaning:
		return m.Char.Cat == other.Char.Cat && m.Char.Char == other.Char.Char
	case MacroMeaning:
		return m.Macro.Equal(other.Macro)
	case PrimitiveMeaning:
		return m.Prim == other.Prim
	}
	return true
}

func (m Meaning) expandable(edef bool) bool {
	switch m.Kind {
	case MacroMeaning:
		return !(edef && m.Macro.Protected)
	case PrimitiveMeaning:
		k := m.Prim.Kind()
		return k == Expandable || k == Conditional
	}
	return false
}

var charDescriptions = map[catcode.Catcode]string{
	catcode.BeginGroup:  "begin-group character ",
	catcode.EndGroup:    "end-group character ",
	catcode.MathShift:   "math shift character ",
	catcode.Alignment:   "alignment tab character ",
	catcode.Parameter:   "macro parameter character ",
	catcode.Superscript: "superscript character ",
	catcode.Subscript:   "subscript character ",
	catcode.Space:       "blank space ",
	catcode.Letter:      "the letter ",
}

// Describe formats the meaning the way \meaning does.
func (m Meaning) Describe(escape rune) string {
	switch m.Kind {
	case CharMeaning:
		desc, ok := charDescriptions[m.Char.Cat]
		if !ok {
			desc = "the character "
		}
		return desc + string(m.Char.Char)
	case MacroMeaning:
		return m.Macro.Describe(escape)
	case PrimitiveMeaning:
		return strings.TrimSuffix(token.FormatName(m.Prim.Name, escape), " ")
	}
	return "undefined"
}

func (m Meaning) String() string {
	return m.Describe('\\')
}
