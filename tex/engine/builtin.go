// builtin.go - the primitives of the expansion core
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
	"github.com/seehuhn/texcore/tex/scope"
	"github.com/seehuhn/texcore/tex/token"
)

// Interaction modes, as reported by \interactionmode.
const (
	BatchMode = iota
	NonStopMode
	ScrollMode
	ErrorStopMode
)

// IntParams lists the integer parameters known to the core.
var IntParams = []string{"endlinechar", "escapechar"}

func (e *Engine) addBuiltins() {
	e.relax = &Primitive{Exec: func(*Engine, token.Token, Prefix) error { return nil }}
	e.Register("relax", e.relax)
	e.Register("par", &Primitive{})

	e.Register("begingroup", &Primitive{Exec: execBeginGroup})
	e.Register("endgroup", &Primitive{Exec: execEndGroup})
	e.Register("aftergroup", &Primitive{Exec: execAfterGroup})

	e.Register("global", &Primitive{Prefix: Global})
	e.Register("long", &Primitive{Prefix: Long})
	e.Register("outer", &Primitive{Prefix: Outer})
	e.Register("protected", &Primitive{Prefix: Protected})

	e.Register("def", &Primitive{Exec: execDef(false, false), Definition: true})
	e.Register("gdef", &Primitive{Exec: execDef(true, false), Definition: true})
	e.Register("edef", &Primitive{Exec: execDef(false, true), Definition: true})
	e.Register("xdef", &Primitive{Exec: execDef(true, true), Definition: true})
	e.Register("let", &Primitive{Exec: execLet, Assignment: true})
	e.Register("futurelet", &Primitive{Exec: execFuturelet, Assignment: true})

	e.Register("catcode", &Primitive{
		Exec:       execCatcode,
		Value:      valueCatcode,
		Assignment: true,
	})
	e.Register("count", registerPrimitive(scope.NSCount, IntQuantity))
	e.Register("dimen", registerPrimitive(scope.NSDimen, DimenQuantity))
	for _, name := range IntParams {
		e.Register(name, intParamPrimitive(name))
	}
	e.Register("advance", &Primitive{Exec: execArith(opAdvance), Assignment: true})
	e.Register("multiply", &Primitive{Exec: execArith(opMultiply), Assignment: true})
	e.Register("divide", &Primitive{Exec: execArith(opDivide), Assignment: true})

	e.Register("interactionmode", &Primitive{
		Exec:       execInteractionMode,
		Value:      valueInteractionMode,
		Assignment: true,
	})
	for mode, name := range []string{"batchmode", "nonstopmode", "scrollmode", "errorstopmode"} {
		e.Register(name, &Primitive{Exec: execSetInteraction(mode)})
	}
	e.Register("currentgrouplevel", &Primitive{Value: func(e *Engine) (Quantity, error) {
		return Quantity{Kind: IntQuantity, Value: e.Ctx.Level()}, nil
	}})
	e.Register("currentgrouptype", &Primitive{Value: func(e *Engine) (Quantity, error) {
		return Quantity{Kind: IntQuantity, Value: int(e.Ctx.TopKind())}, nil
	}})
	e.Register("currentiflevel", &Primitive{Value: func(e *Engine) (Quantity, error) {
		return Quantity{Kind: IntQuantity, Value: e.IfLevel()}, nil
	}})

	e.Register("iftrue", &Primitive{Test: func(*Engine) (bool, error) { return true, nil }})
	e.Register("iffalse", &Primitive{Test: func(*Engine) (bool, error) { return false, nil }})
	e.Register("ifx", &Primitive{Test: testIfx})
	e.Register("if", &Primitive{Test: func(e *Engine) (bool, error) {
		return compareChars(e, "\\if", false)
	}})
	e.Register("ifcat", &Primitive{Test: func(e *Engine) (bool, error) {
		return compareChars(e, "\\ifcat", true)
	}})
	e.Register("ifnum", &Primitive{Test: testIfnum})
	e.Register("ifdim", &Primitive{Test: testIfdim})
	e.Register("ifodd", &Primitive{Test: testIfodd})
	e.Register("ifdefined", &Primitive{Test: testIfdefined})
	e.Register("ifcsname", &Primitive{Test: testIfcsname})
	e.Register("ifcase", &Primitive{Case: func(e *Engine) (int, error) { return e.ScanInt() }})
	e.Register("unless", &Primitive{Expand: func(e *Engine, tok token.Token) error {
		return e.unless(tok)
	}})
	e.Register("fi", condTerminator(codeFi))
	e.Register("else", condTerminator(codeElse))
	e.Register("or", condTerminator(codeOr))

	e.endcsname = &Primitive{Exec: execEndCSName}
	e.Register("endcsname", e.endcsname)
	e.Register("csname", &Primitive{Expand: expandCSName})
	e.Register("expandafter", &Primitive{Expand: expandExpandafter})
	e.Register("noexpand", &Primitive{Expand: expandNoexpand})
	e.Register("the", &Primitive{Expand: expandThe})
	e.Register("number", &Primitive{Expand: expandNumber})
	e.Register("romannumeral", &Primitive{Expand: expandRomannumeral})
	e.Register("string", &Primitive{Expand: expandString})
	e.Register("meaning", &Primitive{Expand: expandMeaning})
	e.Register("input", &Primitive{Expand: expandInput})
	e.Register("endinput", &Primitive{Expand: expandEndinput})
}

func condTerminator(code condCode) *Primitive {
	return &Primitive{
		Expand: func(e *Engine, tok token.Token) error {
			return e.fiOrElse(tok, code)
		},
		cond: code,
	}
}
