// commands.go - assignments and other non-expandable primitives
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
	"github.com/seehuhn/texcore/tex/catcode"
	"github.com/seehuhn/texcore/tex/scope"
	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
)

func execBeginGroup(e *Engine, _ token.Token, _ Prefix) error {
	e.beginGroup(scope.SemiSimpleGroup)
	return nil
}

func execEndGroup(e *Engine, tok token.Token, _ Prefix) error {
	return e.endGroup(scope.SemiSimpleGroup, tok)
}

func execAfterGroup(e *Engine, _ token.Token, _ Prefix) error {
	tok, err := e.next("\\aftergroup")
	if err != nil {
		return err
	}
	e.Ctx.AfterGroup(tok)
	return nil
}

// getRToken reads the control sequence which is being defined.
func (e *Engine) getRToken(construct string) (token.Token, error) {
	for {
		tok, err := e.next(construct)
		if err != nil {
			return tok, err
		}
		if tok.IsSpace() {
			continue
		}
		if !tok.IsCS() {
			e.In.Unread(tok)
			return tok, e.errorf(texerr.Syntax,
				"missing control sequence inserted in %s, found %s",
				construct, describeToken(tok))
		}
		return tok.Plain(), nil
	}
}

func execDef(global, edef bool) func(*Engine, token.Token, Prefix) error {
	return func(e *Engine, tok token.Token, pfx Prefix) error {
		name, err := e.getRToken(describeToken(tok))
		if err != nil {
			return err
		}
		m, err := e.scanDefinition(name, pfx, edef)
		if err != nil {
			return err
		}
		e.Define(name, Meaning{Kind: MacroMeaning, Macro: m}, global || pfx.Has(Global))
		return nil
	}
}

func execLet(e *Engine, _ token.Token, pfx Prefix) error {
	name, err := e.getRToken("\\let")
	if err != nil {
		return err
	}
	tok, err := e.next("\\let")
	if err != nil {
		return err
	}
	for tok.IsSpace() {
		tok, err = e.next("\\let")
		if err != nil {
			return err
		}
	}
	if tok.IsCat(catcode.Other) && tok.Char == '=' {
		tok, err = e.next("\\let")
		if err != nil {
			return err
		}
		if tok.IsSpace() {
			tok, err = e.next("\\let")
			if err != nil {
				return err
			}
		}
	}
	e.Define(name, e.Meaning(tok.Plain()), pfx.Has(Global))
	return nil
}

func execFuturelet(e *Engine, _ token.Token, pfx Prefix) error {
	name, err := e.getRToken("\\futurelet")
	if err != nil {
		return err
	}
	first, err := e.next("\\futurelet")
	if err != nil {
		return err
	}
	second, err := e.next("\\futurelet")
	if err != nil {
		return err
	}
	e.In.Unread(second)
	e.In.Unread(first)
	e.Define(name, e.Meaning(second.Plain()), pfx.Has(Global))
	return nil
}

func execCatcode(e *Engine, _ token.Token, pfx Prefix) error {
	c, err := e.scanCharNum()
	if err != nil {
		return err
	}
	err = e.scanOptionalEquals("\\catcode")
	if err != nil {
		return err
	}
	val, err := e.ScanInt()
	if err != nil {
		return err
	}
	if val < 0 || val > int(catcode.Max) {
		return e.errorf(texerr.Syntax,
			"invalid code (%d), should be in the range 0..%d", val, catcode.Max)
	}
	e.Ctx.SetCatcode(c, catcode.Catcode(val), pfx.Has(Global))
	return nil
}

func valueCatcode(e *Engine) (Quantity, error) {
	c, err := e.scanCharNum()
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Kind: IntQuantity, Value: int(e.Ctx.Catcode(c))}, nil
}

// Lookup returns the current value of a register.
func (e *Engine) Lookup(reg Register) int {
	val, ok := e.Ctx.Lookup(reg.Key)
	if !ok {
		if reg.Key.NS == scope.NSInt {
			return scope.IntDefaults[reg.Key.Name]
		}
		return 0
	}
	return val.(int)
}

// Store assigns a new value to a register.
func (e *Engine) Store(reg Register, val int, global bool) {
	e.Ctx.Assign(reg.Key, val, global)
}

func (e *Engine) scanQuantity(kind QuantityKind) (int, error) {
	if kind == DimenQuantity {
		return e.ScanDimen()
	}
	return e.ScanInt()
}

// registerPrimitive returns the primitive for a numbered register
// like \count.
func registerPrimitive(ns scope.Namespace, kind QuantityKind) *Primitive {
	ref := func(e *Engine) (Register, error) {
		n, err := e.scanRegisterNum()
		if err != nil {
			return Register{}, err
		}
		return Register{Key: scope.Key{NS: ns, Index: n}, Kind: kind}, nil
	}
	return registerLike(ref)
}

// intParamPrimitive returns the primitive for an integer parameter
// like \escapechar.
func intParamPrimitive(name string) *Primitive {
	ref := func(e *Engine) (Register, error) {
		return Register{Key: scope.Key{NS: scope.NSInt, Name: name}, Kind: IntQuantity}, nil
	}
	return registerLike(ref)
}

func registerLike(ref func(e *Engine) (Register, error)) *Primitive {
	return &Primitive{
		Ref: ref,
		Exec: func(e *Engine, tok token.Token, pfx Prefix) error {
			reg, err := ref(e)
			if err != nil {
				return err
			}
			err = e.scanOptionalEquals(describeToken(tok))
			if err != nil {
				return err
			}
			val, err := e.scanQuantity(reg.Kind)
			if err != nil {
				return err
			}
			e.Store(reg, val, pfx.Has(Global))
			return nil
		},
		Value: func(e *Engine) (Quantity, error) {
			reg, err := ref(e)
			if err != nil {
				return Quantity{}, err
			}
			return Quantity{Kind: reg.Kind, Value: e.Lookup(reg)}, nil
		},
		Assignment: true,
	}
}

type arithOp int

const (
	opAdvance arithOp = iota
	opMultiply
	opDivide
)

func execArith(op arithOp) func(*Engine, token.Token, Prefix) error {
	return func(e *Engine, tok token.Token, pfx Prefix) error {
		target, err := e.nextNonBlank(describeToken(tok))
		if err != nil {
			return err
		}
		m := e.Meaning(target)
		if target.NoExpand || m.Kind != PrimitiveMeaning || m.Prim.Ref == nil {
			e.In.Unread(target)
			return e.errorf(texerr.Syntax, "you can't use %s after %s",
				describeToken(target), describeToken(tok))
		}
		reg, err := m.Prim.Ref(e)
		if err != nil {
			return err
		}
		_, err = e.ScanKeyword("by")
		if err != nil {
			return err
		}

		cur := e.Lookup(reg)
		limit := infinity
		if reg.Kind == DimenQuantity {
			limit = MaxDimen
		}
		var res int64
		switch op {
		case opAdvance:
			delta, err := e.scanQuantity(reg.Kind)
			if err != nil {
				return err
			}
			res = int64(cur) + int64(delta)
		case opMultiply:
			n, err := e.ScanInt()
			if err != nil {
				return err
			}
			res = int64(cur) * int64(n)
		case opDivide:
			n, err := e.ScanInt()
			if err != nil {
				return err
			}
			if n == 0 {
				return e.errorf(texerr.Syntax, "arithmetic overflow in %s", describeToken(tok))
			}
			res = int64(cur) / int64(n)
		}
		if res > int64(limit) || res < -int64(limit) {
			return e.errorf(texerr.Syntax, "arithmetic overflow in %s", describeToken(tok))
		}
		e.Store(reg, int(res), pfx.Has(Global))
		return nil
	}
}

func execSetInteraction(mode int) func(*Engine, token.Token, Prefix) error {
	return func(e *Engine, _ token.Token, _ Prefix) error {
		e.Ctx.SetInt("interaction", mode, true)
		return nil
	}
}

func execInteractionMode(e *Engine, _ token.Token, _ Prefix) error {
	err := e.scanOptionalEquals("\\interactionmode")
	if err != nil {
		return err
	}
	mode, err := e.ScanInt()
	if err != nil {
		return err
	}
	if mode < BatchMode || mode > ErrorStopMode {
		return e.errorf(texerr.Syntax, "bad interaction mode (%d)", mode)
	}
	e.Ctx.SetInt("interaction", mode, true)
	return nil
}

func valueInteractionMode(e *Engine) (Quantity, error) {
	return Quantity{Kind: IntQuantity, Value: e.Interaction()}, nil
}

func execEndCSName(e *Engine, tok token.Token, _ Prefix) error {
	return e.errorf(texerr.Syntax, "extra %s", describeToken(tok))
}
