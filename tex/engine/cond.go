// cond.go - conditional processing
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
	"errors"
	"slices"

	"github.com/seehuhn/texcore/tex/catcode"
	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
)

// conditional is an entry of the condition stack.  The limit gives
// the conditional terminators which are allowed next: codeIf while the
// test is evaluated, codeFi after \else, codeElse in the true branch
// and codeOr after an \ifcase case was selected.
type conditional struct {
	name  string
	limit condCode
	pos   texerr.Frame
}

// inserted in front of a premature \else or \fi
var frozenRelax = token.Token{Kind: token.ControlSequence, Name: "relax", NoExpand: true}

// IfLevel returns the number of conditionals which are currently
// open.
func (e *Engine) IfLevel() int {
	return len(e.conds)
}

func (e *Engine) conditional(p *Primitive, negate bool) error {
	name := p.Name
	if negate {
		name = "unless" + name
	}
	c := &conditional{
		name:  "\\" + name,
		limit: codeIf,
		pos:   e.pos(),
	}
	e.conds = append(e.conds, c)
	e.log.Debug("conditional", "name", c.name, "level", len(e.conds))

	if p.Case != nil {
		n, err := p.Case(e)
		if err != nil {
			return e.testFailed(c, true, err)
		}
		for n != 0 {
			code, err := e.passText(c)
			if err != nil {
				return err
			}
			if e.isTop(c) {
				if code != codeOr {
					return e.condEnd(c, code, nil)
				}
				n--
			} else if code == codeFi {
				e.popCond()
			}
		}
		c.limit = codeOr
		return nil
	}

	b, err := p.Test(e)
	if err != nil {
		return e.testFailed(c, false, err)
	}
	if b != negate {
		c.limit = codeElse
		return nil
	}

	var extra error
	for {
		code, err := e.passText(c)
		if err != nil {
			return err
		}
		if e.isTop(c) {
			if code != codeOr {
				return e.condEnd(c, code, extra)
			}
			extra = e.errorf(texerr.UnbalancedGroup, "extra \\or in %s", c.name)
		} else if code == codeFi {
			e.popCond()
		}
	}
}

// testFailed completes c after its test reported err, which is
// returned unchanged.  A failed \ifcase selects case 0 and any other
// failed test counts as false, so that the following \or, \else and
// \fi keep their meaning.  After a limit or end of input error the
// conditional is abandoned instead.
func (e *Engine) testFailed(c *conditional, isCase bool, err error) error {
	i := slices.Index(e.conds, c)
	if i < 0 {
		return err
	}
	if isEOF(err) || errors.Is(err, texerr.ErrUnexpectedEndOfInput) ||
		errors.Is(err, texerr.ErrRecursionLimitExceeded) {
		e.conds = e.conds[:i]
		return err
	}
	e.conds = e.conds[:i+1]

	if isCase {
		c.limit = codeOr
		return err
	}
	for {
		code, e2 := e.passText(c)
		if e2 != nil {
			return err
		}
		if code != codeOr {
			e.condEnd(c, code, nil)
			return err
		}
	}
}

func (e *Engine) condEnd(c *conditional, code condCode, err error) error {
	if code == codeFi {
		e.popCond()
	} else {
		c.limit = codeFi
	}
	return err
}

func (e *Engine) isTop(c *conditional) bool {
	n := len(e.conds)
	return n > 0 && e.conds[n-1] == c
}

func (e *Engine) popCond() {
	e.conds = e.conds[:len(e.conds)-1]
	e.log.Debug("end conditional", "level", len(e.conds))
}

// passText skips tokens until the \fi, \else or \or which belongs to the
// current level.  Nested conditionals are skipped completely.
func (e *Engine) passText(c *conditional) (condCode, error) {
	level := 0
	for {
		tok, err := e.In.Next()
		if isEOF(err) {
			res := e.errorf(texerr.RunawayConditional,
				"incomplete %s; all text was ignored after line %d", c.name, c.pos.Line)
			res.Construct = c.name
			res.Stack = append(res.Stack, c.pos)
			e.conds = e.conds[:0]
			return codeNone, res
		} else if err != nil {
			return codeNone, err
		}
		if !tok.IsCS() {
			continue
		}
		m := e.Meaning(tok)
		switch m.Kind {
		case MacroMeaning:
			if m.Macro.Outer {
				res := e.errorf(texerr.Forbidden,
					"incomplete %s; forbidden control sequence %s found",
					c.name, describeToken(tok))
				res.Construct = c.name
				return codeNone, res
			}
		case PrimitiveMeaning:
			p := m.Prim
			if p.Test != nil || p.Case != nil {
				level++
			} else if p.cond != codeNone {
				if level == 0 {
					return p.cond, nil
				}
				if p.cond == codeFi {
					level--
				}
			}
		}
	}
}

// fiOrElse implements \fi, \else and \or.
func (e *Engine) fiOrElse(tok token.Token, code condCode) error {
	n := len(e.conds)
	if n == 0 {
		return e.errorf(texerr.UnbalancedGroup, "extra %s", describeToken(tok))
	}
	top := e.conds[n-1]
	if code > top.limit {
		if top.limit == codeIf {
			// The test is still being evaluated; terminate the
			// number or keyword which is being scanned.
			e.In.Unread(tok)
			e.In.Unread(frozenRelax)
			return nil
		}
		return e.errorf(texerr.UnbalancedGroup, "extra %s", describeToken(tok))
	}
	for code != codeFi {
		var err error
		code, err = e.passText(top)
		if err != nil {
			return err
		}
	}
	e.popCond()
	return nil
}

func (e *Engine) unless(tok token.Token) error {
	next, err := e.next("\\unless")
	if err != nil {
		return err
	}
	m := e.Meaning(next)
	if next.NoExpand || m.Kind != PrimitiveMeaning || m.Prim.Test == nil {
		e.In.Unread(next)
		return e.errorf(texerr.Syntax, "you can't use %s before %s",
			describeToken(tok), describeToken(next))
	}
	return e.conditional(m.Prim, true)
}

func testIfx(e *Engine) (bool, error) {
	a, err := e.next("\\ifx")
	if err != nil {
		return false, err
	}
	b, err := e.next("\\ifx")
	if err != nil {
		return false, err
	}
	return e.Meaning(a.Plain()).Same(e.Meaning(b.Plain())), nil
}

// charCode returns the character code and category used by \if and
// \ifcat.  Tokens which do not stand for a character compare like
// \relax.
func (e *Engine) charCode(construct string) (rune, catcode.Catcode, error) {
	tok, err := e.nextX(construct)
	if err != nil {
		return 0, 0, err
	}
	if tok.NoExpand {
		return -1, catcode.Invalid + 1, nil
	}
	m := e.Meaning(tok)
	if m.Kind == CharMeaning {
		if tok.Kind == token.Active {
			return tok.Char, catcode.Active, nil
		}
		return m.Char.Char, m.Char.Cat, nil
	}
	if tok.Kind == token.Active {
		return tok.Char, catcode.Active, nil
	}
	return -1, catcode.Invalid + 1, nil
}

func compareChars(e *Engine, construct string, cat bool) (bool, error) {
	c1, cat1, err := e.charCode(construct)
	if err != nil {
		return false, err
	}
	c2, cat2, err := e.charCode(construct)
	if err != nil {
		return false, err
	}
	if cat {
		return cat1 == cat2, nil
	}
	return c1 == c2, nil
}

// scanRelation reads one of <, = and >.
func (e *Engine) scanRelation(construct string) (rune, error) {
	tok, err := e.nextNonBlank(construct)
	if err != nil {
		return 0, err
	}
	if tok.Kind == token.Character && tok.Cat == catcode.Other && !tok.NoExpand {
		switch tok.Char {
		case '<', '=', '>':
			return tok.Char, nil
		}
	}
	e.In.Unread(tok)
	return 0, e.errorf(texerr.Syntax, "missing = inserted for %s", construct)
}

func compare(a int, rel rune, b int) bool {
	switch rel {
	case '<':
		return a < b
	case '>':
		return a > b
	}
	return a == b
}

func testIfnum(e *Engine) (bool, error) {
	a, err := e.ScanInt()
	if err != nil {
		return false, err
	}
	rel, err := e.scanRelation("\\ifnum")
	if err != nil {
		return false, err
	}
	b, err := e.ScanInt()
	if err != nil {
		return false, err
	}
	return compare(a, rel, b), nil
}

func testIfdim(e *Engine) (bool, error) {
	a, err := e.ScanDimen()
	if err != nil {
		return false, err
	}
	rel, err := e.scanRelation("\\ifdim")
	if err != nil {
		return false, err
	}
	b, err := e.ScanDimen()
	if err != nil {
		return false, err
	}
	return compare(a, rel, b), nil
}

func testIfodd(e *Engine) (bool, error) {
	n, err := e.ScanInt()
	if err != nil {
		return false, err
	}
	return n%2 != 0, nil
}

func testIfdefined(e *Engine) (bool, error) {
	tok, err := e.next("\\ifdefined")
	if err != nil {
		return false, err
	}
	return e.Meaning(tok.Plain()).Kind != Undefined, nil
}

func testIfcsname(e *Engine) (bool, error) {
	name, err := e.scanCSName("\\ifcsname")
	if err != nil {
		return false, err
	}
	return e.Meaning(token.CS(name)).Kind != Undefined, nil
}
