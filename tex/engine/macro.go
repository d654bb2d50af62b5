// macro.go - defining and expanding macros
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
	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
)

var parToken = token.CS("par")

// scanDefinition reads the parameter text and the replacement text of
// a macro definition.  If edef is set, the replacement text is
// expanded while it is read.
func (e *Engine) scanDefinition(name token.Token, pfx Prefix, edef bool) (*Macro, error) {
	construct := "definition of " + describeToken(name)
	m := &Macro{
		Long:      pfx.Has(Long),
		Outer:     pfx.Has(Outer),
		Protected: pfx.Has(Protected),
	}

	nParams := 0
params:
	for {
		tok, err := e.next(construct)
		if err != nil {
			return nil, err
		}
		if err := e.checkOuter(tok, construct); err != nil {
			return nil, err
		}
		switch {
		case tok.IsCat(catcode.BeginGroup):
			break params
		case tok.IsCat(catcode.EndGroup):
			return nil, e.errorf(texerr.Syntax, "missing { inserted in %s", construct)
		case tok.IsCat(catcode.Parameter):
			next, err := e.next(construct)
			if err != nil {
				return nil, err
			}
			if next.IsCat(catcode.BeginGroup) {
				m.Params = append(m.Params, next)
				m.LeftBrace = true
				break params
			}
			if !next.IsCat(catcode.Other) || next.Char != rune('1'+nParams) || nParams >= 9 {
				return nil, e.errorf(texerr.Syntax,
					"parameters must be numbered consecutively in %s", construct)
			}
			nParams++
			m.Params = append(m.Params, token.Param(nParams))
		default:
			m.Params = append(m.Params, tok.Plain())
		}
	}

	get := e.next
	if edef {
		get = func(construct string) (token.Token, error) {
			tok, err := e.expandNext(true)
			if isEOF(err) {
				return tok, e.endOfInput(construct)
			}
			return tok, err
		}
	}

	depth := 1
	for {
		tok, err := get(construct)
		if err != nil {
			return nil, err
		}
		if err := e.checkOuter(tok, construct); err != nil {
			return nil, err
		}
		if tok.IsCat(catcode.BeginGroup) {
			depth++
		} else if tok.IsCat(catcode.EndGroup) {
			depth--
			if depth == 0 {
				break
			}
		} else if tok.IsCat(catcode.Parameter) {
			next, err := get(construct)
			if err != nil {
				return nil, err
			}
			switch {
			case next.IsCat(catcode.Parameter):
				tok = next
			case next.IsCat(catcode.Other) && next.Char >= '1' && int(next.Char-'0') <= nParams:
				tok = token.Param(int(next.Char - '0'))
			default:
				return nil, e.errorf(texerr.Syntax,
					"illegal parameter number in %s", construct)
			}
		}
		m.Body = append(m.Body, tok.Plain())
	}
	if m.LeftBrace {
		m.Body = append(m.Body, m.Params[len(m.Params)-1])
	}
	return m, nil
}

// checkOuter reports an error if tok is an \outer macro.  Such macros
// cannot occur in definitions, arguments or skipped conditional text.
func (e *Engine) checkOuter(tok token.Token, construct string) error {
	if !tok.IsCS() {
		return nil
	}
	m := e.Meaning(tok)
	if m.Kind == MacroMeaning && m.Macro.Outer {
		e.In.Unread(tok)
		err := e.errorf(texerr.Forbidden,
			"forbidden control sequence %s found while scanning %s",
			describeToken(tok), construct)
		err.Construct = construct
		return err
	}
	return nil
}

func (e *Engine) expandMacro(tok token.Token, m *Macro) error {
	name := describeToken(tok)
	construct := "argument of " + name

	var args []token.List
	params := m.Params
	i := 0
	for i < len(params) {
		p := params[i]
		if p.Kind != token.Parameter {
			next, err := e.In.Next()
			if isEOF(err) {
				return e.runaway(construct, "input ended while scanning use of "+name)
			} else if err != nil {
				return err
			}
			if !next.Equal(p) {
				e.In.Unread(next)
				return e.errorf(texerr.Syntax, "use of %s doesn't match its definition", name)
			}
			i++
			continue
		}

		j := i + 1
		for j < len(params) && params[j].Kind != token.Parameter {
			j++
		}
		var arg token.List
		var err error
		if j == i+1 {
			arg, err = e.undelimitedArg(name, m.Long)
		} else {
			arg, err = e.delimitedArg(name, m.Long, params[i+1:j])
		}
		if err != nil {
			return err
		}
		args = append(args, arg)
		i = j
	}

	var res token.List
	for _, t := range m.Body {
		if t.Kind == token.Parameter {
			res = append(res, args[t.Index-1]...)
		} else {
			res = append(res, t)
		}
	}
	return e.In.PushBack(res, name)
}

func (e *Engine) runaway(construct, msg string) error {
	err := e.errorf(texerr.RunawayArgument, "%s", msg)
	err.Construct = construct
	return err
}

// argToken reads the next token of a macro argument and checks that it
// may occur there.
func (e *Engine) argToken(name string, long bool, delim token.List) (token.Token, error) {
	construct := "argument of " + name
	tok, err := e.In.Next()
	if isEOF(err) {
		return tok, e.runaway(construct, "input ended while scanning use of "+name)
	} else if err != nil {
		return tok, err
	}
	if tok.Equal(parToken) && !long && !containsToken(delim, parToken) {
		e.In.Unread(tok)
		return tok, e.runaway(construct, "paragraph ended before "+name+" was complete")
	}
	if err := e.checkOuter(tok, construct); err != nil {
		return tok, err
	}
	return tok, nil
}

func (e *Engine) undelimitedArg(name string, long bool) (token.List, error) {
	var tok token.Token
	var err error
	for {
		tok, err = e.argToken(name, long, nil)
		if err != nil {
			return nil, err
		}
		if !tok.IsSpace() {
			break
		}
	}
	if tok.IsCat(catcode.EndGroup) {
		e.In.Unread(tok)
		return nil, e.errorf(texerr.Syntax, "argument of %s has an extra }", name)
	}
	if !tok.IsCat(catcode.BeginGroup) {
		return token.List{tok}, nil
	}

	var arg token.List
	depth := 1
	for {
		tok, err := e.argToken(name, long, nil)
		if err != nil {
			return nil, err
		}
		if tok.IsCat(catcode.BeginGroup) {
			depth++
		} else if tok.IsCat(catcode.EndGroup) {
			depth--
			if depth == 0 {
				return arg, nil
			}
		}
		arg = append(arg, tok)
	}
}

func (e *Engine) delimitedArg(name string, long bool, delim token.List) (token.List, error) {
	braceDelim := delim[len(delim)-1].IsCat(catcode.BeginGroup)

	var arg token.List
	depth := 0
	for {
		tok, err := e.argToken(name, long, delim)
		if err != nil {
			return nil, err
		}
		arg = append(arg, tok)
		switch {
		case tok.IsCat(catcode.BeginGroup):
			if depth == 0 && braceDelim && hasSuffix(arg, delim) {
				return stripBraces(arg[:len(arg)-len(delim)]), nil
			}
			depth++
		case tok.IsCat(catcode.EndGroup):
			depth--
			if depth < 0 {
				e.In.Unread(tok)
				return nil, e.errorf(texerr.Syntax, "argument of %s has an extra }", name)
			}
		default:
			if depth == 0 && hasSuffix(arg, delim) {
				return stripBraces(arg[:len(arg)-len(delim)]), nil
			}
		}
	}
}

func hasSuffix(toks, suffix token.List) bool {
	if len(toks) < len(suffix) {
		return false
	}
	return toks[len(toks)-len(suffix):].Equal(suffix)
}

func containsToken(toks token.List, tok token.Token) bool {
	for _, t := range toks {
		if t.Equal(tok) {
			return true
		}
	}
	return false
}

// stripBraces removes one level of braces, if these enclose the whole
// argument.
func stripBraces(arg token.List) token.List {
	n := len(arg)
	if n < 2 || !arg[0].IsCat(catcode.BeginGroup) || !arg[n-1].IsCat(catcode.EndGroup) {
		return arg
	}
	depth := 0
	for i, tok := range arg {
		if tok.IsCat(catcode.BeginGroup) {
			depth++
		} else if tok.IsCat(catcode.EndGroup) {
			depth--
			if depth == 0 && i < n-1 {
				return arg
			}
		}
	}
	return arg[1 : n-1]
}
