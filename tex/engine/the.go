// the.go - expandable primitives
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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/seehuhn/texcore/tex/catcode"
	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
)

// escapeChar returns the current value of \escapechar as a rune, or
// -1 if no escape character is printed.
func (e *Engine) escapeChar() rune {
	c := e.Ctx.Int("escapechar")
	if c < 0 || c > unicode.MaxRune {
		return -1
	}
	return rune(c)
}

func (e *Engine) pushString(s, name string) error {
	return e.In.PushBack(token.FromString(s), name)
}

func expandCSName(e *Engine, _ token.Token) error {
	name, err := e.scanCSName("\\csname")
	if err != nil {
		return err
	}
	cs := token.CS(name)
	if e.Meaning(cs).Kind == Undefined {
		e.Define(cs, Meaning{Kind: PrimitiveMeaning, Prim: e.relax}, false)
	}
	e.In.Unread(cs)
	return nil
}

func expandExpandafter(e *Engine, _ token.Token) error {
	first, err := e.next("\\expandafter")
	if err != nil {
		return err
	}
	second, err := e.next("\\expandafter")
	if err != nil {
		return err
	}
	err = e.expandOnce(second)
	if err != nil {
		return err
	}
	e.In.Unread(first)
	return nil
}

func expandNoexpand(e *Engine, _ token.Token) error {
	tok, err := e.next("\\noexpand")
	if err != nil {
		return err
	}
	if e.Meaning(tok).expandable(false) {
		tok.NoExpand = true
	}
	e.In.Unread(tok)
	return nil
}

func expandThe(e *Engine, tok token.Token) error {
	target, err := e.nextX("\\the")
	if err != nil {
		return err
	}
	q, ok, err := e.internalValue(target)
	if err != nil {
		return err
	}
	if !ok {
		e.In.Unread(target)
		return e.errorf(texerr.Syntax, "you can't use %s after %s",
			describeToken(target), describeToken(tok))
	}
	var s string
	if q.Kind == DimenQuantity {
		s = FormatDimen(q.Value)
	} else {
		s = strconv.Itoa(q.Value)
	}
	return e.pushString(s, "\\the")
}

func expandNumber(e *Engine, _ token.Token) error {
	n, err := e.ScanInt()
	if err != nil {
		return err
	}
	return e.pushString(strconv.Itoa(n), "\\number")
}

func expandRomannumeral(e *Engine, _ token.Token) error {
	n, err := e.ScanInt()
	if err != nil {
		return err
	}
	return e.pushString(romanNumeral(n), "\\romannumeral")
}

func expandString(e *Engine, _ token.Token) error {
	tok, err := e.next("\\string")
	if err != nil {
		return err
	}
	var s string
	switch tok.Kind {
	case token.ControlSequence:
		var esc string
		if c := e.escapeChar(); c >= 0 {
			esc = string(c)
		}
		if tok.Name == "" {
			s = esc + "csname" + esc + "endcsname"
		} else {
			s = esc + tok.Name
		}
	default:
		s = string(tok.Char)
	}
	return e.pushString(s, "\\string")
}

func expandMeaning(e *Engine, _ token.Token) error {
	tok, err := e.next("\\meaning")
	if err != nil {
		return err
	}
	s := e.Meaning(tok.Plain()).Describe(e.escapeChar())
	return e.pushString(s, "\\meaning")
}

// scanFileName reads a file name, either in braces or terminated by a
// space or a non-character token.
func (e *Engine) scanFileName() (string, error) {
	tok, err := e.nextNonBlank("file name")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if tok.IsCat(catcode.BeginGroup) {
		for {
			tok, err := e.nextX("file name")
			if err != nil {
				return "", err
			}
			if tok.IsCat(catcode.EndGroup) {
				return b.String(), nil
			}
			if tok.Kind == token.Character {
				b.WriteRune(tok.Char)
			}
		}
	}
	for {
		if tok.Kind != token.Character || tok.NoExpand {
			e.In.Unread(tok)
			break
		}
		if tok.IsSpace() {
			break
		}
		b.WriteRune(tok.Char)
		tok, err = e.ExpandNext()
		if isEOF(err) {
			break
		} else if err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func expandInput(e *Engine, tok token.Token) error {
	name, err := e.scanFileName()
	if err != nil {
		return err
	}
	if name == "" {
		return e.errorf(texerr.Syntax, "missing file name after %s", describeToken(tok))
	}
	fileName := name
	if filepath.Ext(fileName) == "" {
		withExt := fileName + ".tex"
		if e.In.BaseDir != "" && !filepath.IsAbs(withExt) {
			withExt = filepath.Join(e.In.BaseDir, withExt)
		}
		if _, err := os.Stat(withExt); err == nil {
			fileName += ".tex"
		}
	}
	e.log.Debug("input", "file", fileName)
	err = e.In.Include(fileName)
	if err != nil {
		return fmt.Errorf("%s %s: %w", describeToken(tok), name, err)
	}
	return nil
}

func expandEndinput(e *Engine, _ token.Token) error {
	e.In.EndInput()
	return nil
}
