// scan.go - reading numbers, dimensions and keywords
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
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/seehuhn/texcore/tex/catcode"
	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
)

const (
	infinity = 1<<31 - 1

	// MaxDimen is the largest dimension, in scaled points.
	MaxDimen = 1<<30 - 1

	unity = 1 << 16
)

// ScanKeyword tries to read the given keyword, ignoring case and
// leading spaces.  If the keyword is not found, all tokens read are
// put back and false is returned.
func (e *Engine) ScanKeyword(kw string) (bool, error) {
	var seen token.List
	for i, c := range kw {
		tok, err := e.ExpandNext()
		if isEOF(err) {
			e.unreadAll(seen)
			return false, nil
		} else if err != nil {
			return false, err
		}
		if !tok.NoExpand && tok.Kind == token.Character &&
			(tok.Cat == catcode.Letter || tok.Cat == catcode.Other) &&
			unicode.ToLower(tok.Char) == c {
			seen = append(seen, tok)
			continue
		}
		if tok.IsSpace() && len(seen) == 0 && i == 0 {
			// a leading space, which is dropped
			return e.ScanKeyword(kw)
		}
		e.In.Unread(tok)
		e.unreadAll(seen)
		return false, nil
	}
	return true, nil
}

func (e *Engine) unreadAll(toks token.List) {
	for i := len(toks) - 1; i >= 0; i-- {
		e.In.Unread(toks[i])
	}
}

// scanOptionalEquals skips blanks and an optional equals sign.
func (e *Engine) scanOptionalEquals(construct string) error {
	tok, err := e.nextNonBlank(construct)
	if err != nil {
		return err
	}
	if !tok.NoExpand && tok.IsCat(catcode.Other) && tok.Char == '=' {
		return nil
	}
	e.In.Unread(tok)
	return nil
}

func (e *Engine) skipOptionalSpace() error {
	tok, err := e.ExpandNext()
	if isEOF(err) {
		return nil
	} else if err != nil {
		return err
	}
	if !tok.IsSpace() {
		e.In.Unread(tok)
	}
	return nil
}

// scanSigns reads optional plus and minus signs, and returns the first
// token after them.
func (e *Engine) scanSigns(construct string) (bool, token.Token, error) {
	neg := false
	for {
		tok, err := e.nextNonBlank(construct)
		if err != nil {
			return false, tok, err
		}
		if !tok.NoExpand && tok.IsCat(catcode.Other) && (tok.Char == '+' || tok.Char == '-') {
			if tok.Char == '-' {
				neg = !neg
			}
			continue
		}
		return neg, tok, nil
	}
}

// internalValue returns the value of an internal quantity, if tok
// refers to one.
func (e *Engine) internalValue(tok token.Token) (Quantity, bool, error) {
	if tok.NoExpand || !tok.IsCS() {
		return Quantity{}, false, nil
	}
	m := e.Meaning(tok)
	switch m.Kind {
	case PrimitiveMeaning:
		if m.Prim.Value == nil {
			return Quantity{}, false, nil
		}
		q, err := m.Prim.Value(e)
		return q, true, err
	}
	return Quantity{}, false, nil
}

// ScanInt reads an integer, as described in chapter 24 of the TeXbook.
func (e *Engine) ScanInt() (int, error) {
	val, _, _, err := e.scanInt("number")
	return val, err
}

// scanInt returns the value, the radix and the token which ended the
// digits, if any.
func (e *Engine) scanInt(construct string) (int, int, token.Token, error) {
	neg, tok, err := e.scanSigns(construct)
	if err != nil {
		return 0, 0, tok, err
	}

	var val int
	radix := 0
	var last token.Token
	switch {
	case !tok.NoExpand && tok.IsCat(catcode.Other) && tok.Char == '`':
		c, err := e.next("alphabetic constant")
		if err != nil {
			return 0, 0, tok, err
		}
		switch c.Kind {
		case token.Character, token.Active:
			val = int(c.Char)
		case token.ControlSequence:
			r, size := utf8.DecodeRuneInString(c.Name)
			if size == 0 || size != len(c.Name) {
				return 0, 0, c, e.errorf(texerr.Syntax, "improper alphabetic constant %s",
					describeToken(c))
			}
			val = int(r)
		}
		err = e.skipOptionalSpace()
		if err != nil {
			return 0, 0, tok, err
		}
	default:
		q, ok, err := e.internalValue(tok)
		if err != nil {
			return 0, 0, tok, err
		}
		if ok {
			val = q.Value
			break
		}

		radix = 10
		if !tok.NoExpand && tok.IsCat(catcode.Other) {
			switch tok.Char {
			case '\'':
				radix = 8
			case '"':
				radix = 16
			}
		}
		if radix != 10 {
			tok, err = e.ExpandNext()
			if err != nil && !isEOF(err) {
				return 0, 0, tok, err
			}
			if isEOF(err) {
				return 0, 0, tok, e.errorf(texerr.Syntax, "missing number")
			}
		}

		digits := 0
		overflow := false
		for {
			d := digitValue(tok, radix)
			if d < 0 {
				break
			}
			digits++
			if val > (infinity-d)/radix {
				overflow = true
			} else {
				val = val*radix + d
			}
			tok, err = e.ExpandNext()
			if isEOF(err) {
				tok = token.Token{}
				break
			} else if err != nil {
				return 0, 0, tok, err
			}
		}
		if digits == 0 {
			if tok != (token.Token{}) {
				e.In.Unread(tok)
			}
			return 0, radix, tok, e.errorf(texerr.Syntax, "missing number, treated as zero")
		}
		last = tok
		if tok != (token.Token{}) && !tok.IsSpace() {
			e.In.Unread(tok)
		}
		if overflow {
			return infinity, radix, last, e.errorf(texerr.Syntax, "number too big")
		}
	}

	if neg {
		val = -val
	}
	return val, radix, last, nil
}

func digitValue(tok token.Token, radix int) int {
	if tok.NoExpand || tok.Kind != token.Character {
		return -1
	}
	c := tok.Char
	var d int
	switch {
	case c >= '0' && c <= '9' && tok.Cat == catcode.Other:
		d = int(c - '0')
	case radix == 16 && c >= 'A' && c <= 'F' &&
		(tok.Cat == catcode.Other || tok.Cat == catcode.Letter):
		d = int(c-'A') + 10
	default:
		return -1
	}
	if d >= radix {
		return -1
	}
	return d
}

type unit struct {
	name     string
	num, den int
}

var units = []unit{
	{"in", 7227, 100},
	{"pc", 12, 1},
	{"cm", 7227, 254},
	{"mm", 7227, 2540},
	{"bp", 7227, 7200},
	{"dd", 1238, 1157},
	{"cc", 14856, 1157},
}

// ScanDimen reads a dimension and returns its value in scaled points.
func (e *Engine) ScanDimen() (int, error) {
	neg, tok, err := e.scanSigns("dimension")
	if err != nil {
		return 0, err
	}

	q, ok, err := e.internalValue(tok)
	if err != nil {
		return 0, err
	}
	if ok && q.Kind == DimenQuantity {
		if neg {
			return -q.Value, nil
		}
		return q.Value, nil
	}

	whole := 0
	var frac []int
	if ok {
		whole = q.Value
		if whole < 0 {
			neg = !neg
			whole = -whole
		}
	} else {
		isPoint := !tok.NoExpand && tok.IsCat(catcode.Other) && (tok.Char == '.' || tok.Char == ',')
		if !isPoint {
			e.In.Unread(tok)
			var radix int
			var last token.Token
			whole, radix, last, err = e.scanInt("dimension")
			if err != nil {
				return 0, err
			}
			if whole < 0 {
				neg = !neg
				whole = -whole
			}
			isPoint = radix == 10 && last.IsCat(catcode.Other) &&
				(last.Char == '.' || last.Char == ',')
			if isPoint {
				e.In.Next()
			}
		}
		if isPoint {
			frac, err = e.scanFraction()
			if err != nil {
				return 0, err
			}
		}
	}
	f := roundDecimals(frac)

	val, err := e.scanUnits(whole, f)
	if err != nil {
		return 0, err
	}
	if neg {
		val = -val
	}
	return val, nil
}

func (e *Engine) scanFraction() ([]int, error) {
	var digits []int
	for {
		tok, err := e.ExpandNext()
		if isEOF(err) {
			return digits, nil
		} else if err != nil {
			return nil, err
		}
		d := digitValue(tok, 10)
		if d < 0 {
			if !tok.IsSpace() {
				e.In.Unread(tok)
			}
			return digits, nil
		}
		if len(digits) < 17 {
			digits = append(digits, d)
		}
	}
}

// scanUnits reads the unit of a dimension with integer part whole and
// fractional part f (in units of 2^-16).
func (e *Engine) scanUnits(whole, f int) (int, error) {
	// an internal quantity used as the unit
	tok, err := e.nextNonBlank("unit of measure")
	if err != nil {
		return 0, err
	}
	q, ok, err := e.internalValue(tok)
	if err != nil {
		return 0, err
	}
	if ok {
		v := q.Value
		res, ovf := nxPlusY(whole, v, xnOverD(v, f, unity))
		if ovf {
			return MaxDimen, e.errorf(texerr.Syntax, "dimension too large")
		}
		return res, nil
	}
	e.In.Unread(tok)

	for _, u := range []string{"em", "ex"} {
		found, err := e.ScanKeyword(u)
		if err != nil {
			return 0, err
		}
		if found {
			return 0, e.errorf(texerr.Syntax, "font dependent unit %s is not supported", u)
		}
	}

	_, err = e.ScanKeyword("true")
	if err != nil {
		return 0, err
	}

	found, err := e.ScanKeyword("pt")
	if err != nil {
		return 0, err
	}
	if !found {
		for _, u := range units {
			found, err = e.ScanKeyword(u.name)
			if err != nil {
				return 0, err
			}
			if !found {
				continue
			}
			var rem int
			whole, rem = xnOverDRem(whole, u.num, u.den)
			f = (u.num*f + unity*rem) / u.den
			whole += f / unity
			f %= unity
			break
		}
	}
	if !found {
		found, err = e.ScanKeyword("sp")
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, e.errorf(texerr.Syntax, "illegal unit of measure")
		}
		if err := e.skipOptionalSpace(); err != nil {
			return 0, err
		}
		if whole > MaxDimen {
			return MaxDimen, e.errorf(texerr.Syntax, "dimension too large")
		}
		return whole, nil
	}
	if err := e.skipOptionalSpace(); err != nil {
		return 0, err
	}

	if whole >= 1<<14 {
		return MaxDimen, e.errorf(texerr.Syntax, "dimension too large")
	}
	return whole*unity + f, nil
}

// roundDecimals converts decimal digits into a fraction in units of
// 2^-16, the way TeX does it.
func roundDecimals(digits []int) int {
	a := 0
	for k := len(digits) - 1; k >= 0; k-- {
		a = (a + digits[k]*2*unity) / 10
	}
	return (a + 1) / 2
}

// xnOverDRem computes x*n/d for non-negative x, together with the
// remainder.
func xnOverDRem(x, n, d int) (int, int) {
	p := int64(x) * int64(n)
	return int(p / int64(d)), int(p % int64(d))
}

func xnOverD(x, n, d int) int {
	neg := x < 0
	if neg {
		x = -x
	}
	q, _ := xnOverDRem(x, n, d)
	if neg {
		return -q
	}
	return q
}

// nxPlusY computes n*x+y and reports whether the result exceeds the
// largest dimension.
func nxPlusY(n, x, y int) (int, bool) {
	res := int64(n)*int64(x) + int64(y)
	if res > MaxDimen || res < -MaxDimen {
		return MaxDimen, true
	}
	return int(res), false
}

// FormatDimen converts a dimension given in scaled points into the
// form used by \the, e.g. "1.5pt".
func FormatDimen(s int) string {
	var b strings.Builder
	if s < 0 {
		b.WriteByte('-')
		s = -s
	}
	b.WriteString(strconv.Itoa(s / unity))
	b.WriteByte('.')
	s = 10*(s%unity) + 5
	delta := 10
	for {
		if delta > unity {
			s += 0x8000 - 50000
		}
		b.WriteByte(byte('0' + s/unity))
		s = 10 * (s % unity)
		delta *= 10
		if s <= delta {
			break
		}
	}
	b.WriteString("pt")
	return b.String()
}

// scanCharNum reads a character code.
func (e *Engine) scanCharNum() (rune, error) {
	n, err := e.ScanInt()
	if err != nil {
		return 0, err
	}
	if n < 0 || n > unicode.MaxRune {
		return 0, e.errorf(texerr.Syntax, "bad character code (%d)", n)
	}
	return rune(n), nil
}

// MaxRegister is the largest register number.
const MaxRegister = 32767

func (e *Engine) scanRegisterNum() (int, error) {
	n, err := e.ScanInt()
	if err != nil {
		return 0, err
	}
	if n < 0 || n > MaxRegister {
		return 0, e.errorf(texerr.Syntax, "bad register code (%d)", n)
	}
	return n, nil
}

// scanCSName reads the tokens up to the matching \endcsname and
// returns the control sequence name they form.
func (e *Engine) scanCSName(construct string) (string, error) {
	var b strings.Builder
	for {
		tok, err := e.nextX(construct)
		if err != nil {
			return "", err
		}
		if tok.Kind == token.Character {
			b.WriteRune(tok.Char)
			continue
		}
		m := e.Meaning(tok)
		if !tok.NoExpand && m.Kind == PrimitiveMeaning && m.Prim == e.endcsname {
			return b.String(), nil
		}
		e.In.Unread(tok)
		return "", e.errorf(texerr.Syntax, "missing \\endcsname inserted before %s",
			describeToken(tok))
	}
}

// romanNumeral formats n in lower case roman numerals.  Non-positive
// numbers give the empty string.
func romanNumeral(n int) string {
	const digits = "m2d5c2l5x2v5i"
	var b strings.Builder
	j := 0
	v := 1000
	for {
		for n >= v {
			b.WriteByte(digits[j])
			n -= v
		}
		if n <= 0 {
			return b.String()
		}
		k := j + 2
		u := v / int(digits[k-1]-'0')
		if digits[k-1] == '2' {
			k += 2
			u /= int(digits[k-1] - '0')
		}
		if n+u >= v {
			b.WriteByte(digits[k])
			n += u
		} else {
			j += 2
			v /= int(digits[j-1] - '0')
		}
	}
}
