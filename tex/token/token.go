// token.go -
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

// Package token defines the tokens produced by the tokenizer and
// consumed by the expansion engine.
package token

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/seehuhn/texcore/tex/catcode"
)

// Kind is used to enumerate different types of token.
type Kind uint8

// The different token kinds used by this package.
const (
	Character Kind = iota
	ControlSequence
	Active
	Parameter
)

// Token contains information about a single syntactic unit in the TeX
// source.  Tokens are values; two tokens are the same if all fields
// apart from NoExpand agree.
type Token struct {
	// Kind describes which kind of token this is.
	Kind Kind

	// For Character tokens, Cat and Char give the category code and
	// the character.  For Active tokens only Char is used.
	Cat  catcode.Catcode
	Char rune

	// For ControlSequence tokens this is the name of the control
	// sequence, without the escape character.
	Name string

	// For Parameter tokens this is the parameter number, 1 to 9.
	// Parameter tokens only occur inside macro definitions.
	Index int

	// NoExpand is set by \noexpand.  The token is treated as
	// unexpandable the next time it is read.
	NoExpand bool
}

// Char returns a character token.
func Char(cat catcode.Catcode, c rune) Token {
	return Token{Kind: Character, Cat: cat, Char: c}
}

// CS returns a control sequence token.
func CS(name string) Token {
	return Token{Kind: ControlSequence, Name: name}
}

// ActiveChar returns the token for an active character.
func ActiveChar(c rune) Token {
	return Token{Kind: Active, Char: c}
}

// Param returns a parameter marker.
func Param(idx int) Token {
	return Token{Kind: Parameter, Index: idx}
}

// Space is the space token generated by the tokenizer.
var Space = Char(catcode.Space, ' ')

// Equal reports whether two tokens are the same, ignoring the
// NoExpand mark.
func (tok Token) Equal(other Token) bool {
	tok.NoExpand = false
	other.NoExpand = false
	return tok == other
}

// Plain returns a copy of the token without the NoExpand mark.
func (tok Token) Plain() Token {
	tok.NoExpand = false
	return tok
}

// IsCS reports whether the token is a control sequence or an active
// character, i.e. whether it has a meaning.
func (tok Token) IsCS() bool {
	return tok.Kind == ControlSequence || tok.Kind == Active
}

// IsCat reports whether tok is a character token of category cat.
func (tok Token) IsCat(cat catcode.Catcode) bool {
	return tok.Kind == Character && tok.Cat == cat
}

// IsSpace reports whether tok is a space token.
func (tok Token) IsSpace() bool {
	return tok.IsCat(catcode.Space)
}

// IsOther reports whether tok is the given character with category
// letter or other.  Keywords and relations are matched this way.
func (tok Token) IsOther(c rune) bool {
	return tok.Kind == Character && tok.Char == c &&
		(tok.Cat == catcode.Other || tok.Cat == catcode.Letter)
}

func (tok Token) String() string {
	return List{tok}.Format('\\')
}

// List is a sequence of tokens.
type List []Token

// Equal reports whether two lists contain the same tokens.
func (toks List) Equal(other List) bool {
	if len(toks) != len(other) {
		return false
	}
	for i := range toks {
		if !toks[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Format converts the token list into text, in the way TeX shows token
// lists in diagnostic output.  Control words are followed by a space.
// If escape is negative, control sequences are printed without an
// escape character.
func (toks List) Format(escape rune) string {
	var res []string
	for _, tok := range toks {
		switch tok.Kind {
		case ControlSequence:
			res = append(res, FormatName(tok.Name, escape))
		case Active:
			res = append(res, string(tok.Char))
		case Parameter:
			res = append(res, "#"+strconv.Itoa(tok.Index))
		case Character:
			if tok.Cat == catcode.Parameter {
				res = append(res, string(tok.Char)+string(tok.Char))
			} else {
				res = append(res, string(tok.Char))
			}
		default:
			panic("invalid token type " + strconv.Itoa(int(tok.Kind)))
		}
	}
	return strings.Join(res, "")
}

func (toks List) String() string {
	return toks.Format('\\')
}

// FormatName returns the printed form of a control sequence name.
func FormatName(name string, escape rune) string {
	var pfx string
	if escape >= 0 {
		pfx = string(escape)
	}
	switch {
	case name == "":
		return pfx + "csname" + pfx + "endcsname "
	case isWord(name):
		return pfx + name + " "
	default:
		return pfx + name
	}
}

func isWord(name string) bool {
	for _, c := range name {
		if !unicode.IsLetter(c) {
			return false
		}
	}
	return true
}

// FromString converts text into character tokens, the way \string
// and \the do: spaces get category space, everything else category
// other.
func FromString(s string) List {
	res := make(List, 0, len(s))
	for _, c := range s {
		if c == ' ' {
			res = append(res, Space)
		} else {
			res = append(res, Char(catcode.Other, c))
		}
	}
	return res
}
