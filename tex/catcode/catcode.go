// catcode.go -
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

// Package catcode implements TeX's character categories.
package catcode

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Catcode is the lexical category of a character.
type Catcode uint8

// The sixteen categories known to TeX.
const (
	Escape      Catcode = 0
	BeginGroup  Catcode = 1
	EndGroup    Catcode = 2
	MathShift   Catcode = 3
	Alignment   Catcode = 4
	EndOfLine   Catcode = 5
	Parameter   Catcode = 6
	Superscript Catcode = 7
	Subscript   Catcode = 8
	Ignored     Catcode = 9
	Space       Catcode = 10
	Letter      Catcode = 11
	Other       Catcode = 12
	Active      Catcode = 13
	Comment     Catcode = 14
	Invalid     Catcode = 15
)

// Max is the largest valid category code.
const Max = Invalid

var names = [...]string{
	"escape",
	"begingroup",
	"endgroup",
	"mathshift",
	"alignment",
	"endofline",
	"parameter",
	"superscript",
	"subscript",
	"ignored",
	"space",
	"letter",
	"other",
	"active",
	"comment",
	"invalid",
}

func (c Catcode) String() string {
	if int(c) < len(names) {
		return names[c]
	}
	return "catcode" + strconv.Itoa(int(c))
}

// Valid reports whether c is one of the sixteen categories.
func (c Catcode) Valid() bool {
	return c <= Max
}

// Parse converts a category name or number into a Catcode.
func Parse(s string) (Catcode, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > int(Max) {
			return 0, fmt.Errorf("invalid catcode %d", n)
		}
		return Catcode(n), nil
	}
	key := strings.ToLower(strings.ReplaceAll(s, "-", ""))
	for i, name := range names {
		if name == key {
			return Catcode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown catcode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Catcode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Catcode) UnmarshalText(text []byte) error {
	val, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = val
	return nil
}

// Lookup gives access to the catcode of characters.
type Lookup interface {
	Catcode(r rune) Catcode
}

// Initial returns the category a character has when TeX starts, before
// any format is loaded.  Letters outside of ASCII are treated as
// letters, too.
func Initial(r rune) Catcode {
	switch {
	case r == '\\':
		return Escape
	case r == '%':
		return Comment
	case r == 0:
		return Ignored
	case r == '\r':
		return EndOfLine
	case r == ' ':
		return Space
	case r == 127:
		return Invalid
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return Letter
	case r > 127 && unicode.IsLetter(r):
		return Letter
	}
	return Other
}

// Plain returns the assignments made by plain.tex on top of the
// initial values.
func Plain() map[rune]Catcode {
	return map[rune]Catcode{
		'{':  BeginGroup,
		'}':  EndGroup,
		'$':  MathShift,
		'&':  Alignment,
		'#':  Parameter,
		'^':  Superscript,
		'_':  Subscript,
		'\t': Space,
		'~':  Active,
		'\f': Active,
		'\v': Superscript,
		0x01: Subscript,
	}
}

// Preset returns the assignments of the named preset, which is either
// "initex" or "plain".
func Preset(name string) (map[rune]Catcode, error) {
	switch strings.ToLower(name) {
	case "", "plain":
		return Plain(), nil
	case "initex":
		return map[rune]Catcode{}, nil
	}
	return nil, fmt.Errorf("unknown catcode preset %q", name)
}
