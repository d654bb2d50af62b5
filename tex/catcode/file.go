// file.go - catcode tables in YAML format
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

package catcode

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// File is the YAML representation of a catcode table.  Base names a
// preset, Codes lists the characters which differ from the preset.
//
// Characters are written either literally, as "U+hhhh", or in TeX's
// "^^" notation.
type File struct {
	Base  string             `yaml:"base"`
	Codes map[string]Catcode `yaml:"codes,omitempty"`
}

// Table returns the complete list of assignments described by the
// file, preset included.
func (f *File) Table() (map[rune]Catcode, error) {
	res, err := Preset(f.Base)
	if err != nil {
		return nil, err
	}
	for key, code := range f.Codes {
		r, err := ParseChar(key)
		if err != nil {
			return nil, err
		}
		if !code.Valid() {
			return nil, fmt.Errorf("character %q: invalid catcode %d", key, code)
		}
		res[r] = code
	}
	return res, nil
}

// Load reads a catcode table in YAML format.
func Load(r io.Reader) (*File, error) {
	f := &File{}
	dec := yaml.NewDecoder(r)
	err := dec.Decode(f)
	if err == io.EOF {
		return f, nil
	} else if err != nil {
		return nil, fmt.Errorf("catcode table: %w", err)
	}
	return f, nil
}

// Dump writes the given preset together with the extra assignments
// in YAML format.
func Dump(w io.Writer, base string, codes map[rune]Catcode) error {
	f := &File{
		Base:  base,
		Codes: make(map[string]Catcode, len(codes)),
	}
	for r, code := range codes {
		f.Codes[FormatChar(r)] = code
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(f)
	if err != nil {
		return err
	}
	return enc.Close()
}

// ParseChar converts the textual form of a character, as used in
// catcode files, into a rune.
func ParseChar(s string) (rune, error) {
	switch {
	case utf8.RuneCountInString(s) == 1:
		r, _ := utf8.DecodeRuneInString(s)
		return r, nil
	case strings.HasPrefix(s, "U+") || strings.HasPrefix(s, "u+"):
		n, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil || n > unicode.MaxRune {
			return 0, fmt.Errorf("invalid character %q", s)
		}
		return rune(n), nil
	case len(s) == 4 && strings.HasPrefix(s, "^^"):
		n, err := strconv.ParseUint(s[2:], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid character %q", s)
		}
		return rune(n), nil
	case len(s) == 3 && strings.HasPrefix(s, "^^"):
		c := rune(s[2])
		if c < 64 {
			return c + 64, nil
		}
		return c - 64, nil
	}
	return 0, fmt.Errorf("invalid character %q", s)
}

// FormatChar is the inverse of ParseChar.
func FormatChar(r rune) string {
	if unicode.IsPrint(r) && r != ' ' {
		return string(r)
	}
	return fmt.Sprintf("U+%04X", r)
}

// SortedChars returns the keys of a table in increasing order.
func SortedChars(codes map[rune]Catcode) []rune {
	res := make([]rune, 0, len(codes))
	for r := range codes {
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
