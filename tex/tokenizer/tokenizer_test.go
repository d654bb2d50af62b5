// tokenizer_test.go -
// Copyright (C) 2016, 2026  Jochen Voss <voss@seehuhn.de>
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

package tokenizer

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/seehuhn/texcore/tex/catcode"
	"github.com/seehuhn/texcore/tex/scanner"
	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
)

type testEnv struct {
	codes map[rune]catcode.Catcode
	elc   int
}

func newTestEnv() *testEnv {
	return &testEnv{
		codes: catcode.Plain(),
		elc:   '\r',
	}
}

func (env *testEnv) Catcode(r rune) catcode.Catcode {
	if c, ok := env.codes[r]; ok {
		return c
	}
	return catcode.Initial(r)
}

func (env *testEnv) EndLineChar() int {
	return env.elc
}

func tokenize(t *testing.T, env *testEnv, in string) token.List {
	t.Helper()
	tok := New(scanner.FromString(in, "test"), env)
	var res token.List
	for {
		next, err := tok.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
		res = append(res, next)
	}
	return res
}

func letters(s string) token.List {
	var res token.List
	for _, c := range s {
		res = append(res, token.Char(catcode.Letter, c))
	}
	return res
}

func TestControlSequenceNames(t *testing.T) {
	testCases := []struct {
		in  string
		out token.List
	}{
		{`\test`, token.List{token.CS("test")}},
		{`\test o`, append(token.List{token.CS("test")}, letters("o")...)},
		{`\test4`, token.List{token.CS("test"), token.Char(catcode.Other, '4')}},
		{`\2t`, append(token.List{token.CS("2")}, letters("t")...)},
		{`\{}`, token.List{token.CS("{"), token.Char(catcode.EndGroup, '}')}},
		{`\. a`, token.List{token.CS("."), token.Space, token.Char(catcode.Letter, 'a')}},
		{`\% x`, token.List{token.CS("%"), token.Space, token.Char(catcode.Letter, 'x')}},
		{`\  a`, append(token.List{token.CS(" ")}, letters("a")...)},
		{`\`, token.List{token.CS("")}},
		{`\^^41bc`, token.List{token.CS("Abc")}},
		{`\a^^62c`, token.List{token.CS("abc")}},
	}
	for i, testCase := range testCases {
		env := newTestEnv()
		env.elc = -1
		got := tokenize(t, env, testCase.in)
		if d := cmp.Diff(testCase.out, got); d != "" {
			t.Errorf("test %d (%q): wrong tokens (-want +got):\n%s", i, testCase.in, d)
		}
	}
}

func TestLineStates(t *testing.T) {
	space := token.Space
	par := ParToken
	testCases := []struct {
		in  string
		out token.List
	}{
		{"a  b", token.List{letters("a")[0], space, letters("b")[0], space}},
		{"  a", token.List{letters("a")[0], space}},
		{"\\%\nx", token.List{token.CS("%"), space, letters("x")[0], space}},
		{"\\relax\nx", token.List{token.CS("relax"), letters("x")[0], space}},
		{"a   \n", token.List{letters("a")[0], space}},
		{"a\n\nb", token.List{letters("a")[0], space, par, letters("b")[0], space}},
		{"\\x  \n", token.List{token.CS("x")}},
		{"a% comment\nb", token.List{letters("a")[0], letters("b")[0], space}},
		{"a\n   \nb", token.List{letters("a")[0], space, par, letters("b")[0], space}},
	}
	for i, testCase := range testCases {
		got := tokenize(t, newTestEnv(), testCase.in)
		if d := cmp.Diff(testCase.out, got); d != "" {
			t.Errorf("test %d (%q): wrong tokens (-want +got):\n%s", i, testCase.in, d)
		}
	}
}

func TestActiveAndSpecial(t *testing.T) {
	got := tokenize(t, newTestEnv(), "~{#}^^I$")
	expected := token.List{
		token.ActiveChar('~'),
		token.Char(catcode.BeginGroup, '{'),
		token.Char(catcode.Parameter, '#'),
		token.Char(catcode.EndGroup, '}'),
		token.Space,
		token.Char(catcode.MathShift, '$'),
		token.Space,
	}
	if d := cmp.Diff(expected, got); d != "" {
		t.Errorf("wrong tokens (-want +got):\n%s", d)
	}
}

func TestCatcodeChangeTakesEffect(t *testing.T) {
	env := newTestEnv()
	env.elc = -1
	tok := New(scanner.FromString("@@", "test"), env)

	first, err := tok.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(token.Char(catcode.Other, '@')) {
		t.Errorf("wrong first token %v", first)
	}

	env.codes['@'] = catcode.Letter
	second, err := tok.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !second.Equal(token.Char(catcode.Letter, '@')) {
		t.Errorf("catcode change ignored, got %#v", second)
	}
}

func TestInvalidCharacter(t *testing.T) {
	env := newTestEnv()
	env.codes['!'] = catcode.Invalid
	tok := New(scanner.FromString("ab\ncd!ef", "input.tex"), env)

	var err error
	for err == nil {
		_, err = tok.Next()
	}
	if !errors.Is(err, texerr.ErrLexical) {
		t.Fatalf("expected lexical error, got %v", err)
	}
	tErr := err.(*texerr.Error)
	if len(tErr.Stack) != 1 {
		t.Fatalf("missing position in %q", err)
	}
	pos := tErr.Stack[0]
	if pos.Name != "input.tex" || pos.Line != 2 || pos.Col != 3 {
		t.Errorf("wrong position %v", pos)
	}

	_, err = tok.Next()
	if err != io.EOF {
		t.Errorf("tokenizer continued after lexical error: %v", err)
	}
}
