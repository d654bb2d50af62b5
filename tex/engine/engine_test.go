// engine_test.go -
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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seehuhn/texcore/tex/catcode"
	"github.com/seehuhn/texcore/tex/input"
	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
)

func newTestEngine(opts *Options) *Engine {
	e := New(opts)
	for c, cat := range catcode.Plain() {
		e.Ctx.SetCatcode(c, cat, true)
	}
	e.Ctx.SetInt("endlinechar", -1, true)
	return e
}

func runString(e *Engine, text string) (string, error) {
	e.In.PushString(text, "test")
	var out token.List
	err := e.Run(func(tok token.Token) error {
		out = append(out, tok)
		return nil
	})
	return out.String(), err
}

func TestExpansion(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{`\iffalse a\else b\fi`, "b"},
		{`\iffalse abc\fi X`, "X"},
		{`\iftrue a\else b\fi`, "a"},
		{`\iftrue\iftrue x\fi\the\currentiflevel\fi\the\currentiflevel`, "x10"},
		{`\iffalse \iftrue a\else b\fi c\else d\fi`, "d"},
		{`{{\the\currentgrouplevel}}\the\currentgrouplevel`, "20"},
		{`\begingroup\the\currentgrouptype\endgroup{\the\currentgrouptype}`, "141"},
		{`\def\x{X}{\aftergroup\x abc}def`, "abcXdef"},
		{`\def\x{X}\def\y{Y}{\aftergroup\x\aftergroup\y a}b`, "aXYb"},
		{`\def\a#1#2{(#2,#1)}\a x {yz}`, "(yz,x)"},
		{`\def\a#1.#2\end{[#2|#1]}\a{x}.y\end`, "[y|x]"},
		{`\def\a#1.#2\end{[#2|#1]}\a x.{y}z\end`, "[yz|x]"},
		{`\def\a#1#{[#1]}\a xy{z}`, "[xy]z"},
		{`\long\def\a#1{x}\a\par`, "x"},
		{`\def\a#1\par{(#1)}\a xy\par`, "(xy)"},
		{`\def\a{##}\meaning\a`, "macro:->##"},
		{`\ifcase 2 a\or b\or c\else d\fi`, "c"},
		{`\ifcase 5 a\or b\else d\fi`, "d"},
		{`\ifcase 0 a\or b\fi`, "a"},
		{`\def\a{x}\def\b{x}\ifx\a\b T\else F\fi`, "T"},
		{`\def\a{x}\let\c=\a\ifx\c\a T\else F\fi`, "T"},
		{`\def\a{x}\def\b{y}\ifx\a\b T\else F\fi`, "F"},
		{`\unless\ifx abT\fi`, "T"},
		{`\if aaT\fi`, "T"},
		{`\ifcat a1 T\else F\fi`, "F"},
		{`\ifodd 3 T\fi`, "T"},
		{`\ifdefined\relax T\fi\ifdefined\undefined\else F\fi`, "TF"},
		{`\ifcsname relax\endcsname T\fi\ifcsname nothing\endcsname\else F\fi`, "TF"},
		{`\ifnum 1=1\fi T\the\currentiflevel`, "T0"},
		{`\ifnum 3<\count0 F\else T\fi`, "T"},
		{`\def\check{\ifx\next aA\else B\fi}\futurelet\next\check a`, "Aa"},
		{`\catcode` + "`" + `\@=11 \def\a@b{Y}\a@b`, "Y"},
		{`{\global\def\a{G}}\a`, "G"},
		{`\let\bgroup={\bgroup\the\currentgrouplevel}`, "1"},
		{`\def\a{A}\def\b{\a}\edef\c{\b\noexpand\a}\meaning\c`, `macro:->A\a `},
		{`\protected\def\p{P}\edef\c{\p}\meaning\c`, `macro:->\p `},
		{`\expandafter\def\csname my macro\endcsname{M}\csname my macro\endcsname`, "M"},
		{`\def\a{A}\def\b{\a}\expandafter\def\expandafter\c\expandafter{\b}\meaning\c`, `macro:->\a `},
		{`\meaning\relax`, `\relax`},
		{`\meaning a`, "the letter a"},
		{`\meaning\undefined`, "undefined"},
		{`\string\foo`, `\foo`},
		{`\escapechar=-1 \string\foo`, "foo"},
		{`\number 007`, "7"},
		{`\number -"1F`, "-31"},
		{`\number '17`, "15"},
		{"\\number`a", "97"},
		{"\\number`\\a", "97"},
		{`\romannumeral 1984`, "mcmlxxxiv"},
		{`\romannumeral 0`, ""},
		{`\count1=42 \the\count1`, "42"},
		{`\count1=5 \advance\count1 by 7 \multiply\count1 2 \divide\count1 3 \the\count1`, "8"},
		{`\count1=5 {\count1=7 }\the\count1`, "5"},
		{`\count1=5 {\global\count1=7 }\the\count1`, "7"},
		{`\dimen0=1.5pt \the\dimen0`, "1.5pt"},
		{`\dimen0=-.5pt \the\dimen0`, "-0.5pt"},
		{`\dimen0=1in \the\dimen0`, "72.26999pt"},
		{`\dimen0=12pt \dimen1=.5\dimen0 \the\dimen1`, "6.0pt"},
		{`\dimen0=3sp \the\dimen0`, "0.00005pt"},
		{`\dimen0=1pc \advance\dimen0 by 1pt \the\dimen0`, "13.0pt"},
		{`\ifdim 1pt<2pt T\else F\fi`, "T"},
		{`\ifdim 1in<72.27pt T\else F\fi`, "T"},
		{`\endlinechar=65 \the\endlinechar`, "65"},
		{`\batchmode\the\interactionmode`, "0"},
		{`\interactionmode=2 \the\interactionmode`, "2"},
		{`\the\catcode` + "`" + `\{`, "1"},
		{`A\endinput B` + "\nC", "AB"},
	}
	for _, test := range cases {
		e := newTestEngine(nil)
		out, err := runString(e, test.in)
		if assert.NoError(t, err, test.in) {
			assert.Equal(t, test.out, out, test.in)
		}
		assert.Equal(t, 0, e.Ctx.Level(), test.in)
		assert.Equal(t, 0, e.IfLevel(), test.in)
	}
}

func TestErrors(t *testing.T) {
	cases := []struct {
		in   string
		kind *texerr.Error
	}{
		{`\fi`, texerr.ErrUnbalancedGroup},
		{`\else`, texerr.ErrUnbalancedGroup},
		{`\or`, texerr.ErrUnbalancedGroup},
		{`\ifnum x\fi`, texerr.ErrSyntax},
		{`\ifcase\fi`, texerr.ErrSyntax},
		{`\iffalse\else\else\fi`, texerr.ErrUnbalancedGroup},
		{`}`, texerr.ErrUnbalancedGroup},
		{`{\endgroup}`, texerr.ErrUnbalancedGroup},
		{`\iffalse abc`, texerr.ErrRunawayConditional},
		{`\iftrue abc`, texerr.ErrUnexpectedEndOfInput},
		{`{abc`, texerr.ErrUnexpectedEndOfInput},
		{`\def\a#1{x}\a\par`, texerr.ErrRunawayArgument},
		{`\def\a#1{x}\a{abc`, texerr.ErrRunawayArgument},
		{`\def\a.#1{}\a x`, texerr.ErrSyntax},
		{`\def\a#2{}`, texerr.ErrSyntax},
		{`\def\a{#1}`, texerr.ErrSyntax},
		{`\def\a{abc`, texerr.ErrUnexpectedEndOfInput},
		{`\long\count0=1`, texerr.ErrSyntax},
		{`\global a`, texerr.ErrSyntax},
		{`\count0=x`, texerr.ErrSyntax},
		{`\catcode 65=16`, texerr.ErrSyntax},
		{`\dimen0=1zz`, texerr.ErrSyntax},
		{`\dimen0=1em`, texerr.ErrSyntax},
		{`\dimen0=20000pt`, texerr.ErrSyntax},
		{`\count0=1 \divide\count0 0`, texerr.ErrSyntax},
		{`\the a`, texerr.ErrSyntax},
		{`\currentgrouplevel`, texerr.ErrSyntax},
		{`\endcsname`, texerr.ErrSyntax},
		{`\relx`, texerr.ErrUndefinedControlSequence},
		{`\outer\def\a{}\def\b{\a}`, texerr.ErrForbidden},
		{`\outer\def\a{}\iffalse\a\fi`, texerr.ErrForbidden},
		{`\number 99999999999`, texerr.ErrSyntax},
	}
	for _, test := range cases {
		e := newTestEngine(nil)
		_, err := runString(e, test.in)
		assert.True(t, errors.Is(err, test.kind),
			"%s: expected %s, got %v", test.in, test.kind.Kind, err)
	}
}

func TestRunawayArgumentConstruct(t *testing.T) {
	e := newTestEngine(nil)
	_, err := runString(e, `\def\foo#1{x}\foo\par`)
	var tErr *texerr.Error
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, texerr.RunawayArgument, tErr.Kind)
	assert.Equal(t, `argument of \foo`, tErr.Construct)
}

func TestSuggestions(t *testing.T) {
	e := newTestEngine(nil)
	_, err := runString(e, `\relx`)
	var tErr *texerr.Error
	require.True(t, errors.As(err, &tErr))
	assert.Contains(t, tErr.Suggestions, `\relax`)
}

func TestPassUndefined(t *testing.T) {
	e := newTestEngine(&Options{PassUndefined: true})
	out, err := runString(e, `a\foo b`)
	require.NoError(t, err)
	assert.Equal(t, `a\foo b`, out)
}

func TestContinueAfterError(t *testing.T) {
	cases := []struct {
		in     string
		out    string
		errors int
	}{
		{`a\fi b`, "ab", 1},
		{`\ifnum x\fi y`, "y", 1},
		{`\ifnum 1<x\else z\fi y`, "zy", 1},
		{`\ifcase\fi y`, "y", 1},
		{`\ifcase x\or a\else b\fi y`, "xy", 1},
	}
	for _, test := range cases {
		e := newTestEngine(nil)
		e.In.PushString(test.in, "test")
		var out token.List
		emit := func(tok token.Token) error {
			out = append(out, tok)
			return nil
		}
		errs := 0
		for i := 0; ; i++ {
			require.Less(t, i, 10, "%s: no progress after error", test.in)
			err := e.Run(emit)
			if err == nil {
				break
			}
			var tErr *texerr.Error
			require.True(t, errors.As(err, &tErr), "%s: %v", test.in, err)
			errs++
		}
		assert.Equal(t, test.errors, errs, test.in)
		assert.Equal(t, test.out, out.String(), test.in)
		assert.Equal(t, 0, e.IfLevel(), test.in)
	}
}

func TestUnclosedGroupIsReportedOnce(t *testing.T) {
	e := newTestEngine(nil)
	_, err := runString(e, `{{a`)
	require.True(t, errors.Is(err, texerr.ErrUnexpectedEndOfInput))
	assert.Equal(t, 0, e.Ctx.Level())
	assert.NoError(t, e.Run(func(token.Token) error { return nil }))
}

func TestExpansionLimit(t *testing.T) {
	e := newTestEngine(&Options{MaxExpansions: 1000})
	_, err := runString(e, `\def\a{\a}\a`)
	assert.True(t, errors.Is(err, texerr.ErrRecursionLimitExceeded), "got %v", err)

	e = newTestEngine(&Options{MaxInputDepth: 100})
	_, err = runString(e, `\def\a{\a x}\a`)
	assert.True(t, errors.Is(err, texerr.ErrRecursionLimitExceeded), "got %v", err)

	e = newTestEngine(&Options{MaxNesting: 20})
	_, err = runString(e, `\def\a{\ifnum\a}\a`)
	assert.True(t, errors.Is(err, texerr.ErrRecursionLimitExceeded), "got %v", err)
}

func TestExpandNextIdempotentOnChars(t *testing.T) {
	e := newTestEngine(nil)
	e.In.PushString("xy", "test")
	tok, err := e.ExpandNext()
	require.NoError(t, err)
	e.In.Unread(tok)
	again, err := e.ExpandNext()
	require.NoError(t, err)
	assert.Equal(t, tok, again)
	assert.Equal(t, token.Char(catcode.Letter, 'x'), tok)
}

func TestExpandNextMacro(t *testing.T) {
	e := newTestEngine(nil)
	e.Define(token.CS("a"), Meaning{Kind: MacroMeaning, Macro: &Macro{
		Body: token.List{token.Char(catcode.Letter, 'b'), token.CS("relax")},
	}}, false)
	e.In.PushString(`\a`, "test")

	tok, err := e.ExpandNext()
	require.NoError(t, err)
	assert.Equal(t, token.Char(catcode.Letter, 'b'), tok)
	tok, err = e.ExpandNext()
	require.NoError(t, err)
	assert.Equal(t, token.CS("relax"), tok)
	_, err = e.ExpandNext()
	assert.ErrorIs(t, err, input.ErrEndOfInput)
}

func TestGroupsRestoreState(t *testing.T) {
	e := newTestEngine(nil)
	before := e.Ctx.Fingerprint()
	_, err := runString(e,
		"{\\count1=7 \\def\\a{x}\\catcode`\\@=11 \\dimen3=1pt {\\let\\b=\\a}}")
	require.NoError(t, err)
	assert.Equal(t, before, e.Ctx.Fingerprint())
}

func TestInputFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "defs.tex"), []byte(`\def\fromfile{F}`+"\n"), 0o644)
	require.NoError(t, err)

	e := newTestEngine(nil)
	e.In.BaseDir = dir
	out, err := runString(e, `\input{defs}\fromfile`)
	require.NoError(t, err)
	assert.Equal(t, "F", out)

	e = newTestEngine(nil)
	e.In.BaseDir = dir
	_, err = runString(e, `\input{missing}`)
	assert.Error(t, err)
}

func TestScanBox(t *testing.T) {
	e := newTestEngine(nil)
	e.Register("box", &Primitive{Box: func(e *Engine) (any, error) {
		n, err := e.ScanInt()
		return n, err
	}})
	e.In.PushString(`\relax \box 7`, "test")
	box, err := e.ScanBox()
	require.NoError(t, err)
	assert.Equal(t, 7, box)

	e.In.PushString(`x`, "test")
	_, err = e.ScanBox()
	assert.True(t, errors.Is(err, texerr.ErrSyntax))
}

func TestPrimitiveKinds(t *testing.T) {
	e := newTestEngine(nil)
	kinds := map[string]Kind{
		"par":               Passive,
		"relax":             Command,
		"def":               Command,
		"global":            PrefixModifying,
		"ifx":               Conditional,
		"ifcase":            Conditional,
		"fi":                Expandable,
		"expandafter":       Expandable,
		"currentgrouplevel": Internal,
	}
	for name, kind := range kinds {
		m := e.Meaning(token.CS(name))
		require.Equal(t, PrimitiveMeaning, m.Kind, name)
		assert.Equal(t, kind, m.Prim.Kind(), name)
	}
}

func TestFormatDimen(t *testing.T) {
	cases := map[int]string{
		0:          "0.0pt",
		unity:      "1.0pt",
		-unity / 2: "-0.5pt",
		1:          "0.00002pt",
		MaxDimen:   "16383.99998pt",
	}
	for sp, want := range cases {
		assert.Equal(t, want, FormatDimen(sp), "%d", sp)
	}
}
