// token_test.go -
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

package token

import (
	"testing"

	"github.com/seehuhn/texcore/tex/catcode"
)

func TestEqual(t *testing.T) {
	a1 := Char(catcode.Letter, 'a')
	a2 := Char(catcode.Letter, 'a')
	aOther := Char(catcode.Other, 'a')
	if !a1.Equal(a2) {
		t.Error("equal character tokens compare unequal")
	}
	if a1.Equal(aOther) {
		t.Error("catcode ignored in comparison")
	}

	cs := CS("relax")
	marked := cs
	marked.NoExpand = true
	if !cs.Equal(marked) {
		t.Error("NoExpand mark affects equality")
	}
	if cs.Equal(ActiveChar('r')) {
		t.Error("control sequence equals active character")
	}
}

func TestFormat(t *testing.T) {
	testCases := []struct {
		in  List
		out string
	}{
		{List{CS("foo"), Char(catcode.Letter, 'x')}, `\foo x`},
		{List{CS(","), Char(catcode.Letter, 'x')}, `\,x`},
		{List{CS("")}, `\csname\endcsname `},
		{List{Param(1), Char(catcode.Parameter, '#')}, `#1##`},
		{List{ActiveChar('~'), Space}, `~ `},
		{FromString("1 2"), `1 2`},
	}
	for i, testCase := range testCases {
		got := testCase.in.Format('\\')
		if got != testCase.out {
			t.Errorf("test %d: expected %q, got %q", i, testCase.out, got)
		}
	}

	got := List{CS("foo")}.Format(-1)
	if got != "foo " {
		t.Errorf("escape -1: got %q", got)
	}
}
