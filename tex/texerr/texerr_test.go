// texerr_test.go -
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

package texerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(UndefinedControlSequence, "undefined control sequence %s", `\relx`)
	err.Suggestions = []string{`\relax`}
	err.At([]Frame{
		{Name: "inner.tex", Line: 3, Col: 7, Context: "abc"},
		{Name: "main.tex", Line: 1},
	})
	expected := "undefined control sequence \\relx (did you mean \\relax?)" +
		"\n    inner.tex, line 3, column 7, before \"abc\"" +
		", included from\n    main.tex, line 1"
	assert.Equal(t, expected, err.Error())

	// At does not overwrite an existing position
	err.At([]Frame{{Name: "other.tex"}})
	assert.Equal(t, "inner.tex", err.Stack[0].Name)
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", EndOfInput(`argument of \foo`))
	assert.True(t, errors.Is(err, ErrUnexpectedEndOfInput))
	assert.False(t, errors.Is(err, ErrRunawayArgument))

	var tErr *Error
	assert.True(t, errors.As(err, &tErr))
	assert.Equal(t, `argument of \foo`, tErr.Construct)
	assert.Equal(t, "unexpected end of input while scanning argument of \\foo", tErr.Message)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "runaway argument", RunawayArgument.String())
	assert.Equal(t, "error kind 99", Kind(99).String())
	assert.Equal(t, "syntax error", (&Error{Kind: Syntax}).Error())
}
