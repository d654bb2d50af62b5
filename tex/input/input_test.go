// input_test.go -
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

package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seehuhn/texcore/tex/catcode"
	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
)

type plainEnv struct{}

func (plainEnv) Catcode(r rune) catcode.Catcode {
	if c, ok := catcode.Plain()[r]; ok {
		return c
	}
	return catcode.Initial(r)
}

func (plainEnv) EndLineChar() int { return -1 }

func readAll(t *testing.T, in *Stack) string {
	t.Helper()
	var res token.List
	for {
		tok, err := in.Next()
		if err == ErrEndOfInput {
			break
		}
		require.NoError(t, err)
		res = append(res, tok)
	}
	return res.String()
}

func TestStackOrder(t *testing.T) {
	in := New(plainEnv{})
	in.PushString("end", "level1")
	in.PushString("begin", "level2")

	tok, err := in.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", tok.String())

	err = in.PushBack(token.FromString("XY"), "macro")
	require.NoError(t, err)
	in.Unread(tok)

	assert.Equal(t, "bXYeginend", readAll(t, in))
	_, err = in.Next()
	assert.Equal(t, ErrEndOfInput, err)
}

func TestPeek(t *testing.T) {
	in := New(plainEnv{})
	in.PushString("ab", "test")
	tok, err := in.Peek()
	require.NoError(t, err)
	assert.Equal(t, "a", tok.String())
	assert.Equal(t, "ab", readAll(t, in))
}

func TestDepthLimit(t *testing.T) {
	in := New(plainEnv{})
	in.MaxDepth = 10
	var err error
	for i := 0; i < 20 && err == nil; i++ {
		// leave one token unread on every level
		err = in.PushBack(token.FromString("ab"), "loop")
		if err == nil {
			_, err = in.Next()
		}
	}
	require.Error(t, err)
	assert.True(t, errors.Is(err, texerr.ErrRecursionLimitExceeded))
}

func TestExhaustedListsAreDropped(t *testing.T) {
	in := New(plainEnv{})
	in.MaxDepth = 3
	for i := 0; i < 100; i++ {
		require.NoError(t, in.PushBack(token.FromString("a"), "tail"))
		_, err := in.Next()
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, in.Depth(), 1)
}

func TestIncludeFrames(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "inner.tex"), []byte("x\n\x7f"), 0644)
	require.NoError(t, err)

	in := New(plainEnv{})
	in.PushString("outer text", "outer")
	require.NoError(t, in.Include(filepath.Join(dir, "inner.tex")))
	assert.Equal(t, dir, in.BaseDir)
	assert.Equal(t, []string{filepath.Join(dir, "inner.tex")}, in.Files())

	for err == nil {
		_, err = in.Next()
	}
	require.True(t, errors.Is(err, texerr.ErrLexical), "got %v", err)
	tErr := err.(*texerr.Error)
	require.Len(t, tErr.Stack, 2)
	assert.Equal(t, "inner.tex", tErr.Stack[0].Name)
	assert.Equal(t, 2, tErr.Stack[0].Line)
	assert.Equal(t, "outer", tErr.Stack[1].Name)
	assert.True(t, strings.Contains(err.Error(), "included from"))

	// the broken file is abandoned, the outer input continues
	assert.Equal(t, "outer text", readAll(t, in))
}
