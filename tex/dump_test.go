// dump_test.go -
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

package tex

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seehuhn/texcore/tex/cache"
	"github.com/seehuhn/texcore/tex/catcode"
	"github.com/seehuhn/texcore/tex/token"
)

func TestDumpRoundTrip(t *testing.T) {
	toks := token.List{
		token.Char(catcode.Letter, 'a'),
		token.Space,
		token.CS("par"),
		token.CS(""),
		token.ActiveChar('~'),
		token.Char(catcode.Other, 'ä'),
		token.Char(catcode.MathShift, '$'),
	}
	files := []FileSum{{Name: "a.tex", Sum: "xyz"}}

	buf := &bytes.Buffer{}
	dw, err := NewDumpWriter(buf)
	require.NoError(t, err)
	for _, tok := range toks {
		require.NoError(t, dw.WriteToken(tok))
	}
	assert.Equal(t, len(toks), dw.Count())
	require.NoError(t, dw.Close(files))

	d, err := ReadDump(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, toks.Equal(d.Tokens), "got %s", d.Tokens)
	assert.Equal(t, files, d.Files)
}

func TestBadDumps(t *testing.T) {
	buf := &bytes.Buffer{}
	dw, err := NewDumpWriter(buf)
	require.NoError(t, err)
	require.NoError(t, dw.WriteToken(token.CS("x")))
	truncated := bytes.Clone(buf.Bytes())
	require.NoError(t, dw.Close(nil))
	complete := buf.Bytes()

	cases := map[string][]byte{
		"empty":     nil,
		"garbage":   []byte("hello"),
		"truncated": truncated,
		"extra":     append(bytes.Clone(complete), complete...),
	}
	for name, data := range cases {
		_, err := ReadDump(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrBadDump, name)
	}

	err = dw.WriteToken(token.Param(1))
	assert.Error(t, err)
}

func TestDumpFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.tex": "\\def\\x{yz}x\\x\n",
	})
	mainFile := filepath.Join(dir, "main.tex")

	buf := &bytes.Buffer{}
	job := &Job{}
	require.NoError(t, job.DumpFile(mainFile, buf))

	d, err := ReadDump(buf)
	require.NoError(t, err)
	assert.Equal(t, "xyz", d.Tokens.String())
	require.Len(t, d.Files, 1)
	assert.Equal(t, mainFile, d.Files[0].Name)
	assert.True(t, d.UpToDate())

	require.NoError(t, os.WriteFile(mainFile, []byte("changed\n"), 0644))
	assert.False(t, d.UpToDate())
}

func TestDumpCached(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.tex": "\\input sub\n",
		"sub.tex":  "abc\n",
	})
	mainFile := filepath.Join(dir, "main.tex")
	c, err := cache.New(t.TempDir(), "dumps")
	require.NoError(t, err)
	defer c.Close(-1)

	run := func() (string, bool) {
		t.Helper()
		buf := &bytes.Buffer{}
		job := &Job{}
		hit, err := job.DumpCached(c, mainFile, buf)
		require.NoError(t, err)
		require.Len(t, job.Files, 2)
		d, err := ReadDump(buf)
		require.NoError(t, err)
		return d.Tokens.String(), hit
	}

	out, hit := run()
	assert.False(t, hit)
	assert.Equal(t, "abc ", out)

	out, hit = run()
	assert.True(t, hit)
	assert.Equal(t, "abc ", out)

	// a change to an included file invalidates the entry
	subFile := filepath.Join(dir, "sub.tex")
	require.NoError(t, os.WriteFile(subFile, []byte("def\n"), 0644))
	out, hit = run()
	assert.False(t, hit)
	assert.Equal(t, "def ", out)
}

func TestDumpCachedSkipsFailedRuns(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.tex": "\\foo a\n",
	})
	mainFile := filepath.Join(dir, "main.tex")
	c, err := cache.New(t.TempDir(), "dumps")
	require.NoError(t, err)
	defer c.Close(-1)

	for i := 0; i < 2; i++ {
		job := &Job{OnError: func(error) error { return nil }}
		hit, err := job.DumpCached(c, mainFile, &bytes.Buffer{})
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, 1, job.Errors)
	}
}
