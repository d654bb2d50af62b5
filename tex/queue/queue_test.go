// queue_test.go -
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

package queue

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seehuhn/texcore/tex"
)

func TestQueue(t *testing.T) {
	dir := t.TempDir()
	var names []string
	for i := 0; i < 10; i++ {
		name := filepath.Join(dir, fmt.Sprintf("f%d.tex", i))
		body := fmt.Sprintf("\\count1=%d \\multiply\\count1 by 2 \\the\\count1\n", i)
		require.NoError(t, os.WriteFile(name, []byte(body), 0644))
		names = append(names, name)
	}

	q := New(tex.DefaultConfig(), 3, nil)
	var results []<-chan *Result
	for _, name := range names {
		results = append(results, q.Submit(name))
	}
	q.Finish()

	for i, c := range results {
		res := <-c
		require.NotNil(t, res)
		require.NoError(t, res.Err)
		assert.Equal(t, names[i], res.FileName)
		assert.Empty(t, res.Errors)
		assert.Equal(t, []string{names[i]}, res.Files)

		d, err := tex.ReadDump(bytes.NewReader(res.Dump))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%d", 2*i), d.Tokens.String())

		_, ok := <-c
		assert.False(t, ok, "result channel not closed")
	}
}

func TestQueueErrors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.tex")
	require.NoError(t, os.WriteFile(good, []byte("\\undefined x\n"), 0644))
	missing := filepath.Join(dir, "missing.tex")

	q := New(nil, 0, nil)
	c1 := q.Submit(good)
	c2 := q.Submit(missing)
	q.Finish()

	res := <-c1
	require.NoError(t, res.Err)
	assert.Len(t, res.Errors, 1)

	res = <-c2
	assert.Error(t, res.Err)
	assert.Nil(t, res.Dump)
}
