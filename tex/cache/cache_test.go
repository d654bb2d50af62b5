// cache_test.go -
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

package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, "test")
	require.NoError(t, err)

	data := []byte("some token data")
	require.NoError(t, c.Put("A", data))

	assert.True(t, c.Has("A"), "key A not found")
	assert.False(t, c.Has("B"), "non-existent key B found")

	d2, err := c.Get("A")
	require.NoError(t, err)
	assert.Equal(t, data, d2)

	_, err = c.Get("B")
	assert.True(t, os.IsNotExist(err), "wrong error for missing key: %v", err)

	// a second instance sees the stored entry
	c2, err := New(dir, "test")
	require.NoError(t, err)
	assert.True(t, c2.Has("A"))
	require.NoError(t, c2.Close(1<<20))

	require.NoError(t, c.Close(-1))
	_, err = os.Stat(filepath.Join(dir, "test"))
	assert.True(t, os.IsNotExist(err))
}

func TestRemove(t *testing.T) {
	c, err := New(t.TempDir(), "test")
	require.NoError(t, err)
	defer c.Close(-1)

	require.NoError(t, c.Put("A", []byte("x")))
	require.NoError(t, c.Remove("A"))
	assert.False(t, c.Has("A"))
	require.NoError(t, c.Remove("A"))
}

func TestEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvVar, dir)
	c, err := New("", "sub")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sub"), c.Dir())
	require.NoError(t, c.Close(-1))
}

func TestPruneKeepsNewEntries(t *testing.T) {
	c, err := New(t.TempDir(), "test")
	require.NoError(t, err)
	require.NoError(t, c.Put("A", []byte("0123456789")))
	require.NoError(t, c.Close(0))

	_, err = os.Stat(c.filePath(Sum([]byte("A"))))
	assert.NoError(t, err)
}

func TestSum(t *testing.T) {
	a := Sum([]byte("a"))
	assert.Len(t, a, 20)
	assert.Equal(t, a, Sum([]byte("a")))
	assert.NotEqual(t, a, Sum([]byte("b")))
}

func TestByteSize(t *testing.T) {
	cases := map[int64]string{
		0:       "0B",
		1000:    "1000B",
		1536:    "1.5KiB",
		3145728: "3MiB",
	}
	for in, out := range cases {
		assert.Equal(t, out, byteSize(in).String())
	}
}
