// main_test.go -
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

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seehuhn/texcore/tex"
)

func TestErrorHandler(t *testing.T) {
	cfg := tex.DefaultConfig()
	errTest := errors.New("test error")

	cfg.Interaction = "nonstop"
	out := &bytes.Buffer{}
	h := errorHandler(cfg, strings.NewReader(""), out)
	assert.NoError(t, h(errTest))
	assert.Equal(t, "! test error\n", out.String())

	cfg.Interaction = "errorstop"
	out.Reset()
	h = errorHandler(cfg, strings.NewReader("\nn\n"), out)
	assert.NoError(t, h(errTest))
	assert.ErrorIs(t, h(errTest), errAborted)
	assert.ErrorIs(t, h(errTest), errAborted, "end of input aborts")
	assert.Equal(t, 3, strings.Count(out.String(), "continue?"))
}

func TestExpandCommand(t *testing.T) {
	cfg := tex.DefaultConfig()
	cfg.Interaction = "nonstop"
	s := &settings{}
	job := s.job(cfg)
	f := &expandFlags{}

	dir := t.TempDir()
	name := filepath.Join(dir, "in.tex")
	assert.NoError(t, writeFile(name, "\\def\\a{b}\\a\\a\n"))

	out := &bytes.Buffer{}
	assert.NoError(t, f.run(job, name, out))
	assert.Equal(t, "bb\n", out.String())

	f.dump = true
	out.Reset()
	assert.NoError(t, f.run(s.job(cfg), name, out))
	list := &bytes.Buffer{}
	assert.NoError(t, listDump(out, list))
	assert.Contains(t, list.String(), "letter b\nletter b\n")
}

func writeFile(name, body string) error {
	return os.WriteFile(name, []byte(body), 0644)
}
