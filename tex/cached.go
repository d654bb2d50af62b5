// cached.go - reusing the results of earlier runs
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
	"io"
	"path/filepath"

	"github.com/seehuhn/texcore/tex/cache"
)

func (job *Job) cacheKey(fileName string) (string, error) {
	abs, err := filepath.Abs(fileName)
	if err != nil {
		return "", err
	}
	cfg := job.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	buf := &bytes.Buffer{}
	buf.WriteString(abs)
	buf.WriteByte(0)
	err = cfg.Write(buf)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// DumpCached is like DumpFile, but reuses the dump from an earlier
// run if none of the input files have changed since.  Only runs
// without errors are stored in the cache.  The return value hit
// indicates whether the result was taken from the cache.
func (job *Job) DumpCached(c *cache.Cache, fileName string, w io.Writer) (hit bool, err error) {
	key, err := job.cacheKey(fileName)
	if err != nil {
		return false, err
	}

	if c.Has(key) {
		data, err := c.Get(key)
		if err == nil {
			d, err := ReadDump(bytes.NewReader(data))
			if err == nil && d.UpToDate() {
				job.Files = job.Files[:0]
				for _, f := range d.Files {
					job.Files = append(job.Files, f.Name)
				}
				_, err = w.Write(data)
				return true, err
			}
		}
		_ = c.Remove(key)
	}

	buf := &bytes.Buffer{}
	err = job.DumpFile(fileName, io.MultiWriter(w, buf))
	if err != nil {
		return false, err
	}
	if job.Errors == 0 {
		err = c.Put(key, buf.Bytes())
	}
	return false, err
}
