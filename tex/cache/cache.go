// cache.go - on-disk store for token dumps
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

// Package cache stores the results of previous runs on disk, so that
// unchanged input does not need to be expanded again.
package cache

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// EnvVar names the environment variable which can be used to override
// the default cache location.
const EnvVar = "TEXCORE_CACHE"

const fileExt = ".cbor"

// Cache provides a facility to temporarily store data on disk for
// later retrieval.
type Cache struct {
	cacheDir string
	entries  map[string]*entry
	start    time.Time
}

// New creates a new cache, backed by subdirectory 'subdir' inside the
// cache directory.  If dir is empty, the value of the environment
// variable TEXCORE_CACHE is used, and if this is unset, a directory
// inside the user's cache directory.  The cache is pre-populated with
// any entries found on disk.
func New(dir, subdir string) (*Cache, error) {
	c := &Cache{
		entries: make(map[string]*entry),
		start:   time.Now(),
	}

	cacheDir := dir
	if len(cacheDir) == 0 {
		cacheDir = os.Getenv(EnvVar)
	}
	if len(cacheDir) == 0 {
		userDir, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		cacheDir = filepath.Join(userDir, "de.seehuhn.texcore")
	}
	c.cacheDir = filepath.Join(cacheDir, subdir)
	err := os.MkdirAll(c.cacheDir, 0755)
	if err != nil {
		return nil, err
	}

	files, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, de := range files {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, fileExt) {
			log.Printf("cache %s: unexpected file %q", c.cacheDir, name)
			continue
		}
		fi, err := de.Info()
		if err != nil {
			continue
		}
		hash := strings.TrimSuffix(name, fileExt)
		e := &entry{
			Size: fi.Size(),
			Time: fi.ModTime(),
		}
		c.entries[hash] = e
		total += e.Size
	}
	log.Printf("cache %s: %s (%d objects)",
		c.cacheDir, byteSize(total), len(c.entries))

	return c, nil
}

// Dir returns the directory where the cache entries are stored.
func (c *Cache) Dir() string {
	return c.cacheDir
}

// Close must be called when the cache is no longer needed.  Up to
// 'pruneLimit' bytes of data may be left behind in the cache
// directory; these files will be used to pre-populate future Cache
// instances.
//
// If pruneLimit >= 0, entries added using the current Cache instance
// will always be retained, even if their total size exceeds
// pruneLimit.  If pruneLimit < 0, all cached data is removed.
func (c *Cache) Close(pruneLimit int64) error {
	var of oldestFirst
	var total int64
	for hash, e := range c.entries {
		of = append(of, pruneEntry{key: hash, entry: e})
		total += e.Size
	}
	sort.Sort(of)

	var err error
	var pruneCount int
	var pruneBytes int64
	for _, pe := range of {
		if total <= pruneLimit {
			break
		}
		if pruneLimit >= 0 && c.start.Before(pe.Time) {
			break
		}
		e2 := os.Remove(c.filePath(pe.key))
		if err == nil {
			err = e2
		}
		pruneCount++
		pruneBytes += pe.Size
		total -= pe.Size
	}
	if pruneCount > 0 {
		log.Printf("cache %s: removed %s (%d objects)",
			c.cacheDir, byteSize(pruneBytes), pruneCount)
	}

	if pruneLimit < 0 {
		_ = os.Remove(c.cacheDir)
	}

	c.entries = nil
	return err
}

// Has returns true, if the cache contains data which has previously
// been stored for the given key.  The data can be retrieved using the
// .Get() method.
func (c *Cache) Has(key string) bool {
	hash := Sum([]byte(key))
	entry, ok := c.entries[hash]
	if ok {
		entry.Time = time.Now()
	}
	return ok
}

// Put stores new data in the cache.  The data can later be retrieved
// using the given key.  Any preexisting data using the same key is
// overwritten.
func (c *Cache) Put(key string, data []byte) error {
	hash := Sum([]byte(key))
	path := c.filePath(hash)

	// entries appear atomically
	tmp, err := os.CreateTemp(c.cacheDir, "put-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(data)
	e2 := tmp.Close()
	if err == nil {
		err = e2
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}

	c.entries[hash] = &entry{
		Size: int64(len(data)),
		Time: time.Now(),
	}
	return nil
}

// Get returns data which has previously been stored in the cache for
// the given key.
func (c *Cache) Get(key string) ([]byte, error) {
	hash := Sum([]byte(key))
	data, err := os.ReadFile(c.filePath(hash))
	if err != nil {
		return nil, err
	}
	if e, ok := c.entries[hash]; ok {
		e.Time = time.Now()
	}
	return data, nil
}

// Remove deletes the entry for the given key, if any.
func (c *Cache) Remove(key string) error {
	hash := Sum([]byte(key))
	if _, ok := c.entries[hash]; !ok {
		return nil
	}
	delete(c.entries, hash)
	return os.Remove(c.filePath(hash))
}

func (c *Cache) filePath(hash string) string {
	return filepath.Join(c.cacheDir, hash+fileExt)
}

// Sum returns a short, file name safe hash of data.
func Sum(data []byte) string {
	h := sha3.NewShake128()
	h.Write(data)
	buf := make([]byte, 15)
	h.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

type entry struct {
	Size int64
	Time time.Time
}

type pruneEntry struct {
	key string
	*entry
}

type oldestFirst []pruneEntry

func (of oldestFirst) Len() int { return len(of) }
func (of oldestFirst) Less(i, j int) bool {
	return of[i].Time.Before(of[j].Time)
}
func (of oldestFirst) Swap(i, j int) { of[i], of[j] = of[j], of[i] }

// byteSize formats sizes using binary prefixes.
type byteSize int64

func (x byteSize) String() string {
	if x < 1024 {
		return fmt.Sprintf("%dB", int64(x))
	}
	val := float64(x)
	var pfx string
	for _, pfx = range []string{"", "Ki", "Mi", "Gi", "Ti", "Pi"} {
		if val < 1024.0 {
			break
		}
		val /= 1024.0
	}
	return fmt.Sprintf("%.3g%sB", val, pfx)
}
