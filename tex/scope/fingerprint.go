// fingerprint.go -
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

package scope

import (
	"encoding/base64"
	"fmt"
	"sort"

	"golang.org/x/crypto/sha3"
)

// Fingerprint returns a short hash of all values stored in the
// context.  Two contexts with the same values have the same
// fingerprint, independent of the order of assignments.
func (ctx *Context) Fingerprint() string {
	snap := ctx.Snapshot()
	keys := make([]Key, 0, len(snap))
	for key := range snap {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.NS != b.NS {
			return a.NS < b.NS
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Index < b.Index
	})

	h := sha3.NewShake128()
	for _, key := range keys {
		fmt.Fprintf(h, "%d\x00%s\x00%d\x00%s\x00", key.NS, key.Name, key.Index, snap[key])
	}
	buf := make([]byte, 15)
	h.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}
