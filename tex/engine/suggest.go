// suggest.go - suggestions for undefined control sequences
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

package engine

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/seehuhn/texcore/tex/scope"
	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
)

const maxSuggestions = 3

func (e *Engine) undefined(tok token.Token) error {
	err := e.errorf(texerr.UndefinedControlSequence,
		"undefined control sequence %s", describeToken(tok))
	if tok.Kind == token.ControlSequence && tok.Name != "" {
		err.Suggestions = e.Suggest(tok.Name)
	}
	return err
}

// Suggest returns the names of defined control sequences which are
// similar to name, closest match first.
func (e *Engine) Suggest(name string) []string {
	candidates := e.Ctx.Names(scope.NSMeaning)
	sort.Strings(candidates)
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		ranks = fuzzy.RankFindFold(name[:len(name)/2+1], candidates)
	}
	sort.Stable(ranks)

	var res []string
	for _, r := range ranks {
		if len(res) >= maxSuggestions {
			break
		}
		res = append(res, describeToken(token.CS(r.Target)))
	}
	return res
}
