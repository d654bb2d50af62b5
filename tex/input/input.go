// input.go -
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

// Package input implements the stack of token sources read by the
// expansion engine.
package input

import (
	"errors"
	"io"
	"path/filepath"

	"github.com/seehuhn/texcore/tex/scanner"
	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
	"github.com/seehuhn/texcore/tex/tokenizer"
)

// ErrEndOfInput is returned by Next when all sources are exhausted.
// This is not a texerr.Error: callers which need more tokens convert it
// into an error naming the construct being scanned.
var ErrEndOfInput = errors.New("end of input")

// DefaultMaxDepth is the default limit for the number of input levels.
const DefaultMaxDepth = 5000

// Stack implements a stack of token sources.  Pushed token lists are
// read before the tokenizers underneath them.
type Stack struct {
	// BaseDir is the base directory for include files.  Filenames
	// passed to the .Include() method are interpreted as being
	// relative to this directory.
	BaseDir string

	// MaxDepth limits the number of input levels.  If zero,
	// DefaultMaxDepth is used.
	MaxDepth int

	env     tokenizer.Env
	sources []*source
	files   []string
}

type source struct {
	Name string

	// exactly one of the following two is used
	List token.List
	Tok  *tokenizer.Tokenizer

	pos int
}

// New creates an empty input stack.  The environment is used for all
// tokenizers created by the stack.
func New(env tokenizer.Env) *Stack {
	return &Stack{env: env}
}

// Close closes all input files and discards all pending tokens.
func (in *Stack) Close() (err error) {
	for _, src := range in.sources {
		if src.Tok == nil {
			continue
		}
		e2 := src.Tok.Close()
		if err == nil {
			err = e2
		}
	}
	in.sources = nil
	return
}

// Depth returns the number of active input levels.
func (in *Stack) Depth() int {
	return len(in.sources)
}

// PushString adds the given text to the list of input sources.  The
// text is read next, followed by all previous inputs.  The argument
// `name` is used to identify the buffer in error messages and should
// be a short, human-readable string.
func (in *Stack) PushString(text, name string) {
	in.PushScanner(scanner.FromString(text, name))
}

// PushScanner adds a tokenizer for the given scanner to the list of
// input sources.
func (in *Stack) PushScanner(scan *scanner.Scanner) {
	in.sources = append(in.sources, &source{
		Name: scan.Name,
		Tok:  tokenizer.New(scan, in.env),
	})
}

// Include adds the contents of the given file to the list of input
// sources.  The file contents are read next, followed by all
// remaining, previously registered inputs.
func (in *Stack) Include(fileName string) error {
	if in.BaseDir != "" && !filepath.IsAbs(fileName) {
		fileName = filepath.Join(in.BaseDir, fileName)
	}

	scan, err := scanner.Open(fileName)
	if err != nil {
		return err
	}
	in.PushScanner(scan)
	in.files = append(in.files, fileName)

	if in.BaseDir == "" {
		tmp, err := filepath.Abs(fileName)
		if err != nil {
			return err
		}
		in.BaseDir = filepath.Dir(tmp)
	}
	return nil
}

// Files returns the names of all files opened by Include, in the
// order they were opened.
func (in *Stack) Files() []string {
	return in.files
}

// Next returns the next token from the topmost source.  Exhausted
// sources are removed from the stack.  When no more tokens are
// available, ErrEndOfInput is returned.
func (in *Stack) Next() (token.Token, error) {
	for len(in.sources) > 0 {
		idx := len(in.sources) - 1
		src := in.sources[idx]
		if src.Tok == nil {
			if src.pos < len(src.List) {
				tok := src.List[src.pos]
				src.pos++
				return tok, nil
			}
			in.sources = in.sources[:idx]
			continue
		}

		tok, err := src.Tok.Next()
		if err == io.EOF {
			in.sources = in.sources[:idx]
			src.Tok.Close()
			continue
		} else if err != nil {
			if tErr, ok := err.(*texerr.Error); ok {
				outer := in.Frames()
				if len(outer) > 0 {
					tErr.Stack = append(tErr.Stack, outer[1:]...)
				}
			}
			return token.Token{}, err
		}
		return tok, nil
	}
	return token.Token{}, ErrEndOfInput
}

// PushBack installs a token list which is read before anything else.
// This is used to insert the results of macro expansion.  An error is
// returned if the maximum input depth is exceeded.
func (in *Stack) PushBack(toks token.List, name string) error {
	in.dropExhausted()
	if len(toks) == 0 {
		return nil
	}
	maxDepth := in.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if len(in.sources) >= maxDepth {
		err := texerr.New(texerr.RecursionLimitExceeded,
			"input stack capacity exceeded (%d levels) while expanding %s",
			maxDepth, name)
		return err.At(in.Frames())
	}
	in.sources = append(in.sources, &source{
		Name: name,
		List: toks,
	})
	return nil
}

// Unread pushes a single token back onto the input, so that the next
// call to Next returns it.
func (in *Stack) Unread(tok token.Token) {
	if n := len(in.sources); n > 0 {
		src := in.sources[n-1]
		if src.Tok == nil && src.pos > 0 && src.List[src.pos-1] == tok {
			src.pos--
			return
		}
	}
	in.sources = append(in.sources, &source{
		Name: "<backed up>",
		List: token.List{tok},
	})
}

// Peek returns the next token without consuming it.
func (in *Stack) Peek() (token.Token, error) {
	tok, err := in.Next()
	if err != nil {
		return tok, err
	}
	in.Unread(tok)
	return tok, nil
}

func (in *Stack) dropExhausted() {
	n := len(in.sources)
	for n > 0 {
		src := in.sources[n-1]
		if src.Tok != nil || src.pos < len(src.List) {
			break
		}
		n--
	}
	in.sources = in.sources[:n]
}

// EndInput stops reading the innermost file or string at the end of
// its current line.  Pending token lists are not affected.
func (in *Stack) EndInput() {
	for idx := len(in.sources) - 1; idx >= 0; idx-- {
		if tok := in.sources[idx].Tok; tok != nil {
			tok.EndInput()
			return
		}
	}
}

// Frames returns the positions of all tokenizers on the stack,
// innermost first.
func (in *Stack) Frames() []texerr.Frame {
	var res []texerr.Frame
	for idx := len(in.sources) - 1; idx >= 0; idx-- {
		src := in.sources[idx]
		if src.Tok == nil {
			continue
		}
		res = append(res, src.Tok.Pos())
	}
	return res
}

// MakeError returns an error object which includes the given message
// together with human-readable information about the current input
// position.
func (in *Stack) MakeError(kind texerr.Kind, format string, args ...any) *texerr.Error {
	return texerr.New(kind, format, args...).At(in.Frames())
}
