// tokenizer.go -
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

package tokenizer

import (
	"io"
	"unicode"

	"github.com/seehuhn/texcore/tex/catcode"
	"github.com/seehuhn/texcore/tex/scanner"
	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
)

// Env gives the tokenizer access to the parts of the interpreter
// state which influence tokenization.  Values are consulted every
// time they are needed, so that changes take effect immediately.
type Env interface {
	catcode.Lookup

	// EndLineChar returns the character appended to every input
	// line.  Values outside the range of valid characters mean that
	// nothing is appended.
	EndLineChar() int
}

// State is the line state of the tokenizer.
type State int

// The three states of TeX's input processor.
const (
	NewLine State = iota
	MidLine
	SkipBlanks
)

// ParToken is generated for empty input lines.
var ParToken = token.CS("par")

// A Tokenizer splits the lines of a single input source into tokens.
type Tokenizer struct {
	src *scanner.Scanner
	env Env

	state    State
	line     []rune
	loc      int
	haveLine bool
	done     bool
	endInput bool
}

// New creates a tokenizer for the given source.
func New(src *scanner.Scanner, env Env) *Tokenizer {
	return &Tokenizer{
		src: src,
		env: env,
	}
}

// State returns the current line state.
func (t *Tokenizer) State() State {
	return t.state
}

// Next returns the next token.  At the end of the input, io.EOF is
// returned.  After a lexical error, no further tokens are produced.
func (t *Tokenizer) Next() (token.Token, error) {
	for {
		if t.done {
			return token.Token{}, io.EOF
		}
		if !t.haveLine {
			if t.endInput {
				t.done = true
				return token.Token{}, io.EOF
			}
			err := t.nextLine()
			if err == io.EOF {
				t.done = true
				return token.Token{}, io.EOF
			} else if err != nil {
				t.done = true
				return token.Token{}, err
			}
		}
		if t.loc >= len(t.line) {
			t.haveLine = false
			continue
		}

		start := t.loc
		c := t.line[start]
		cat := t.env.Catcode(c)
		if cat == catcode.Superscript && t.reduce(start) {
			continue
		}
		t.loc++

		switch cat {
		case catcode.Escape:
			return t.readControlSequence(), nil
		case catcode.Active:
			t.state = MidLine
			return token.ActiveChar(c), nil
		case catcode.Space:
			if t.state == MidLine {
				t.state = SkipBlanks
				return token.Space, nil
			}
		case catcode.EndOfLine:
			t.haveLine = false
			switch t.state {
			case NewLine:
				return ParToken, nil
			case MidLine:
				return token.Space, nil
			}
		case catcode.Ignored:
			// pass
		case catcode.Comment:
			t.haveLine = false
		case catcode.Invalid:
			t.done = true
			err := texerr.New(texerr.Lexical,
				"text line contains an invalid character %q", c)
			frame := t.Pos()
			frame.Col = start + 1
			return token.Token{}, err.At([]texerr.Frame{frame})
		default:
			t.state = MidLine
			return token.Char(cat, c), nil
		}
	}
}

func (t *Tokenizer) nextLine() error {
	line, err := t.src.ReadLine()
	if err != nil {
		return err
	}
	for len(line) > 0 && line[len(line)-1] == ' ' {
		line = line[:len(line)-1]
	}
	if elc := t.env.EndLineChar(); elc >= 0 && elc <= unicode.MaxRune {
		line = append(line, rune(elc))
	}
	t.line = line
	t.loc = 0
	t.haveLine = true
	t.state = NewLine
	return nil
}

// readControlSequence collects the name of a control sequence.  The
// escape character has already been consumed.
func (t *Tokenizer) readControlSequence() token.Token {
	if t.loc >= len(t.line) {
		t.state = SkipBlanks
		return token.CS("")
	}

	cat := t.env.Catcode(t.line[t.loc])
	for cat == catcode.Superscript && t.reduce(t.loc) {
		cat = t.env.Catcode(t.line[t.loc])
	}
	if cat != catcode.Letter {
		c := t.line[t.loc]
		t.loc++
		if cat == catcode.Space {
			t.state = SkipBlanks
		} else {
			t.state = MidLine
		}
		return token.CS(string(c))
	}

	end := t.loc
	for end < len(t.line) {
		cat := t.env.Catcode(t.line[end])
		if cat == catcode.Superscript && t.reduce(end) {
			continue
		}
		if cat != catcode.Letter {
			break
		}
		end++
	}
	name := string(t.line[t.loc:end])
	t.loc = end
	t.state = SkipBlanks
	return token.CS(name)
}

// reduce replaces the ^^ notation starting at line[pos] by the
// character it denotes.  The return value indicates whether a
// replacement took place.
func (t *Tokenizer) reduce(pos int) bool {
	line := t.line
	c := line[pos]
	if pos+2 >= len(line) || line[pos+1] != c {
		return false
	}

	var r rune
	n := 3
	if pos+3 < len(line) && isHex(line[pos+2]) && isHex(line[pos+3]) {
		r = hexVal(line[pos+2])<<4 | hexVal(line[pos+3])
		n = 4
	} else {
		c3 := line[pos+2]
		if c3 >= 128 {
			return false
		}
		if c3 < 64 {
			r = c3 + 64
		} else {
			r = c3 - 64
		}
	}

	line[pos] = r
	t.line = append(line[:pos+1], line[pos+n:]...)
	return true
}

func isHex(c rune) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f'
}

func hexVal(c rune) rune {
	if c <= '9' {
		return c - '0'
	}
	return c - 'a' + 10
}

// Pos returns the current input position.
func (t *Tokenizer) Pos() texerr.Frame {
	frame := texerr.Frame{
		Name: t.src.Name,
		Line: t.src.Line(),
	}
	if t.haveLine {
		frame.Col = t.loc + 1
		rest := t.line[t.loc:]
		if len(rest) > 20 {
			frame.Context = string(rest[:17]) + "..."
		} else {
			frame.Context = string(rest)
		}
	}
	return frame
}

// EndInput makes the tokenizer stop at the end of the current line.
func (t *Tokenizer) EndInput() {
	t.endInput = true
}

// Close releases the input source.
func (t *Tokenizer) Close() error {
	t.done = true
	return t.src.Close()
}
