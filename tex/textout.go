// textout.go - plain text output of expanded tokens
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
	"io"
	"strings"
	"unicode/utf8"

	"github.com/seehuhn/texcore/tex/token"
)

const outputLineWidth = 79

// TextWriter formats a stream of expanded tokens as plain text.  Space
// tokens separate words and \par ends a paragraph; lines are wrapped
// at 79 characters.  Other control sequences are written in their
// printed form.
type TextWriter struct {
	// Escape is the character printed before control sequence names.
	Escape rune

	out io.Writer

	word       []byte
	line       []string
	lineLength int
	parDone    bool
}

// NewTextWriter returns a TextWriter which writes to out.
func NewTextWriter(out io.Writer) *TextWriter {
	return &TextWriter{
		Escape: '\\',
		out:    out,
	}
}

// WriteToken adds one token to the output.
func (w *TextWriter) WriteToken(tok token.Token) error {
	switch {
	case tok.IsSpace():
		return w.endWord()
	case tok.Kind == token.ControlSequence && tok.Name == "par":
		return w.EndParagraph()
	case tok.Kind == token.Character:
		w.word = utf8.AppendRune(w.word, tok.Char)
	default:
		s := token.List{tok.Plain()}.Format(w.Escape)
		w.word = append(w.word, strings.TrimSuffix(s, " ")...)
	}
	return nil
}

// Flush writes all buffered text.
func (w *TextWriter) Flush() error {
	return w.EndParagraph()
}

// EndParagraph finishes the current paragraph.  Paragraphs are
// separated by empty lines.
func (w *TextWriter) EndParagraph() error {
	e1 := w.endWord()
	if len(w.line) == 0 {
		return e1
	}
	e2 := w.writeLine()
	w.parDone = true
	return mergeErrors(e1, e2)
}

func (w *TextWriter) writeLine() error {
	if len(w.line) == 0 {
		return nil
	}

	lineStr := strings.Join(w.line, " ") + "\n"
	if w.parDone {
		lineStr = "\n" + lineStr
		w.parDone = false
	}
	w.line = nil
	_, err := io.WriteString(w.out, lineStr)
	return err
}

func (w *TextWriter) endWord() error {
	word := string(w.word)
	w.word = w.word[:0]

	l := utf8.RuneCountInString(word)
	if l == 0 {
		return nil
	}

	if len(w.line) == 0 {
		w.line = []string{word}
		w.lineLength = l
	} else if w.lineLength+1+l <= outputLineWidth {
		w.line = append(w.line, word)
		w.lineLength += 1 + l
	} else {
		err := w.writeLine()
		if err != nil {
			return err
		}
		w.line = []string{word}
		w.lineLength = l
	}
	return nil
}

func mergeErrors(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
