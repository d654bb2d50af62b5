// expand.go - the expand and show subcommands
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
	"io"
	"log"
	"os"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/seehuhn/texcore/tex"
	"github.com/seehuhn/texcore/tex/cache"
	"github.com/seehuhn/texcore/tex/token"
)

type expandFlags struct {
	output     string
	dump       bool
	useCache   bool
	cacheDir   string
	cacheLimit int64
}

func newExpandCmd(s *settings) *cobra.Command {
	f := &expandFlags{}
	cmd := &cobra.Command{
		Use:   "expand FILE",
		Short: "Expand a TeX file and write the resulting tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.config()
			if err != nil {
				return err
			}
			out, err := openOutput(f.output)
			if err != nil {
				return err
			}
			job := s.job(cfg)
			err = f.run(job, args[0], out)
			e2 := out.Close()
			if err == nil {
				err = e2
			}
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "the output file name")
	flags.BoolVar(&f.dump, "dump", false, "write tokens in CBOR format instead of text")
	flags.BoolVar(&f.useCache, "cache", false, "reuse results of earlier runs")
	flags.StringVar(&f.cacheDir, "cache-dir", "",
		"cache directory (default $"+cache.EnvVar+" or the user cache directory)")
	flags.Int64Var(&f.cacheLimit, "cache-limit", 64<<20, "maximum cache size in bytes")
	return cmd
}

func (f *expandFlags) run(job *tex.Job, fileName string, out io.Writer) (err error) {
	log.Println("expanding", fileName)

	var c *cache.Cache
	if f.useCache {
		c, err = cache.New(f.cacheDir, "dumps")
		if err != nil {
			return err
		}
		defer func() {
			e2 := c.Close(f.cacheLimit)
			if err == nil {
				err = e2
			}
		}()
	}

	switch {
	case f.dump && c != nil:
		var hit bool
		hit, err = job.DumpCached(c, fileName, out)
		if hit {
			log.Println("using cached result")
		}
	case f.dump:
		err = job.DumpFile(fileName, out)
	case c != nil:
		buf := &bytes.Buffer{}
		var hit bool
		hit, err = job.DumpCached(c, fileName, buf)
		if err != nil {
			return err
		}
		if hit {
			log.Println("using cached result")
		}
		err = writeDumpText(buf, out, job.Config.EscapeChar)
	default:
		w := newTextWriter(out, job.Config.EscapeChar)
		err = job.RunFile(fileName, w.WriteToken)
		if err == nil {
			err = w.Flush()
		}
	}
	if err != nil {
		return err
	}
	log.Printf("done, %d file(s) read, %d error(s)", len(job.Files), job.Errors)
	return nil
}

func newTextWriter(out io.Writer, escapeChar int) *tex.TextWriter {
	w := tex.NewTextWriter(out)
	if escapeChar < 0 || escapeChar > unicode.MaxRune {
		w.Escape = -1
	} else {
		w.Escape = rune(escapeChar)
	}
	return w
}

func writeDumpText(in io.Reader, out io.Writer, escapeChar int) error {
	d, err := tex.ReadDump(in)
	if err != nil {
		return err
	}
	w := newTextWriter(out, escapeChar)
	for _, tok := range d.Tokens {
		err = w.WriteToken(tok)
		if err != nil {
			return err
		}
	}
	return w.Flush()
}

func newShowCmd() *cobra.Command {
	var output string
	var list bool
	cmd := &cobra.Command{
		Use:   "show DUMPFILE",
		Short: "Print the contents of a token dump as text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			out, err := openOutput(output)
			if err != nil {
				return err
			}
			if list {
				err = listDump(in, out)
			} else {
				err = writeDumpText(in, out, '\\')
			}
			e2 := out.Close()
			if err == nil {
				err = e2
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "the output file name")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list tokens one per line, with their categories")
	return cmd
}

func listDump(in io.Reader, out io.Writer) error {
	d, err := tex.ReadDump(in)
	if err != nil {
		return err
	}
	for _, f := range d.Files {
		_, err = io.WriteString(out, "% file "+f.Name+" "+f.Sum+"\n")
		if err != nil {
			return err
		}
	}
	for _, tok := range d.Tokens {
		var line string
		switch tok.Kind {
		case token.Character:
			line = tok.Cat.String() + " " + string(tok.Char)
		case token.Active:
			line = "active " + string(tok.Char)
		default:
			line = "cs " + tok.String()
		}
		_, err = io.WriteString(out, line+"\n")
		if err != nil {
			return err
		}
	}
	return nil
}
