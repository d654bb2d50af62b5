// batch.go - the batch subcommand
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
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seehuhn/texcore/tex/queue"
)

func newBatchCmd(s *settings) *cobra.Command {
	var outDir string
	var dump bool
	var jobs int
	cmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Expand several TeX files in parallel",
		Long: `Expand several TeX files in parallel.  For every input file
NAME.tex, the output is written to NAME.txt, or to NAME.tokens if
--dump is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.config()
			if err != nil {
				return err
			}
			// there is nobody to answer questions in batch runs
			if cfg.Interaction == "errorstop" {
				cfg.Interaction = "scroll"
			}

			q := queue.New(cfg, jobs, s.logger())
			var results []<-chan *queue.Result
			for _, name := range args {
				results = append(results, q.Submit(name))
			}
			q.Finish()

			failed := 0
			for _, c := range results {
				res := <-c
				for _, err := range res.Errors {
					log.Printf("%s: %v", res.FileName, err)
				}
				if res.Err == nil {
					res.Err = writeResult(res, outDir, dump, cfg.EscapeChar)
				}
				if res.Err != nil {
					log.Printf("%s: %v", res.FileName, res.Err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			log.Printf("done, %d file(s)", len(args))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&outDir, "outdir", "d", "", "output directory (default: next to the input)")
	flags.BoolVar(&dump, "dump", false, "write tokens in CBOR format instead of text")
	flags.IntVarP(&jobs, "jobs", "j", 0, "number of parallel jobs (default: number of CPUs)")
	return cmd
}

func writeResult(res *queue.Result, outDir string, dump bool, escapeChar int) (err error) {
	base := strings.TrimSuffix(res.FileName, filepath.Ext(res.FileName))
	if outDir != "" {
		base = filepath.Join(outDir, filepath.Base(base))
	}
	ext := ".txt"
	if dump {
		ext = ".tokens"
	}
	outName := base + ext
	log.Println("writing", outName)

	if dump {
		return os.WriteFile(outName, res.Dump, 0644)
	}
	out, err := os.Create(outName)
	if err != nil {
		return err
	}
	defer func() {
		e2 := out.Close()
		if err == nil {
			err = e2
		}
	}()
	return writeDumpText(bytes.NewReader(res.Dump), out, escapeChar)
}
