// watch.go - re-expand files when they change
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
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/seehuhn/texcore/tex"
)

// settleTime is how long to wait for more file events before
// re-running.
const settleTime = 200 * time.Millisecond

func newWatchCmd(s *settings) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Expand a TeX file whenever it or one of its inputs changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.config()
			if err != nil {
				return err
			}
			// there is nobody to answer questions in watch mode
			if cfg.Interaction == "errorstop" {
				cfg.Interaction = "scroll"
			}
			return watch(cmd.Context(), s, cfg, args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "the output file name")
	return cmd
}

func watch(ctx context.Context, s *settings, cfg *tex.Config, fileName, output string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := map[string]bool{}
	dirs := map[string]bool{}
	for {
		files := expandOnce(s, cfg, fileName, output)

		// watch the directories, since editors often replace files
		for _, name := range files {
			abs, err := filepath.Abs(name)
			if err != nil {
				continue
			}
			watched[abs] = true
			dir := filepath.Dir(abs)
			if dirs[dir] {
				continue
			}
			err = watcher.Add(dir)
			if err != nil {
				return err
			}
			dirs[dir] = true
		}
		log.Println("waiting for changes")

		err := waitForChange(ctx, watcher, watched)
		if err == context.Canceled {
			return nil
		} else if err != nil {
			return err
		}
	}
}

// expandOnce runs the expansion and reports the files read.  Errors
// are logged, since watching continues after a failed run.
func expandOnce(s *settings, cfg *tex.Config, fileName, output string) []string {
	log.Println("expanding", fileName)
	job := s.job(cfg)
	out, err := openOutput(output)
	if err != nil {
		log.Println(err)
		return []string{fileName}
	}
	w := newTextWriter(out, cfg.EscapeChar)
	err = job.RunFile(fileName, w.WriteToken)
	e2 := w.Flush()
	if err == nil {
		err = e2
	}
	e2 = out.Close()
	if err == nil {
		err = e2
	}
	if err != nil {
		log.Println(err)
	} else {
		log.Printf("done, %d error(s)", job.Errors)
	}

	if len(job.Files) == 0 {
		return []string{fileName}
	}
	return job.Files
}

func waitForChange(ctx context.Context, watcher *fsnotify.Watcher, watched map[string]bool) error {
	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return os.ErrClosed
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !watched[abs] {
				continue
			}
			timer = time.After(settleTime)
		case err, ok := <-watcher.Errors:
			if !ok {
				return os.ErrClosed
			}
			return err
		case <-timer:
			return nil
		}
	}
}
