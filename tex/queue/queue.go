// queue.go - expand several files in parallel
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

// Package queue expands several input files in parallel.  Every job
// runs in its own engine; engines are never shared between goroutines.
package queue

import (
	"bytes"
	"log/slog"
	"runtime"
	"sync"

	"github.com/seehuhn/texcore/tex"
)

const queueLength = 1

// Queue allows to run expansion jobs concurrently.
type Queue struct {
	cfg        *tex.Config
	logger     *slog.Logger
	maxWorkers int

	jobs    chan *jobSpec
	workers *sync.WaitGroup
}

// Result is the outcome of one job.
type Result struct {
	FileName string

	// Dump holds the expanded tokens, in the format written by
	// tex.DumpWriter.
	Dump []byte

	// Files lists the files read by the job.
	Files []string

	// Errors lists the errors which were reported and recovered from.
	Errors []error

	// Err is set if the job was abandoned.
	Err error
}

// New creates a new queue.  All jobs use the configuration cfg, which
// must not be modified while the queue is running.  If maxWorkers is
// zero or negative, the number of CPUs is used.
func New(cfg *tex.Config, maxWorkers int, logger *slog.Logger) *Queue {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	q := &Queue{
		cfg:        cfg,
		logger:     logger,
		maxWorkers: maxWorkers,
		jobs:       make(chan *jobSpec, queueLength),
		workers:    &sync.WaitGroup{},
	}
	go q.scheduler()
	return q
}

// Finish must be called after the last job has been submitted to the
// queue.  The function waits until all results have been delivered and
// then shuts down the queue.
func (q *Queue) Finish() {
	close(q.jobs)
	q.workers.Wait()
}

func (q *Queue) scheduler() {
	workers := make(chan int, q.maxWorkers)
	for i := 0; i < q.maxWorkers; i++ {
		workers <- i
	}

	for job := range q.jobs {
		worker := <-workers
		go func(job *jobSpec) {
			job.Result <- q.process(job.FileName)
			close(job.Result)
			workers <- worker
			q.workers.Done()
		}(job)
	}
}

// Submit adds a new job to the queue.  The result can be read from the
// returned channel, which is closed afterwards.
func (q *Queue) Submit(fileName string) <-chan *Result {
	c := make(chan *Result, 1)
	q.workers.Add(1) // before Finish can reach Wait
	q.jobs <- &jobSpec{
		FileName: fileName,
		Result:   c,
	}
	return c
}

type jobSpec struct {
	FileName string
	Result   chan<- *Result
}

func (q *Queue) process(fileName string) *Result {
	res := &Result{FileName: fileName}
	job := &tex.Job{
		Config: q.cfg,
		Logger: q.logger,
		OnError: func(err error) error {
			res.Errors = append(res.Errors, err)
			return nil
		},
	}
	buf := &bytes.Buffer{}
	res.Err = job.DumpFile(fileName, buf)
	res.Files = job.Files
	if res.Err == nil {
		res.Dump = buf.Bytes()
	}
	return res
}
