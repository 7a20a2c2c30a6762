/*
DESCRIPTION
  batch.go runs one batch: every video in the input directory gets generated
  metadata, a publish slot and a scheduled private upload.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  This file is part of Ocean Uploader. Ocean Uploader is free software: you can
  redistribute it and/or modify it under the terms of the GNU
  General Public License as published by the Free Software
  Foundation, either version 3 of the License, or (at your option)
  any later version.

  Ocean Uploader is distributed in the hope that it will be useful,
  but WITHOUT ANY WARRANTY; without even the implied warranty of
  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
  GNU General Public License for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt. If not, see <http://www.gnu.org/licenses/>.
*/

// Package batch discovers the videos in a directory and uploads each one
// with generated metadata and a scheduled publish time. Items are processed
// one at a time and a failing item never stops the ones after it.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/ausocean/uploader/metadata"
	"github.com/ausocean/uploader/youtube"
)

// DefaultDir is the input directory used when none is given.
const DefaultDir = "videos"

// ErrInput is wrapped by errors that stop a batch before any item is
// processed.
var ErrInput = errors.New("bad input")

// MetadataGenerator produces metadata for a video. It is satisfied by
// *metadata.Generator.
type MetadataGenerator interface {
	Generate(ctx context.Context, topic, label string) (metadata.Metadata, error)
}

// Scheduler gives the publish time of the i'th video of a batch started at
// ref. It is satisfied by *schedule.Scheduler.
type Scheduler interface {
	Slot(index int, ref time.Time) time.Time
}

// Uploader uploads a video as private, to be published at publishAt, and
// returns its ID. It is satisfied by *youtube.Uploader.
type Uploader interface {
	Upload(ctx context.Context, path string, md metadata.Metadata, publishAt time.Time) (string, error)
}

// Tracker is told when an upload starts and finishes, e.g. to drive a
// progress bar.
type Tracker interface {
	Start(item Item)
	Done(item Item, err error)
}

// Runner processes batches. A Runner holds no per-batch state so Run may be
// called more than once.
type Runner struct {
	gen     MetadataGenerator
	sched   Scheduler
	up      Uploader
	log     logging.Logger
	dir     string
	ext     string
	out     io.Writer
	tracker Tracker
	now     func() time.Time
}

// Option is a functional option for NewRunner.
type Option func(*Runner) error

// WithDir sets the input directory.
func WithDir(dir string) Option {
	return func(r *Runner) error {
		if dir == "" {
			return errors.New("empty input directory")
		}
		r.dir = dir
		return nil
	}
}

// WithExt sets the extension of files to upload.
func WithExt(ext string) Option {
	return func(r *Runner) error {
		r.ext = ext
		return nil
	}
}

// WithOutput sets where the per-item report is written. By default it is
// discarded.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) error {
		r.out = w
		return nil
	}
}

// WithTracker sets a Tracker to be told about each upload.
func WithTracker(t Tracker) Option {
	return func(r *Runner) error {
		r.tracker = t
		return nil
	}
}

// WithClock sets the source of the batch reference instant.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) error {
		r.now = now
		return nil
	}
}

// NewRunner returns a Runner using the given collaborators.
func NewRunner(gen MetadataGenerator, sched Scheduler, up Uploader, log logging.Logger, opts ...Option) (*Runner, error) {
	if gen == nil || sched == nil || up == nil {
		return nil, errors.New("nil generator, scheduler or uploader")
	}
	r := &Runner{
		gen:   gen,
		sched: sched,
		up:    up,
		log:   log,
		dir:   DefaultDir,
		ext:   DefaultExt,
		out:   io.Discard,
		now:   time.Now,
	}
	for i, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("could not apply option %d: %w", i, err)
		}
	}
	return r, nil
}

// Run uploads every video in the input directory using topic to guide
// metadata generation. The reference instant for publish slots is taken
// once, before the first item. Run returns an error wrapping ErrInput only
// if the directory cannot be read; per-item failures are reported in the
// Summary. If ctx is cancelled the remaining items are not attempted.
func (r *Runner) Run(ctx context.Context, topic string) (Summary, error) {
	sum := Summary{RunID: uuid.NewString(), Dir: r.dir, Reference: r.now()}

	items, err := Discover(r.dir, r.ext)
	if err != nil {
		return sum, fmt.Errorf("%w: %w", ErrInput, err)
	}
	sum.Items = len(items)
	r.log.Info("starting batch", "run", sum.RunID, "dir", r.dir, "items", len(items), "reference", sum.Reference)

	if len(items) == 0 {
		fmt.Fprintf(r.out, "No %s videos found in %s\n", r.ext, r.dir)
		return sum, nil
	}
	fmt.Fprintf(r.out, "Found %d video(s) in %s\n", len(items), r.dir)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			r.log.Warning("batch stopped", "run", sum.RunID, "remaining", len(items)-i, "error", err)
			fmt.Fprintf(r.out, "Stopped: %d video(s) not attempted\n", len(items)-i)
			break
		}
		o := r.process(ctx, topic, i, item, sum.Reference)
		sum.Outcomes = append(sum.Outcomes, o)
	}

	r.log.Info("batch complete", "run", sum.RunID,
		"uploaded", sum.Count(Uploaded), "skipped", sum.Count(SkippedMetadata), "failed", sum.Count(UploadFailed))
	fmt.Fprintf(r.out, "\nAll uploads completed (scheduled): %d uploaded, %d skipped, %d failed\n",
		sum.Count(Uploaded), sum.Count(SkippedMetadata), sum.Count(UploadFailed))
	return sum, nil
}

// process handles a single item. Metadata generation, scheduling and upload
// happen strictly in that order, and a metadata failure means no upload.
func (r *Runner) process(ctx context.Context, topic string, i int, item Item, ref time.Time) Outcome {
	o := Outcome{Index: i, Item: item}
	fmt.Fprintf(r.out, "\nProcessing: %s (%s)\n", item.Name, humanize.IBytes(uint64(item.Size)))

	md, err := r.generate(ctx, topic, item)
	if err != nil {
		o.Kind, o.Reason = SkippedMetadata, err.Error()
		r.log.Warning("skipping video, no metadata", "file", item.Name, "error", err)
		fmt.Fprintf(r.out, "Skipping %s (metadata missing): %v\n", item.Name, err)
		return o
	}
	o.Title = md.Title

	o.PublishAt = r.sched.Slot(i, ref)
	fmt.Fprintf(r.out, "Uploading %s to YouTube...\n", item.Name)
	fmt.Fprintf(r.out, "Scheduled for: %s\n", o.PublishAt.Format(time.RFC1123))

	id, err := r.upload(ctx, item, md, o.PublishAt)
	if err != nil {
		o.Kind, o.Reason = UploadFailed, err.Error()
		r.log.Error("upload failed", "file", item.Name, "error", err)
		fmt.Fprintf(r.out, "Upload failed for %s: %v\n", item.Name, err)
		return o
	}

	o.Kind, o.VideoID = Uploaded, id
	r.log.Info("uploaded video", "file", item.Name, "id", id, "publishAt", o.PublishAt)
	fmt.Fprintf(r.out, "Uploaded successfully (scheduled): %s\n", youtube.WatchURL(id))
	return o
}

// generate calls the generator, turning a panic into an error.
func (r *Runner) generate(ctx context.Context, topic string, item Item) (md metadata.Metadata, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("metadata generation panicked: %v", p)
		}
	}()
	return r.gen.Generate(ctx, topic, item.Name)
}

// upload calls the uploader, turning a panic into an error.
func (r *Runner) upload(ctx context.Context, item Item, md metadata.Metadata, publishAt time.Time) (id string, err error) {
	if r.tracker != nil {
		r.tracker.Start(item)
		defer func() { r.tracker.Done(item, err) }()
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("upload panicked: %v", p)
		}
	}()
	return r.up.Upload(ctx, item.Path, md, publishAt)
}
