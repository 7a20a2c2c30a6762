/*
DESCRIPTION
  uploader uploads every video in a directory to YouTube as a private video
  scheduled for later publication, with a title, description and tags
  written by Gemini.

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

// Uploader is a command-line utility for batch uploading videos to YouTube.
// Credentials are read from the environment, a .env file or the file named
// by UPLOADER_SECRETS; see package config. Videos are published at the
// daily slots given by -slots, one video per slot, starting with the first
// slot after the program starts.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/uploader/batch"
	"github.com/ausocean/uploader/config"
	"github.com/ausocean/uploader/metadata"
	"github.com/ausocean/uploader/schedule"
	"github.com/ausocean/uploader/youtube"
)

// Logging configuration.
const (
	logMaxSize   = 50 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logSuppress  = true
)

var logLevels = map[string]int8{
	"debug":   logging.Debug,
	"info":    logging.Info,
	"warning": logging.Warning,
	"error":   logging.Error,
}

type options struct {
	dir      string
	topic    string
	ext      string
	category string
	slots    string
	tz       string
	model    string
	status   bool
}

func main() {
	var (
		opts     options
		logPath  string
		logLevel string
	)
	flag.StringVar(&opts.dir, "dir", batch.DefaultDir, "Directory holding the videos to upload.")
	flag.StringVar(&opts.topic, "topic", "", "Topic of the videos. Prompted for if empty.")
	flag.StringVar(&opts.ext, "ext", batch.DefaultExt, "Extension of the video files.")
	flag.StringVar(&opts.category, "category", youtube.DefaultCategory, "YouTube category ID or name.")
	flag.StringVar(&opts.slots, "slots", schedule.DefaultPattern, "Cron pattern of the daily publish slots.")
	flag.StringVar(&opts.tz, "tz", "Local", "Time zone of the publish slots.")
	flag.StringVar(&opts.model, "model", metadata.DefaultModel, "Gemini model used to write metadata.")
	flag.BoolVar(&opts.status, "status", false, "Report the processing status of each upload after the batch.")
	flag.StringVar(&logPath, "log", "uploader.log", "Log file path.")
	flag.StringVar(&logLevel, "loglevel", "info", "Log level: debug, info, warning or error.")
	flag.Parse()

	level, ok := logLevels[logLevel]
	if !ok {
		fmt.Fprintf(os.Stderr, "invalid log level: %s\n", logLevel)
		os.Exit(2)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	defer fileLog.Close()
	log := logging.New(level, io.MultiWriter(fileLog), logSuppress)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, log, opts, os.Stdin, os.Stdout)
	if err != nil {
		log.Error("uploader failed", "error", err)
		fmt.Fprintf(os.Stderr, "uploader: %v\n", err)
		stop()
		fileLog.Close()
		os.Exit(1)
	}
}

// run sets up the collaborators and runs one batch. It returns an error only
// for problems that stop the batch from starting.
func run(ctx context.Context, log logging.Logger, opts options, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(opts.tz)
	if err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}
	sched, err := schedule.New(opts.slots, schedule.WithLocation(loc))
	if err != nil {
		return fmt.Errorf("invalid publish slots: %w", err)
	}

	client, err := metadata.NewGeminiClient(ctx, cfg.GeminiAPIKey, opts.model)
	if err != nil {
		return fmt.Errorf("could not create Gemini client: %w", err)
	}
	gen, err := metadata.NewGenerator(client, log, metadata.WithPreview(out))
	if err != nil {
		return fmt.Errorf("could not create metadata generator: %w", err)
	}

	svc, err := youtube.NewService(ctx, cfg.YouTube, log)
	if err != nil {
		return fmt.Errorf("could not create YouTube service: %w", err)
	}
	bar := newProgress(out)
	up, err := youtube.NewUploader(svc, log, youtube.WithUploadCategory(opts.category), youtube.WithProgress(bar.update))
	if err != nil {
		return fmt.Errorf("could not create uploader: %w", err)
	}

	err = os.MkdirAll(opts.dir, 0755)
	if err != nil {
		return fmt.Errorf("could not create input directory: %w", err)
	}

	topic := strings.TrimSpace(opts.topic)
	if topic == "" {
		topic, err = promptTopic(in, out)
		if err != nil {
			return err
		}
	}

	r, err := batch.NewRunner(gen, sched, up, log,
		batch.WithDir(opts.dir),
		batch.WithExt(opts.ext),
		batch.WithOutput(out),
		batch.WithTracker(bar),
	)
	if err != nil {
		return fmt.Errorf("could not create batch runner: %w", err)
	}

	sum, err := r.Run(ctx, topic)
	if err != nil {
		return err
	}

	if opts.status {
		reportStatus(context.WithoutCancel(ctx), log, up, sum, out)
	}
	return nil
}

// promptTopic asks for the topic of the videos on out and reads it from in.
func promptTopic(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter a topic for the videos: ")
	s := bufio.NewScanner(in)
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return "", fmt.Errorf("could not read topic: %w", err)
		}
		return "", errors.New("no topic given")
	}
	topic := strings.TrimSpace(s.Text())
	if topic == "" {
		return "", errors.New("no topic given")
	}
	return topic, nil
}

// reportStatus prints the processing status of each uploaded video.
func reportStatus(ctx context.Context, log logging.Logger, up *youtube.Uploader, sum batch.Summary, out io.Writer) {
	if sum.Count(batch.Uploaded) == 0 {
		return
	}
	fmt.Fprintln(out, "\nUpload status:")
	for _, o := range sum.Outcomes {
		if o.Kind != batch.Uploaded {
			continue
		}
		status, err := up.CheckUploadStatus(ctx, o.VideoID)
		if err != nil {
			log.Warning("could not check upload status", "id", o.VideoID, "error", err)
			fmt.Fprintf(out, "  %s: unknown (%v)\n", o.Item.Name, err)
			continue
		}
		fmt.Fprintf(out, "  %s: %s, publishes %s\n", o.Item.Name, status, o.PublishAt.Format(time.RFC1123))
	}
}
