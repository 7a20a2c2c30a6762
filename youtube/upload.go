/*
DESCRIPTION
  upload.go provides functionality for uploading videos to YouTube with
  scheduled publication.

LICENSE
  Copyright (C) 2025-2026 the Australian Ocean Lab (AusOcean)

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

// Package youtube uploads videos to YouTube as private videos scheduled for
// later publication, reporting byte progress as the file is streamed.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/ausocean/utils/logging"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"

	"github.com/ausocean/uploader/metadata"
)

// Exported errors.
var (
	ErrUpload        = errors.New("upload failed")
	ErrUnknownStatus = errors.New("unknown video status")
)

// Upload Status constants.
const (
	UploadStatusUploaded  = "uploaded"
	UploadStatusProcessed = "processed"
	UploadStatusFailed    = "failed"
	UploadStatusRejected  = "rejected"
	UploadStatusDeleted   = "deleted"
)

// Upload defaults.
const (
	// People & Blogs.
	DefaultCategory = "22"

	// Scheduled videos must be private until their publish time.
	scheduledPrivacy = "private"
)

// ProgressFunc is called as the media is read with the number of bytes read
// so far and the total size of the file.
type ProgressFunc func(sent, total int64)

// Uploader uploads files to YouTube.
type Uploader struct {
	svc      *youtube.Service
	log      logging.Logger
	category string
	progress ProgressFunc
}

// Option is a functional option for configuring an Uploader.
type Option func(*Uploader) error

// WithUploadCategory sets the category given to every upload. See
// WithCategory for accepted values.
func WithUploadCategory(cat string) Option {
	return func(u *Uploader) error {
		id := sanitiseCategory(cat)
		if id == "" {
			return fmt.Errorf("invalid category ID or name: %s", cat)
		}
		u.category = id
		return nil
	}
}

// WithProgress sets a function to be called as media bytes are read.
func WithProgress(fn ProgressFunc) Option {
	return func(u *Uploader) error {
		u.progress = fn
		return nil
	}
}

// NewUploader returns an Uploader using the authorised service svc.
func NewUploader(svc *youtube.Service, log logging.Logger, opts ...Option) (*Uploader, error) {
	if svc == nil {
		return nil, errors.New("nil youtube service")
	}
	u := &Uploader{
		svc:      svc,
		log:      log,
		category: DefaultCategory,
	}
	for _, opt := range opts {
		if err := opt(u); err != nil {
			return nil, fmt.Errorf("could not apply option: %w", err)
		}
	}
	return u, nil
}

// Upload streams the file at path to YouTube as a private video with the
// given metadata, scheduled to become public at publishAt. It returns the
// ID YouTube assigned to the video. Errors wrap ErrUpload; nothing is
// retried.
func (u *Uploader) Upload(ctx context.Context, path string, md metadata.Metadata, publishAt time.Time) (string, error) {
	video, err := NewVideo(
		WithTitle(md.Title),
		WithDescription(md.Description),
		WithTags(md.Tags),
		WithCategory(u.category),
		WithPrivacy(scheduledPrivacy),
		WithPublishAt(publishAt),
		WithMadeForKids(false),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: could not open media: %w", ErrUpload, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: could not stat media: %w", ErrUpload, err)
	}

	// A zero chunk size streams the whole file in a single request that the
	// client library does not retry.
	media := newCountingReader(f, fi.Size(), u.progress)
	mediaOpts := []googleapi.MediaOption{googleapi.ChunkSize(0)}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		mediaOpts = append(mediaOpts, googleapi.ContentType(ct))
	}

	u.log.Info("uploading video", "file", path, "bytes", fi.Size(), "publishAt", video.Status.PublishAt)
	vid, err := u.svc.Videos.Insert([]string{"snippet", "status"}, video).
		Media(media, mediaOpts...).
		Context(ctx).
		Do()
	if err != nil {
		u.log.Error("failed to insert video", "file", path, "error", err)
		return "", fmt.Errorf("%w: failed to insert video: %w", ErrUpload, err)
	}
	if vid.Id == "" {
		return "", fmt.Errorf("%w: response has no video ID", ErrUpload)
	}

	u.log.Info("uploaded video", "file", path, "id", vid.Id)
	return vid.Id, nil
}

// CheckUploadStatus checks the status for the video with the associated videoID.
// the returned status will be one of:
// - UploadStatusUploaded
// - UploadStatusProcessed
// - UploadStatusFailed
// - UploadStatusRejected
// - UploadStatusDeleted
func (u *Uploader) CheckUploadStatus(ctx context.Context, videoID string) (string, error) {
	vid, err := u.svc.Videos.List([]string{"status"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get video status: %w", err)
	}

	if len(vid.Items) == 0 || vid.Items[0].Status == nil {
		return "", fmt.Errorf("video not found: %s", videoID)
	}

	switch s := vid.Items[0].Status.UploadStatus; s {
	case UploadStatusProcessed, UploadStatusFailed, UploadStatusRejected, UploadStatusDeleted, UploadStatusUploaded:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// WatchURL returns the short link for the video with the given ID.
func WatchURL(videoID string) string {
	return "https://youtu.be/" + videoID
}
