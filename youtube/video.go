/*
DESCRIPTION
  video.go provides functional options for building the YouTube video
  resource sent with an upload.

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

package youtube

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/youtube/v3"
)

// VideoUploadOption is a functional option type for configuring YouTube video uploads.
type VideoUploadOption func(*youtube.Video) error

// NewVideo returns a video resource with the options applied. Nothing is
// defaulted.
func NewVideo(opts ...VideoUploadOption) (*youtube.Video, error) {
	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{},
		Status:  &youtube.VideoStatus{},
	}
	for _, opt := range opts {
		if err := opt(video); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return video, nil
}

// WithTitle sets the title of the video being uploaded.
// It returns an error if the title is empty.
func WithTitle(title string) VideoUploadOption {
	return func(video *youtube.Video) error {
		if strings.TrimSpace(title) == "" {
			return errors.New("title cannot be empty")
		}
		video.Snippet.Title = title
		return nil
	}
}

// WithDescription sets the description of the video being uploaded.
func WithDescription(description string) VideoUploadOption {
	return func(video *youtube.Video) error {
		video.Snippet.Description = description
		return nil
	}
}

// WithTags sets the tags for the video being uploaded. Blank tags are
// dropped.
func WithTags(tags []string) VideoUploadOption {
	return func(video *youtube.Video) error {
		var keep []string
		for _, t := range tags {
			if t = strings.TrimSpace(t); t != "" {
				keep = append(keep, t)
			}
		}
		// The API returns a 400 Bad Request response if tags is an empty string,
		// so an empty list is left out of the request.
		video.Snippet.Tags = keep
		return nil
	}
}

// WithCategory sets the category of the video being uploaded.
// It accepts either a category ID or a category name (both as strings) from the following:
//
// 1 - Film & Animation
// 2 - Autos & Vehicles
// 10 - Music
// 15 - Pets & Animals
// 17 - Sports
// 19 - Travel & Events
// 20 - Gaming
// 22 - People & Blogs
// 23 - Comedy
// 24 - Entertainment
// 25 - News & Politics
// 26 - Howto & Style
// 27 - Education
// 28 - Science & Technology
// 29 - Nonprofits & Activism
//
// It returns an error if the category ID/name is not found.
func WithCategory(categoryID string) VideoUploadOption {
	return func(video *youtube.Video) error {
		video.Snippet.CategoryId = sanitiseCategory(categoryID)
		if video.Snippet.CategoryId == "" {
			return fmt.Errorf("invalid category ID or name: %s", categoryID)
		}
		return nil
	}
}

// WithPrivacy sets the privacy status of the video being uploaded.
// It accepts "public", "unlisted", or "private" as valid privacy statuses.
func WithPrivacy(privacy string) VideoUploadOption {
	return func(video *youtube.Video) error {
		if !validPrivacy(privacy) {
			return fmt.Errorf("invalid privacy status: %s", privacy)
		}
		video.Status.PrivacyStatus = privacy
		return nil
	}
}

// WithPublishAt schedules the video to become public at t. YouTube only
// honours this for private videos.
func WithPublishAt(t time.Time) VideoUploadOption {
	return func(video *youtube.Video) error {
		if t.IsZero() {
			return errors.New("publish time cannot be zero")
		}
		video.Status.PublishAt = t.UTC().Format(time.RFC3339)
		return nil
	}
}

// WithMadeForKids declares whether the video is made for children. The
// declaration is sent even when false.
func WithMadeForKids(forKids bool) VideoUploadOption {
	return func(video *youtube.Video) error {
		video.Status.SelfDeclaredMadeForKids = forKids
		video.Status.ForceSendFields = append(video.Status.ForceSendFields, "SelfDeclaredMadeForKids")
		return nil
	}
}

// categories maps YouTube's assignable category IDs to their names.
var categories = map[string]string{
	"1":  "Film & Animation",
	"2":  "Autos & Vehicles",
	"10": "Music",
	"15": "Pets & Animals",
	"17": "Sports",
	"19": "Travel & Events",
	"20": "Gaming",
	"22": "People & Blogs",
	"23": "Comedy",
	"24": "Entertainment",
	"25": "News & Politics",
	"26": "Howto & Style",
	"27": "Education",
	"28": "Science & Technology",
	"29": "Nonprofits & Activism",
}

// sanitiseCategory checks if the given category ID or name is valid,
// and returns its ID if valid. Names are matched case-insensitively.
func sanitiseCategory(cat string) string {
	cat = strings.TrimSpace(cat)
	for id, name := range categories {
		if id == cat || strings.EqualFold(name, cat) {
			return id
		}
	}
	return ""
}

func validPrivacy(privacy string) bool {
	switch privacy {
	case "public", "unlisted", "private":
		return true
	default:
		return false
	}
}
