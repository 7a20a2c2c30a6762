/*
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

package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ausocean/uploader/metadata"
)

// insertRequest is what the fake upload endpoint received.
type insertRequest struct {
	query    map[string][]string
	resource map[string]map[string]interface{}
	media    int
	hits     int
}

// uploadServer fakes the multipart videos.insert endpoint. A non-zero
// status makes it fail with that status.
func uploadServer(t *testing.T, status int) (*httptest.Server, *insertRequest) {
	got := &insertRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload/youtube/v3/videos" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		got.hits++
		got.query = r.URL.Query()

		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			t.Errorf("could not parse content type: %v", err)
			return
		}
		mr := multipart.NewReader(r.Body, params["boundary"])
		part, err := mr.NextPart()
		if err != nil {
			t.Errorf("could not read metadata part: %v", err)
			return
		}
		if err := json.NewDecoder(part).Decode(&got.resource); err != nil {
			t.Errorf("could not decode video resource: %v", err)
		}
		part, err = mr.NextPart()
		if err != nil {
			t.Errorf("could not read media part: %v", err)
			return
		}
		b, _ := io.ReadAll(part)
		got.media = len(b)

		w.Header().Set("Content-Type", "application/json")
		if status != 0 {
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"error":{"code":%d,"message":"quota exceeded"}}`, status)
			return
		}
		w.Write([]byte(`{"id":"vid123","status":{"uploadStatus":"uploaded"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func testService(t *testing.T, srv *httptest.Server) *youtube.Service {
	svc, err := youtube.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return svc
}

func writeMedia(t *testing.T, name string, size int) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("v", size)), 0644))
	return path
}

func TestUpload(t *testing.T) {
	srv, got := uploadServer(t, 0)

	var sent, total int64
	calls := 0
	u, err := NewUploader(testService(t, srv), (*logging.TestLogger)(t), WithProgress(func(s, tot int64) {
		assert.GreaterOrEqual(t, s, sent, "progress must not go backwards")
		sent, total = s, tot
		calls++
	}))
	require.NoError(t, err)

	const size = 100 * 1024
	path := writeMedia(t, "clip1.mp4", size)
	publish := time.Date(2026, time.March, 11, 5, 0, 0, 0, time.FixedZone("ACDT", 10*3600+1800))
	md := metadata.Metadata{Title: "Reef", Description: "Fish.", Tags: []string{"reef", " ", "fish"}}

	id, err := u.Upload(context.Background(), path, md, publish)
	require.NoError(t, err)
	assert.Equal(t, "vid123", id)

	assert.Equal(t, []string{"snippet", "status"}, got.query["part"])
	assert.Equal(t, []string{"multipart"}, got.query["uploadType"])
	assert.Equal(t, 1, got.hits)
	assert.Equal(t, size, got.media)
	assert.Equal(t, int64(size), sent)
	assert.Equal(t, int64(size), total)
	assert.Positive(t, calls)

	snippet, status := got.resource["snippet"], got.resource["status"]
	assert.Equal(t, "Reef", snippet["title"])
	assert.Equal(t, "Fish.", snippet["description"])
	assert.Equal(t, []interface{}{"reef", "fish"}, snippet["tags"])
	assert.Equal(t, DefaultCategory, snippet["categoryId"])
	assert.Equal(t, "private", status["privacyStatus"])
	assert.Equal(t, "2026-03-10T18:30:00Z", status["publishAt"])
	madeForKids, ok := status["selfDeclaredMadeForKids"]
	assert.True(t, ok, "selfDeclaredMadeForKids must be sent")
	assert.Equal(t, false, madeForKids)
}

func TestUploadFailures(t *testing.T) {
	srv, _ := uploadServer(t, http.StatusForbidden)
	u, err := NewUploader(testService(t, srv), (*logging.TestLogger)(t), WithUploadCategory("Science & Technology"))
	require.NoError(t, err)
	ctx := context.Background()
	md := metadata.Metadata{Title: "Reef"}
	publish := time.Now().Add(time.Hour)

	_, err = u.Upload(ctx, writeMedia(t, "clip.mp4", 1024), md, publish)
	assert.ErrorIs(t, err, ErrUpload)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = u.Upload(ctx, filepath.Join(t.TempDir(), "missing.mp4"), md, publish)
	assert.ErrorIs(t, err, ErrUpload)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = u.Upload(ctx, writeMedia(t, "clip.mp4", 10), metadata.Metadata{}, publish)
	assert.ErrorIs(t, err, ErrUpload)

	_, err = u.Upload(ctx, writeMedia(t, "clip.mp4", 10), md, time.Time{})
	assert.ErrorIs(t, err, ErrUpload)
}

// Files of any size go up in one request, and a server error is not
// retried.
func TestUploadLargeFileNotRetried(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusInternalServerError, http.StatusTooManyRequests} {
		srv, got := uploadServer(t, status)
		var sent, total int64
		u, err := NewUploader(testService(t, srv), (*logging.TestLogger)(t), WithProgress(func(s, tot int64) {
			sent, total = s, tot
		}))
		require.NoError(t, err)

		const size = 263 * 1024
		_, err = u.Upload(context.Background(), writeMedia(t, "large.mp4", size), metadata.Metadata{Title: "Reef"}, time.Now().Add(time.Hour))
		assert.ErrorIs(t, err, ErrUpload, "status %d", status)
		assert.Equal(t, 1, got.hits, "status %d", status)
		assert.Equal(t, size, got.media, "status %d", status)
		assert.Equal(t, []string{"multipart"}, got.query["uploadType"])
		assert.Equal(t, int64(size), sent)
		assert.Equal(t, int64(size), total)
	}
}

func TestNewUploader(t *testing.T) {
	srv, _ := uploadServer(t, 0)
	svc := testService(t, srv)
	log := (*logging.TestLogger)(t)

	_, err := NewUploader(nil, log)
	assert.Error(t, err)
	_, err = NewUploader(svc, log, WithUploadCategory("Cooking"))
	assert.Error(t, err)

	u, err := NewUploader(svc, log, WithUploadCategory("education"))
	require.NoError(t, err)
	assert.Equal(t, "27", u.category)
}

func TestCheckUploadStatus(t *testing.T) {
	tests := []struct {
		body    string
		want    string
		wantErr error
	}{
		{body: `{"items":[{"id":"v","status":{"uploadStatus":"processed"}}]}`, want: UploadStatusProcessed},
		{body: `{"items":[{"id":"v","status":{"uploadStatus":"uploaded"}}]}`, want: UploadStatusUploaded},
		{body: `{"items":[{"id":"v","status":{"uploadStatus":"weird"}}]}`, wantErr: ErrUnknownStatus},
		{body: `{"items":[]}`},
	}

	for _, test := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "v", r.URL.Query().Get("id"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(test.body))
		}))
		u, err := NewUploader(testService(t, srv), (*logging.TestLogger)(t))
		require.NoError(t, err)

		got, err := u.CheckUploadStatus(context.Background(), "v")
		srv.Close()
		if test.want == "" {
			assert.Error(t, err)
			if test.wantErr != nil {
				assert.True(t, errors.Is(err, test.wantErr), "unexpected error: %v", err)
			}
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, test.want, got)
	}
}

func TestNewService(t *testing.T) {
	_, err := NewService(context.Background(), Credentials{ClientID: "id"}, (*logging.TestLogger)(t))
	assert.Error(t, err)

	svc, err := NewService(context.Background(), Credentials{ClientID: "id", ClientSecret: "s", RefreshToken: "r"}, (*logging.TestLogger)(t))
	require.NoError(t, err)
	assert.NotNil(t, svc.Videos)
}

func TestWatchURL(t *testing.T) {
	assert.Equal(t, "https://youtu.be/vid123", WatchURL("vid123"))
}
