/*
LICENSE
  Copyright (C) 2024-2026 the Australian Ocean Lab (AusOcean)

  This is free software: you can redistribute it and/or modify it
  under the terms of the GNU General Public License as published by
  the Free Software Foundation, either version 3 of the License, or
  (at your option) any later version.

  It is distributed in the hope that it will be useful,
  but WITHOUT ANY WARRANTY; without even the implied warranty of
  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
  GNU General Public License for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt. If not, see http://www.gnu.org/licenses/.
*/

// Package gauth provides access to the credentials used by the uploader:
// secrets files, OAuth2 tokens and refresh-aware token sources. Secrets and
// tokens may live either in the local filesystem or in a Google Storage
// bucket object named by a gs:// URL.
package gauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/ausocean/utils/filemap"
)

// The URL scheme that represents a Google Storage Bucket.
const gsbScheme = "gs://"

// ErrMissingKey is returned when a required secret is absent or empty.
var ErrMissingKey = errors.New("missing key")

// SecretsVar returns the name of the environment variable holding the
// location of the secrets for projectID, i.e. <PROJECTID>_SECRETS.
func SecretsVar(projectID string) string {
	return strings.ToUpper(projectID) + "_SECRETS"
}

// GetSecrets looks up secrets from either a file or Google Storage
// bucket specified by the <PROJECTID>_SECRETS environment variable.
// The keys argument specifies required keys.
func GetSecrets(ctx context.Context, projectID string, keys []string) (map[string]string, error) {
	ev := SecretsVar(projectID)
	url := os.Getenv(ev)
	if url == "" {
		return nil, errors.New(ev + " environment variable not defined")
	}
	return ReadSecrets(ctx, url, keys)
}

// ReadSecrets reads secrets from the file or gs:// object at url. Each line
// is a colon-separated key and value. Every key in keys must be present with
// a non-empty value.
func ReadSecrets(ctx context.Context, url string, keys []string) (map[string]string, error) {
	b, err := Read(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("could not read secrets: %w", err)
	}
	m := ParseSecrets(string(b))
	for _, k := range keys {
		if m[k] == "" {
			return m, fmt.Errorf("%w %s", ErrMissingKey, k)
		}
	}
	return m, nil
}

// ParseSecrets splits s into colon-separated key/value pairs, one per line.
// Surrounding space is removed from keys and values.
func ParseSecrets(s string) map[string]string {
	// Strip carriage returns and trailing newlines, if any.
	s = strings.Trim(strings.ReplaceAll(s, "\r", ""), "\n")

	m := filemap.Split(s, "\n", ":")
	secrets := make(map[string]string, len(m))
	for k, v := range m {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		secrets[k] = strings.TrimSpace(v)
	}
	return secrets
}

// Read returns the contents of the file or gs:// object at url.
func Read(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, gsbScheme) {
		return ReadGoogleStorageBucket(ctx, url)
	}
	return os.ReadFile(url)
}

// ReadGoogleStorageBucket reads the contents of the Google Storage
// bucket object specified by the URL. The URL must take the form:
// gs://<bucket_name>/<object_name>
func ReadGoogleStorageBucket(ctx context.Context, url string) ([]byte, error) {
	clt, obj, err := object(ctx, url)
	if err != nil {
		return nil, err
	}
	defer clt.Close()
	r, err := obj.NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot create GSB reader: %w", err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return b, fmt.Errorf("cannot read GSB: %w", err)
	}
	return b, nil
}

// WriteGoogleStorageBucket replaces the contents of the Google Storage
// bucket object specified by the URL with data.
func WriteGoogleStorageBucket(ctx context.Context, url string, data []byte) error {
	clt, obj, err := object(ctx, url)
	if err != nil {
		return err
	}
	defer clt.Close()
	w := obj.NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("cannot write GSB: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("cannot close GSB writer: %w", err)
	}
	return nil
}

// bucketClient is the part of *storage.Client used here.
type bucketClient interface {
	Bucket(name string) *storage.BucketHandle
	Close() error
}

var newBucketClient = func(ctx context.Context) (bucketClient, error) {
	return storage.NewClient(ctx)
}

// object returns a handle for the object named by a gs:// URL along with
// the client it belongs to, which the caller must close.
func object(ctx context.Context, url string) (bucketClient, *storage.ObjectHandle, error) {
	bkt, name, err := SplitGSURL(url)
	if err != nil {
		return nil, nil, err
	}
	clt, err := newBucketClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create GSB client: %w", err)
	}
	return clt, clt.Bucket(bkt).Object(name), nil
}

// SplitGSURL splits a gs://<bucket>/<object> URL into its bucket and object
// names.
func SplitGSURL(url string) (bucket, object string, err error) {
	if !strings.HasPrefix(url, gsbScheme) {
		return "", "", fmt.Errorf("invalid GSB URL %s", url)
	}
	rest := url[len(gsbScheme):]
	sep := strings.IndexByte(rest, '/')
	if sep <= 0 || sep == len(rest)-1 {
		return "", "", fmt.Errorf("invalid GSB URL %s", url)
	}
	return rest[:sep], rest[sep+1:], nil
}
