/*
DESCRIPTION
  config.go collects the uploader's credentials from the environment, an
  optional .env file, an optional secrets file and an optional token file.

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

// Package config loads the uploader configuration once at start up.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ausocean/uploader/gauth"
	"github.com/ausocean/uploader/youtube"
)

// ProjectID names the secrets variable, UPLOADER_SECRETS.
const ProjectID = "uploader"

// Configuration keys. These are both environment variable names and keys in
// the secrets file.
const (
	KeyGeminiAPIKey        = "GEMINI_API_KEY"
	KeyYouTubeClientID     = "YOUTUBE_CLIENT_ID"
	KeyYouTubeClientSecret = "YOUTUBE_CLIENT_SECRET"
	KeyYouTubeRefreshToken = "YOUTUBE_REFRESH_TOKEN"

	// KeyYouTubeToken names a token JSON file or gs:// object holding the
	// refresh token, as written by cmd/gettoken.
	KeyYouTubeToken = "YOUTUBE_TOKEN"
)

// DefaultEnvFile is loaded if it exists.
const DefaultEnvFile = ".env"

// ErrMissing is wrapped by errors reporting absent required values.
var ErrMissing = errors.New("missing configuration")

// Config holds the credentials used by a run. It is not modified after
// Load returns.
type Config struct {
	GeminiAPIKey string
	YouTube      youtube.Credentials
}

// Option is a functional option for Load.
type Option func(*loader)

type loader struct {
	envFile  string
	required []string
}

// WithEnvFile loads variables from path instead of DefaultEnvFile. An empty
// path disables .env loading.
func WithEnvFile(path string) Option {
	return func(l *loader) { l.envFile = path }
}

// WithRequired replaces the set of keys that must be present. By default
// all four credential keys are required.
func WithRequired(keys ...string) Option {
	return func(l *loader) { l.required = keys }
}

// Load builds a Config. Values already in the environment take precedence
// over the .env file, which takes precedence over the secrets file named by
// UPLOADER_SECRETS. A refresh token may also come from the token named by
// YOUTUBE_TOKEN. Any required value still missing gives an error wrapping
// ErrMissing that names every missing key.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	l := &loader{
		envFile:  DefaultEnvFile,
		required: []string{KeyGeminiAPIKey, KeyYouTubeClientID, KeyYouTubeClientSecret, KeyYouTubeRefreshToken},
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.envFile != "" {
		err := godotenv.Load(l.envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("could not load %s: %w", l.envFile, err)
		}
	}

	vals := map[string]string{}
	for _, k := range []string{KeyGeminiAPIKey, KeyYouTubeClientID, KeyYouTubeClientSecret, KeyYouTubeRefreshToken, KeyYouTubeToken} {
		vals[k] = strings.TrimSpace(os.Getenv(k))
	}

	if os.Getenv(gauth.SecretsVar(ProjectID)) != "" {
		secrets, err := gauth.GetSecrets(ctx, ProjectID, nil)
		if err != nil {
			return Config{}, fmt.Errorf("could not get secrets: %w", err)
		}
		for k, v := range vals {
			if v == "" {
				vals[k] = secrets[k]
			}
		}
	}

	if vals[KeyYouTubeRefreshToken] == "" && vals[KeyYouTubeToken] != "" {
		tok, err := gauth.LoadToken(ctx, vals[KeyYouTubeToken])
		if err != nil {
			return Config{}, fmt.Errorf("could not get refresh token: %w", err)
		}
		vals[KeyYouTubeRefreshToken] = tok.RefreshToken
	}

	var missing []string
	for _, k := range l.required {
		if vals[k] == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) != 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}

	return Config{
		GeminiAPIKey: vals[KeyGeminiAPIKey],
		YouTube: youtube.Credentials{
			ClientID:     vals[KeyYouTubeClientID],
			ClientSecret: vals[KeyYouTubeClientSecret],
			RefreshToken: vals[KeyYouTubeRefreshToken],
		},
	}, nil
}
