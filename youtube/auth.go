/*
DESCRIPTION
  auth.go provides a YouTube service authorised non-interactively with a
  long-lived refresh token.

LICENSE
  Copyright (C) 2021-2026 the Australian Ocean Lab (AusOcean)

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
	"errors"
	"fmt"

	"github.com/ausocean/utils/logging"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ausocean/uploader/gauth"
)

// Credentials authorise uploads to a YouTube channel. The refresh token is
// obtained once, out of band, with cmd/gettoken.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Scopes requested for uploads.
var Scopes = []string{youtube.YoutubeUploadScope, youtube.YoutubeReadonlyScope}

// OAuthConfig returns the oauth2 configuration for the client in creds.
// redirect may be empty when no consent flow is run.
func OAuthConfig(creds Credentials, redirect string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirect,
		Scopes:       Scopes,
	}
}

// NewService returns a YouTube service whose requests are authorised with
// access tokens refreshed from creds. Extra options are passed to the
// underlying service.
func NewService(ctx context.Context, creds Credentials, log logging.Logger, opts ...option.ClientOption) (*youtube.Service, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return nil, errors.New("incomplete youtube credentials")
	}

	cfg := OAuthConfig(creds, "")
	src := gauth.NewSmartTokenSource(ctx, cfg, &oauth2.Token{RefreshToken: creds.RefreshToken}, nil, log)
	client := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, src))

	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create youtube service: %w", err)
	}
	return svc, nil
}
