/*
DESCRIPTION
  token.go provides loading and saving of OAuth2 tokens as JSON, either in
  local files or Google Storage bucket objects.

LICENSE
  Copyright (C) 2021-2026 the Australian Ocean Lab (AusOcean)

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

package gauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
)

// ErrNoRefreshToken is returned when a loaded token cannot be refreshed.
var ErrNoRefreshToken = errors.New("token has no refresh token")

// TokenURI forms the location of the YouTube token for account in bucket,
// e.g. gs://ausocean/social@ausocean.org.youtube.token.json. An empty bucket
// gives a path in the working directory.
func TokenURI(bucket, account string) string {
	const tokenPostfix = ".youtube.token.json"
	if account == "" {
		account = "default"
	}
	if bucket == "" {
		return account + tokenPostfix
	}
	return gsbScheme + strings.TrimSuffix(strings.TrimPrefix(bucket, gsbScheme), "/") + "/" + account + tokenPostfix
}

// LoadToken reads a JSON encoded oauth2.Token from the file or gs:// object at
// uri. The token must carry a refresh token.
func LoadToken(ctx context.Context, uri string) (*oauth2.Token, error) {
	b, err := Read(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("could not load token: %w", err)
	}
	var tok oauth2.Token
	err = json.Unmarshal(b, &tok)
	if err != nil {
		return nil, fmt.Errorf("could not decode token from %s: %w", uri, err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("%s: %w", uri, ErrNoRefreshToken)
	}
	return &tok, nil
}

// SaveToken writes tok as JSON to the file or gs:// object at uri, replacing
// any previous content. Files are created readable by the owner only.
func SaveToken(ctx context.Context, tok *oauth2.Token, uri string) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("could not encode token: %w", err)
	}
	if strings.HasPrefix(uri, gsbScheme) {
		return WriteGoogleStorageBucket(ctx, uri, b)
	}
	err = os.WriteFile(uri, b, 0600)
	if err != nil {
		return fmt.Errorf("could not save token file: %w", err)
	}
	return nil
}
