/*
DESCRIPTION
  gettoken runs the one-time OAuth2 consent flow that gives the uploader a
  long-lived YouTube refresh token.

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

// Gettoken prints a consent URL for the YouTube account the uploader will
// use, reads back the authorization code and prints the refresh token.
// The client ID and secret are read as by the uploader. With -out, the
// token is also saved as JSON to a file or gs:// object that YOUTUBE_TOKEN
// may then name.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/ausocean/uploader/config"
	"github.com/ausocean/uploader/gauth"
	"github.com/ausocean/uploader/youtube"
)

const defaultRedirect = "http://localhost:3000/oauth2callback"

func main() {
	redirect := flag.String("redirect", defaultRedirect, "OAuth2 redirect URL registered for the client.")
	out := flag.String("out", "", "File or gs:// URI to save the token to; see also -bucket and -account.")
	bucket := flag.String("bucket", "", "Save the token to this bucket, named after -account.")
	account := flag.String("account", "", "Account the token belongs to, used with -bucket.")
	flag.Parse()

	dst := *out
	if dst == "" && *bucket != "" {
		dst = gauth.TokenURI(*bucket, *account)
	}

	err := run(context.Background(), *redirect, dst, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gettoken: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, redirect, dst string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(ctx, config.WithRequired(config.KeyYouTubeClientID, config.KeyYouTubeClientSecret))
	if err != nil {
		return err
	}
	oc := youtube.OAuthConfig(cfg.YouTube, redirect)

	state := uuid.NewString()
	fmt.Fprintf(out, "Authorize this app by visiting this URL:\n%s\n\n", oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))
	fmt.Fprint(out, "Enter the code (or the full redirect URL) from that page here: ")

	s := bufio.NewScanner(in)
	if !s.Scan() {
		return errors.New("no code given")
	}
	code, err := extractCode(s.Text(), state)
	if err != nil {
		return err
	}

	tok, err := oc.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("could not exchange code: %w", err)
	}
	if tok.RefreshToken == "" {
		return gauth.ErrNoRefreshToken
	}
	fmt.Fprintf(out, "\nYour refresh token is: %s\n", tok.RefreshToken)

	if dst == "" {
		return nil
	}
	err = gauth.SaveToken(ctx, tok, dst)
	if err != nil {
		return fmt.Errorf("could not save token: %w", err)
	}
	fmt.Fprintf(out, "Token saved to %s\n", dst)
	return nil
}

// extractCode returns the authorization code from s, which is either the
// bare code or the URL the browser was redirected to. A redirect URL
// carrying a state other than state is rejected.
func extractCode(s, state string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("no code given")
	}
	if !strings.Contains(s, "://") {
		return s, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("could not parse redirect URL: %w", err)
	}
	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization failed: %s", e)
	}
	if got := q.Get("state"); got != "" && got != state {
		return "", errors.New("state mismatch in redirect URL")
	}
	code := q.Get("code")
	if code == "" {
		return "", errors.New("no code in redirect URL")
	}
	return code, nil
}
