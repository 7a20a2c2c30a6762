/*
LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

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
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestSaveLoadToken(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), TokenURI("", "social@ausocean.org"))
	tok := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}

	require.NoError(t, SaveToken(ctx, tok, path))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())

	got, err := LoadToken(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", got.RefreshToken)
	assert.Equal(t, "access", got.AccessToken)
}

func TestLoadTokenErrors(t *testing.T) {
	ctx := context.Background()

	_, err := LoadToken(ctx, writeFile(t, "bad.json", "{"))
	assert.Error(t, err)

	_, err = LoadToken(ctx, writeFile(t, "norefresh.json", `{"access_token":"a"}`))
	assert.ErrorIs(t, err, ErrNoRefreshToken)

	_, err = LoadToken(ctx, filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTokenURI(t *testing.T) {
	tests := []struct {
		bucket, account, want string
	}{
		{bucket: "gs://ausocean", account: "social@ausocean.org", want: "gs://ausocean/social@ausocean.org.youtube.token.json"},
		{bucket: "ausocean/", account: "a", want: "gs://ausocean/a.youtube.token.json"},
		{bucket: "", account: "a", want: "a.youtube.token.json"},
		{bucket: "", account: "", want: "default.youtube.token.json"},
	}
	for _, test := range tests {
		if got := TokenURI(test.bucket, test.account); got != test.want {
			t.Errorf("TokenURI(%q, %q): got %s want %s", test.bucket, test.account, got, test.want)
		}
	}
}

// seqSource hands out the given tokens in order, repeating the last.
type seqSource struct {
	toks []*oauth2.Token
	i    int
}

func (s *seqSource) Token() (*oauth2.Token, error) {
	tok := s.toks[s.i]
	if s.i < len(s.toks)-1 {
		s.i++
	}
	return tok, nil
}

func TestSmartTokenSource(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	a := &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: exp}
	b := &oauth2.Token{AccessToken: "b", RefreshToken: "r", Expiry: exp}

	var notified []string
	s := &SmartTokenSource{
		src: &seqSource{toks: []*oauth2.Token{a, a, b}},
		notify: func(tok *oauth2.Token) error {
			notified = append(notified, tok.AccessToken)
			return errors.New("could not persist")
		},
		log: (*logging.TestLogger)(t),
	}

	for _, want := range []string{"a", "a", "b", "b"} {
		tok, err := s.Token()
		require.NoError(t, err)
		assert.Equal(t, want, tok.AccessToken)
	}
	assert.Equal(t, []string{"a", "b"}, notified)
}

func TestSmartTokenSourceNilNotify(t *testing.T) {
	cfg := &oauth2.Config{}
	tok := &oauth2.Token{AccessToken: "valid", Expiry: time.Now().Add(time.Hour)}
	s := NewSmartTokenSource(context.Background(), cfg, tok, nil, (*logging.TestLogger)(t))

	got, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "valid", got.AccessToken)
}
