/*
LICENSE
  Copyright (C) 2025-2026 the Australian Ocean Lab (AusOcean)

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

	"github.com/ausocean/utils/logging"
	"golang.org/x/oauth2"
)

// TokenNotifyFunc is called with a token each time it is refreshed.
type TokenNotifyFunc func(*oauth2.Token) error

// SmartTokenSource is an oauth2.TokenSource that calls a notify function
// whenever its underlying token source hands out a new access token. It is
// not safe for concurrent use; wrap it with oauth2.ReuseTokenSource if
// needed.
type SmartTokenSource struct {
	src    oauth2.TokenSource
	notify TokenNotifyFunc
	log    logging.Logger

	// Most recent known token.
	curr *oauth2.Token
}

// NewSmartTokenSource returns a SmartTokenSource refreshing tok with cfg.
// A nil notify is allowed. Errors from notify are logged and otherwise
// ignored.
func NewSmartTokenSource(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token, notify TokenNotifyFunc, log logging.Logger) *SmartTokenSource {
	return &SmartTokenSource{
		src:    cfg.TokenSource(ctx, tok),
		notify: notify,
		log:    log,
		curr:   tok,
	}
}

// Token returns a token with a valid access token.
func (s *SmartTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	if s.curr != nil && s.curr.AccessToken == tok.AccessToken {
		return s.curr, nil
	}

	// Refreshed, or no previous access token was known.
	s.curr = tok
	s.log.Debug("access token refreshed", "expiry", tok.Expiry)
	if s.notify == nil {
		return s.curr, nil
	}
	if err := s.notify(s.curr); err != nil {
		// The refreshed token is still usable; it just wasn't recorded.
		s.log.Warning("error from refresh notify func", "error", err)
	}
	return s.curr, nil
}
