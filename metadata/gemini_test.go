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

package metadata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// geminiRequest holds the parts of a generateContent request we check.
type geminiRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

// geminiServer stands in for the generateContent endpoint, replying with
// body and recording the last request, its path and API key header.
type geminiServer struct {
	*httptest.Server
	req  geminiRequest
	path string
	key  string
	hits int
}

func newGeminiServer(t *testing.T, status int, body string) *geminiServer {
	gs := &geminiServer{}
	gs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gs.hits++
		gs.path = r.URL.Path
		gs.key = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gs.req); err != nil {
			t.Errorf("could not decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(gs.Close)
	return gs
}

func newTestGemini(t *testing.T, gs *geminiServer, model string) *GeminiClient {
	c, err := NewGeminiClient(context.Background(), "test-key", model,
		WithBaseURL(gs.URL+"/"),
		WithHTTPClient(gs.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestGeminiGenerate(t *testing.T) {
	const reply = `{"candidates":[{"content":{"role":"model","parts":[{"text":"thinking...","thought":true},{"text":"` + "```json\\n" + `{\"title\":\"Reef\"}` + "\\n```" + `"}]}}]}`
	gs := newGeminiServer(t, http.StatusOK, reply)
	c := newTestGemini(t, gs, "")
	assert.Equal(t, "models/"+DefaultModel, c.Model())

	text, err := c.Generate(context.Background(), "describe the reef")
	require.NoError(t, err)
	assert.Equal(t, 1, gs.hits)
	assert.True(t, strings.HasSuffix(gs.path, "models/"+DefaultModel+":generateContent"), "unexpected path: %s", gs.path)
	assert.Equal(t, "test-key", gs.key)
	require.Len(t, gs.req.Contents, 1)
	assert.Equal(t, "user", gs.req.Contents[0].Role)
	require.Len(t, gs.req.Contents[0].Parts, 1)
	assert.Equal(t, "describe the reef", gs.req.Contents[0].Parts[0].Text)
	assert.NotContains(t, text, "thinking")

	md, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "Reef", md.Title)
}

func TestGeminiGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		noCand bool
	}{
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, noCand: true},
		{name: "empty text", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`, noCand: true},
		{name: "bad key", status: http.StatusBadRequest, body: `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`},
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			gs := newGeminiServer(t, test.status, test.body)
			c := newTestGemini(t, gs, "gemini-test")
			_, err := c.Generate(context.Background(), "prompt")
			require.Error(t, err)
			if test.noCand {
				assert.ErrorIs(t, err, ErrNoCandidates)
			}
		})
	}
}

func TestNewGeminiClient(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "")
	assert.Error(t, err)

	gs := newGeminiServer(t, http.StatusOK, `{}`)
	c := newTestGemini(t, gs, "models/custom")
	assert.Equal(t, "models/custom", c.Model())
}
