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

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ausocean/uploader/batch"
)

func TestPromptTopic(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "coral reefs\n", want: "coral reefs"},
		{in: "  kelp forests  \nignored\n", want: "kelp forests"},
		{in: "no newline", want: "no newline"},
		{in: "\n", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, test := range tests {
		var out bytes.Buffer
		got, err := promptTopic(strings.NewReader(test.in), &out)
		assert.Contains(t, out.String(), "Enter a topic")
		if test.wantErr {
			assert.Error(t, err, "input %q", test.in)
			continue
		}
		require.NoError(t, err, "input %q", test.in)
		assert.Equal(t, test.want, got)
	}
}

func TestProgress(t *testing.T) {
	var out bytes.Buffer
	p := newProgress(&out)

	// Updates with no upload in flight are ignored.
	p.update(10, 100)
	p.Done(batch.Item{Name: "none.mp4"}, nil)

	item := batch.Item{Name: "clip.mp4", Size: 100}
	p.Start(item)
	p.update(50, 100)
	p.update(100, 100)
	p.Done(item, nil)
	assert.Nil(t, p.bar)
	assert.Contains(t, out.String(), "clip.mp4")

	p.Start(item)
	p.update(30, 100)
	p.Done(item, errors.New("failed"))
	assert.Nil(t, p.bar)
}
