/*
DESCRIPTION
  metadata.go provides generation of YouTube video titles, descriptions and
  tags using a generative language model.

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

// Package metadata generates upload metadata (title, description and tags)
// for a video by prompting a generative language model for a JSON object and
// validating the reply.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/ausocean/utils/logging"
)

// Exported errors. Every error returned by Generate wraps ErrMetadata.
var (
	ErrMetadata   = errors.New("metadata generation failed")
	ErrEmptyTitle = errors.New("empty title")
)

// DefaultTagCount is the number of tags requested from the model.
const DefaultTagCount = 10

// DefaultPrompt is the prompt template. It is executed with a promptData.
const DefaultPrompt = `Generate a YouTube title, description, and {{.Tags}} SEO-friendly tags for a short video related to "{{.Topic}}". Respond only in JSON like:
{"title":"...","description":"...","tags":["..."]}`

// Length of the description shown in previews.
const previewLen = 180

// Metadata holds the generated details attached to an upload.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Client sends a prompt to a generative language model and returns the text
// of its reply.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type promptData struct {
	Topic string
	Label string
	Tags  int
}

// Generator produces Metadata for videos using a Client.
type Generator struct {
	client  Client
	log     logging.Logger
	prompt  *template.Template
	tags    int
	preview io.Writer
}

// Option is a functional option for configuring a Generator.
type Option func(*Generator) error

// WithPrompt replaces DefaultPrompt. The template may refer to .Topic,
// .Label (the video being described) and .Tags (the tag count).
func WithPrompt(text string) Option {
	return func(g *Generator) error {
		t, err := template.New("prompt").Parse(text)
		if err != nil {
			return fmt.Errorf("could not parse prompt template: %w", err)
		}
		g.prompt = t
		return nil
	}
}

// WithTagCount sets the number of tags asked for.
func WithTagCount(n int) Option {
	return func(g *Generator) error {
		if n <= 0 {
			return fmt.Errorf("invalid tag count: %d", n)
		}
		g.tags = n
		return nil
	}
}

// WithPreview sets a writer to which a readable preview of each generated
// Metadata is written.
func WithPreview(w io.Writer) Option {
	return func(g *Generator) error {
		g.preview = w
		return nil
	}
}

// NewGenerator returns a Generator that prompts c.
func NewGenerator(c Client, log logging.Logger, opts ...Option) (*Generator, error) {
	if c == nil {
		return nil, errors.New("nil client")
	}
	g := &Generator{
		client:  c,
		log:     log,
		prompt:  template.Must(template.New("prompt").Parse(DefaultPrompt)),
		tags:    DefaultTagCount,
		preview: io.Discard,
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, fmt.Errorf("could not apply option: %w", err)
		}
	}
	return g, nil
}

// Prompt returns the prompt that Generate sends for topic and label.
func (g *Generator) Prompt(topic, label string) (string, error) {
	var b strings.Builder
	err := g.prompt.Execute(&b, promptData{Topic: topic, Label: label, Tags: g.tags})
	if err != nil {
		return "", fmt.Errorf("could not execute prompt template: %w", err)
	}
	return b.String(), nil
}

// Generate asks the model for metadata about topic for the video identified by
// label. The result is either fully valid Metadata or an error wrapping
// ErrMetadata; no defaults are filled in.
func (g *Generator) Generate(ctx context.Context, topic, label string) (Metadata, error) {
	prompt, err := g.Prompt(topic, label)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrMetadata, err)
	}

	g.log.Debug("requesting metadata", "video", label, "topic", topic)
	text, err := g.client.Generate(ctx, prompt)
	if err != nil {
		g.log.Error("metadata request failed", "video", label, "error", err)
		return Metadata{}, fmt.Errorf("%w: request: %v", ErrMetadata, err)
	}

	md, err := Parse(text)
	if err != nil {
		g.log.Error("invalid metadata response", "video", label, "error", err, "response", text)
		return Metadata{}, err
	}

	g.log.Info("generated metadata", "video", label, "title", md.Title, "tags", len(md.Tags))
	md.WritePreview(g.preview, label)
	return md, nil
}

// fence matches markdown code fence markers, with or without a json tag.
var fence = regexp.MustCompile("(?i)```(json)?")

// StripFences removes code fence markers and surrounding space from a model
// reply.
func StripFences(text string) string {
	return strings.TrimSpace(fence.ReplaceAllString(text, ""))
}

// Parse extracts Metadata from a model reply that may be wrapped in code
// fences. The title must be present and not blank. Errors wrap ErrMetadata.
func Parse(text string) (Metadata, error) {
	var md Metadata
	err := json.Unmarshal([]byte(StripFences(text)), &md)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: malformed JSON: %v", ErrMetadata, err)
	}

	md.Title = strings.TrimSpace(md.Title)
	if md.Title == "" {
		return Metadata{}, fmt.Errorf("%w: %w", ErrMetadata, ErrEmptyTitle)
	}
	if md.Tags == nil {
		md.Tags = []string{}
	}
	return md, nil
}

// WritePreview writes a readable summary of m for the video label to w.
func (m Metadata) WritePreview(w io.Writer, label string) {
	desc := m.Description
	if utf8.RuneCountInString(desc) > previewLen {
		desc = string([]rune(desc)[:previewLen]) + "..."
	}
	fmt.Fprintf(w, "\nMetadata for %q:\n", label)
	fmt.Fprintf(w, "  Title:       %s\n", m.Title)
	fmt.Fprintf(w, "  Description: %s\n", desc)
	fmt.Fprintf(w, "  Tags:        %s\n", strings.Join(m.Tags, ", "))
}
