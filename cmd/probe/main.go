/*
DESCRIPTION
  probe sends a single metadata prompt to Gemini and prints the reply, to
  check the API key and model without uploading anything.

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

// Probe prints the raw Gemini reply to a metadata prompt followed by the
// parsed metadata or the reason it could not be parsed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/uploader/config"
	"github.com/ausocean/uploader/metadata"
)

const defaultTopic = "Underwater life on a temperate reef"

func main() {
	topic := flag.String("topic", defaultTopic, "Topic to ask for metadata about.")
	model := flag.String("model", metadata.DefaultModel, "Gemini model.")
	flag.Parse()

	log := logging.New(logging.Warning, os.Stderr, true)
	ctx := context.Background()

	cfg, err := config.Load(ctx, config.WithRequired(config.KeyGeminiAPIKey))
	if err != nil {
		log.Fatal("could not load config", "error", err)
	}
	client, err := metadata.NewGeminiClient(ctx, cfg.GeminiAPIKey, *model)
	if err != nil {
		log.Fatal("could not create Gemini client", "error", err)
	}

	err = probe(ctx, client, log, *topic, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe: %v\n", err)
		os.Exit(1)
	}
}

// probe writes the reply to the default prompt for topic and its parse
// result to out. Only a failed request is returned as an error.
func probe(ctx context.Context, client metadata.Client, log logging.Logger, topic string, out io.Writer) error {
	gen, err := metadata.NewGenerator(client, log)
	if err != nil {
		return err
	}
	prompt, err := gen.Prompt(topic, "probe")
	if err != nil {
		return err
	}

	text, err := client.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	fmt.Fprintf(out, "Gemini response:\n%s\n\n", text)

	md, err := metadata.Parse(text)
	if err != nil {
		fmt.Fprintf(out, "Could not parse response: %v\n", err)
		return nil
	}
	md.WritePreview(out, "probe")
	return nil
}
