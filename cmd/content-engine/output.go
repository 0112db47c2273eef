// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/content-engine/pkg/types"
)

// writeEnvelope renders env as json, yaml or text.
func writeEnvelope(w io.Writer, env *types.ContentEnvelope, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(env); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case "text", "":
		fmt.Fprintf(w, "%s\n\n%s\n", env.Title, strings.TrimSpace(env.Content))
		if len(env.Sources) > 0 {
			fmt.Fprintln(w, "\nSources:")
			for i, s := range env.Sources {
				fmt.Fprintf(w, "  [%d] %s (%s)\n", i+1, s.Title, s.URL)
			}
		}
		fmt.Fprintf(w, "\nWords: %d | Reading time: %d min | Credibility: %.1f | Engagement: %.1f | Visuals: %d\n",
			env.Stats.WordCount, env.Stats.ReadingTime,
			env.Stats.CredibilityScore, env.Stats.EngagementScore, len(env.Visuals))
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use json, yaml or text", format)
	}
}

// readEnvelope loads an envelope written by generate. Files ending in
// .yaml or .yml are read as YAML, everything else as JSON.
func readEnvelope(path string) (*types.ContentEnvelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var env types.ContentEnvelope
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &env)
	default:
		err = json.Unmarshal(data, &env)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if strings.TrimSpace(env.Content) == "" {
		return nil, fmt.Errorf("%s: envelope has no content", path)
	}
	return &env, nil
}
