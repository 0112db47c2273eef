// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/content-engine/pkg/types"
)

const exportLimit = 100000

// ExportEntry is one archived envelope with its archive identity.
type ExportEntry struct {
	Entry    `yaml:",inline"`
	Envelope *types.ContentEnvelope `json:"envelope" yaml:"envelope"`
}

// Export writes every archived envelope, newest first, to w as "json" or "yaml".
func (s *Store) Export(ctx context.Context, w io.Writer, format string) error {
	entries, err := s.List(ctx, exportLimit)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	out := make([]ExportEntry, 0, len(entries))
	for _, e := range entries {
		env, err := s.Get(ctx, e.ID)
		if err != nil {
			return err
		}
		out = append(out, ExportEntry{Entry: e, Envelope: env})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q (want json or yaml)", format)
	}
}
