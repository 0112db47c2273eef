// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/content-engine/internal/archive"
	"github.com/pdiddy/content-engine/internal/blogger"
	"github.com/pdiddy/content-engine/pkg/types"
)

var publishCmd = &cobra.Command{
	Use:   "publish <envelope.json|envelope.yaml>",
	Short: "Publish a generated envelope to Blogger",
	Long: `Publish reads an envelope written by "generate --format json|yaml" and
posts it to Blogger. The Markdown body is converted to HTML; SVG visuals and
the source list are appended. Use --id to publish an archived envelope instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	if draft, _ := cmd.Flags().GetBool("draft"); draft {
		cfg.Blogger.Draft = true
	}
	ctx := context.Background()

	env, err := envelopeFromArgs(ctx, cmd, args, cfg.Archive)
	if err != nil {
		return err
	}

	pub, err := blogger.New(ctx, cfg.Blogger, logger)
	if err != nil {
		return err
	}
	res, err := pub.PublishEnvelope(ctx, env)
	if err != nil {
		return err
	}
	state := "live"
	if res.Draft {
		state = "draft"
	}
	fmt.Printf("Published %q (%s): %s\n", env.Title, state, res.URL)
	return nil
}

func envelopeFromArgs(ctx context.Context, cmd *cobra.Command, args []string, cfg types.ArchiveConfig) (*types.ContentEnvelope, error) {
	id, _ := cmd.Flags().GetString("id")
	switch {
	case id != "" && len(args) > 0:
		return nil, fmt.Errorf("give either an envelope file or --id, not both")
	case id != "":
		store, err := archive.NewStore(cfg)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Get(ctx, id)
	case len(args) == 1:
		return readEnvelope(args[0])
	default:
		return nil, fmt.Errorf("envelope file or --id required")
	}
}

func init() {
	publishCmd.Flags().Bool("draft", false, "publish as a draft")
	publishCmd.Flags().String("id", "", "publish the archived envelope with this ID")

	rootCmd.AddCommand(publishCmd)
}
