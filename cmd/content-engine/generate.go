// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-engine/internal/archive"
	"github.com/pdiddy/content-engine/internal/blogger"
	"github.com/pdiddy/content-engine/internal/orchestrator"
	"github.com/pdiddy/content-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate an article for a topic",
	Long: `Generate runs the full pipeline for one topic: trend analysis, research,
verification, enhancement, visuals, compilation and stats. Progress goes to
stderr; the content envelope goes to stdout or --output.

Use --publish to post the result to Blogger and --archive to keep it in the
local archive.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := engineConfig()
	if err != nil {
		return err
	}
	prefs := preferencesFromFlags(cmd, cfg.Preferences)
	req, err := types.NewContentRequest(strings.Join(args, " "), prefs)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, closeEngine, err := orchestrator.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		engine.Observer = orchestrator.ProgressWriter(os.Stderr)
	}

	env, err := engine.Generate(ctx, req)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	var out io.Writer = os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := writeEnvelope(out, env, format); err != nil {
		return err
	}

	if ok, _ := cmd.Flags().GetBool("archive"); ok {
		store, err := archive.NewStore(cfg.Archive)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.Save(ctx, env)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Archived as %s\n", id)
	}

	if ok, _ := cmd.Flags().GetBool("publish"); ok {
		pub, err := blogger.New(ctx, cfg.Blogger, logger)
		if err != nil {
			return err
		}
		res, err := pub.PublishEnvelope(ctx, env)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Published %s\n", res.URL)
	}
	return nil
}

// preferencesFromFlags overrides the configured preferences with the flags
// the user set explicitly.
func preferencesFromFlags(cmd *cobra.Command, prefs types.Preferences) types.Preferences {
	flags := cmd.Flags()
	if flags.Changed("style") {
		prefs.Style, _ = flags.GetString("style")
	}
	if flags.Changed("tone") {
		prefs.Tone, _ = flags.GetString("tone")
	}
	if flags.Changed("audience") {
		prefs.TargetAudience, _ = flags.GetString("audience")
	}
	if flags.Changed("visuals") {
		prefs.IncludeVisuals, _ = flags.GetBool("visuals")
	}
	if flags.Changed("fact-check") {
		level, _ := flags.GetString("fact-check")
		prefs.FactCheckLevel = types.FactCheckLevel(level)
	}
	return prefs
}

func init() {
	generateCmd.Flags().String("style", "", "writing style (default from config: engaging)")
	generateCmd.Flags().String("tone", "", "tone: formal, conversational, professional, storytelling")
	generateCmd.Flags().String("audience", "", "target audience, e.g. general, beginners, experts")
	generateCmd.Flags().Bool("visuals", true, "generate charts, diagrams and infographics")
	generateCmd.Flags().String("fact-check", "", "fact-check level: basic, standard, thorough")
	generateCmd.Flags().String("format", "text", "output format: json, yaml or text")
	generateCmd.Flags().StringP("output", "o", "", "write the envelope to a file instead of stdout")
	generateCmd.Flags().Bool("publish", false, "publish the article to Blogger")
	generateCmd.Flags().Bool("archive", false, "save the envelope to the local archive")
	generateCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")

	rootCmd.AddCommand(generateCmd)
}
