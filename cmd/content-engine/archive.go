// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/content-engine/internal/archive"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse the local envelope archive (list, search, show, export)",
	Long: `Archive manages the local SQLite archive that "generate --archive" and
"worker --archive" write to. Use subcommands to list recent articles, run a
full-text search, print one envelope or export everything.`,
}

// --- list subcommand ---

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived articles, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(func(store *archive.Store) error {
			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := store.List(context.Background(), limit)
			if err != nil {
				return err
			}
			jsonOutput, _ := cmd.Flags().GetBool("json")
			return formatEntries(os.Stdout, entries, jsonOutput)
		})
	},
}

// --- search subcommand ---

var archiveSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over archived titles and bodies",
	Long: `Search matches the query against archived titles and bodies using the
SQLite full-text index. Query syntax follows SQLite MATCH: words, "phrases",
prefix* and OR.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(func(store *archive.Store) error {
			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := store.Search(context.Background(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			jsonOutput, _ := cmd.Flags().GetBool("json")
			return formatEntries(os.Stdout, entries, jsonOutput)
		})
	},
}

// --- show subcommand ---

var archiveShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one archived envelope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(func(store *archive.Store) error {
			env, err := store.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			return writeEnvelope(os.Stdout, env, format)
		})
	},
}

// --- export subcommand ---

var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every archived envelope as YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(func(store *archive.Store) error {
			format, _ := cmd.Flags().GetString("format")
			return store.Export(context.Background(), os.Stdout, format)
		})
	},
}

// --- shared helpers ---

func withArchive(fn func(*archive.Store) error) error {
	cfg, err := loadEngineConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	store, err := archive.NewStore(cfg.Archive)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func formatEntries(w io.Writer, entries []archive.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-16s  %-40s  %6s  %s\n", "ID", "Created", "Title", "Words", "Scores")
	fmt.Fprintln(w, strings.Repeat("-", 118))
	for _, e := range entries {
		title := e.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Fprintf(w, "%-36s  %-16s  %-40s  %6d  %.1f/%.1f\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04"), title, e.WordCount,
			e.CredibilityScore, e.EngagementScore)
		if e.Snippet != "" {
			fmt.Fprintf(w, "    %s\n", e.Snippet)
		}
	}
	fmt.Fprintf(w, "\n%d results\n", len(entries))
	return nil
}

func init() {
	archiveListCmd.Flags().Int("limit", 20, "maximum entries")
	archiveListCmd.Flags().Bool("json", false, "output entries as JSON")

	archiveSearchCmd.Flags().Int("limit", 20, "maximum results")
	archiveSearchCmd.Flags().Bool("json", false, "output results as JSON")

	archiveShowCmd.Flags().String("format", "text", "output format: json, yaml or text")

	archiveExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveSearchCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	archiveCmd.AddCommand(archiveExportCmd)

	rootCmd.AddCommand(archiveCmd)
}
