package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	godeck "github.com/bbiangul/go-deck"
)

// openLibrary loads the config and applies --db on top of it.
func openLibrary(g *globals, input, dbPath string) (*godeck.Library, error) {
	cfg, err := g.loadConfig(input)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return godeck.OpenLibrary(cfg)
}

func newIndexCmd(g *globals) *cobra.Command {
	var (
		dbPath string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "index <input.md>...",
		Short: "Add Markdown decks to the search index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary(g, args[0], dbPath)
			if err != nil {
				return err
			}
			defer lib.Close()

			var indexed, slides int
			for _, path := range args {
				res, err := lib.IndexFile(cmd.Context(), path, force)
				if err != nil {
					return err
				}
				if !res.Changed {
					fmt.Fprintf(cmd.OutOrStdout(), "unchanged %s\n", path)
					continue
				}
				indexed++
				slides += res.Slides
				fmt.Fprintf(cmd.OutOrStdout(), "indexed   %s (%d slides)\n", path, res.Slides)
			}
			log.Debug().Int("decks", indexed).Int("slides", slides).Msg("index complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "index database path (default ~/.godeck/godeck.db)")
	cmd.Flags().BoolVar(&force, "force", false, "re-index even when the file is unchanged")
	return cmd
}

func newSearchCmd(g *globals) *cobra.Command {
	var (
		dbPath string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed slides",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary(g, ".", dbPath)
			if err != nil {
				return err
			}
			defer lib.Close()

			query := strings.Join(args, " ")
			hits, err := lib.Search(cmd.Context(), query, limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(hits) == 0 {
				fmt.Fprintf(w, "No slides match %q\n", query)
				return nil
			}
			for _, h := range hits {
				title := h.Title
				if h.Section != "" {
					title += "  [" + h.Section + "]"
				}
				fmt.Fprintf(w, "%s#%d  %s\n", h.Path, h.Slide, title)
				if h.Snippet != "" {
					fmt.Fprintf(w, "    %s\n", h.Snippet)
				}
			}
			fmt.Fprintf(w, "%s %s\n", humanize.Comma(int64(len(hits))), plural(len(hits), "match", "matches"))
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "index database path (default ~/.godeck/godeck.db)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of results")
	return cmd
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
