package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	godeck "github.com/bbiangul/go-deck"
	"github.com/bbiangul/go-deck/outline"
	"github.com/bbiangul/go-deck/pptx"
	"github.com/bbiangul/go-deck/preview"
)

func newPreviewCmd(g *globals) *cobra.Command {
	var (
		width int
		notes bool
	)
	cmd := &cobra.Command{
		Use:   "preview <input.md>",
		Short: "Render the slides in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deck, err := godeck.ReadDeck(args[0])
			if err != nil {
				return err
			}
			cfg, err := g.loadConfig(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), preview.Render(deck, preview.Options{
				Colors: cfg.Colors,
				Width:  width,
				Notes:  notes,
			}))
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", preview.DefaultWidth, "frame width in columns")
	cmd.Flags().BoolVar(&notes, "notes", false, "show speaker notes")
	return cmd
}

func newDumpCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump <input.md>",
		Short: "Print the parsed slide model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deck, err := godeck.ReadDeck(args[0])
			if err != nil {
				return err
			}
			return dump(cmd.OutOrStdout(), deck, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml or pp")
	return cmd
}

func dump(w io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "pp":
		pp.ColoringEnabled = false
		_, err := pp.Fprintln(w, v)
		return err
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or pp)", format)
	}
}

func newOutlineCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "outline <input.md> [out.xlsx]",
		Short: "Write a spreadsheet outline of the deck",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			deck, err := godeck.ReadDeck(input)
			if err != nil {
				return err
			}
			cfg, err := g.loadConfig(input)
			if err != nil {
				return err
			}
			out := strings.TrimSuffix(godeck.OutputPath(input), ".pptx") + ".xlsx"
			if len(args) > 1 {
				out = args[1]
			}
			if err := outline.Write(out, deck, cfg.Colors); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d slides\n", out, len(deck.Slides))
			return nil
		},
	}
}

func newInspectCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <deck.pptx>",
		Short: "Print the slides and sections of a .pptx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := pptx.Inspect(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return dump(cmd.OutOrStdout(), sum, "json")
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printSummary(w io.Writer, sum *pptx.Summary) {
	if sum.Title != "" {
		fmt.Fprintf(w, "Title:   %s\n", sum.Title)
	}
	if sum.Creator != "" {
		fmt.Fprintf(w, "Author:  %s\n", sum.Creator)
	}
	fmt.Fprintf(w, "Size:    %.2fin x %.3fin\n", float64(sum.Width)/914400, float64(sum.Height)/914400)
	fmt.Fprintf(w, "Slides:  %d\n", len(sum.Slides))

	sectionOf := make(map[int]string)
	for _, s := range sum.Sections {
		for _, id := range s.SlideIDs {
			sectionOf[id] = s.Name
		}
	}
	for _, s := range sum.Slides {
		line := fmt.Sprintf("%3d. %s", s.Number, s.Title)
		if name := sectionOf[s.ID]; name != "" {
			line += "  [" + name + "]"
		}
		fmt.Fprintln(w, line)
		for _, p := range s.Paragraphs {
			fmt.Fprintf(w, "       %s%s\n", strings.Repeat("  ", p.Level), strings.ReplaceAll(p.Text(), "\n", " ⏎ "))
		}
		if s.Notes != "" {
			fmt.Fprintf(w, "       notes: %s\n", strings.ReplaceAll(s.Notes, "\n", " / "))
		}
	}
}
