package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	godeck "github.com/bbiangul/go-deck"
)

// defaultInput is converted when no input file is named.
const defaultInput = "slides.md"

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "deckmd [input.md] [output.pptx]",
		Short: "Convert Markdown slide decks to PowerPoint",
		Long: `deckmd turns a Markdown file into a 16:9 .pptx deck.

Slides are separated by "---", sub-slides by "----". A slide whose first
heading is "# Title" and that holds no list or code becomes a section divider.
Lines after "note:" become speaker notes. Without arguments, slides.md in
the working directory is converted.`,
		Args: cobra.RangeArgs(0, 2),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), g.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{defaultInput}
			}
			return runConvert(cmd, g, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (JSON or YAML); overrides discovery")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newConvertCmd(g),
		newWatchCmd(g),
		newPreviewCmd(g),
		newDumpCmd(),
		newOutlineCmd(g),
		newInspectCmd(),
		newIndexCmd(g),
		newSearchCmd(g),
	)
	return root
}

func setupLogging(w io.Writer, verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}).With().Timestamp().Logger()
}

// loadConfig reads --config when given, otherwise discovers a config file
// next to input.
func (g *globals) loadConfig(input string) (godeck.Config, error) {
	if g.configPath != "" {
		return godeck.LoadConfigFile(g.configPath)
	}
	return godeck.LoadConfig(input), nil
}

func newConvertCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input.md> [output.pptx]",
		Short: "Convert a Markdown file to .pptx",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, g, args)
		},
	}
}

func runConvert(cmd *cobra.Command, g *globals, args []string) error {
	input := args[0]
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("%w: %s", godeck.ErrInputNotFound, input)
	}
	var output string
	if len(args) > 1 {
		output = args[1]
	}
	cfg, err := g.loadConfig(input)
	if err != nil {
		return err
	}
	res, err := godeck.Convert(input, output, cfg)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}

func printResult(w io.Writer, res *godeck.Result) {
	for _, warn := range res.Warnings {
		log.Warn().Str("output", res.Output).Msg(warn)
	}
	if res.LinkFailures > 0 {
		log.Warn().Int("links", res.LinkFailures).Msg("some hyperlinks were written without a target")
	}
	fmt.Fprintf(w, "Created %s (%s) with %d slides\n", res.Output, humanize.Bytes(uint64(res.Bytes)), res.Slides)
	log.Debug().Dur("elapsed", res.Elapsed.Round(time.Millisecond)).Int("sections", res.Sections).Msg("done")
}
