package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	godeck "github.com/bbiangul/go-deck"
)

const defaultDebounce = 300 * time.Millisecond

func newWatchCmd(g *globals) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <input.md> [output.pptx]",
		Short: "Re-convert whenever the input or its config changes",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("%w: %s", godeck.ErrInputNotFound, input)
			}
			var output string
			if len(args) > 1 {
				output = args[1]
			}

			convert := func() error {
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
			if err := convert(); err != nil {
				log.Error().Err(err).Msg("conversion failed")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log.Info().Str("input", input).Msg("watching for changes, press Ctrl+C to stop")
			return watch(ctx, input, debounce, func() {
				if err := convert(); err != nil {
					log.Error().Err(err).Msg("conversion failed")
				}
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "quiet period before re-converting")
	return cmd
}

// watch calls onChange once per burst of changes to input or to a config
// file in its directory, until ctx is done. The directory is watched rather
// than the file so editors that replace the file on save keep working.
func watch(ctx context.Context, input string, debounce time.Duration, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	absInput, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	if err := w.Add(filepath.Dir(absInput)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(absInput), err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, absInput) {
				continue
			}
			log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("change detected")
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		case <-timer.C:
			onChange()
		}
	}
}

// watchedConfigs are the config names LoadConfig looks for beside the input.
var watchedConfigs = map[string]bool{
	"config.json":        true,
	"slides-config.json": true,
	"config.yaml":        true,
	"config.yml":         true,
	"slides-config.yaml": true,
	"slides-config.yml":  true,
}

func relevant(ev fsnotify.Event, absInput string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	if name == absInput {
		return true
	}
	return filepath.Dir(name) == filepath.Dir(absInput) && watchedConfigs[filepath.Base(name)]
}
