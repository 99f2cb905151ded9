// Command deckmd converts Markdown slide decks to PowerPoint.
package main

import (
	"errors"
	"fmt"
	"os"

	godeck "github.com/bbiangul/go-deck"
)

const usage = "Usage: deckmd [input.md] [output.pptx]"

func main() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, godeck.ErrInputNotFound) {
			fmt.Fprintln(os.Stderr, usage)
		}
	}
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process status: 1 for a missing
// input file, 2 for any other failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, godeck.ErrInputNotFound):
		return 1
	default:
		return 2
	}
}
