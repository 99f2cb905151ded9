package godeck

import (
	"errors"

	"github.com/bbiangul/go-deck/theme"
)

var (
	// ErrInputNotFound is returned when the Markdown source does not exist.
	ErrInputNotFound = errors.New("godeck: input file not found")

	// ErrEmptyDeck is returned when the source produces no slides.
	ErrEmptyDeck = errors.New("godeck: no slides in input")

	// ErrInvalidConfig is returned when an explicitly requested config file
	// cannot be read.
	ErrInvalidConfig = errors.New("godeck: invalid configuration")

	// ErrInvalidColor is returned for color values that are not 6-digit hex.
	ErrInvalidColor = theme.ErrInvalidColor

	// ErrNotIndexed is returned when a deck path has no index entry.
	ErrNotIndexed = errors.New("godeck: deck not indexed")
)
